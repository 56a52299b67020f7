package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"moodjournal/models"
	"moodjournal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

var base = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func messages(list []models.ChatExchange) []string {
	out := make([]string, 0, len(list))
	for _, c := range list {
		out = append(out, c.Message)
	}
	return out
}

func TestChatRepository_CreateAndFindRecent(t *testing.T) {
	db := testutil.DB(t)
	repo := NewChatRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, 1, "I am so happy", "That's lovely!", models.MoodHappy)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	recent, err := repo.FindRecent(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, created.ID, recent[0].ID)
	assert.Equal(t, "I am so happy", recent[0].Message)
	assert.Equal(t, "That's lovely!", recent[0].Reply)
	assert.Equal(t, models.MoodHappy, recent[0].Mood)
}

func TestChatRepository_CreateInvalidMoodStoresNeutral(t *testing.T) {
	db := testutil.DB(t)
	repo := NewChatRepository(db)

	created, err := repo.Create(context.Background(), 1, "hi", "hello", models.Mood("furious"))
	require.NoError(t, err)
	assert.Equal(t, models.MoodNeutral, created.Mood)
}

func TestChatRepository_FindRecentOrderAndScope(t *testing.T) {
	db := testutil.DB(t)
	repo := NewChatRepository(db)
	ctx := context.Background()

	testutil.SeedChats(t, db, 1, 5, base)
	testutil.SeedChat(t, db, 2, "other user", "r", models.MoodSad, base.Add(time.Hour))

	recent, err := repo.FindRecent(ctx, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"m5", "m4", "m3"}, messages(recent))

	none, err := repo.FindRecent(ctx, 3, 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestChatRepository_TieBreakByID(t *testing.T) {
	db := testutil.DB(t)
	repo := NewChatRepository(db)

	same := base.Add(time.Minute)
	testutil.SeedChat(t, db, 1, "first", "r", models.MoodNeutral, same)
	testutil.SeedChat(t, db, 1, "second", "r", models.MoodNeutral, same)
	testutil.SeedChat(t, db, 1, "newest", "r", models.MoodNeutral, same.Add(time.Minute))

	list, err := repo.FindPage(context.Background(), 1, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"newest", "first", "second"}, messages(list))
}

func TestChatRepository_FindPageAndCount(t *testing.T) {
	db := testutil.DB(t)
	repo := NewChatRepository(db)
	ctx := context.Background()

	testutil.SeedChats(t, db, 1, 7, base)

	page2, err := repo.FindPage(ctx, 1, 3, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"m4", "m3", "m2"}, messages(page2))

	last, err := repo.FindPage(ctx, 1, 6, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"m1"}, messages(last))

	beyond, err := repo.FindPage(ctx, 1, 30, 3)
	require.NoError(t, err)
	assert.Empty(t, beyond)

	total, err := repo.Count(ctx, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 7, total)

	all, err := repo.FindAll(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, all, 7)
	assert.Equal(t, "m7", all[0].Message)
}

func TestChatRepository_GroupByMood(t *testing.T) {
	db := testutil.DB(t)
	repo := NewChatRepository(db)
	ctx := context.Background()

	testutil.SeedChat(t, db, 1, "a", "r", models.MoodSad, base)
	testutil.SeedChat(t, db, 1, "b", "r", models.MoodSad, base.Add(time.Minute))
	testutil.SeedChat(t, db, 1, "c", "r", models.MoodSad, base.Add(2*time.Minute))
	testutil.SeedChat(t, db, 1, "d", "r", models.MoodHappy, base.Add(3*time.Minute))
	testutil.SeedChat(t, db, 2, "e", "r", models.MoodNeutral, base.Add(4*time.Minute))

	groups, err := repo.GroupByMood(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []models.MoodCount{
		{Mood: models.MoodSad, Count: 3},
		{Mood: models.MoodHappy, Count: 1},
	}, groups)

	empty, err := repo.GroupByMood(ctx, 99)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestChatRepository_DeleteOneScopedToOwner(t *testing.T) {
	db := testutil.DB(t)
	repo := NewChatRepository(db)
	ctx := context.Background()

	row := testutil.SeedChat(t, db, 1, "mine", "r", models.MoodNeutral, base)

	deleted, err := repo.DeleteOne(ctx, 2, row.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	total, err := repo.Count(ctx, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	deleted, err = repo.DeleteOne(ctx, 1, row.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.DeleteOne(ctx, 1, row.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestChatRepository_DeleteAll(t *testing.T) {
	db := testutil.DB(t)
	repo := NewChatRepository(db)
	ctx := context.Background()

	testutil.SeedChats(t, db, 1, 4, base)
	testutil.SeedChats(t, db, 2, 2, base)

	n, err := repo.DeleteAll(ctx, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 4, n)

	n, err = repo.DeleteAll(ctx, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	others, err := repo.Count(ctx, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 2, others)
}

func TestChatRepository_StoreUnavailable(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	mock.ExpectQuery("SELECT .* FROM `chat_exchanges`").
		WillReturnError(errors.New("connection refused"))

	repo := NewChatRepository(gormDB)
	_, err = repo.FindRecent(context.Background(), 1, 10)
	require.Error(t, err)

	var pe *PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "find", pe.Op)
	assert.Contains(t, pe.Error(), "connection refused")
	require.NoError(t, mock.ExpectationsWereMet())
}
