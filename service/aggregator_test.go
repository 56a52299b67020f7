package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"moodjournal/models"
	"moodjournal/repository"
	"moodjournal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingGroupRepo 分组统计失败
type failingGroupRepo struct {
	repository.ChatRepository
}

func (failingGroupRepo) GroupByMood(context.Context, uint) ([]models.MoodCount, error) {
	return nil, &repository.PersistenceError{Op: "group by mood", Err: errors.New("timeout")}
}

func seedMoods(t *testing.T, userID uint, moods ...models.Mood) *MoodAggregator {
	t.Helper()
	db := testutil.DB(t)
	for i, m := range moods {
		testutil.SeedChat(t, db, userID, "msg", "reply", m, base.Add(time.Duration(i)*time.Minute))
	}
	testutil.SeedChat(t, db, userID+100, "other", "reply", models.MoodSad, base)
	return NewMoodAggregator(repository.NewChatRepository(db))
}

func TestMoodAggregator_Dashboard(t *testing.T) {
	agg := seedMoods(t, 1,
		models.MoodHappy, models.MoodHappy, models.MoodHappy,
		models.MoodSad, models.MoodNeutral, models.MoodNeutral, models.MoodHappy,
	)

	d, err := agg.Dashboard(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(7), d.TotalChats)
	require.Len(t, d.RecentChats, 5)
	assert.Equal(t, models.MoodHappy, d.RecentChats[0].Mood)
	assert.Equal(t, map[models.Mood]int64{
		models.MoodHappy:   4,
		models.MoodNeutral: 2,
		models.MoodSad:     1,
	}, d.MoodStats)
	assert.Equal(t, []models.MoodCount{
		{Mood: models.MoodHappy, Count: 4},
		{Mood: models.MoodNeutral, Count: 2},
		{Mood: models.MoodSad, Count: 1},
	}, d.MoodBreakdown)
}

func TestMoodAggregator_DashboardEmpty(t *testing.T) {
	agg := NewMoodAggregator(repository.NewChatRepository(testutil.DB(t)))

	d, err := agg.Dashboard(context.Background(), 1)
	require.NoError(t, err)
	assert.Zero(t, d.TotalChats)
	assert.NotNil(t, d.RecentChats)
	assert.Empty(t, d.RecentChats)
	assert.Empty(t, d.MoodStats)
}

func TestMoodAggregator_DashboardFailure(t *testing.T) {
	agg := NewMoodAggregator(failingGroupRepo{repository.NewChatRepository(testutil.DB(t))})

	_, err := agg.Dashboard(context.Background(), 1)
	var pe *PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "group by mood", pe.Op)
}

func TestMoodAggregator_MoodStats(t *testing.T) {
	agg := seedMoods(t, 1, models.MoodHappy, models.MoodSad, models.MoodSad)

	res, err := agg.MoodStats(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Total)
	assert.Equal(t, []MoodStat{
		{Mood: models.MoodSad, Count: 2, Percentage: 66.67},
		{Mood: models.MoodHappy, Count: 1, Percentage: 33.33},
	}, res.Stats)

	var sum float64
	for _, s := range res.Stats {
		sum += s.Percentage
	}
	assert.InDelta(t, 100.0, sum, 0.02)
}

func TestMoodAggregator_MoodStatsEmpty(t *testing.T) {
	agg := NewMoodAggregator(repository.NewChatRepository(testutil.DB(t)))

	res, err := agg.MoodStats(context.Background(), 1)
	require.NoError(t, err)
	assert.Zero(t, res.Total)
	assert.Empty(t, res.Stats)
}

func TestMoodStats_PercentagesSumTo100(t *testing.T) {
	cases := [][]models.MoodCount{
		{{Mood: models.MoodHappy, Count: 1}},
		{{Mood: models.MoodHappy, Count: 1}, {Mood: models.MoodSad, Count: 1}, {Mood: models.MoodNeutral, Count: 1}},
		{{Mood: models.MoodNeutral, Count: 97}, {Mood: models.MoodSad, Count: 2}, {Mood: models.MoodHappy, Count: 1}},
		{{Mood: models.MoodHappy, Count: 5}, {Mood: models.MoodSad, Count: 3}, {Mood: models.MoodNeutral, Count: 3}},
	}
	for _, grouped := range cases {
		res := moodStats(grouped)
		var sum float64
		for _, s := range res.Stats {
			sum += s.Percentage
		}
		assert.InDelta(t, 100.0, sum, 0.02, "grouped=%v", grouped)
	}

	empty := moodStats(nil)
	assert.Zero(t, empty.Total)
	assert.Empty(t, empty.Stats)
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, 0.0, Percentage(3, 0))
	assert.Equal(t, 50.0, Percentage(1, 2))
	assert.Equal(t, 14.29, Percentage(1, 7))
}
