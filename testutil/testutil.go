// Package testutil 测试辅助：内存 sqlite 数据库与数据构造
package testutil

import (
	"fmt"
	"testing"
	"time"

	"moodjournal/database"
	"moodjournal/models"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// DB 为每个测试创建独立的内存 sqlite 库并完成迁移
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("sqlite handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		tb.Fatalf("migrate: %v", err)
	}
	return db
}

// SeedChat 直接写入一条记录，createdAt 由调用方控制以便断言排序
func SeedChat(tb testing.TB, db *gorm.DB, userID uint, message, reply string, mood models.Mood, createdAt time.Time) *models.ChatExchange {
	tb.Helper()
	row := &models.ChatExchange{
		UserID:    userID,
		Message:   message,
		Reply:     reply,
		Mood:      mood,
		CreatedAt: createdAt,
	}
	if err := db.Create(row).Error; err != nil {
		tb.Fatalf("seed chat: %v", err)
	}
	return row
}

// SeedChats 为用户写入 n 条按分钟递增的记录，message 为 "m1".."mn"
func SeedChats(tb testing.TB, db *gorm.DB, userID uint, n int, start time.Time) []*models.ChatExchange {
	tb.Helper()
	out := make([]*models.ChatExchange, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, SeedChat(tb, db, userID,
			fmt.Sprintf("m%d", i), fmt.Sprintf("r%d", i), models.MoodNeutral,
			start.Add(time.Duration(i)*time.Minute)))
	}
	return out
}

// SeedUser 写入一个用户
func SeedUser(tb testing.TB, db *gorm.DB, name, email, passwordHash string) *models.User {
	tb.Helper()
	u := &models.User{Name: name, Email: email, Password: passwordHash}
	if err := db.Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}
