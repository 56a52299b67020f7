package repository

import (
	"context"
	"time"

	"moodjournal/models"

	"gorm.io/gorm"
)

// ChatRepository 对话记录存储。所有操作都按 userID 过滤，不存在跨用户读写
type ChatRepository interface {
	Create(ctx context.Context, userID uint, message, reply string, mood models.Mood) (*models.ChatExchange, error)
	// FindRecent 最近的 limit 条记录，按时间倒序
	FindRecent(ctx context.Context, userID uint, limit int) ([]models.ChatExchange, error)
	FindPage(ctx context.Context, userID uint, offset, limit int) ([]models.ChatExchange, error)
	// FindAll 用户全部记录，按时间倒序（导出使用）
	FindAll(ctx context.Context, userID uint) ([]models.ChatExchange, error)
	Count(ctx context.Context, userID uint) (int64, error)
	// GroupByMood 按情绪计数，数量倒序；未出现的情绪不返回
	GroupByMood(ctx context.Context, userID uint) ([]models.MoodCount, error)
	DeleteOne(ctx context.Context, userID, chatID uint) (bool, error)
	DeleteAll(ctx context.Context, userID uint) (int64, error)
}

type chatRepo struct {
	db  *gorm.DB
	now func() time.Time
}

// NewChatRepository 基于 gorm 的实现
func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepo{db: db, now: time.Now}
}

// recentOrder 时间倒序，同一时间按插入顺序（id 升序）保证分页稳定
const recentOrder = "created_at DESC, id ASC"

func (r *chatRepo) scoped(ctx context.Context, userID uint) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.ChatExchange{}).Where("user_id = ?", userID)
}

func (r *chatRepo) Create(ctx context.Context, userID uint, message, reply string, mood models.Mood) (*models.ChatExchange, error) {
	row := &models.ChatExchange{
		UserID:    userID,
		Message:   message,
		Reply:     reply,
		Mood:      mood.OrNeutral(),
		CreatedAt: r.now(),
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, wrap("create", err)
	}
	return row, nil
}

func (r *chatRepo) FindRecent(ctx context.Context, userID uint, limit int) ([]models.ChatExchange, error) {
	return r.FindPage(ctx, userID, 0, limit)
}

func (r *chatRepo) FindPage(ctx context.Context, userID uint, offset, limit int) ([]models.ChatExchange, error) {
	var list []models.ChatExchange
	if limit <= 0 {
		return list, nil
	}
	if offset < 0 {
		offset = 0
	}
	err := r.scoped(ctx, userID).
		Order(recentOrder).
		Offset(offset).
		Limit(limit).
		Find(&list).Error
	if err != nil {
		return nil, wrap("find", err)
	}
	return list, nil
}

func (r *chatRepo) FindAll(ctx context.Context, userID uint) ([]models.ChatExchange, error) {
	var list []models.ChatExchange
	if err := r.scoped(ctx, userID).Order(recentOrder).Find(&list).Error; err != nil {
		return nil, wrap("find all", err)
	}
	return list, nil
}

func (r *chatRepo) Count(ctx context.Context, userID uint) (int64, error) {
	var total int64
	if err := r.scoped(ctx, userID).Count(&total).Error; err != nil {
		return 0, wrap("count", err)
	}
	return total, nil
}

func (r *chatRepo) GroupByMood(ctx context.Context, userID uint) ([]models.MoodCount, error) {
	var rows []models.MoodCount
	err := r.scoped(ctx, userID).
		Select("mood, COUNT(*) AS count").
		Group("mood").
		Scan(&rows).Error
	if err != nil {
		return nil, wrap("group by mood", err)
	}
	return models.FoldMoodCounts(rows), nil
}

func (r *chatRepo) DeleteOne(ctx context.Context, userID, chatID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", chatID, userID).
		Delete(&models.ChatExchange{})
	if res.Error != nil {
		return false, wrap("delete", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *chatRepo) DeleteAll(ctx context.Context, userID uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.ChatExchange{})
	if res.Error != nil {
		return 0, wrap("delete all", res.Error)
	}
	return res.RowsAffected, nil
}
