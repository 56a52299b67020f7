package models

import (
	"sort"
	"time"
)

// Mood 情绪类别
type Mood string

const (
	MoodHappy   Mood = "happy"
	MoodSad     Mood = "sad"
	MoodNeutral Mood = "neutral"
)

// Moods 全部合法情绪取值
func Moods() []Mood {
	return []Mood{MoodHappy, MoodSad, MoodNeutral}
}

// Valid 是否为合法情绪取值
func (m Mood) Valid() bool {
	switch m {
	case MoodHappy, MoodSad, MoodNeutral:
		return true
	}
	return false
}

// OrNeutral 空值或非法值按 neutral 处理（与存储层默认值一致）
func (m Mood) OrNeutral() Mood {
	if m.Valid() {
		return m
	}
	return MoodNeutral
}

// ChatExchange 一次完整的对话记录（用户消息 + AI回复 + 情绪），创建后不可修改
type ChatExchange struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;index:idx_chat_user_created,priority:1;index:idx_chat_user_mood,priority:1"`
	Message   string    `json:"message" gorm:"type:text;not null"`
	Reply     string    `json:"reply" gorm:"type:text;not null"`
	Mood      Mood      `json:"mood" gorm:"size:16;not null;default:neutral;index:idx_chat_user_mood,priority:2"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_chat_user_created,priority:2"`
}

// TableName 设置表名
func (ChatExchange) TableName() string {
	return "chat_exchanges"
}

// MoodCount 按情绪分组的计数
type MoodCount struct {
	Mood  Mood  `json:"mood"`
	Count int64 `json:"count"`
}

// FoldMoodCounts 空值并入 neutral，丢弃零计数，按数量倒序（相同数量按名称）
func FoldMoodCounts(rows []MoodCount) []MoodCount {
	merged := make(map[Mood]int64, len(rows))
	for _, row := range rows {
		if row.Count <= 0 {
			continue
		}
		merged[row.Mood.OrNeutral()] += row.Count
	}
	out := make([]MoodCount, 0, len(merged))
	for mood, count := range merged {
		out = append(out, MoodCount{Mood: mood, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Mood < out[j].Mood
	})
	return out
}
