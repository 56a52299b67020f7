package service

import (
	"context"

	"moodjournal/models"
)

// HistoryReader 读取用户最近的对话记录（时间倒序）
type HistoryReader interface {
	FindRecent(ctx context.Context, userID uint, limit int) ([]models.ChatExchange, error)
}

// ContextWindowBuilder 由历史记录和新消息组装发送给补全服务的对话轮次
type ContextWindowBuilder struct {
	history      HistoryReader
	historyLimit int
	maxTurns     int
}

// NewContextWindowBuilder historyLimit 为读取的历史条数，maxTurns 为最终保留的轮次上限
func NewContextWindowBuilder(history HistoryReader, historyLimit, maxTurns int) *ContextWindowBuilder {
	if historyLimit <= 0 {
		historyLimit = 10
	}
	if maxTurns <= 0 {
		maxTurns = 20
	}
	return &ContextWindowBuilder{history: history, historyLimit: historyLimit, maxTurns: maxTurns}
}

// Build 历史按时间正序展开为 user/assistant 轮次，末尾追加新消息，超出上限时丢弃最早的轮次
func (b *ContextWindowBuilder) Build(ctx context.Context, userID uint, newMessage string) ([]Turn, error) {
	recent, err := b.history.FindRecent(ctx, userID, b.historyLimit)
	if err != nil {
		return nil, persistence("find recent", err)
	}

	turns := make([]Turn, 0, len(recent)*2+1)
	for i := len(recent) - 1; i >= 0; i-- {
		turns = append(turns, Turn{Role: RoleUser, Content: recent[i].Message})
		if recent[i].Reply != "" {
			turns = append(turns, Turn{Role: RoleAssistant, Content: recent[i].Reply})
		}
	}
	turns = append(turns, Turn{Role: RoleUser, Content: newMessage})

	if len(turns) > b.maxTurns {
		turns = turns[len(turns)-b.maxTurns:]
	}
	return turns, nil
}
