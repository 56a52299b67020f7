package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"moodjournal/config"
	"moodjournal/logger"
	"moodjournal/models"
	"moodjournal/repository"
)

// SendMessageRequest 一次发送消息请求
type SendMessageRequest struct {
	UserID  uint
	Message string
}

// SendMessageResult 发送成功后的结果
type SendMessageResult struct {
	Reply  string      `json:"reply"`
	Mood   models.Mood `json:"mood"`
	ChatID uint        `json:"chat_id"`
}

// ConversationService 处理一次"消息 -> 回复"的完整流程，以及记录删除
type ConversationService struct {
	repo       repository.ChatRepository
	window     *ContextWindowBuilder
	completer  Completer
	classifier *MoodClassifier
	log        *logger.Logger

	maxMessageLength int
	maxReplyLength   int
}

// NewConversationService 创建对话服务，log 为 nil 时不输出日志
func NewConversationService(repo repository.ChatRepository, completer Completer, classifier *MoodClassifier, cfg config.ChatConfig, log *logger.Logger) *ConversationService {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.MaxMessageLength <= 0 {
		cfg.MaxMessageLength = 2000
	}
	if cfg.MaxReplyLength <= 0 {
		cfg.MaxReplyLength = 5000
	}
	return &ConversationService{
		repo:             repo,
		window:           NewContextWindowBuilder(repo, cfg.HistoryLimit, cfg.MaxTurns),
		completer:        completer,
		classifier:       classifier,
		log:              log.With("component", "conversation"),
		maxMessageLength: cfg.MaxMessageLength,
		maxReplyLength:   cfg.MaxReplyLength,
	}
}

// SendMessage 校验、组装上下文、调用补全、分类情绪、持久化。任一步失败即结束，不重试；
// 补全失败时不写入任何记录
func (s *ConversationService) SendMessage(ctx context.Context, req SendMessageRequest) (*SendMessageResult, error) {
	if req.UserID == 0 {
		return nil, invalid("user_id", "must be a positive identifier")
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, invalid("message", "must not be empty")
	}
	if utf8.RuneCountInString(message) > s.maxMessageLength {
		return nil, invalid("message", fmt.Sprintf("must be at most %d characters", s.maxMessageLength))
	}

	turns, err := s.window.Build(ctx, req.UserID, message)
	if err != nil {
		s.log.Error("build context failed", "user_id", req.UserID, "error", err)
		return nil, err
	}

	reply, err := s.completer.Complete(ctx, turns)
	if err == nil && strings.TrimSpace(reply) == "" {
		err = ErrCompletionUnavailable
	}
	if err != nil {
		s.log.Warn("completion failed", "user_id", req.UserID, "turns", len(turns), "error", err)
		return nil, &CompletionError{Err: err}
	}
	reply = truncateRunes(reply, s.maxReplyLength)

	mood := s.classifier.Classify(message)

	chat, err := s.repo.Create(ctx, req.UserID, message, reply, mood)
	if err != nil {
		s.log.Error("persist chat failed", "user_id", req.UserID, "error", err)
		return nil, persistence("create", err)
	}

	s.log.Info("chat exchange saved",
		"user_id", req.UserID,
		"chat_id", chat.ID,
		"mood", chat.Mood,
		"turns", len(turns),
		"message_len", utf8.RuneCountInString(message),
		"reply_len", utf8.RuneCountInString(reply),
	)
	return &SendMessageResult{Reply: chat.Reply, Mood: chat.Mood, ChatID: chat.ID}, nil
}

// Analyze 对任意文本做带置信度的情绪分析，不读写存储
func (s *ConversationService) Analyze(text string) (MoodDetail, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return MoodDetail{}, invalid("text", "must not be empty")
	}
	return s.classifier.ClassifyDetailed(text), nil
}

// DeleteChat 删除当前用户的一条记录，不存在或不属于该用户时返回 ErrNotFound
func (s *ConversationService) DeleteChat(ctx context.Context, userID, chatID uint) error {
	if userID == 0 {
		return invalid("user_id", "must be a positive identifier")
	}
	if chatID == 0 {
		return invalid("chat_id", "must be a positive identifier")
	}
	deleted, err := s.repo.DeleteOne(ctx, userID, chatID)
	if err != nil {
		return persistence("delete", err)
	}
	if !deleted {
		return ErrNotFound
	}
	s.log.Info("chat deleted", "user_id", userID, "chat_id", chatID)
	return nil
}

// DeleteAllHistory 删除当前用户全部记录，返回删除条数
func (s *ConversationService) DeleteAllHistory(ctx context.Context, userID uint) (int64, error) {
	if userID == 0 {
		return 0, invalid("user_id", "must be a positive identifier")
	}
	n, err := s.repo.DeleteAll(ctx, userID)
	if err != nil {
		return 0, persistence("delete all", err)
	}
	s.log.Info("history cleared", "user_id", userID, "deleted", n)
	return n, nil
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
