package service

import (
	"context"
	"fmt"
	"strings"

	"moodjournal/config"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// messageGenerator eino ChatModel 中本服务用到的部分
type messageGenerator interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// ArkCompleter 通过 eino 调用火山方舟模型
type ArkCompleter struct {
	model messageGenerator
	cfg   config.CompletionConfig
}

// NewArkCompleter 创建方舟补全服务
func NewArkCompleter(ctx context.Context, cfg config.CompletionConfig) (*ArkCompleter, error) {
	if cfg.APIKey == "" || cfg.Model == "" {
		return nil, fmt.Errorf("ark 配置缺失：需要 api_key 与 model")
	}

	arkCfg := &ark.ChatModelConfig{
		BaseURL: cfg.BaseURL,
		Region:  cfg.Region,
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
	}
	if cfg.MaxTokens > 0 {
		maxTokens := cfg.MaxTokens
		arkCfg.MaxTokens = &maxTokens
	}
	if cfg.Temperature > 0 {
		temperature := float32(cfg.Temperature)
		arkCfg.Temperature = &temperature
	}

	chatModel, err := ark.NewChatModel(ctx, arkCfg)
	if err != nil {
		return nil, fmt.Errorf("创建 ark 模型失败: %w", err)
	}
	return &ArkCompleter{model: chatModel, cfg: cfg}, nil
}

func (c *ArkCompleter) Complete(ctx context.Context, turns []Turn) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout())
	defer cancel()

	messages := make([]*schema.Message, 0, len(turns)+1)
	if c.cfg.SystemPrompt != "" {
		messages = append(messages, schema.SystemMessage(c.cfg.SystemPrompt))
	}
	for _, t := range turns {
		if t.Role == RoleAssistant {
			messages = append(messages, schema.AssistantMessage(t.Content, nil))
		} else {
			messages = append(messages, schema.UserMessage(t.Content))
		}
	}

	msg, err := c.model.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCompletionUnavailable, err)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return "", fmt.Errorf("%w: empty reply", ErrCompletionUnavailable)
	}
	return msg.Content, nil
}
