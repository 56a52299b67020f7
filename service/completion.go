package service

import (
	"context"
	"fmt"
	"strings"

	"moodjournal/config"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Role 对话轮次角色
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn 发送给补全服务的一轮对话
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Completer 补全服务：按顺序传入对话轮次，返回回复文本。
// 不可用时返回包装了 ErrCompletionUnavailable 的错误
type Completer interface {
	Complete(ctx context.Context, turns []Turn) (string, error)
}

// NewCompleter 根据配置创建补全服务
func NewCompleter(ctx context.Context, cfg config.CompletionConfig) (Completer, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "openai", "groq":
		return NewOpenAICompleter(cfg), nil
	case "ark":
		return NewArkCompleter(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported completion provider: %s", cfg.Provider)
	}
}

// OpenAICompleter 调用 OpenAI 兼容的 chat/completions 接口（默认指向 Groq）
type OpenAICompleter struct {
	client *openai.Client
	cfg    config.CompletionConfig
}

// NewOpenAICompleter 创建客户端。SDK 内置重试关闭，失败直接返回给调用方
func NewOpenAICompleter(cfg config.CompletionConfig) *OpenAICompleter {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(cfg.Timeout()),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := openai.NewClient(opts...)
	return &OpenAICompleter{client: &client, cfg: cfg}
}

func (c *OpenAICompleter) Complete(ctx context.Context, turns []Turn) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(turns)+1)
	if c.cfg.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(c.cfg.SystemPrompt))
	}
	for _, t := range turns {
		if t.Role == RoleAssistant {
			messages = append(messages, openai.AssistantMessage(t.Content))
		} else {
			messages = append(messages, openai.UserMessage(t.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.cfg.Model),
		Messages: messages,
	}
	if c.cfg.Temperature > 0 {
		params.Temperature = openai.Float(c.cfg.Temperature)
	}
	if c.cfg.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(c.cfg.MaxTokens))
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCompletionUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", ErrCompletionUnavailable)
	}
	reply := resp.Choices[0].Message.Content
	if strings.TrimSpace(reply) == "" {
		return "", fmt.Errorf("%w: empty reply", ErrCompletionUnavailable)
	}
	return reply, nil
}
