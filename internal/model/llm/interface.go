package llm

import (
	"context"
	"fmt"
)

// Client LLM 客户端接口
type Client interface {
	// Generate 生成文本
	Generate(prompt string, options GenerateOptions) (string, error)
	// GenerateWithContext 使用上下文生成文本
	GenerateWithContext(ctx context.Context, prompt string, options GenerateOptions) (string, error)
	// ChatWithContext 使用上下文聊天
	ChatWithContext(ctx context.Context, messages []Message, options GenerateOptions) (string, error)
	// Model 返回模型名称
	Model() string
	// Provider 返回提供商名称
	Provider() string
}

// GenerateOptions 生成选项
type GenerateOptions struct {
	Temperature float64  `json:"temperature"`
	MaxTokens   int      `json:"max_tokens"`
	TopP        float64  `json:"top_p"`
	Stop        []string `json:"stop"`
}

// Message 聊天消息；也用作会话历史的一轮
type Message struct {
	Role    string `json:"role"` // system, user, assistant
	Content string `json:"content"`
}

// 会话角色
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// APIError 提供商返回非成功状态时的错误，Body 保留原始响应
type APIError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API 返回错误(%d): %s", e.Provider, e.StatusCode, e.Body)
}

// NewClient 创建新的 LLM 客户端；baseURL 为空时各实现使用默认端点
func NewClient(provider, model, apiKey string, baseURL string) (Client, error) {
	switch provider {
	case "dashscope":
		return NewDashScopeClient(model, apiKey, baseURL)
	case "qwen":
		if baseURL == "" {
			baseURL = DashScopeCompatibleBaseURL
		}
		return NewOpenAIClientWithBaseURL("qwen", model, apiKey, baseURL)
	case "eino":
		return NewEinoClient(context.Background(), model, apiKey, baseURL)
	case "openai", "":
		return NewOpenAIClientWithBaseURL("openai", model, apiKey, baseURL)
	default:
		return nil, fmt.Errorf("不支持的 LLM provider: %s", provider)
	}
}
