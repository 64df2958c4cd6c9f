package llm

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// EinoClient 基于 eino ChatModel 的客户端，复用 eino-ext 的 OpenAI 兼容实现
type EinoClient struct {
	model     string
	chatModel model.BaseChatModel
}

// NewEinoClient 创建 eino-ext OpenAI ChatModel 并包装为 Client
func NewEinoClient(ctx context.Context, modelName, apiKey, baseURL string) (*EinoClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("eino provider api_key not configured")
	}
	cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		Model:   modelName,
		APIKey:  apiKey,
		BaseURL: baseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("创建 OpenAI ChatModel failed: %w", err)
	}
	return NewEinoClientWithModel(modelName, cm), nil
}

// NewEinoClientWithModel 包装已有的 ChatModel，便于测试注入
func NewEinoClientWithModel(modelName string, cm model.BaseChatModel) *EinoClient {
	return &EinoClient{model: modelName, chatModel: cm}
}

// Generate 生成文本
func (c *EinoClient) Generate(prompt string, options GenerateOptions) (string, error) {
	return c.GenerateWithContext(context.Background(), prompt, options)
}

// GenerateWithContext 使用上下文生成文本
func (c *EinoClient) GenerateWithContext(ctx context.Context, prompt string, options GenerateOptions) (string, error) {
	return c.ChatWithContext(ctx, []Message{{Role: RoleUser, Content: prompt}}, options)
}

// ChatWithContext 转换为 eino schema.Message 后调用 ChatModel.Generate
func (c *EinoClient) ChatWithContext(ctx context.Context, messages []Message, options GenerateOptions) (string, error) {
	in := make([]*schema.Message, 0, len(messages))
	for _, m := range messages {
		in = append(in, &schema.Message{Role: schema.RoleType(m.Role), Content: m.Content})
	}
	opts := []model.Option{model.WithTemperature(float32(options.Temperature))}
	if options.MaxTokens > 0 {
		opts = append(opts, model.WithMaxTokens(options.MaxTokens))
	}
	if options.TopP > 0 {
		opts = append(opts, model.WithTopP(float32(options.TopP)))
	}
	if len(options.Stop) > 0 {
		opts = append(opts, model.WithStop(options.Stop))
	}
	out, err := c.chatModel.Generate(ctx, in, opts...)
	if err != nil {
		return "", err
	}
	if out == nil {
		return "", fmt.Errorf("eino ChatModel 没有返回结果")
	}
	return out.Content, nil
}

// Model 返回模型名称
func (c *EinoClient) Model() string { return c.model }

// Provider 返回提供商名称
func (c *EinoClient) Provider() string { return "eino" }
