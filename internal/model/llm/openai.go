// Copyright 2026 fanjia1024
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
)

// OpenAIClient OpenAI 兼容协议客户端（OpenAI、DashScope compatible-mode 等）
type OpenAIClient struct {
	provider string
	model    string
	apiKey   string
	baseURL  string
	client   *resty.Client
}

type chatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	TopP        float64   `json:"top_p,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Stop        []string  `json:"stop,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message      Message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
}

// NewOpenAIClient 创建 OpenAI 官方地址的客户端
func NewOpenAIClient(model, apiKey string) (*OpenAIClient, error) {
	return NewOpenAIClientWithBaseURL("openai", model, apiKey, "")
}

// NewOpenAIClientWithBaseURL 创建兼容协议客户端；baseURL 为空时用 OPENAI_BASE_URL 或官方地址
func NewOpenAIClientWithBaseURL(provider, model, apiKey, baseURL string) (*OpenAIClient, error) {
	if model == "" {
		model = "gpt-4o-mini"
	}
	if baseURL == "" {
		baseURL = os.Getenv("OPENAI_BASE_URL")
	}
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	// 不做自动重试：一次补全失败即由调用方降级处理
	client := resty.New().SetTimeout(60 * time.Second)
	return &OpenAIClient{provider: provider, model: model, apiKey: apiKey, baseURL: baseURL, client: client}, nil
}

// Generate 生成文本
func (c *OpenAIClient) Generate(prompt string, options GenerateOptions) (string, error) {
	return c.GenerateWithContext(context.Background(), prompt, options)
}

// GenerateWithContext 以单条 user 消息发起补全
func (c *OpenAIClient) GenerateWithContext(ctx context.Context, prompt string, options GenerateOptions) (string, error) {
	return c.ChatWithContext(ctx, []Message{{Role: RoleUser, Content: prompt}}, options)
}

// ChatWithContext 调用 /chat/completions，取第一个候选
func (c *OpenAIClient) ChatWithContext(ctx context.Context, messages []Message, options GenerateOptions) (string, error) {
	req := chatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: options.Temperature,
		TopP:        options.TopP,
		MaxTokens:   options.MaxTokens,
		Stop:        options.Stop,
	}
	response, err := c.client.R().
		SetContext(ctx).
		SetAuthToken(c.apiKey).
		SetBody(req).
		Post(c.baseURL + "/chat/completions")
	if err != nil {
		return "", fmt.Errorf("调用 %s chat/completions failed: %w", c.provider, err)
	}
	if response.StatusCode() != http.StatusOK {
		return "", &APIError{Provider: c.provider, StatusCode: response.StatusCode(), Body: response.String()}
	}

	var result chatCompletionResponse
	if err := json.Unmarshal(response.Body(), &result); err != nil {
		return "", fmt.Errorf("解析 %s 响应failed: %w", c.provider, err)
	}
	if len(result.Choices) == 0 {
		return "", &APIError{Provider: c.provider, StatusCode: response.StatusCode(), Body: response.String()}
	}
	return result.Choices[0].Message.Content, nil
}

// Model 返回模型名称
func (c *OpenAIClient) Model() string { return c.model }

// Provider 返回提供商名称
func (c *OpenAIClient) Provider() string { return c.provider }
