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

const (
	// DashScopeBaseURL 百炼原生 API 地址
	DashScopeBaseURL = "https://dashscope.aliyuncs.com/api/v1"
	// DashScopeCompatibleBaseURL 百炼 OpenAI 兼容模式地址
	DashScopeCompatibleBaseURL = "https://dashscope.aliyuncs.com/compatible-mode/v1"
)

// DashScopeClient 阿里云百炼 text-generation 原生接口客户端（result_format=text）
type DashScopeClient struct {
	model   string
	apiKey  string
	baseURL string
	client  *resty.Client
}

type dashScopeRequest struct {
	Model      string              `json:"model"`
	Input      dashScopeInput      `json:"input"`
	Parameters dashScopeParameters `json:"parameters"`
}

type dashScopeInput struct {
	Prompt   string    `json:"prompt,omitempty"`
	Messages []Message `json:"messages,omitempty"`
}

type dashScopeParameters struct {
	ResultFormat string   `json:"result_format"`
	Temperature  float64  `json:"temperature"`
	TopP         float64  `json:"top_p,omitempty"`
	MaxTokens    int      `json:"max_tokens,omitempty"`
	Stop         []string `json:"stop,omitempty"`
}

type dashScopeResponse struct {
	RequestID string `json:"request_id"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	Output    struct {
		Text         string `json:"text"`
		FinishReason string `json:"finish_reason"`
	} `json:"output"`
}

// NewDashScopeClient 创建百炼客户端；baseURL 为空时用 DASHSCOPE_BASE_URL 或默认地址
func NewDashScopeClient(model, apiKey, baseURL string) (*DashScopeClient, error) {
	if model == "" {
		model = "qwen-turbo"
	}
	if apiKey == "" {
		apiKey = os.Getenv("DASHSCOPE_API_KEY")
	}
	if baseURL == "" {
		baseURL = DashScopeBaseURL
		if envURL := os.Getenv("DASHSCOPE_BASE_URL"); envURL != "" {
			baseURL = envURL
		}
	}
	client := resty.New()
	client.SetTimeout(60 * time.Second)
	return &DashScopeClient{model: model, apiKey: apiKey, baseURL: baseURL, client: client}, nil
}

// Generate 生成文本
func (c *DashScopeClient) Generate(prompt string, options GenerateOptions) (string, error) {
	return c.GenerateWithContext(context.Background(), prompt, options)
}

// GenerateWithContext 以 prompt 形式调用 text-generation
func (c *DashScopeClient) GenerateWithContext(ctx context.Context, prompt string, options GenerateOptions) (string, error) {
	return c.call(ctx, dashScopeInput{Prompt: prompt}, options)
}

// ChatWithContext 以 messages 形式调用 text-generation
func (c *DashScopeClient) ChatWithContext(ctx context.Context, messages []Message, options GenerateOptions) (string, error) {
	return c.call(ctx, dashScopeInput{Messages: messages}, options)
}

func (c *DashScopeClient) call(ctx context.Context, input dashScopeInput, options GenerateOptions) (string, error) {
	req := dashScopeRequest{
		Model: c.model,
		Input: input,
		Parameters: dashScopeParameters{
			ResultFormat: "text",
			Temperature:  options.Temperature,
			TopP:         options.TopP,
			MaxTokens:    options.MaxTokens,
			Stop:         options.Stop,
		},
	}
	response, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", "Bearer "+c.apiKey).
		SetBody(req).
		Post(c.baseURL + "/services/aigc/text-generation/generation")
	if err != nil {
		return "", fmt.Errorf("调用 DashScope API failed: %w", err)
	}
	if response.StatusCode() != http.StatusOK {
		return "", &APIError{Provider: "dashscope", StatusCode: response.StatusCode(), Body: response.String()}
	}

	var result dashScopeResponse
	if err := json.Unmarshal(response.Body(), &result); err != nil {
		return "", fmt.Errorf("解析 DashScope 响应failed: %w", err)
	}
	// 部分网关在 200 响应体内返回错误码
	if result.Code != "" {
		return "", &APIError{Provider: "dashscope", StatusCode: response.StatusCode(), Body: response.String()}
	}
	return result.Output.Text, nil
}

// Model 返回模型名称
func (c *DashScopeClient) Model() string { return c.model }

// Provider 返回提供商名称
func (c *DashScopeClient) Provider() string { return "dashscope" }
