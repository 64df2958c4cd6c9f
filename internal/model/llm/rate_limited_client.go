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
	"time"
	"unicode/utf8"

	"smart-mall/pkg/metrics"
)

// RateLimitedClient 包装任意 LLM Client，在真实调用前后执行限流控制。
type RateLimitedClient struct {
	inner       Client
	rateLimiter *LLMRateLimiter
}

// NewRateLimitedClient 创建带限流的 LLM 客户端。rateLimiter 为 nil 时退化为直接调用。
func NewRateLimitedClient(inner Client, rateLimiter *LLMRateLimiter) *RateLimitedClient {
	return &RateLimitedClient{inner: inner, rateLimiter: rateLimiter}
}

// Generate 实现 Client.Generate。
func (c *RateLimitedClient) Generate(prompt string, options GenerateOptions) (string, error) {
	return c.GenerateWithContext(context.Background(), prompt, options)
}

// GenerateWithContext 按提示词估算 token 后限流，再调用底层 Client
func (c *RateLimitedClient) GenerateWithContext(ctx context.Context, prompt string, options GenerateOptions) (string, error) {
	release, err := c.wait(ctx, estimateTokens(options.MaxTokens, prompt))
	if err != nil {
		return "", err
	}
	defer release()
	return c.inner.GenerateWithContext(ctx, prompt, options)
}

// ChatWithContext 按全部消息估算 token 后限流，再调用底层 Client
func (c *RateLimitedClient) ChatWithContext(ctx context.Context, messages []Message, options GenerateOptions) (string, error) {
	texts := make([]string, len(messages))
	for i, m := range messages {
		texts[i] = m.Content
	}
	release, err := c.wait(ctx, estimateTokens(options.MaxTokens, texts...))
	if err != nil {
		return "", err
	}
	defer release()
	return c.inner.ChatWithContext(ctx, messages, options)
}

// wait 阻塞到限流放行；返回的 release 归还并发名额
func (c *RateLimitedClient) wait(ctx context.Context, tokens int) (func(), error) {
	if c.rateLimiter == nil {
		return func() {}, nil
	}
	provider := c.inner.Provider()
	start := time.Now()
	if err := c.rateLimiter.Wait(ctx, provider, tokens); err != nil {
		return nil, err
	}
	if waited := time.Since(start); waited > 100*time.Millisecond {
		metrics.RateLimitWaitSeconds.WithLabelValues("llm", provider).Observe(waited.Seconds())
	}
	return func() { c.rateLimiter.Release(provider) }, nil
}

// Model 返回底层 Client 的模型名称
func (c *RateLimitedClient) Model() string { return c.inner.Model() }

// Provider 返回底层 Client 的提供商名称
func (c *RateLimitedClient) Provider() string { return c.inner.Provider() }

// estimateTokens 按字符数粗估（中文约 1 字 1 token），加上 maxTokens 作为输出预留；至少为 1
func estimateTokens(maxTokens int, texts ...string) int {
	n := max(maxTokens, 0)
	for _, t := range texts {
		n += utf8.RuneCountInString(t)
	}
	return max(n, 1)
}
