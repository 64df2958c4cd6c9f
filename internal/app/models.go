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

package app

import (
	"context"
	"fmt"
	"strings"

	"smart-mall/internal/model/llm"
	"smart-mall/pkg/config"
	"smart-mall/pkg/secrets"
)

// NewLLMClientFromConfig 根据 model.defaults.llm 创建客户端与默认生成参数；
// api_key 支持 secret:<name> 引用，配置了 rate_limits.llm 时包一层限流
func NewLLMClientFromConfig(ctx context.Context, cfg *config.Config, store secrets.Store) (llm.Client, llm.GenerateOptions, error) {
	opts := llm.GenerateOptions{}
	if cfg == nil || cfg.Model.Defaults.LLM == "" {
		return nil, opts, fmt.Errorf("model.defaults.llm 未配置")
	}
	provider, modelKey, err := parseDefaultKey(cfg.Model.Defaults.LLM)
	if err != nil {
		return nil, opts, err
	}
	pc, ok := cfg.Model.LLM.Providers[provider]
	if !ok {
		return nil, opts, fmt.Errorf("LLM provider %q 未配置", provider)
	}
	mi, ok := pc.Models[modelKey]
	if !ok {
		return nil, opts, fmt.Errorf("LLM model %q 未在 provider %q 中配置", modelKey, provider)
	}
	apiKey, err := secrets.Resolve(ctx, store, pc.APIKey)
	if err != nil {
		return nil, opts, fmt.Errorf("解析 %s api_key: %w", provider, err)
	}
	if apiKey == "" || strings.HasPrefix(apiKey, "${") {
		return nil, opts, fmt.Errorf("LLM provider %q 的 api_key 未配置", provider)
	}
	name := mi.Name
	if name == "" {
		name = modelKey
	}
	client, err := llm.NewClient(provider, name, apiKey, pc.BaseURL)
	if err != nil {
		return nil, opts, err
	}

	opts.Temperature = cfg.Agent.Temperature
	if mi.Temperature > 0 {
		opts.Temperature = mi.Temperature
	}
	opts.MaxTokens = mi.MaxTokens

	if len(cfg.RateLimits.LLM) > 0 {
		limits := make(map[string]llm.LLMLimitConfig, len(cfg.RateLimits.LLM))
		for p, rl := range cfg.RateLimits.LLM {
			limits[p] = llm.LLMLimitConfig{
				TokensPerMinute:   rl.TokensPerMinute,
				RequestsPerMinute: rl.RequestsPerMinute,
				MaxConcurrent:     rl.MaxConcurrent,
			}
		}
		client = llm.NewRateLimitedClient(client, llm.NewLLMRateLimiter(limits, nil))
	}
	return client, opts, nil
}

func parseDefaultKey(key string) (provider, modelKey string, err error) {
	parts := strings.SplitN(key, ".", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("default key 格式应为 provider.model_key，如 dashscope.qwen_turbo，当前: %q", key)
	}
	return parts[0], parts[1], nil
}
