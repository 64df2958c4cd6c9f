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
	"time"

	"smart-mall/internal/agent"
	"smart-mall/internal/model/llm"
	"smart-mall/internal/runtime/session"
	"smart-mall/internal/storage/cache"
	"smart-mall/internal/storage/commerce"
	"smart-mall/internal/tool/builtin"
	"smart-mall/internal/tool/registry"
	"smart-mall/pkg/config"
	"smart-mall/pkg/log"
	"smart-mall/pkg/redaction"
	"smart-mall/pkg/secrets"
)

const defaultCatalogTTL = 5 * time.Minute

// Bootstrap 统一初始化：存储、工具、模型、代理与对话服务，供 cmd/api 复用
type Bootstrap struct {
	Config   *config.Config
	Logger   *log.Logger
	Secrets  secrets.Store
	Commerce commerce.Store
	Cache    cache.Store
	Sessions *session.Manager
	Tools    *registry.Registry
	Agent    *agent.Agent
	Chat     *ChatService
}

// catalogReader 商品与店铺走缓存，订单直接读存储
type catalogReader struct {
	*cache.Catalog
	commerce.OrderReader
}

// NewBootstrap 根据配置创建 Bootstrap；completer 为 nil 时按 model 配置创建模型客户端
func NewBootstrap(ctx context.Context, cfg *config.Config, completer llm.Completer) (*Bootstrap, error) {
	if cfg == nil {
		return nil, fmt.Errorf("配置不能为空")
	}
	logger, err := log.NewLogger(&log.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, File: cfg.Log.File})
	if err != nil {
		return nil, fmt.Errorf("初始化日志失败: %w", err)
	}

	secretStore, err := secrets.NewStore(secrets.Config{
		Provider: cfg.Secrets.Provider,
		Vault: secrets.VaultConfig{
			Address:    cfg.Secrets.Vault.Address,
			Token:      cfg.Secrets.Vault.Token,
			PathPrefix: cfg.Secrets.Vault.PathPrefix,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("初始化密钥存储失败: %w", err)
	}

	dsn, err := secrets.Resolve(ctx, secretStore, cfg.Storage.Commerce.DSN)
	if err != nil {
		return nil, fmt.Errorf("解析 commerce dsn 失败: %w", err)
	}
	store, err := commerce.NewStore(ctx, commerce.Config{
		Type:     cfg.Storage.Commerce.Type,
		DSN:      dsn,
		PoolSize: cfg.Storage.Commerce.PoolSize,
		SeedFile: cfg.Storage.Commerce.SeedFile,
	})
	if err != nil {
		return nil, fmt.Errorf("初始化业务存储失败: %w", err)
	}

	b := &Bootstrap{Config: cfg, Logger: logger, Secrets: secretStore, Commerce: store}
	if err := b.init(ctx, completer); err != nil {
		_ = b.Close()
		return nil, err
	}
	return b, nil
}

func (b *Bootstrap) init(ctx context.Context, completer llm.Completer) error {
	cfg := b.Config

	c, err := cache.NewCache(cache.Config{
		Type:     cfg.Storage.Cache.Type,
		Addr:     cfg.Storage.Cache.Addr,
		DB:       cfg.Storage.Cache.DB,
		Password: cfg.Storage.Cache.Password,
	})
	if err != nil {
		return fmt.Errorf("初始化缓存失败: %w", err)
	}
	b.Cache = c

	sessStore, err := session.NewStore(session.Config{
		Type:     cfg.Storage.Session.Type,
		Addr:     cfg.Storage.Session.Addr,
		DB:       cfg.Storage.Session.DB,
		Password: cfg.Storage.Session.Password,
		Path:     cfg.Storage.Session.Path,
		TTL:      config.ParseDuration(cfg.Storage.Session.TTL, 0),
	})
	if err != nil {
		return fmt.Errorf("初始化会话存储失败: %w", err)
	}
	b.Sessions = session.NewManager(sessStore)

	policy := builtin.DefaultPolicy()
	if cfg.Simulation.ReturnWindowDays > 0 {
		policy.ReturnWindowDays = cfg.Simulation.ReturnWindowDays
	}
	if r := cfg.Simulation.TrackingSignedRatio; r >= 0 && r <= 1 {
		policy.TrackingSignedRatio = r
	}
	tools, err := builtin.NewRegistry(builtin.DepsFromStore(b.Commerce, policy))
	if err != nil {
		return fmt.Errorf("初始化工具注册表失败: %w", err)
	}
	b.Tools = tools

	if completer == nil {
		client, opts, err := NewLLMClientFromConfig(ctx, cfg, b.Secrets)
		if err != nil {
			return err
		}
		completer = llm.NewCompleter(client, opts)
		b.Logger.Info("LLM 已就绪", "provider", client.Provider(), "model", client.Model())
	}

	agentOpts := []agent.AgentOption{
		agent.WithMaxIterations(cfg.Agent.MaxIterations),
		agent.WithHistoryWindow(cfg.Agent.HistoryWindow),
		agent.WithTimeout(config.ParseDuration(cfg.Agent.Timeout, 0)),
		agent.WithStop(cfg.Agent.Stop),
		agent.WithLogger(b.Logger.With("component", "agent")),
	}
	if cfg.Log.RedactPII {
		agentOpts = append(agentOpts, agent.WithRedactor(redaction.NewEngine(redaction.DefaultPolicy())))
	}
	b.Agent = agent.New(tools, completer, agentOpts...)

	ttl := config.ParseDuration(cfg.Storage.Cache.TTL, defaultCatalogTTL)
	reader := catalogReader{Catalog: cache.NewCatalog(b.Commerce, b.Commerce, b.Cache, ttl), OrderReader: b.Commerce}
	b.Chat = NewChatService(b.Agent, b.Sessions, reader, b.Logger.With("component", "chat"))
	return nil
}

// Close 释放存储连接
func (b *Bootstrap) Close() error {
	var first error
	if b.Sessions != nil {
		if err := b.Sessions.Close(); err != nil && first == nil {
			first = err
		}
	}
	if b.Cache != nil {
		if err := b.Cache.Close(); err != nil && first == nil {
			first = err
		}
	}
	if b.Commerce != nil {
		if err := b.Commerce.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
