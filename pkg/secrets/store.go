// Copyright 2026 fanjia1024
// Secret management abstraction

package secrets

import (
	"context"
	"fmt"
	"strings"
)

// Store Secret 存储接口（只读；写入由运维通过 Vault/环境变量完成）
type Store interface {
	// Get 获取 secret 值
	Get(ctx context.Context, key string) (string, error)
}

// Config Secret Store 配置
type Config struct {
	Provider string      // env | memory | vault
	Vault    VaultConfig // provider=vault 时使用
}

// RefPrefix 配置值以此前缀开头时表示引用 Store 中的 secret，如 "secret:dashscope_api_key"
const RefPrefix = "secret:"

// NewStore 创建 Secret Store
func NewStore(config Config) (Store, error) {
	switch config.Provider {
	case "", "env":
		return NewEnvStore(), nil
	case "memory":
		return NewMemoryStore(nil), nil
	case "vault":
		return NewVaultStore(config.Vault)
	default:
		return nil, fmt.Errorf("unsupported secret provider: %s", config.Provider)
	}
}

// Resolve 若 value 为 secret 引用则从 store 读取，否则原样返回
func Resolve(ctx context.Context, store Store, value string) (string, error) {
	if !strings.HasPrefix(value, RefPrefix) {
		return value, nil
	}
	if store == nil {
		return "", fmt.Errorf("secret store not configured for %q", value)
	}
	return store.Get(ctx, strings.TrimPrefix(value, RefPrefix))
}
