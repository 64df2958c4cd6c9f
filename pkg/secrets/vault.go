// Copyright 2026 fanjia1024
// HashiCorp Vault secret store

package secrets

import (
	"context"
	"fmt"
	"strings"

	vault "github.com/hashicorp/vault/api"

	"smart-mall/pkg/errors"
)

// VaultConfig Vault 配置
type VaultConfig struct {
	Address    string // 如 http://vault:8200，空时用 http://localhost:8200
	Token      string
	PathPrefix string // KV 挂载路径，空时用 "secret"
}

type vaultStore struct {
	logical    *vault.Logical
	pathPrefix string
}

// NewVaultStore 创建 Vault secret store，创建时做一次健康检查
func NewVaultStore(config VaultConfig) (Store, error) {
	cfg := vault.DefaultConfig()
	cfg.Address = config.Address
	if cfg.Address == "" {
		cfg.Address = "http://localhost:8200"
	}
	client, err := vault.NewClient(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "创建 vault client failed")
	}
	if config.Token != "" {
		client.SetToken(config.Token)
	}
	if _, err := client.Sys().Health(); err != nil {
		return nil, errors.Wrapf(errors.ErrUnavailable, "vault %s 不可达: %v", cfg.Address, err)
	}
	prefix := strings.Trim(config.PathPrefix, "/")
	if prefix == "" {
		prefix = "secret"
	}
	return &vaultStore{logical: client.Logical(), pathPrefix: prefix}, nil
}

// Get key 形如 "mall/jwt#key"：# 前为路径，# 后为字段名；省略字段时取 value 或唯一的字符串字段
func (v *vaultStore) Get(ctx context.Context, key string) (string, error) {
	path, field, _ := strings.Cut(key, "#")
	secret, err := v.logical.ReadWithContext(ctx, v.pathPrefix+"/"+path)
	if err != nil {
		return "", errors.Wrapf(err, "读取 vault secret %s failed", path)
	}
	if secret == nil {
		return "", notFound(key)
	}
	return pickField(secret.Data, field, key)
}

// pickField 从 KV v1/v2 的 data 中取字段
func pickField(data map[string]interface{}, field, key string) (string, error) {
	// KV v2 把值嵌在 data 下
	if inner, ok := data["data"].(map[string]interface{}); ok {
		data = inner
	}
	if field == "" {
		field = "value"
	}
	if val, ok := data[field].(string); ok {
		return val, nil
	}
	if field == "value" && len(data) == 1 {
		for _, val := range data {
			if str, ok := val.(string); ok {
				return str, nil
			}
		}
	}
	return "", notFound(key)
}

func notFound(key string) error {
	return fmt.Errorf("secret %s: %w", key, errors.ErrNotFound)
}
