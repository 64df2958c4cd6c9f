// Copyright 2026 fanjia1024
// Environment variable based secret store

package secrets

import (
	"context"
	"fmt"
	"os"
	"strings"

	"smart-mall/pkg/errors"
)

type envStore struct{}

// NewEnvStore 创建环境变量 secret store；key 会转为大写，"." 与 "-" 替换为 "_"
func NewEnvStore() Store {
	return &envStore{}
}

func (e *envStore) Get(ctx context.Context, key string) (string, error) {
	name := strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(key))
	value := os.Getenv(name)
	if value == "" {
		return "", fmt.Errorf("环境变量 %s 未设置: %w", name, errors.ErrNotFound)
	}
	return value, nil
}
