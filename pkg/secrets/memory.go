// Copyright 2026 fanjia1024
// In-memory secret store (for development only)

package secrets

import (
	"context"
	"sync"
)

// MemoryStore 内存 secret store，用于本地开发与测试
type MemoryStore struct {
	mu      sync.RWMutex
	secrets map[string]string
}

// NewMemoryStore 创建内存 secret store，initial 可为 nil
func NewMemoryStore(initial map[string]string) *MemoryStore {
	m := &MemoryStore{secrets: make(map[string]string, len(initial))}
	for k, v := range initial {
		m.secrets[k] = v
	}
	return m
}

func (m *MemoryStore) Get(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.secrets[key]
	if !ok {
		return "", notFound(key)
	}
	return value, nil
}

// Set 设置 secret 值
func (m *MemoryStore) Set(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.secrets[key] = value
}
