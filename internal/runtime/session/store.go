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

package session

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Store 会话历史存储；不同会话之间的读写互不影响，同一会话并发写入不保证顺序
type Store interface {
	// Messages 返回会话的全部历史，会话不存在时返回 nil
	Messages(ctx context.Context, id string) ([]Message, error)
	Append(ctx context.Context, id string, msgs ...Message) error
	Delete(ctx context.Context, id string) error
	Close() error
}

// Config 会话存储配置
type Config struct {
	Type     string // memory | redis | sqlite
	Addr     string
	DB       int
	Password string
	Path     string
	TTL      time.Duration
}

// NewStore 按配置创建 Store
func NewStore(cfg Config) (Store, error) {
	switch cfg.Type {
	case "", "memory":
		return NewMemoryStore(), nil
	case "redis":
		return NewRedisStore(cfg.Addr, cfg.Password, cfg.DB, cfg.TTL), nil
	case "sqlite":
		return NewSQLiteStore(cfg.Path)
	default:
		return nil, fmt.Errorf("不支持的 session 存储类型: %s", cfg.Type)
	}
}

// MemoryStore 内存实现（map + mutex）；会话随进程存活，没有淘汰
type MemoryStore struct {
	mu   sync.RWMutex
	sess map[string][]Message
}

// NewMemoryStore 创建内存会话存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sess: make(map[string][]Message)}
}

func (m *MemoryStore) Messages(ctx context.Context, id string) ([]Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	list, ok := m.sess[id]
	if !ok {
		return nil, nil
	}
	return append([]Message(nil), list...), nil
}

func (m *MemoryStore) Append(ctx context.Context, id string, msgs ...Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess[id] = append(m.sess[id], msgs...)
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sess, id)
	return nil
}

func (m *MemoryStore) Close() error { return nil }

// Len 当前会话数
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sess)
}
