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
	"strings"

	"github.com/google/uuid"

	"smart-mall/internal/model/llm"
)

// Session 一次请求看到的会话快照
type Session struct {
	ID      string
	History []llm.Message // 本条消息之前的对话
	Created bool          // 本次请求新建了会话
}

// Manager 会话生命周期：首次使用时创建，reset 时清空
type Manager struct {
	store Store
}

// NewManager 创建 Manager
func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

// NewID 生成会话 ID
func NewID() string {
	return "session-" + uuid.New().String()
}

// Open 打开会话。id 为空时分配新 ID；reset 为真时先清空已有历史
func (m *Manager) Open(ctx context.Context, id string, reset bool) (*Session, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return &Session{ID: NewID(), Created: true}, nil
	}
	if reset {
		if err := m.store.Delete(ctx, id); err != nil {
			return nil, err
		}
		return &Session{ID: id, Created: true}, nil
	}
	msgs, err := m.store.Messages(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Session{ID: id, History: MessagesToLLM(msgs), Created: msgs == nil}, nil
}

// Record 追加本轮产生的对话
func (m *Manager) Record(ctx context.Context, id string, turns []llm.Message) error {
	if len(turns) == 0 {
		return nil
	}
	msgs := make([]Message, len(turns))
	for i, t := range turns {
		msgs[i] = FromLLM(t)
	}
	return m.store.Append(ctx, id, msgs...)
}

// History 返回会话全部历史
func (m *Manager) History(ctx context.Context, id string) ([]Message, error) {
	return m.store.Messages(ctx, id)
}

// Close 关闭底层存储
func (m *Manager) Close() error { return m.store.Close() }
