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
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-mall/internal/model/llm"
)

func testStoreContract(t *testing.T, s Store) {
	ctx := context.Background()

	msgs, err := s.Messages(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, msgs)

	require.NoError(t, s.Append(ctx, "s1", Message{Role: "user", Content: "你好"}, Message{Role: "assistant", Content: "您好"}))
	require.NoError(t, s.Append(ctx, "s1", Message{Role: "user", Content: "查订单"}))
	require.NoError(t, s.Append(ctx, "s2", Message{Role: "user", Content: "别的会话"}))

	msgs, err = s.Messages(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "你好", msgs[0].Content)
	assert.Equal(t, "assistant", msgs[1].Role)
	assert.Equal(t, "查订单", msgs[2].Content)

	require.NoError(t, s.Delete(ctx, "s1"))
	msgs, err = s.Messages(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, msgs)

	msgs, err = s.Messages(ctx, "s2")
	require.NoError(t, err)
	assert.Len(t, msgs, 1)
}

func TestMemoryStore(t *testing.T) {
	testStoreContract(t, NewMemoryStore())
}

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	defer s.Close()
	testStoreContract(t, s)
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("MALL_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("MALL_TEST_REDIS_ADDR 未设置")
	}
	s := NewRedisStore(addr, "", 0, time.Minute)
	defer s.Close()
	ctx := context.Background()
	for _, id := range []string{"missing", "s1", "s2"} {
		require.NoError(t, s.Delete(ctx, id))
	}
	testStoreContract(t, s)
}

func TestMemoryStore_ConcurrentSessions(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := "s" + string(rune('a'+i))
			for j := 0; j < 10; j++ {
				_ = s.Append(ctx, id, Message{Role: "user", Content: "m"})
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 20, s.Len())
	msgs, _ := s.Messages(ctx, "sa")
	assert.Len(t, msgs, 10)
}

func TestManager_OpenAndRecord(t *testing.T) {
	m := NewManager(NewMemoryStore())
	ctx := context.Background()

	sess, err := m.Open(ctx, "", false)
	require.NoError(t, err)
	assert.True(t, sess.Created)
	assert.True(t, strings.HasPrefix(sess.ID, "session-"))
	assert.Empty(t, sess.History)

	require.NoError(t, m.Record(ctx, sess.ID, []llm.Message{
		{Role: llm.RoleUser, Content: "我的快递到哪了"},
		{Role: llm.RoleAssistant, Content: "请提供订单号"},
	}))

	again, err := m.Open(ctx, sess.ID, false)
	require.NoError(t, err)
	assert.False(t, again.Created)
	assert.Equal(t, []llm.Message{
		{Role: llm.RoleUser, Content: "我的快递到哪了"},
		{Role: llm.RoleAssistant, Content: "请提供订单号"},
	}, again.History)

	reset, err := m.Open(ctx, sess.ID, true)
	require.NoError(t, err)
	assert.Empty(t, reset.History)
	hist, err := m.History(ctx, sess.ID)
	require.NoError(t, err)
	assert.Empty(t, hist)
}

func TestNewStore(t *testing.T) {
	s, err := NewStore(Config{})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	_, err = NewStore(Config{Type: "mongo"})
	assert.Error(t, err)
}
