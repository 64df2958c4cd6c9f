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
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "mall:session:"

// RedisStore 每个会话一个 list，元素为 JSON 编码的 Message
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore 创建 Redis 会话存储；ttl<=0 表示不过期
func NewRedisStore(addr, password string, db int, ttl time.Duration) *RedisStore {
	if addr == "" {
		addr = "localhost:6379"
	}
	return NewRedisStoreWithClient(redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db}), ttl)
}

// NewRedisStoreWithClient 使用已有 client
func NewRedisStoreWithClient(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Messages(ctx context.Context, id string) ([]Message, error) {
	raw, err := s.client.LRange(ctx, redisKeyPrefix+id, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("读取会话 %s: %w", id, err)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]Message, 0, len(raw))
	for _, r := range raw {
		var m Message
		if err := json.Unmarshal([]byte(r), &m); err != nil {
			return nil, fmt.Errorf("解析会话 %s: %w", id, err)
		}
		out = append(out, m)
	}
	return out, nil
}

func (s *RedisStore) Append(ctx context.Context, id string, msgs ...Message) error {
	if len(msgs) == 0 {
		return nil
	}
	values := make([]any, 0, len(msgs))
	for _, m := range msgs {
		b, err := json.Marshal(m)
		if err != nil {
			return err
		}
		values = append(values, string(b))
	}
	key := redisKeyPrefix + id
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.RPush(ctx, key, values...)
		if s.ttl > 0 {
			p.Expire(ctx, key, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("写入会话 %s: %w", id, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, redisKeyPrefix+id).Err()
}

func (s *RedisStore) Close() error { return s.client.Close() }
