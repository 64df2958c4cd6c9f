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

package cache

import (
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Config 缓存配置
type Config struct {
	Type     string // memory | redis
	Addr     string
	DB       int
	Password string
}

// NewCache 根据配置创建缓存
func NewCache(cfg Config) (Store, error) {
	switch cfg.Type {
	case "", "memory":
		return NewMemoryStore(), nil
	case "redis":
		addr := cfg.Addr
		if addr == "" {
			addr = "localhost:6379"
		}
		return NewRedisStore(redis.NewClient(&redis.Options{Addr: addr, Password: cfg.Password, DB: cfg.DB})), nil
	default:
		return nil, fmt.Errorf("不支持的缓存类型: %s", cfg.Type)
	}
}
