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
	"context"
	"time"

	"smart-mall/pkg/errors"
)

// ErrMiss 键不存在或已过期
var ErrMiss = errors.Wrap(errors.ErrNotFound, "cache miss")

// Store 缓存存储接口；值以 JSON 序列化
type Store interface {
	// Set 设置缓存，expiration<=0 表示不过期
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	// Get 读取缓存到 dest，未命中返回 ErrMiss
	Get(ctx context.Context, key string, dest any) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Close() error
}
