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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-mall/internal/storage/commerce"
	"smart-mall/pkg/errors"
)

func TestMemoryStore_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Set(ctx, "k1", "v1", 0))
	var v string
	require.NoError(t, s.Get(ctx, "k1", &v))
	assert.Equal(t, "v1", v)

	require.NoError(t, s.Delete(ctx, "k1"))
	err := s.Get(ctx, "k1", &v)
	assert.ErrorIs(t, err, ErrMiss)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	assert.NoError(t, s.Delete(ctx, "k1"))
}

func TestMemoryStore_Expiration(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	require.NoError(t, s.Set(ctx, "k", 42, time.Minute))
	ok, _ := s.Exists(ctx, "k")
	assert.True(t, ok)

	now = now.Add(time.Minute)
	ok, _ = s.Exists(ctx, "k")
	assert.False(t, ok)
	var n int
	assert.ErrorIs(t, s.Get(ctx, "k", &n), ErrMiss)
}

type countingShops struct {
	calls int
	shop  *commerce.Shop
}

func (c *countingShops) GetShop(context.Context, string) (*commerce.Shop, error) {
	c.calls++
	return c.shop, nil
}

func TestCatalog_CachesHits(t *testing.T) {
	ctx := context.Background()
	store := commerce.NewMemoryStore(&commerce.Seed{Products: []*commerce.Product{{ProductID: "P1", Title: "一加15", IsActive: true}}})
	shops := &countingShops{shop: &commerce.Shop{ShopID: "S1", ShopName: "旗舰店"}}
	c := NewCatalog(store, shops, NewMemoryStore(), time.Minute)

	for i := 0; i < 3; i++ {
		sh, err := c.GetShop(ctx, "S1")
		require.NoError(t, err)
		assert.Equal(t, "旗舰店", sh.ShopName)
	}
	assert.Equal(t, 1, shops.calls)

	p, err := c.GetProduct(ctx, "P1")
	require.NoError(t, err)
	assert.Equal(t, "一加15", p.Title)

	missing, err := c.GetProduct(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
