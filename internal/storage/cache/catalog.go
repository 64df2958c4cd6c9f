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

	"smart-mall/internal/storage/commerce"
)

// Catalog 为商品与店铺读取加一层缓存；只缓存命中的记录，订单等可变数据不经过这里
type Catalog struct {
	products commerce.ProductReader
	shops    commerce.ShopReader
	cache    Store
	ttl      time.Duration
}

// NewCatalog 创建带缓存的商品/店铺读取器
func NewCatalog(products commerce.ProductReader, shops commerce.ShopReader, cache Store, ttl time.Duration) *Catalog {
	return &Catalog{products: products, shops: shops, cache: cache, ttl: ttl}
}

// GetProduct 先查缓存，未命中时回源；缓存故障不影响回源
func (c *Catalog) GetProduct(ctx context.Context, productID string) (*commerce.Product, error) {
	key := "product:" + productID
	var p commerce.Product
	if err := c.cache.Get(ctx, key, &p); err == nil {
		return &p, nil
	}
	found, err := c.products.GetProduct(ctx, productID)
	if err != nil || found == nil {
		return found, err
	}
	_ = c.cache.Set(ctx, key, found, c.ttl)
	return found, nil
}

// GetShop 同 GetProduct
func (c *Catalog) GetShop(ctx context.Context, shopID string) (*commerce.Shop, error) {
	key := "shop:" + shopID
	var s commerce.Shop
	if err := c.cache.Get(ctx, key, &s); err == nil {
		return &s, nil
	}
	found, err := c.shops.GetShop(ctx, shopID)
	if err != nil || found == nil {
		return found, err
	}
	_ = c.cache.Set(ctx, key, found, c.ttl)
	return found, nil
}
