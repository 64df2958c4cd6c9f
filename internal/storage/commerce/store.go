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

package commerce

import (
	"context"
	"fmt"
	"strings"
	"unicode"
)

// 记录不存在时各 Get 方法返回 (nil, nil)；其余 error 均视为基础设施故障

// OrderReader 按订单号读取订单
type OrderReader interface {
	GetOrder(ctx context.Context, orderNo string) (*Order, error)
}

// ProductReader 读取商品
type ProductReader interface {
	GetProduct(ctx context.Context, productID string) (*Product, error)
	// SearchProducts 在上架商品中按标题做忽略空白与大小写的子串匹配，新商品在前
	SearchProducts(ctx context.Context, keyword string, limit int) ([]*Product, error)
	ListProducts(ctx context.Context, activeOnly bool) ([]*Product, error)
}

// ShopReader 读取店铺
type ShopReader interface {
	GetShop(ctx context.Context, shopID string) (*Shop, error)
}

// AfterSaleStore 售后单存储
type AfterSaleStore interface {
	CreateAfterSale(ctx context.Context, as *AfterSale) error
	ListAfterSales(ctx context.Context, limit int) ([]*AfterSale, error)
}

// TicketStore 工单存储
type TicketStore interface {
	CreateTicket(ctx context.Context, t *Ticket) error
	ListTickets(ctx context.Context, limit int) ([]*Ticket, error)
}

// Store 聚合接口
type Store interface {
	OrderReader
	ProductReader
	ShopReader
	AfterSaleStore
	TicketStore
	Close() error
}

// Config 存储配置
type Config struct {
	Type     string // memory | postgres
	DSN      string
	PoolSize int
	SeedFile string
}

// NewStore 按配置创建 Store；seed_file 非空时写入种子数据
func NewStore(ctx context.Context, cfg Config) (Store, error) {
	var seed *Seed
	if cfg.SeedFile != "" {
		s, err := LoadSeedFile(cfg.SeedFile)
		if err != nil {
			return nil, err
		}
		seed = s
	}
	switch cfg.Type {
	case "", "memory":
		return NewMemoryStore(seed), nil
	case "postgres":
		if cfg.DSN == "" {
			return nil, fmt.Errorf("storage.commerce.dsn 不能为空")
		}
		s, err := NewPostgresStore(ctx, cfg.DSN, cfg.PoolSize)
		if err != nil {
			return nil, err
		}
		if err := s.Migrate(ctx); err != nil {
			s.Close()
			return nil, err
		}
		if seed != nil {
			if err := s.Seed(ctx, seed); err != nil {
				s.Close()
				return nil, err
			}
		}
		return s, nil
	default:
		return nil, fmt.Errorf("不支持的 commerce 存储类型: %s", cfg.Type)
	}
}

// NormalizeKeyword 去除全部空白并转小写，用于标题模糊匹配
func NormalizeKeyword(s string) string {
	return strings.ToLower(strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s))
}
