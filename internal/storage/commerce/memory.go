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
	"strings"
	"sync"
)

// MemoryStore 内存实现，用于本地演示与测试；返回值均为副本
type MemoryStore struct {
	mu         sync.RWMutex
	shops      map[string]*Shop
	products   []*Product // 按写入顺序，越靠后越新
	orders     map[string]*Order
	afterSales []*AfterSale
	tickets    []*Ticket
}

// NewMemoryStore 创建内存存储，seed 可为 nil
func NewMemoryStore(seed *Seed) *MemoryStore {
	s := &MemoryStore{
		shops:  make(map[string]*Shop),
		orders: make(map[string]*Order),
	}
	if seed != nil {
		for _, sh := range seed.Shops {
			s.PutShop(sh)
		}
		for _, p := range seed.Products {
			s.PutProduct(p)
		}
		for _, o := range seed.Orders {
			s.PutOrder(o)
		}
	}
	return s
}

// PutShop 写入或覆盖店铺
func (s *MemoryStore) PutShop(sh *Shop) {
	if sh == nil || sh.ShopID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *sh
	s.shops[sh.ShopID] = &cp
}

// PutProduct 写入或覆盖商品；覆盖时视为最新
func (s *MemoryStore) PutProduct(p *Product) {
	if p == nil || p.ProductID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, old := range s.products {
		if old.ProductID == p.ProductID {
			s.products = append(s.products[:i], s.products[i+1:]...)
			break
		}
	}
	s.products = append(s.products, copyProduct(p))
}

// PutOrder 写入或覆盖订单
func (s *MemoryStore) PutOrder(o *Order) {
	if o == nil || o.OrderNo == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.OrderNo] = copyOrder(o)
}

func (s *MemoryStore) GetOrder(ctx context.Context, orderNo string) (*Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[strings.TrimSpace(orderNo)]
	if !ok {
		return nil, nil
	}
	return copyOrder(o), nil
}

func (s *MemoryStore) GetProduct(ctx context.Context, productID string) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.ProductID == productID {
			return copyProduct(p), nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) SearchProducts(ctx context.Context, keyword string, limit int) ([]*Product, error) {
	needle := NormalizeKeyword(keyword)
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Product
	for i := len(s.products) - 1; i >= 0; i-- {
		p := s.products[i]
		if !p.IsActive || !strings.Contains(NormalizeKeyword(p.Title), needle) {
			continue
		}
		out = append(out, copyProduct(p))
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *MemoryStore) ListProducts(ctx context.Context, activeOnly bool) ([]*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Product, 0, len(s.products))
	for i := len(s.products) - 1; i >= 0; i-- {
		if activeOnly && !s.products[i].IsActive {
			continue
		}
		out = append(out, copyProduct(s.products[i]))
	}
	return out, nil
}

func (s *MemoryStore) GetShop(ctx context.Context, shopID string) (*Shop, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sh, ok := s.shops[shopID]
	if !ok {
		return nil, nil
	}
	cp := *sh
	return &cp, nil
}

func (s *MemoryStore) CreateAfterSale(ctx context.Context, as *AfterSale) error {
	if as == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *as
	s.afterSales = append(s.afterSales, &cp)
	return nil
}

func (s *MemoryStore) ListAfterSales(ctx context.Context, limit int) ([]*AfterSale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*AfterSale
	for i := len(s.afterSales) - 1; i >= 0; i-- {
		cp := *s.afterSales[i]
		out = append(out, &cp)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *MemoryStore) CreateTicket(ctx context.Context, t *Ticket) error {
	if t == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *t
	s.tickets = append(s.tickets, &cp)
	return nil
}

func (s *MemoryStore) ListTickets(ctx context.Context, limit int) ([]*Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Ticket
	for i := len(s.tickets) - 1; i >= 0; i-- {
		cp := *s.tickets[i]
		out = append(out, &cp)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// Close 内存实现无需释放资源
func (s *MemoryStore) Close() error { return nil }

func copyOrder(o *Order) *Order {
	cp := *o
	cp.Items = append([]OrderItem(nil), o.Items...)
	return &cp
}

func copyProduct(p *Product) *Product {
	cp := *p
	if p.Specs != nil {
		cp.Specs = make(map[string]any, len(p.Specs))
		for k, v := range p.Specs {
			cp.Specs[k] = v
		}
	}
	cp.CarouselImages = append([]string(nil), p.CarouselImages...)
	cp.DetailImages = append([]string(nil), p.DetailImages...)
	return &cp
}
