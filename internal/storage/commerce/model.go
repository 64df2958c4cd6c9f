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

// Package commerce 客服工具背后的订单、商品、店铺、售后单与工单存储
package commerce

import "time"

// 订单状态
const (
	StatusPaid       = "PAID"
	StatusShipped    = "SHIPPED"
	StatusDelivering = "DELIVERING"
	StatusDelivered  = "DELIVERED"
	StatusCanceled   = "CANCELED"
	StatusCancelled  = "CANCELLED" // 管理端历史数据使用的拼写
	StatusRefunding  = "REFUNDING"
	StatusRefunded   = "REFUNDED"
)

// Order 订单及其明细
type Order struct {
	ID          int64       `json:"-"`
	OrderNo     string      `json:"order_no"`
	Status      string      `json:"status"`
	Receiver    string      `json:"receiver"`
	PhoneTail   string      `json:"phone_tail"`
	TotalAmount float64     `json:"total_amount"`
	TrackingNo  string      `json:"tracking_no,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	Items       []OrderItem `json:"items"`
}

// OrderItem 订单明细行（下单时的商品快照）
type OrderItem struct {
	ProductID string  `json:"product_id"`
	ShopID    string  `json:"shop_id"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Qty       int     `json:"qty"`
}

// Product 商品
type Product struct {
	ProductID      string         `json:"product_id"`
	ShopID         string         `json:"shop_id"`
	Title          string         `json:"title"`
	Category       string         `json:"category"`
	Price          float64        `json:"price"`
	Description    string         `json:"description"`
	Specs          map[string]any `json:"specs"`
	ImageURL       string         `json:"image_url"`
	CarouselImages []string       `json:"carousel_images"`
	DetailImages   []string       `json:"detail_images,omitempty"`
	DetailedText   string         `json:"detailed_text,omitempty"`
	IsActive       bool           `json:"is_active"`
	CreatedAt      time.Time      `json:"-"`
}

// Shop 店铺及其客服人设
type Shop struct {
	ShopID       string `json:"shop_id"`
	ShopName     string `json:"shop_name"`
	Persona      string `json:"persona"`
	ReturnPolicy string `json:"return_policy"`
}

// AfterSale 售后单
type AfterSale struct {
	AfterSaleID string    `json:"after_sale_id"`
	OrderNo     string    `json:"order_id"`
	Type        string    `json:"type"`
	Reason      string    `json:"reason"`
	Status      string    `json:"status"`
	NextStep    string    `json:"next_step"`
	CreatedAt   time.Time `json:"created_at"`
}

// Ticket 工单（投诉/催件/异常升级）
type Ticket struct {
	TicketID  string    `json:"ticket_id"`
	Type      string    `json:"type"`
	Detail    string    `json:"detail"`
	OrderNo   string    `json:"order_id,omitempty"`
	Priority  string    `json:"priority"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
