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

// Package builtin 电商客服的内置工具：订单、物流、售后、工单、补偿券与商品查询
package builtin

import (
	"fmt"
	"math/rand/v2"
	"time"

	"smart-mall/internal/storage/commerce"
)

// Policy 模拟业务策略，均为演示用约定，不代表真实退货规则或物流数据
type Policy struct {
	ReturnWindowDays    int     // 已签收订单可退天数（含第 N 天）
	TrackingSignedRatio float64 // 模拟轨迹末节点为已签收的概率
	CouponValidDays     int     // 补偿券有效天数
}

// DefaultPolicy 默认模拟策略
func DefaultPolicy() Policy {
	return Policy{ReturnWindowDays: 7, TrackingSignedRatio: 0.5, CouponValidDays: 30}
}

// Deps 工具依赖的存储与时钟
type Deps struct {
	Orders     commerce.OrderReader
	Products   commerce.ProductReader
	AfterSales commerce.AfterSaleStore
	Tickets    commerce.TicketStore
	Policy     Policy
	Now        func() time.Time // 为 nil 时使用 time.Now
}

// DepsFromStore 用聚合 Store 填充 Deps
func DepsFromStore(s commerce.Store, policy Policy) Deps {
	return Deps{Orders: s, Products: s, AfterSales: s, Tickets: s, Policy: policy}
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d Deps) policy() Policy {
	p := d.Policy
	def := DefaultPolicy()
	if p.ReturnWindowDays <= 0 {
		p.ReturnWindowDays = def.ReturnWindowDays
	}
	if p.TrackingSignedRatio < 0 || p.TrackingSignedRatio > 1 {
		p.TrackingSignedRatio = def.TrackingSignedRatio
	}
	if p.CouponValidDays <= 0 {
		p.CouponValidDays = def.CouponValidDays
	}
	return p
}

// serialID 生成 prefix + unix 秒 + 3 位随机数，如 AS1734940800123
func serialID(prefix string, now time.Time) string {
	return fmt.Sprintf("%s%d%d", prefix, now.Unix(), 100+rand.IntN(900))
}

const missingOrderNo = "缺少订单号，请先提供订单号（如 20251223xxxxxx）。"
