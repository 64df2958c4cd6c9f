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

package builtin

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"smart-mall/internal/storage/commerce"
	"smart-mall/internal/tool"
	"smart-mall/pkg/errors"
)

// TicketResult create_ticket 的结果
type TicketResult struct {
	OK      bool             `json:"ok"`
	Message string           `json:"message"`
	Ticket  *commerce.Ticket `json:"ticket"`
}

func (r *TicketResult) Succeeded() bool { return r.OK }

// CreateTicketTool 实现 create_ticket
type CreateTicketTool struct {
	deps Deps
}

// NewCreateTicketTool 创建 create_ticket 工具
func NewCreateTicketTool(deps Deps) *CreateTicketTool { return &CreateTicketTool{deps: deps} }

func (t *CreateTicketTool) Name() tool.Name { return tool.CreateTicket }

func (t *CreateTicketTool) Description() string {
	return "创建工单（投诉/催件/异常升级）。输入JSON键：ticket_type（必填），detail（必填），order_id/priority（可选，priority 默认 P2）。返回工单号。"
}

func (t *CreateTicketTool) Schema() tool.Schema {
	return tool.Schema{
		Type: "object",
		Properties: map[string]tool.SchemaProperty{
			"ticket_type": {Type: "string", Description: "工单类型，如 投诉、催件、异常升级"},
			"detail":      {Type: "string", Description: "问题描述"},
			"order_id":    {Type: "string", Description: "关联订单号"},
			"priority":    {Type: "string", Description: "优先级 P0-P3"},
		},
		Required: []string{"ticket_type", "detail"},
	}
}

func (t *CreateTicketTool) Execute(ctx context.Context, args tool.Args) (tool.Result, error) {
	typ, detail := args.String("ticket_type"), args.String("detail")
	var missing []string
	if typ == "" {
		missing = append(missing, "ticket_type")
	}
	if detail == "" {
		missing = append(missing, "detail")
	}
	if len(missing) > 0 {
		return &TicketResult{Message: fmt.Sprintf("缺少必填字段：%s", strings.Join(missing, "、"))}, nil
	}
	now := t.deps.now()
	tk := &commerce.Ticket{
		TicketID:  serialID("TK", now),
		Type:      typ,
		Detail:    detail,
		OrderNo:   args.String("order_id"),
		Priority:  args.StringOr("priority", "P2"),
		Status:    "处理中",
		CreatedAt: now,
	}
	if err := t.deps.Tickets.CreateTicket(ctx, tk); err != nil {
		return nil, errors.Wrap(err, "保存工单")
	}
	return &TicketResult{OK: true, Message: "工单已创建（模拟）", Ticket: tk}, nil
}

// Coupon 补偿券
type Coupon struct {
	Code      string `json:"coupon_code"`
	Receiver  string `json:"receiver"`
	Amount    int    `json:"amount"`
	Reason    string `json:"reason"`
	ValidDays int    `json:"valid_days"`
}

// CouponResult issue_coupon 的结果
type CouponResult struct {
	OK      bool    `json:"ok"`
	Message string  `json:"message"`
	Coupon  *Coupon `json:"coupon"`
}

func (r *CouponResult) Succeeded() bool { return r.OK }

// IssueCouponTool 实现 issue_coupon；券码为模拟数据，不落库
type IssueCouponTool struct {
	deps Deps
}

// NewIssueCouponTool 创建 issue_coupon 工具
func NewIssueCouponTool(deps Deps) *IssueCouponTool { return &IssueCouponTool{deps: deps} }

func (t *IssueCouponTool) Name() tool.Name { return tool.IssueCoupon }

func (t *IssueCouponTool) Description() string {
	return "发放补偿券。输入JSON键：receiver（必填），amount/reason（可选，amount 默认 10 元）。返回券码。"
}

func (t *IssueCouponTool) Schema() tool.Schema {
	return tool.Schema{
		Type: "object",
		Properties: map[string]tool.SchemaProperty{
			"receiver": {Type: "string", Description: "领取人（收件人姓名）"},
			"amount":   {Type: "integer", Description: "面额（元）"},
			"reason":   {Type: "string", Description: "补偿原因"},
		},
		Required: []string{"receiver"},
	}
}

func (t *IssueCouponTool) Execute(_ context.Context, args tool.Args) (tool.Result, error) {
	receiver := args.String("receiver")
	if receiver == "" {
		return &CouponResult{Message: "缺少必填字段：receiver"}, nil
	}
	amount := args.Int("amount", 10)
	if amount <= 0 {
		amount = 10
	}
	return &CouponResult{
		OK:      true,
		Message: "已发放补偿券（模拟）",
		Coupon: &Coupon{
			Code:      fmt.Sprintf("CP%d", 100000+rand.IntN(900000)),
			Receiver:  receiver,
			Amount:    amount,
			Reason:    args.StringOr("reason", "体验补偿"),
			ValidDays: t.deps.policy().CouponValidDays,
		},
	}, nil
}
