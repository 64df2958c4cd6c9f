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
	"strings"

	"smart-mall/internal/storage/commerce"
	"smart-mall/internal/tool"
	"smart-mall/pkg/errors"
)

// OrderResult lookup_order 的结果
type OrderResult struct {
	OK      bool            `json:"ok"`
	Message string          `json:"message"`
	Order   *commerce.Order `json:"order"`
}

func (r *OrderResult) Succeeded() bool { return r.OK }

// LookupOrderTool 实现 lookup_order；传入 phone_tail/receiver 时须与订单一致
type LookupOrderTool struct {
	deps Deps
}

// NewLookupOrderTool 创建 lookup_order 工具
func NewLookupOrderTool(deps Deps) *LookupOrderTool { return &LookupOrderTool{deps: deps} }

func (t *LookupOrderTool) Name() tool.Name { return tool.LookupOrder }

func (t *LookupOrderTool) Description() string {
	return "查询订单。输入JSON键：order_id（必填，订单号），phone_tail/receiver（可选，用于身份校验）。返回订单信息或失败原因。"
}

func (t *LookupOrderTool) Schema() tool.Schema {
	return tool.Schema{
		Type: "object",
		Properties: map[string]tool.SchemaProperty{
			"order_id":   {Type: "string", Description: "订单号"},
			"phone_tail": {Type: "string", Description: "收件手机号尾号"},
			"receiver":   {Type: "string", Description: "收件人姓名"},
		},
		Required: []string{"order_id"},
	}
}

func (t *LookupOrderTool) Execute(ctx context.Context, args tool.Args) (tool.Result, error) {
	orderNo := args.String("order_id")
	if orderNo == "" {
		return &OrderResult{OK: false, Message: missingOrderNo}, nil
	}
	o, err := t.deps.Orders.GetOrder(ctx, orderNo)
	if err != nil {
		return nil, errors.Wrapf(err, "查询订单 %s", orderNo)
	}
	if o == nil {
		return &OrderResult{OK: false, Message: fmt.Sprintf("未找到订单 %s", orderNo)}, nil
	}
	if tail := args.String("phone_tail"); tail != "" && strings.TrimSpace(o.PhoneTail) != tail {
		return &OrderResult{OK: false, Message: "手机号尾号不匹配，无法查询该订单。"}, nil
	}
	if receiver := args.String("receiver"); receiver != "" && strings.TrimSpace(o.Receiver) != receiver {
		return &OrderResult{OK: false, Message: "收件人姓名不匹配，无法查询该订单。"}, nil
	}
	return &OrderResult{OK: true, Message: "查询成功", Order: o}, nil
}

// EligibilityResult check_return_eligibility 的结果
type EligibilityResult struct {
	OK       bool   `json:"ok"`
	Eligible bool   `json:"eligible"`
	Reason   string `json:"reason"`
}

func (r *EligibilityResult) Succeeded() bool { return r.OK }

// ReturnEligibilityTool 实现 check_return_eligibility（模拟规则）
type ReturnEligibilityTool struct {
	deps Deps
}

// NewReturnEligibilityTool 创建 check_return_eligibility 工具
func NewReturnEligibilityTool(deps Deps) *ReturnEligibilityTool {
	return &ReturnEligibilityTool{deps: deps}
}

func (t *ReturnEligibilityTool) Name() tool.Name { return tool.CheckReturnEligibility }

func (t *ReturnEligibilityTool) Description() string {
	return "判断订单是否可退货/退款。输入JSON键：order_id（必填）。返回eligible与reason。"
}

func (t *ReturnEligibilityTool) Schema() tool.Schema {
	return tool.Schema{
		Type:       "object",
		Properties: map[string]tool.SchemaProperty{"order_id": {Type: "string", Description: "订单号"}},
		Required:   []string{"order_id"},
	}
}

func (t *ReturnEligibilityTool) Execute(ctx context.Context, args tool.Args) (tool.Result, error) {
	orderNo := args.String("order_id")
	if orderNo == "" {
		return &EligibilityResult{Reason: missingOrderNo}, nil
	}
	o, err := t.deps.Orders.GetOrder(ctx, orderNo)
	if err != nil {
		return nil, errors.Wrapf(err, "查询订单 %s", orderNo)
	}
	if o == nil {
		return &EligibilityResult{Reason: fmt.Sprintf("未找到订单 %s", orderNo)}, nil
	}
	eligible, reason := t.evaluate(o)
	return &EligibilityResult{OK: true, Eligible: eligible, Reason: reason}, nil
}

// evaluate 只依赖订单状态、下单时间与当前时间，同一订单状态多次判断结果一致
func (t *ReturnEligibilityTool) evaluate(o *commerce.Order) (bool, string) {
	status := strings.ToUpper(strings.TrimSpace(o.Status))
	window := t.deps.policy().ReturnWindowDays
	switch status {
	case commerce.StatusCanceled, commerce.StatusCancelled, commerce.StatusRefunding, commerce.StatusRefunded:
		return false, fmt.Sprintf("订单状态为 %s，不支持重复申请退货/退款。", status)
	case commerce.StatusPaid:
		return true, "订单已支付未发货，可直接申请退款（模拟规则）。"
	case commerce.StatusShipped, commerce.StatusDelivering:
		return true, "订单已发货/运输中，可申请拦截或拒收退回（模拟规则）。"
	case commerce.StatusDelivered:
		days := int(t.deps.now().Sub(o.CreatedAt).Hours() / 24)
		if days <= window {
			return true, fmt.Sprintf("已签收 %d 天内，支持 %d 天退货（模拟规则）。", days, window)
		}
		return false, fmt.Sprintf("已签收超过 %d 天（%d 天），不支持无理由退货（模拟规则）。", window, days)
	default:
		return true, "符合退货条件（默认规则）。"
	}
}

// AfterSaleResult create_after_sale 的结果
type AfterSaleResult struct {
	OK        bool                `json:"ok"`
	Message   string              `json:"message"`
	AfterSale *commerce.AfterSale `json:"after_sale"`
}

func (r *AfterSaleResult) Succeeded() bool { return r.OK }

// CreateAfterSaleTool 实现 create_after_sale
type CreateAfterSaleTool struct {
	deps Deps
}

// NewCreateAfterSaleTool 创建 create_after_sale 工具
func NewCreateAfterSaleTool(deps Deps) *CreateAfterSaleTool { return &CreateAfterSaleTool{deps: deps} }

func (t *CreateAfterSaleTool) Name() tool.Name { return tool.CreateAfterSale }

func (t *CreateAfterSaleTool) Description() string {
	return "创建售后单。输入JSON键：order_id（必填），after_sale_type（可选，默认退货退款），reason（可选）。返回售后单号与下一步。"
}

func (t *CreateAfterSaleTool) Schema() tool.Schema {
	return tool.Schema{
		Type: "object",
		Properties: map[string]tool.SchemaProperty{
			"order_id":        {Type: "string", Description: "订单号"},
			"after_sale_type": {Type: "string", Description: "售后类型，如 退货退款、仅退款、换货"},
			"reason":          {Type: "string", Description: "申请原因"},
		},
		Required: []string{"order_id"},
	}
}

func (t *CreateAfterSaleTool) Execute(ctx context.Context, args tool.Args) (tool.Result, error) {
	orderNo := args.String("order_id")
	if orderNo == "" {
		return &AfterSaleResult{Message: missingOrderNo}, nil
	}
	o, err := t.deps.Orders.GetOrder(ctx, orderNo)
	if err != nil {
		return nil, errors.Wrapf(err, "查询订单 %s", orderNo)
	}
	if o == nil {
		return &AfterSaleResult{Message: fmt.Sprintf("未找到订单 %s", orderNo)}, nil
	}
	now := t.deps.now()
	as := &commerce.AfterSale{
		AfterSaleID: serialID("AS", now),
		OrderNo:     o.OrderNo,
		Type:        args.StringOr("after_sale_type", "退货退款"),
		Reason:      args.StringOr("reason", "用户申请"),
		Status:      "已创建",
		NextStep:    "等待取件/寄回（模拟）",
		CreatedAt:   now,
	}
	if err := t.deps.AfterSales.CreateAfterSale(ctx, as); err != nil {
		return nil, errors.Wrap(err, "保存售后单")
	}
	return &AfterSaleResult{OK: true, Message: "售后单已创建", AfterSale: as}, nil
}
