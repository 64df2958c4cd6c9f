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

package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"smart-mall/internal/agent"
	"smart-mall/internal/runtime/session"
	"smart-mall/internal/storage/commerce"
	"smart-mall/pkg/errors"
	"smart-mall/pkg/log"
)

// maxContextItems 订单上下文中最多列出的商品行数
const maxContextItems = 5

// ChatRequest 对话请求
type ChatRequest struct {
	SessionID string `json:"session_id"` // 为空时新建
	Message   string `json:"message"`
	Reset     bool   `json:"reset"` // 清空该会话历史
	ProductID string `json:"product_id"`
	ShopID    string `json:"shop_id"`
	OrderNo   string `json:"order_no"`
}

// Step 一次工具调用及其观察
type Step struct {
	Action      string `json:"action"`
	ActionInput string `json:"action_input,omitempty"`
	Observation string `json:"observation"`
}

// ChatResponse 对话响应
type ChatResponse struct {
	SessionID string        `json:"session_id"`
	Answer    string        `json:"answer"`
	Steps     []Step        `json:"steps"`
	Outcome   agent.Outcome `json:"outcome"`
}

// Invoker 客服代理，*agent.Agent 实现了该接口
type Invoker interface {
	Invoke(ctx context.Context, req agent.Request) (*agent.Result, error)
}

// ContextReader 生成上下文前缀所需的读取能力
type ContextReader interface {
	commerce.ShopReader
	GetProduct(ctx context.Context, productID string) (*commerce.Product, error)
	commerce.OrderReader
}

// ChatService 会话 + 上下文 + 代理调用
type ChatService struct {
	agent    Invoker
	sessions *session.Manager
	reader   ContextReader
	logger   *log.Logger
}

// NewChatService 创建 ChatService
func NewChatService(inv Invoker, sessions *session.Manager, reader ContextReader, logger *log.Logger) *ChatService {
	if logger == nil {
		logger = log.Discard()
	}
	return &ChatService{agent: inv, sessions: sessions, reader: reader, logger: logger}
}

// Chat 处理一条用户消息。模型与工具故障已在代理内降级为回复，
// 这里的 error 只来自参数错误或会话存储不可用
func (s *ChatService) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		return nil, errors.Wrap(errors.ErrInvalidArg, "message 不能为空")
	}
	sess, err := s.sessions.Open(ctx, req.SessionID, req.Reset)
	if err != nil {
		return nil, errors.Wrap(errors.ErrUnavailable, err.Error())
	}

	res, err := s.agent.Invoke(ctx, agent.Request{
		SessionID:     sess.ID,
		UserMessage:   msg,
		History:       sess.History,
		ContextPrefix: s.BuildContext(ctx, req),
	})
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Record(ctx, sess.ID, res.NewTurns); err != nil {
		s.logger.Warn("写回会话失败", "session_id", sess.ID, "error", err)
	}

	steps := make([]Step, 0, len(res.Trace))
	for _, r := range res.Trace {
		steps = append(steps, Step{Action: r.Action, ActionInput: r.ActionInput, Observation: r.Observation})
	}
	return &ChatResponse{SessionID: sess.ID, Answer: res.Answer, Steps: steps, Outcome: res.Outcome}, nil
}

// BuildContext 依次拼接店铺人设、当前商品与当前订单；读取失败的部分记日志后跳过
func (s *ChatService) BuildContext(ctx context.Context, req ChatRequest) string {
	var b strings.Builder
	if id := strings.TrimSpace(req.ShopID); id != "" {
		shop, err := s.reader.GetShop(ctx, id)
		if err != nil {
			s.logger.Warn("读取店铺失败", "shop_id", id, "error", err)
		} else if shop != nil && shop.Persona != "" {
			fmt.Fprintf(&b, "店铺名称：%s\n客服风格要求：%s\n退换政策：%s\n\n", shop.ShopName, shop.Persona, shop.ReturnPolicy)
		}
	}
	if id := strings.TrimSpace(req.ProductID); id != "" {
		p, err := s.reader.GetProduct(ctx, id)
		if err != nil {
			s.logger.Warn("读取商品失败", "product_id", id, "error", err)
		} else if p != nil {
			writeProductContext(&b, p)
		}
	}
	if no := strings.TrimSpace(req.OrderNo); no != "" {
		o, err := s.reader.GetOrder(ctx, no)
		switch {
		case err != nil:
			s.logger.Warn("读取订单失败", "order_no", no, "error", err)
		case o == nil:
			fmt.Fprintf(&b, "当前咨询订单信息：\n- 订单号：%s\n- 说明：未在系统中找到该订单\n\n", no)
		default:
			writeOrderContext(&b, o)
		}
	}
	return b.String()
}

func writeProductContext(b *strings.Builder, p *commerce.Product) {
	specs := "{}"
	if len(p.Specs) > 0 {
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(p.Specs); err == nil {
			specs = strings.TrimRight(buf.String(), "\n")
		}
	}
	fmt.Fprintf(b, "当前咨询商品信息：\n- 商品ID：%s\n- 商品名：%s\n- 类目：%s\n- 价格：%s\n- 参数：%s\n- 介绍：%s\n\n",
		p.ProductID, p.Title, p.Category, formatAmount(p.Price), specs, p.Description)
}

func writeOrderContext(b *strings.Builder, o *commerce.Order) {
	fmt.Fprintf(b, "当前咨询订单信息：\n- 订单号：%s\n- 状态：%s\n- 金额：%s\n- 收件人：%s\n- 手机尾号：%s\n- 下单时间：%s\n",
		o.OrderNo, o.Status, formatAmount(o.TotalAmount), o.Receiver, o.PhoneTail, o.CreatedAt.Format("2006-01-02 15:04:05"))
	for i, it := range o.Items {
		if i >= maxContextItems {
			break
		}
		fmt.Fprintf(b, "- 商品%d：%s x%d（¥%s）店铺%s\n", i+1, it.Title, it.Qty, formatAmount(it.Price), it.ShopID)
	}
	b.WriteString("\n")
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
