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
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-mall/internal/agent"
	"smart-mall/internal/model/llm"
	"smart-mall/internal/runtime/session"
	"smart-mall/internal/storage/commerce"
	"smart-mall/pkg/config"
	"smart-mall/pkg/errors"
)

type recordingInvoker struct {
	requests []agent.Request
	answer   string
}

func (r *recordingInvoker) Invoke(ctx context.Context, req agent.Request) (*agent.Result, error) {
	r.requests = append(r.requests, req)
	return &agent.Result{
		Answer:  r.answer,
		Outcome: agent.OutcomeAnswered,
		Trace:   []agent.ActionRecord{{Action: "lookup_order", ActionInput: "{}", Observation: "{\"ok\":false}"}},
		NewTurns: []llm.Message{
			{Role: llm.RoleUser, Content: req.UserMessage},
			{Role: llm.RoleAssistant, Content: r.answer},
		},
	}, nil
}

func newTestCommerce() *commerce.MemoryStore {
	return commerce.NewMemoryStore(&commerce.Seed{
		Shops: []*commerce.Shop{{ShopID: "S1", ShopName: "数码旗舰店", Persona: "热情专业", ReturnPolicy: "7天无理由"}},
		Products: []*commerce.Product{{
			ProductID: "P1", ShopID: "S1", Title: "一加15", Category: "手机", Price: 3999,
			Specs: map[string]any{"内存": "16GB"}, Description: "旗舰手机", IsActive: true,
		}},
		Orders: []*commerce.Order{{
			OrderNo: "20251223001", Status: "SHIPPED", Receiver: "张三", PhoneTail: "1234", TotalAmount: 3999,
			CreatedAt: time.Date(2025, 12, 23, 9, 30, 0, 0, time.Local),
			Items:     []commerce.OrderItem{{ProductID: "P1", ShopID: "S1", Title: "一加15", Price: 3999, Qty: 1}},
		}},
	})
}

func TestChat_RecordsTurnsAndPassesPriorHistory(t *testing.T) {
	inv := &recordingInvoker{answer: "请提供订单号"}
	sessions := session.NewManager(session.NewMemoryStore())
	svc := NewChatService(inv, sessions, newTestCommerce(), nil)
	ctx := context.Background()

	first, err := svc.Chat(ctx, ChatRequest{Message: "  我的快递到哪了 "})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(first.SessionID, "session-"))
	assert.Equal(t, "请提供订单号", first.Answer)
	require.Len(t, first.Steps, 1)
	assert.Equal(t, "lookup_order", first.Steps[0].Action)
	assert.Empty(t, inv.requests[0].History)
	assert.Equal(t, "我的快递到哪了", inv.requests[0].UserMessage)

	_, err = svc.Chat(ctx, ChatRequest{SessionID: first.SessionID, Message: "20251223001"})
	require.NoError(t, err)
	assert.Equal(t, []llm.Message{
		{Role: llm.RoleUser, Content: "我的快递到哪了"},
		{Role: llm.RoleAssistant, Content: "请提供订单号"},
	}, inv.requests[1].History)

	_, err = svc.Chat(ctx, ChatRequest{SessionID: first.SessionID, Message: "重新开始", Reset: true})
	require.NoError(t, err)
	assert.Empty(t, inv.requests[2].History)
}

func TestChat_EmptyMessage(t *testing.T) {
	svc := NewChatService(&recordingInvoker{}, session.NewManager(session.NewMemoryStore()), newTestCommerce(), nil)
	_, err := svc.Chat(context.Background(), ChatRequest{Message: "  "})
	assert.True(t, errors.Is(err, errors.ErrInvalidArg))
}

func TestBuildContext(t *testing.T) {
	svc := NewChatService(&recordingInvoker{}, session.NewManager(session.NewMemoryStore()), newTestCommerce(), nil)
	ctx := context.Background()

	got := svc.BuildContext(ctx, ChatRequest{ShopID: "S1", ProductID: "P1", OrderNo: "20251223001"})
	assert.Equal(t, "店铺名称：数码旗舰店\n客服风格要求：热情专业\n退换政策：7天无理由\n\n"+
		"当前咨询商品信息：\n- 商品ID：P1\n- 商品名：一加15\n- 类目：手机\n- 价格：3999\n- 参数：{\"内存\":\"16GB\"}\n- 介绍：旗舰手机\n\n"+
		"当前咨询订单信息：\n- 订单号：20251223001\n- 状态：SHIPPED\n- 金额：3999\n- 收件人：张三\n- 手机尾号：1234\n- 下单时间：2025-12-23 09:30:00\n"+
		"- 商品1：一加15 x1（¥3999）店铺S1\n\n", got)

	got = svc.BuildContext(ctx, ChatRequest{OrderNo: "404", ProductID: "nope", ShopID: "nope"})
	assert.Equal(t, "当前咨询订单信息：\n- 订单号：404\n- 说明：未在系统中找到该订单\n\n", got)

	assert.Equal(t, "", svc.BuildContext(ctx, ChatRequest{}))
}

type fixedCompleter struct{ reply string }

func (f fixedCompleter) Complete(context.Context, string, []string) (string, error) {
	return f.reply, nil
}

func TestNewBootstrap_MemoryStack(t *testing.T) {
	cfg := &config.Config{}
	cfg.Log.Level = "error"
	cfg.Simulation.TrackingSignedRatio = 0.5
	b, err := NewBootstrap(context.Background(), cfg, fixedCompleter{reply: "Final Answer: 您好，请问有什么可以帮您？"})
	require.NoError(t, err)
	defer b.Close()

	resp, err := b.Chat.Chat(context.Background(), ChatRequest{Message: "你好"})
	require.NoError(t, err)
	assert.Equal(t, "您好，请问有什么可以帮您？", resp.Answer)
	assert.Equal(t, agent.OutcomeAnswered, resp.Outcome)
	assert.Len(t, b.Tools.Names(), 8)
}

func TestNewLLMClientFromConfig_Errors(t *testing.T) {
	_, _, err := NewLLMClientFromConfig(context.Background(), &config.Config{}, nil)
	assert.Error(t, err)

	cfg := &config.Config{}
	cfg.Model.Defaults.LLM = "bogus"
	_, _, err = NewLLMClientFromConfig(context.Background(), cfg, nil)
	assert.Error(t, err)
}
