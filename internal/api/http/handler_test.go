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

package http

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-mall/internal/agent"
	"smart-mall/internal/api/http/middleware"
	mallapp "smart-mall/internal/app"
	"smart-mall/internal/storage/commerce"
	"smart-mall/internal/tool/builtin"
	"smart-mall/pkg/errors"
)

type stubChat struct {
	got  mallapp.ChatRequest
	resp *mallapp.ChatResponse
	err  error
}

func (s *stubChat) Chat(ctx context.Context, req mallapp.ChatRequest) (*mallapp.ChatResponse, error) {
	s.got = req
	return s.resp, s.err
}

func testStore() *commerce.MemoryStore {
	return commerce.NewMemoryStore(&commerce.Seed{
		Products: []*commerce.Product{
			{ProductID: "P001", ShopID: "S001", Title: "一加 15", Price: 3999, IsActive: true},
			{ProductID: "P002", ShopID: "S001", Title: "旧款耳机", Price: 99, IsActive: false},
		},
		Orders: []*commerce.Order{
			{OrderNo: "A1001", Status: commerce.StatusDelivered, Receiver: "张三", PhoneTail: "1234"},
		},
	})
}

func buildServer(t *testing.T, chat ChatService, mw *middleware.Middleware) *server.Hertz {
	t.Helper()
	store := testStore()
	reg, err := builtin.NewRegistry(builtin.DepsFromStore(store, builtin.DefaultPolicy()))
	require.NoError(t, err)
	return NewRouter(NewHandler(chat, store, reg), mw).Build(":0")
}

func get(s *server.Hertz, path string, headers ...ut.Header) (int, []byte) {
	w := ut.PerformRequest(s.Engine, "GET", path, &ut.Body{Body: bytes.NewReader(nil), Len: 0}, headers...)
	return w.Result().StatusCode(), w.Result().Body()
}

func post(s *server.Hertz, path, body string) (int, []byte) {
	w := ut.PerformRequest(s.Engine, "POST", path, &ut.Body{Body: bytes.NewReader([]byte(body)), Len: len(body)},
		ut.Header{Key: "Content-Type", Value: "application/json"})
	return w.Result().StatusCode(), w.Result().Body()
}

func TestHealthCheck(t *testing.T) {
	s := buildServer(t, &stubChat{}, nil)
	code, body := get(s, "/health")
	assert.Equal(t, 200, code)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestChat_PassesRequestAndReturnsAnswer(t *testing.T) {
	chat := &stubChat{resp: &mallapp.ChatResponse{
		SessionID: "session-1",
		Answer:    "订单 A1001 已签收。",
		Steps:     []mallapp.Step{{Action: "lookup_order", ActionInput: `{"order_no":"A1001"}`, Observation: "{}"}},
		Outcome:   agent.OutcomeAnswered,
	}}
	s := buildServer(t, chat, nil)

	code, body := post(s, "/chat", `{"session_id":"session-1","message":"A1001 到哪了","order_no":"A1001"}`)
	require.Equal(t, 200, code)
	assert.Equal(t, "session-1", chat.got.SessionID)
	assert.Equal(t, "A1001", chat.got.OrderNo)

	var resp mallapp.ChatResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, "订单 A1001 已签收。", resp.Answer)
	require.Len(t, resp.Steps, 1)
	assert.Equal(t, "lookup_order", resp.Steps[0].Action)
}

func TestChat_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"invalid", errors.Wrap(errors.ErrInvalidArg, "message is empty"), 400},
		{"unavailable", errors.Wrap(errors.ErrUnavailable, "agent not configured"), 503},
		{"internal", assert.AnError, 500},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := buildServer(t, &stubChat{err: tc.err}, nil)
			code, _ := post(s, "/chat", `{"message":"hi"}`)
			assert.Equal(t, tc.want, code)
		})
	}
}

func TestChat_MalformedBody(t *testing.T) {
	s := buildServer(t, &stubChat{}, nil)
	code, body := post(s, "/chat", `{"message":`)
	assert.Equal(t, 400, code)
	assert.Contains(t, string(body), "error")
}

func TestChat_NoService(t *testing.T) {
	s := buildServer(t, nil, nil)
	code, _ := post(s, "/chat", `{"message":"hi"}`)
	assert.Equal(t, 503, code)
}

func TestProducts(t *testing.T) {
	s := buildServer(t, &stubChat{}, nil)

	code, body := get(s, "/api/products")
	require.Equal(t, 200, code)
	var list []commerce.Product
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "P001", list[0].ProductID)

	code, _ = get(s, "/api/products/P001")
	assert.Equal(t, 200, code)
	code, _ = get(s, "/api/products/P404")
	assert.Equal(t, 404, code)
}

func TestGetOrder(t *testing.T) {
	s := buildServer(t, &stubChat{}, nil)
	code, body := get(s, "/api/orders/A1001")
	require.Equal(t, 200, code)
	assert.Contains(t, string(body), `"receiver":"张三"`)

	code, _ = get(s, "/api/orders/NOPE")
	assert.Equal(t, 404, code)
}

func TestAdminRoutes_OpenWithoutJWT(t *testing.T) {
	s := buildServer(t, &stubChat{}, nil)

	code, body := get(s, "/api/admin/tickets")
	require.Equal(t, 200, code)
	assert.JSONEq(t, `{"tickets":[],"count":0}`, string(body))

	code, body = get(s, "/api/admin/tools")
	require.Equal(t, 200, code)
	assert.Contains(t, string(body), "lookup_order")
}

func TestAdminRoutes_RequireToken(t *testing.T) {
	auth, err := middleware.NewJWTAuth(middleware.JWTConfig{Key: "test-key", AdminUser: "ops", AdminPassword: "secret"})
	require.NoError(t, err)
	s := buildServer(t, &stubChat{}, middleware.NewMiddleware(middleware.WithJWT(auth)))

	code, _ := get(s, "/api/admin/after-sales")
	assert.Equal(t, 401, code)

	code, _ = post(s, "/api/admin/login", `{"username":"ops","password":"wrong"}`)
	assert.Equal(t, 401, code)

	code, body := post(s, "/api/admin/login", `{"username":"ops","password":"secret"}`)
	require.Equal(t, 200, code)
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(body, &login))
	require.NotEmpty(t, login.Token)

	code, body = get(s, "/api/admin/after-sales", ut.Header{Key: "Authorization", Value: "Bearer " + login.Token})
	require.Equal(t, 200, code)
	assert.JSONEq(t, `{"after_sales":[],"count":0}`, string(body))
}

func TestNewJWTAuth_RejectsEmptyConfig(t *testing.T) {
	_, err := middleware.NewJWTAuth(middleware.JWTConfig{AdminUser: "ops", AdminPassword: "x"})
	assert.True(t, errors.Is(err, errors.ErrInvalidArg))
	_, err = middleware.NewJWTAuth(middleware.JWTConfig{Key: "k"})
	assert.True(t, errors.Is(err, errors.ErrInvalidArg))
}

func TestRateLimit(t *testing.T) {
	r := NewRouter(NewHandler(&stubChat{resp: &mallapp.ChatResponse{}}, nil, nil), nil)
	r.SetRateLimit(1)
	s := r.Build(":0")

	code, _ := post(s, "/chat", `{"message":"hi"}`)
	assert.Equal(t, 200, code)
	code, _ = post(s, "/chat", `{"message":"hi"}`)
	assert.Equal(t, 429, code)
}

func TestMetrics(t *testing.T) {
	s := buildServer(t, &stubChat{}, nil)
	code, body := get(s, "/metrics")
	require.Equal(t, 200, code)
	assert.Contains(t, string(body), "mall_agent_iterations")
}

func TestCORS_AllowListedOrigin(t *testing.T) {
	mw := middleware.NewMiddleware(middleware.WithAllowOrigins([]string{"https://shop.example.com"}))
	s := buildServer(t, &stubChat{}, mw)

	w := ut.PerformRequest(s.Engine, "GET", "/health", &ut.Body{Body: bytes.NewReader(nil), Len: 0},
		ut.Header{Key: "Origin", Value: "https://shop.example.com"})
	assert.Equal(t, 200, w.Result().StatusCode())
	assert.Equal(t, "https://shop.example.com", string(w.Result().Header.Peek("Access-Control-Allow-Origin")))

	w = ut.PerformRequest(s.Engine, "GET", "/health", &ut.Body{Body: bytes.NewReader(nil), Len: 0},
		ut.Header{Key: "Origin", Value: "https://evil.example.com"})
	assert.Empty(t, w.Result().Header.Peek("Access-Control-Allow-Origin"))
}
