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
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	mallapp "smart-mall/internal/app"
	"smart-mall/internal/storage/commerce"
	"smart-mall/internal/tool/registry"
	"smart-mall/pkg/errors"
	"smart-mall/pkg/metrics"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// ChatService 对话能力，*app.ChatService 实现了该接口
type ChatService interface {
	Chat(ctx context.Context, req mallapp.ChatRequest) (*mallapp.ChatResponse, error)
}

// Handler HTTP 处理器
type Handler struct {
	chat  ChatService
	store commerce.Store
	tools *registry.Registry
}

// NewHandler 创建新的 HTTP 处理器；store/tools 为 nil 时对应接口返回 503
func NewHandler(chat ChatService, store commerce.Store, tools *registry.Registry) *Handler {
	return &Handler{chat: chat, store: store, tools: tools}
}

// HealthCheck 健康检查
// GET /health
func (h *Handler) HealthCheck(c context.Context, ctx *app.RequestContext) {
	ctx.JSON(consts.StatusOK, map[string]string{"status": "ok"})
}

// Chat 客服对话
// POST /chat
func (h *Handler) Chat(c context.Context, ctx *app.RequestContext) {
	var req mallapp.ChatRequest
	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(consts.StatusBadRequest, map[string]string{"error": "请求体不是合法的 JSON"})
		return
	}
	if h.chat == nil {
		writeError(c, ctx, errors.Wrap(errors.ErrUnavailable, "对话服务未配置"))
		return
	}
	resp, err := h.chat.Chat(c, req)
	if err != nil {
		writeError(c, ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, resp)
}

// ListProducts 上架商品列表
// GET /api/products
func (h *Handler) ListProducts(c context.Context, ctx *app.RequestContext) {
	if !h.requireStore(c, ctx) {
		return
	}
	products, err := h.store.ListProducts(c, true)
	if err != nil {
		writeError(c, ctx, err)
		return
	}
	if products == nil {
		products = []*commerce.Product{}
	}
	ctx.JSON(consts.StatusOK, products)
}

// GetProduct 商品详情
// GET /api/products/:id
func (h *Handler) GetProduct(c context.Context, ctx *app.RequestContext) {
	if !h.requireStore(c, ctx) {
		return
	}
	p, err := h.store.GetProduct(c, ctx.Param("id"))
	if err != nil {
		writeError(c, ctx, err)
		return
	}
	if p == nil {
		ctx.JSON(consts.StatusNotFound, map[string]string{"error": "product not found"})
		return
	}
	ctx.JSON(consts.StatusOK, p)
}

// GetOrder 订单详情（含明细）
// GET /api/orders/:order_no
func (h *Handler) GetOrder(c context.Context, ctx *app.RequestContext) {
	if !h.requireStore(c, ctx) {
		return
	}
	o, err := h.store.GetOrder(c, ctx.Param("order_no"))
	if err != nil {
		writeError(c, ctx, err)
		return
	}
	if o == nil {
		ctx.JSON(consts.StatusNotFound, map[string]string{"error": "order not found"})
		return
	}
	ctx.JSON(consts.StatusOK, o)
}

// ListTickets 代理创建的工单，新的在前，供人工坐席跟进
// GET /api/admin/tickets?limit=50
func (h *Handler) ListTickets(c context.Context, ctx *app.RequestContext) {
	if !h.requireStore(c, ctx) {
		return
	}
	list, err := h.store.ListTickets(c, listLimit(ctx))
	if err != nil {
		writeError(c, ctx, err)
		return
	}
	if list == nil {
		list = []*commerce.Ticket{}
	}
	ctx.JSON(consts.StatusOK, map[string]any{"tickets": list, "count": len(list)})
}

// ListAfterSales 代理创建的售后单
// GET /api/admin/after-sales?limit=50
func (h *Handler) ListAfterSales(c context.Context, ctx *app.RequestContext) {
	if !h.requireStore(c, ctx) {
		return
	}
	list, err := h.store.ListAfterSales(c, listLimit(ctx))
	if err != nil {
		writeError(c, ctx, err)
		return
	}
	if list == nil {
		list = []*commerce.AfterSale{}
	}
	ctx.JSON(consts.StatusOK, map[string]any{"after_sales": list, "count": len(list)})
}

// ListTools 工具声明（名称、描述、参数 Schema）
// GET /api/admin/tools
func (h *Handler) ListTools(c context.Context, ctx *app.RequestContext) {
	if h.tools == nil {
		writeError(c, ctx, errors.Wrap(errors.ErrUnavailable, "工具注册表未配置"))
		return
	}
	ctx.JSON(consts.StatusOK, map[string]any{"tools": h.tools.Catalog()})
}

// Metrics Prometheus 文本格式指标
// GET /metrics
func (h *Handler) Metrics(c context.Context, ctx *app.RequestContext) {
	var buf bytes.Buffer
	if err := metrics.WritePrometheus(&buf); err != nil {
		hlog.CtxErrorf(c, "write metrics: %v", err)
		ctx.JSON(consts.StatusInternalServerError, map[string]string{"error": "metrics unavailable"})
		return
	}
	ctx.Data(consts.StatusOK, "text/plain; version=0.0.4; charset=utf-8", buf.Bytes())
}

func (h *Handler) requireStore(c context.Context, ctx *app.RequestContext) bool {
	if h.store == nil {
		writeError(c, ctx, errors.Wrap(errors.ErrUnavailable, "业务存储未配置"))
		return false
	}
	return true
}

func listLimit(ctx *app.RequestContext) int {
	n, err := strconv.Atoi(ctx.DefaultQuery("limit", strconv.Itoa(defaultListLimit)))
	if err != nil || n <= 0 {
		return defaultListLimit
	}
	if n > maxListLimit {
		return maxListLimit
	}
	return n
}

// writeError 按哨兵错误映射状态码；未知错误只记录日志，不向调用方暴露细节
func writeError(c context.Context, ctx *app.RequestContext, err error) {
	switch {
	case errors.Is(err, errors.ErrInvalidArg):
		ctx.JSON(consts.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, errors.ErrNotFound):
		ctx.JSON(consts.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, errors.ErrConflict):
		ctx.JSON(consts.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, errors.ErrUnavailable):
		hlog.CtxWarnf(c, "service unavailable: %v", err)
		ctx.JSON(consts.StatusServiceUnavailable, map[string]string{"error": "服务暂不可用，请稍后再试"})
	default:
		hlog.CtxErrorf(c, "request failed: %v", err)
		ctx.JSON(consts.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}
