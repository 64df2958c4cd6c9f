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
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/middlewares/server/recovery"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/config"

	"smart-mall/internal/api/http/middleware"
)

// Router HTTP 路由器
type Router struct {
	handler    *Handler
	middleware *middleware.Middleware
	rateLimit  int
	extra      []app.HandlerFunc
}

// NewRouter 创建新的路由器
func NewRouter(handler *Handler, mw *middleware.Middleware) *Router {
	if mw == nil {
		mw = middleware.NewMiddleware()
	}
	return &Router{handler: handler, middleware: mw}
}

// SetRateLimit 对 /chat 启用限流（每秒请求数）；<=0 关闭
func (r *Router) SetRateLimit(rps int) {
	r.rateLimit = rps
}

// Use 追加全局中间件（如链路追踪），须在 Build 之前调用
func (r *Router) Use(mw ...app.HandlerFunc) {
	r.extra = append(r.extra, mw...)
}

// Build 构建 Hertz 实例并注册全部路由
func (r *Router) Build(addr string, opts ...config.Option) *server.Hertz {
	h := server.New(append([]config.Option{server.WithHostPorts(addr)}, opts...)...)
	h.Use(recovery.Recovery(), r.middleware.AccessLog(), r.middleware.CORS())
	h.Use(r.extra...)

	h.GET("/health", r.handler.HealthCheck)
	h.GET("/metrics", r.handler.Metrics)

	if r.rateLimit > 0 {
		h.POST("/chat", r.middleware.RateLimit(r.rateLimit), r.handler.Chat)
	} else {
		h.POST("/chat", r.handler.Chat)
	}

	api := h.Group("/api")
	api.GET("/products", r.handler.ListProducts)
	api.GET("/products/:id", r.handler.GetProduct)
	api.GET("/orders/:order_no", r.handler.GetOrder)

	admin := api.Group("/admin")
	if j := r.middleware.JWT(); j != nil {
		admin.POST("/login", j.LoginHandler())
		admin.GET("/refresh_token", j.RefreshHandler())
		admin.Use(j.Required())
	}
	admin.GET("/tickets", r.handler.ListTickets)
	admin.GET("/after-sales", r.handler.ListAfterSales)
	admin.GET("/tools", r.handler.ListTools)

	return h
}
