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

package middleware

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"golang.org/x/time/rate"

	"smart-mall/pkg/metrics"
)

// Middleware 中间件管理器
type Middleware struct {
	allowOrigins []string
	jwt          *JWTAuth
}

// Option 中间件选项
type Option func(*Middleware)

// WithAllowOrigins 设置 CORS 白名单；为空或包含 "*" 时放行所有来源
func WithAllowOrigins(origins []string) Option {
	return func(m *Middleware) { m.allowOrigins = origins }
}

// WithJWT 启用管理接口鉴权
func WithJWT(j *JWTAuth) Option {
	return func(m *Middleware) { m.jwt = j }
}

// NewMiddleware 创建新的中间件管理器
func NewMiddleware(opts ...Option) *Middleware {
	m := &Middleware{}
	for _, o := range opts {
		o(m)
	}
	return m
}

// JWT 返回管理接口鉴权器；未启用时为 nil
func (m *Middleware) JWT() *JWTAuth {
	return m.jwt
}

// CORS 跨域中间件
func (m *Middleware) CORS() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		origin := c.Request.Header.Get("Origin")
		if allowed := m.allowOrigin(origin); allowed != "" {
			c.Response.Header.Set("Access-Control-Allow-Origin", allowed)
			c.Response.Header.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			c.Response.Header.Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
			c.Response.Header.Set("Access-Control-Max-Age", "86400")
		}
		if string(c.Method()) == consts.MethodOptions {
			c.AbortWithStatus(consts.StatusNoContent)
			return
		}
		c.Next(ctx)
	}
}

func (m *Middleware) allowOrigin(origin string) string {
	if len(m.allowOrigins) == 0 {
		return "*"
	}
	for _, o := range m.allowOrigins {
		if o == "*" {
			return "*"
		}
		if origin != "" && strings.EqualFold(o, origin) {
			return origin
		}
	}
	return ""
}

// RateLimit 全局令牌桶限流，超限返回 429
func (m *Middleware) RateLimit(rps int) app.HandlerFunc {
	if rps <= 0 {
		rps = 10
	}
	limiter := rate.NewLimiter(rate.Limit(rps), rps)
	return func(ctx context.Context, c *app.RequestContext) {
		if !limiter.Allow() {
			c.AbortWithStatusJSON(consts.StatusTooManyRequests, map[string]string{
				"error": "请求过于频繁，请稍后再试",
			})
			return
		}
		c.Next(ctx)
	}
}

// AccessLog 访问日志与请求计数
func (m *Middleware) AccessLog() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		start := time.Now()
		c.Next(ctx)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		code := c.Response.StatusCode()
		metrics.HTTPRequestsTotal.WithLabelValues(route, strconv.Itoa(code)).Inc()
		hlog.CtxInfof(ctx, "%s %s %d %s %s", c.Method(), c.Request.URI().Path(), code, time.Since(start), c.ClientIP())
	}
}
