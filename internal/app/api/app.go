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

package api

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	hertzslog "github.com/hertz-contrib/logger/slog"
	"github.com/hertz-contrib/obs-opentelemetry/provider"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"

	"smart-mall/internal/api/http"
	"smart-mall/internal/api/http/middleware"
	"smart-mall/internal/app"
	"smart-mall/pkg/config"
	"smart-mall/pkg/log"
	"smart-mall/pkg/secrets"
	apptracing "smart-mall/pkg/tracing"
)

// otelProviderShutdown 用于优雅关闭时关闭 OpenTelemetry provider
type otelProviderShutdown interface {
	Shutdown(ctx context.Context) error
}

// App API 应用（装配 HTTP Router、Handler、Middleware）
type App struct {
	bootstrap    *app.Bootstrap
	router       *http.Router
	hertz        *server.Hertz
	logFile      *os.File
	otelProvider otelProviderShutdown
}

// NewApp 根据 Bootstrap 装配路由与中间件
func NewApp(ctx context.Context, bootstrap *app.Bootstrap) (*App, error) {
	if bootstrap == nil || bootstrap.Config == nil {
		return nil, fmt.Errorf("bootstrap 不能为空")
	}
	cfg := bootstrap.Config

	var mwOpts []middleware.Option
	if cfg.API.CORS.Enable {
		mwOpts = append(mwOpts, middleware.WithAllowOrigins(cfg.API.CORS.AllowOrigins))
	}
	if cfg.API.Middleware.Auth {
		jwtAuth, err := newJWTAuth(ctx, cfg.API.Middleware, bootstrap.Secrets)
		if err != nil {
			return nil, fmt.Errorf("JWT 初始化失败: %w", err)
		}
		mwOpts = append(mwOpts, middleware.WithJWT(jwtAuth))
		bootstrap.Logger.Info("管理接口 JWT 认证已启用")
	} else {
		bootstrap.Logger.Warn("管理接口未启用认证，仅建议在本地使用")
	}

	handler := http.NewHandler(bootstrap.Chat, bootstrap.Commerce, bootstrap.Tools)
	router := http.NewRouter(handler, middleware.NewMiddleware(mwOpts...))
	if cfg.API.Middleware.RateLimit {
		router.SetRateLimit(cfg.API.Middleware.RateLimitRPS)
	}
	return &App{bootstrap: bootstrap, router: router}, nil
}

func newJWTAuth(ctx context.Context, mw config.MiddlewareConfig, store secrets.Store) (*middleware.JWTAuth, error) {
	key, err := secrets.Resolve(ctx, store, mw.JWTKey)
	if err != nil {
		return nil, err
	}
	password, err := secrets.Resolve(ctx, store, mw.AdminPassword)
	if err != nil {
		return nil, err
	}
	if strings.HasPrefix(key, "${") || strings.HasPrefix(password, "${") {
		return nil, fmt.Errorf("jwt_key 或 admin_password 引用的环境变量未设置")
	}
	return middleware.NewJWTAuth(middleware.JWTConfig{
		Key:           key,
		Timeout:       config.ParseDuration(mw.JWTTimeout, time.Hour),
		MaxRefresh:    config.ParseDuration(mw.JWTMaxRefresh, time.Hour),
		AdminUser:     mw.AdminUser,
		AdminPassword: password,
	})
}

// Run 启动 HTTP 服务，addr 如 ":8000"
func (a *App) Run(addr string) error {
	cfg := a.bootstrap.Config
	a.bootstrap.Logger.Info("API 服务启动", "addr", addr)

	// 使用 Hertz slog 扩展，与 bootstrap 配置对齐
	output := os.Stdout
	if cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("打开日志文件失败: %w", err)
		}
		a.logFile = f
		output = f
	}
	levelVar := &slog.LevelVar{}
	levelVar.Set(log.ParseLevel(cfg.Log.Level))
	hlog.SetLogger(hertzslog.NewLogger(
		hertzslog.WithOutput(output),
		hertzslog.WithLevel(levelVar),
	))

	a.hertz = a.build(addr)
	return a.hertz.Run()
}

// build 可选启用链路追踪（OpenTelemetry），无导出端点时退化为普通服务
func (a *App) build(addr string) *server.Hertz {
	tracing := a.bootstrap.Config.Monitoring.Tracing
	if !tracing.Enable {
		return a.router.Build(addr)
	}
	serviceName := tracing.ServiceName
	if serviceName == "" {
		serviceName = "smart-mall-api"
	}
	endpoint := tracing.ExportEndpoint
	if endpoint == "" {
		endpoint = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	}
	if endpoint == "" {
		a.bootstrap.Logger.Warn("已开启链路追踪但未配置导出端点，跳过")
		return a.router.Build(addr)
	}

	if tracing.Protocol == "http" {
		tp, err := apptracing.InitTracer(apptracing.OTelConfig{
			ServiceName:    serviceName,
			ExportEndpoint: endpoint,
			Insecure:       tracing.Insecure,
		})
		if err != nil {
			a.bootstrap.Logger.Warn("OTLP/HTTP 导出器初始化失败，跳过链路追踪", "error", err)
			return a.router.Build(addr)
		}
		a.otelProvider = tp
	} else {
		opts := []provider.Option{
			provider.WithServiceName(serviceName),
			provider.WithExportEndpoint(endpoint),
		}
		if tracing.Insecure {
			opts = append(opts, provider.WithInsecure())
		}
		a.otelProvider = provider.NewOpenTelemetryProvider(opts...)
	}

	tracerOpt, tracerCfg := hertztracing.NewServerTracer()
	a.router.Use(hertztracing.ServerMiddleware(tracerCfg))
	h := a.router.Build(addr, tracerOpt)
	a.bootstrap.Logger.Info("链路追踪已启用", "service_name", serviceName, "endpoint", endpoint, "protocol", tracing.Protocol)
	return h
}

// Shutdown 优雅关闭（传入 ctx 以支持超时，如 cmd 层 WithTimeout）
func (a *App) Shutdown(ctx context.Context) error {
	if a.otelProvider != nil {
		_ = a.otelProvider.Shutdown(ctx)
	}
	if a.hertz != nil {
		if err := a.hertz.Shutdown(ctx); err != nil {
			return err
		}
	}
	if a.logFile != nil {
		_ = a.logFile.Close()
	}
	return a.bootstrap.Close()
}
