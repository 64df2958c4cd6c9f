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
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-mall/internal/app"
	"smart-mall/pkg/config"
)

type echoCompleter struct{}

func (echoCompleter) Complete(context.Context, string, []string) (string, error) {
	return "Final Answer: 好的", nil
}

func newBootstrap(t *testing.T, mutate func(*config.Config)) *app.Bootstrap {
	t.Helper()
	cfg := &config.Config{}
	cfg.Log.Level = "error"
	cfg.Simulation.TrackingSignedRatio = 0.5
	if mutate != nil {
		mutate(cfg)
	}
	b, err := app.NewBootstrap(context.Background(), cfg, echoCompleter{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestNewApp_RejectsNilBootstrap(t *testing.T) {
	_, err := NewApp(context.Background(), nil)
	assert.Error(t, err)
}

func TestNewApp_AuthWithoutKeyFails(t *testing.T) {
	b := newBootstrap(t, func(c *config.Config) {
		c.API.Middleware.Auth = true
		c.API.Middleware.AdminUser = "ops"
		c.API.Middleware.AdminPassword = "secret"
	})
	_, err := NewApp(context.Background(), b)
	assert.Error(t, err)
}

func TestApp_BuildServesChat(t *testing.T) {
	b := newBootstrap(t, func(c *config.Config) {
		c.API.Middleware.Auth = true
		c.API.Middleware.JWTKey = "k"
		c.API.Middleware.AdminUser = "ops"
		c.API.Middleware.AdminPassword = "secret"
	})
	a, err := NewApp(context.Background(), b)
	require.NoError(t, err)

	h := a.build(":0")
	body := []byte(`{"message":"你好"}`)
	w := ut.PerformRequest(h.Engine, "POST", "/chat", &ut.Body{Body: bytes.NewReader(body), Len: len(body)},
		ut.Header{Key: "Content-Type", Value: "application/json"})
	require.Equal(t, 200, w.Result().StatusCode())
	assert.Contains(t, string(w.Result().Body()), "好的")

	w = ut.PerformRequest(h.Engine, "GET", "/api/admin/tickets", &ut.Body{Body: bytes.NewReader(nil), Len: 0})
	assert.Equal(t, 401, w.Result().StatusCode())
}

func TestNewApp_UnexpandedSecretFails(t *testing.T) {
	b := newBootstrap(t, func(c *config.Config) {
		c.API.Middleware.Auth = true
		c.API.Middleware.JWTKey = "${MALL_TEST_UNSET_KEY}"
		c.API.Middleware.AdminUser = "ops"
		c.API.Middleware.AdminPassword = "secret"
	})
	_, err := NewApp(context.Background(), b)
	assert.Error(t, err)
}

func TestApp_BuildWithHTTPTracing(t *testing.T) {
	b := newBootstrap(t, func(c *config.Config) {
		c.Monitoring.Tracing.Enable = true
		c.Monitoring.Tracing.Protocol = "http"
		c.Monitoring.Tracing.ExportEndpoint = "127.0.0.1:4318"
		c.Monitoring.Tracing.Insecure = true
	})
	a, err := NewApp(context.Background(), b)
	require.NoError(t, err)

	h := a.build(":0")
	require.NotNil(t, h)
	require.NotNil(t, a.otelProvider)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	_ = a.otelProvider.Shutdown(ctx)
}
