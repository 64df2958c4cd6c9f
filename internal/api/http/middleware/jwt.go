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
	"crypto/subtle"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/hertz-contrib/jwt"

	"smart-mall/pkg/errors"
)

const identityKey = "operator"

// JWTConfig 管理接口鉴权配置
type JWTConfig struct {
	Key           string
	Timeout       time.Duration
	MaxRefresh    time.Duration
	AdminUser     string
	AdminPassword string
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Operator 通过鉴权的坐席身份
type Operator struct {
	Name string
}

// JWTAuth 封装 hertz-contrib/jwt，保护工单/售后等管理接口
type JWTAuth struct {
	mw *jwt.HertzJWTMiddleware
}

// NewJWTAuth 创建鉴权器；Key 或管理员账号为空时返回 ErrInvalidArg
func NewJWTAuth(cfg JWTConfig) (*JWTAuth, error) {
	if cfg.Key == "" {
		return nil, errors.Wrap(errors.ErrInvalidArg, "jwt key is empty")
	}
	if cfg.AdminUser == "" || cfg.AdminPassword == "" {
		return nil, errors.Wrap(errors.ErrInvalidArg, "admin credentials are empty")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = time.Hour
	}
	if cfg.MaxRefresh <= 0 {
		cfg.MaxRefresh = cfg.Timeout
	}

	mw, err := jwt.New(&jwt.HertzJWTMiddleware{
		Realm:       "smart-mall admin",
		Key:         []byte(cfg.Key),
		Timeout:     cfg.Timeout,
		MaxRefresh:  cfg.MaxRefresh,
		IdentityKey: identityKey,
		PayloadFunc: func(data interface{}) jwt.MapClaims {
			if op, ok := data.(*Operator); ok {
				return jwt.MapClaims{identityKey: op.Name}
			}
			return jwt.MapClaims{}
		},
		IdentityHandler: func(ctx context.Context, c *app.RequestContext) interface{} {
			claims := jwt.ExtractClaims(ctx, c)
			name, _ := claims[identityKey].(string)
			return &Operator{Name: name}
		},
		Authenticator: func(ctx context.Context, c *app.RequestContext) (interface{}, error) {
			var req loginRequest
			if err := c.BindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
				return nil, jwt.ErrMissingLoginValues
			}
			userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(cfg.AdminUser)) == 1
			passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(cfg.AdminPassword)) == 1
			if !userOK || !passOK {
				return nil, jwt.ErrFailedAuthentication
			}
			return &Operator{Name: req.Username}, nil
		},
		Authorizator: func(data interface{}, ctx context.Context, c *app.RequestContext) bool {
			op, ok := data.(*Operator)
			return ok && op.Name != ""
		},
		Unauthorized: func(ctx context.Context, c *app.RequestContext, code int, message string) {
			c.JSON(code, map[string]string{"error": message})
		},
		LoginResponse: func(ctx context.Context, c *app.RequestContext, code int, token string, expire time.Time) {
			c.JSON(consts.StatusOK, map[string]any{
				"token":  token,
				"expire": expire.Format(time.RFC3339),
			})
		},
	})
	if err != nil {
		return nil, err
	}
	return &JWTAuth{mw: mw}, nil
}

// LoginHandler 登录换取 token
// POST /api/admin/login
func (j *JWTAuth) LoginHandler() app.HandlerFunc {
	return j.mw.LoginHandler
}

// RefreshHandler 刷新 token
// GET /api/admin/refresh_token
func (j *JWTAuth) RefreshHandler() app.HandlerFunc {
	return j.mw.RefreshHandler
}

// Required 校验 Authorization: Bearer <token>
func (j *JWTAuth) Required() app.HandlerFunc {
	return j.mw.MiddlewareFunc()
}
