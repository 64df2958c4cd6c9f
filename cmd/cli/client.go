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

package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultBaseURL = "http://localhost:8000"

func apiBaseURL() string {
	if u := os.Getenv("MALL_API_URL"); u != "" {
		return u
	}
	return defaultBaseURL
}

// client 客服 API 客户端
type client struct {
	http *resty.Client
}

func newClient(baseURL string) *client {
	return &client{http: resty.New().
		SetBaseURL(baseURL).
		SetTimeout(90 * time.Second).
		SetHeader("Content-Type", "application/json")}
}

type chatRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message"`
	Reset     bool   `json:"reset,omitempty"`
	ProductID string `json:"product_id,omitempty"`
	ShopID    string `json:"shop_id,omitempty"`
	OrderNo   string `json:"order_no,omitempty"`
}

type chatStep struct {
	Action      string `json:"action"`
	ActionInput string `json:"action_input"`
	Observation string `json:"observation"`
}

type chatResponse struct {
	SessionID string     `json:"session_id"`
	Answer    string     `json:"answer"`
	Steps     []chatStep `json:"steps"`
	Outcome   string     `json:"outcome"`
}

type apiError struct {
	Error string `json:"error"`
}

func statusError(method, path string, resp *resty.Response) error {
	if e, ok := resp.Error().(*apiError); ok && e.Error != "" {
		return fmt.Errorf("%s %s: %d %s", method, path, resp.StatusCode(), e.Error)
	}
	return fmt.Errorf("%s %s: %d %s", method, path, resp.StatusCode(), resp.String())
}

func (c *client) health() error {
	resp, err := c.http.R().Get("/health")
	if err != nil {
		return err
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("GET /health: %d", resp.StatusCode())
	}
	return nil
}

func (c *client) chat(req chatRequest) (*chatResponse, error) {
	var out chatResponse
	resp, err := c.http.R().
		SetBody(req).
		SetResult(&out).
		SetError(&apiError{}).
		Post("/chat")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, statusError("POST", "/chat", resp)
	}
	return &out, nil
}

func (c *client) getJSON(path string, out any) error {
	resp, err := c.http.R().
		SetResult(out).
		SetError(&apiError{}).
		Get(path)
	if err != nil {
		return err
	}
	if resp.StatusCode() != http.StatusOK {
		return statusError("GET", path, resp)
	}
	return nil
}

// login 换取管理接口 token，之后的请求自动携带
func (c *client) login(user, password string) error {
	var out struct {
		Token string `json:"token"`
	}
	resp, err := c.http.R().
		SetBody(map[string]string{"username": user, "password": password}).
		SetResult(&out).
		SetError(&apiError{}).
		Post("/api/admin/login")
	if err != nil {
		return err
	}
	if resp.StatusCode() != http.StatusOK {
		return statusError("POST", "/api/admin/login", resp)
	}
	c.http.SetAuthToken(out.Token)
	return nil
}
