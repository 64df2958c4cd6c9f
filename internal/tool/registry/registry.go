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

package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"smart-mall/internal/tool"
	"smart-mall/pkg/metrics"
	"smart-mall/pkg/tracing"
)

// Registry 不可变的工具注册表：构建后既是提示词中的工具目录，也是按名分发表
type Registry struct {
	order []tool.Name
	tools map[tool.Name]tool.Tool
}

// Declaration 提供给模型的工具声明
type Declaration struct {
	Name        tool.Name   `json:"name"`
	Description string      `json:"description"`
	Parameters  tool.Schema `json:"parameters"`
}

// UnknownToolError 模型请求了未注册的工具；循环将其作为观察结果反馈给模型
type UnknownToolError struct {
	Name  string
	Known []tool.Name
}

func (e *UnknownToolError) Error() string {
	known := make([]string, len(e.Known))
	for i, n := range e.Known {
		known[i] = string(n)
	}
	return fmt.Sprintf("%s 不是有效的工具，请从 [%s] 中选择。", e.Name, strings.Join(known, ", "))
}

// ToolError 工具执行时的基础设施故障，终止本次调用
type ToolError struct {
	Name tool.Name
	Err  error
}

func (e *ToolError) Error() string { return fmt.Sprintf("工具 %s 执行失败: %v", e.Name, e.Err) }

func (e *ToolError) Unwrap() error { return e.Err }

// New 用给定工具构建注册表；名称为空或重复时返回错误
func New(tools ...tool.Tool) (*Registry, error) {
	r := &Registry{tools: make(map[tool.Name]tool.Tool, len(tools))}
	for _, t := range tools {
		if t == nil || t.Name() == "" {
			return nil, fmt.Errorf("工具名称不能为空")
		}
		if _, dup := r.tools[t.Name()]; dup {
			return nil, fmt.Errorf("工具重复注册: %s", t.Name())
		}
		r.tools[t.Name()] = t
		r.order = append(r.order, t.Name())
	}
	return r, nil
}

// Names 按注册顺序返回工具名
func (r *Registry) Names() []tool.Name {
	return append([]tool.Name(nil), r.order...)
}

// Catalog 按注册顺序返回工具声明
func (r *Registry) Catalog() []Declaration {
	list := make([]Declaration, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		list = append(list, Declaration{Name: name, Description: t.Description(), Parameters: t.Schema()})
	}
	return list
}

// CatalogJSON 返回工具声明的 JSON，供管理端查看
func (r *Registry) CatalogJSON() ([]byte, error) {
	return json.Marshal(r.Catalog())
}

// Validate 校验注册表与期望的工具集合完全一致，且每个工具的描述覆盖其全部参数
func (r *Registry) Validate(expected []tool.Name) error {
	want := make(map[tool.Name]bool, len(expected))
	for _, n := range expected {
		want[n] = true
	}
	var missing, extra []string
	for n := range want {
		if _, ok := r.tools[n]; !ok {
			missing = append(missing, string(n))
		}
	}
	for n := range r.tools {
		if !want[n] {
			extra = append(extra, string(n))
		}
	}
	if len(missing) > 0 || len(extra) > 0 {
		sort.Strings(missing)
		sort.Strings(extra)
		return fmt.Errorf("工具注册表与声明不一致: missing=%v extra=%v", missing, extra)
	}
	for _, name := range r.order {
		t := r.tools[name]
		desc := t.Description()
		if strings.TrimSpace(desc) == "" {
			return fmt.Errorf("工具 %s 缺少描述", name)
		}
		schema := t.Schema()
		for _, req := range schema.Required {
			if _, ok := schema.Properties[req]; !ok {
				return fmt.Errorf("工具 %s 的必填参数 %s 未在 Schema 中声明", name, req)
			}
		}
		for key := range schema.Properties {
			if !strings.Contains(desc, key) {
				return fmt.Errorf("工具 %s 的描述未说明参数 %s", name, key)
			}
		}
	}
	return nil
}

// Dispatch 按名称执行工具。
// 未注册返回 *UnknownToolError；工具自身的基础设施故障包装为 *ToolError；业务失败体现在 Result 中。
func (r *Registry) Dispatch(ctx context.Context, name string, args tool.Args) (tool.Result, error) {
	t, ok := r.tools[tool.Name(name)]
	if !ok {
		metrics.ToolCallsTotal.WithLabelValues("unknown", "unknown").Inc()
		return nil, &UnknownToolError{Name: name, Known: r.Names()}
	}
	ctx, span := tracing.StartToolSpan(ctx, name)
	defer span.End()

	start := time.Now()
	res, err := t.Execute(ctx, args)
	metrics.ToolDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	status := "ok"
	switch {
	case err != nil:
		status = "infra_fail"
		span.RecordError(err)
	case res == nil || !res.Succeeded():
		status = "business_fail"
	}
	tracing.SetToolStatus(span, status)
	metrics.ToolCallsTotal.WithLabelValues(name, status).Inc()
	if err != nil {
		return nil, &ToolError{Name: t.Name(), Err: err}
	}
	return res, nil
}
