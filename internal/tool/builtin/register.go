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

package builtin

import (
	"smart-mall/internal/tool"
	"smart-mall/internal/tool/registry"
)

// Tools 返回全部内置工具，顺序与 tool.Names() 一致
func Tools(deps Deps) []tool.Tool {
	return []tool.Tool{
		NewLookupOrderTool(deps),
		NewGetTrackingTool(deps),
		NewReturnEligibilityTool(deps),
		NewCreateAfterSaleTool(deps),
		NewCreateTicketTool(deps),
		NewIssueCouponTool(deps),
		NewSearchProductsTool(deps),
		NewProductDetailTool(deps),
	}
}

// NewRegistry 用内置工具构建注册表，并校验工具集合与描述完整
func NewRegistry(deps Deps) (*registry.Registry, error) {
	reg, err := registry.New(Tools(deps)...)
	if err != nil {
		return nil, err
	}
	if err := reg.Validate(tool.Names()); err != nil {
		return nil, err
	}
	return reg, nil
}
