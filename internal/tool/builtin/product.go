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
	"context"
	"fmt"

	"smart-mall/internal/storage/commerce"
	"smart-mall/internal/tool"
	"smart-mall/pkg/errors"
)

const (
	defaultSearchResults = 5
	maxSearchResults     = 20
)

// ProductSearchResult search_products_by_name 的结果
type ProductSearchResult struct {
	Success  bool                `json:"success"`
	Message  string              `json:"message"`
	Products []*commerce.Product `json:"products"`
}

func (r *ProductSearchResult) Succeeded() bool { return r.Success }

// SearchProductsTool 实现 search_products_by_name；匹配忽略空白与大小写
type SearchProductsTool struct {
	deps Deps
}

// NewSearchProductsTool 创建 search_products_by_name 工具
func NewSearchProductsTool(deps Deps) *SearchProductsTool { return &SearchProductsTool{deps: deps} }

func (t *SearchProductsTool) Name() tool.Name { return tool.SearchProductsByName }

func (t *SearchProductsTool) Description() string {
	return "根据商品名称模糊查询商品。输入JSON键：name（必填，商品名称关键词），max_results（可选，返回的最大结果数，默认5）。返回查询结果列表。"
}

func (t *SearchProductsTool) Schema() tool.Schema {
	return tool.Schema{
		Type: "object",
		Properties: map[string]tool.SchemaProperty{
			"name":        {Type: "string", Description: "商品名称关键词"},
			"max_results": {Type: "integer", Description: "最大结果数（1-20）"},
		},
		Required: []string{"name"},
	}
}

func (t *SearchProductsTool) Execute(ctx context.Context, args tool.Args) (tool.Result, error) {
	name := args.String("name")
	if name == "" {
		return &ProductSearchResult{Message: "商品名称不能为空", Products: []*commerce.Product{}}, nil
	}
	limit := args.Int("max_results", defaultSearchResults)
	if limit < 1 {
		limit = 1
	}
	if limit > maxSearchResults {
		limit = maxSearchResults
	}
	products, err := t.deps.Products.SearchProducts(ctx, name, limit)
	if err != nil {
		return nil, errors.Wrapf(err, "搜索商品 %q", name)
	}
	if products == nil {
		products = []*commerce.Product{}
	}
	return &ProductSearchResult{
		Success:  true,
		Message:  fmt.Sprintf("找到 %d 个相关商品", len(products)),
		Products: products,
	}, nil
}

// ProductDetailResult get_product_detail 的结果
type ProductDetailResult struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Product *commerce.Product `json:"product"`
}

func (r *ProductDetailResult) Succeeded() bool { return r.Success }

// ProductDetailTool 实现 get_product_detail
type ProductDetailTool struct {
	deps Deps
}

// NewProductDetailTool 创建 get_product_detail 工具
func NewProductDetailTool(deps Deps) *ProductDetailTool { return &ProductDetailTool{deps: deps} }

func (t *ProductDetailTool) Name() tool.Name { return tool.GetProductDetail }

func (t *ProductDetailTool) Description() string {
	return "根据商品ID查询商品详情。输入JSON键：product_id（必填）。返回商品详细信息。"
}

func (t *ProductDetailTool) Schema() tool.Schema {
	return tool.Schema{
		Type:       "object",
		Properties: map[string]tool.SchemaProperty{"product_id": {Type: "string", Description: "商品ID"}},
		Required:   []string{"product_id"},
	}
}

func (t *ProductDetailTool) Execute(ctx context.Context, args tool.Args) (tool.Result, error) {
	id := args.String("product_id")
	if id == "" {
		return &ProductDetailResult{Message: "商品ID不能为空"}, nil
	}
	p, err := t.deps.Products.GetProduct(ctx, id)
	if err != nil {
		return nil, errors.Wrapf(err, "查询商品 %s", id)
	}
	if p == nil {
		return &ProductDetailResult{Message: "未找到该商品"}, nil
	}
	return &ProductDetailResult{Success: true, Message: "查询成功", Product: p}, nil
}
