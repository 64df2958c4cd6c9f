package tool

import (
	"context"
)

// Name 工具名称；客服代理可调用的工具是封闭集合
type Name string

// 全部可调用工具
const (
	LookupOrder            Name = "lookup_order"
	GetTracking            Name = "get_tracking"
	CheckReturnEligibility Name = "check_return_eligibility"
	CreateAfterSale        Name = "create_after_sale"
	CreateTicket           Name = "create_ticket"
	IssueCoupon            Name = "issue_coupon"
	SearchProductsByName   Name = "search_products_by_name"
	GetProductDetail       Name = "get_product_detail"
)

// Names 返回全部工具名，顺序即提示词中的展示顺序
func Names() []Name {
	return []Name{
		LookupOrder,
		GetTracking,
		CheckReturnEligibility,
		CreateAfterSale,
		CreateTicket,
		IssueCoupon,
		SearchProductsByName,
		GetProductDetail,
	}
}

// Schema 表示工具参数的 JSON Schema
type Schema struct {
	Type        string                    `json:"type,omitempty"`
	Description string                    `json:"description,omitempty"`
	Properties  map[string]SchemaProperty `json:"properties,omitempty"`
	Required    []string                  `json:"required,omitempty"`
}

// SchemaProperty 表示 Schema 中单个属性的描述
type SchemaProperty struct {
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
}

// Result 工具的业务结果，必须可 JSON 序列化。
// 业务失败（如订单不存在）通过 Succeeded()==false 表达，不返回 error。
type Result interface {
	Succeeded() bool
}

// Tool 客服工具接口；Execute 仅在基础设施故障（如存储不可达）时返回 error
type Tool interface {
	Name() Name
	Description() string
	Schema() Schema
	Execute(ctx context.Context, args Args) (Result, error)
}
