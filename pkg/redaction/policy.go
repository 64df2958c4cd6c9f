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

// Package redaction 日志中客户信息的脱敏
package redaction

// Mode 脱敏模式
type Mode string

const (
	ModeRedact Mode = "redact" // 替换为 "***"
	ModeMask   Mode = "mask"   // 保留首字符，其余替换为 *
	ModeHash   Mode = "hash"   // 替换为 SHA256 hash
	ModeRemove Mode = "remove" // 完全移除字段
)

// FieldMask 字段掩码；FieldPath 以 . 分隔，途经数组时对每个元素生效
type FieldMask struct {
	FieldPath string
	Mode      Mode
	Salt      string
}

// Policy 脱敏策略
type Policy struct {
	ToolRules   map[string][]FieldMask // 工具名 -> 规则
	GlobalRules []FieldMask
}

// DefaultPolicy 工具参数与观察中的收件人、手机尾号、物流单号
func DefaultPolicy() *Policy {
	return &Policy{
		GlobalRules: []FieldMask{
			{FieldPath: "receiver", Mode: ModeMask},
			{FieldPath: "phone_tail", Mode: ModeRedact},
			{FieldPath: "order.receiver", Mode: ModeMask},
			{FieldPath: "order.phone_tail", Mode: ModeRedact},
			{FieldPath: "coupon.receiver", Mode: ModeMask},
		},
		ToolRules: map[string][]FieldMask{
			"lookup_order": {{FieldPath: "order.tracking_no", Mode: ModeHash}},
		},
	}
}
