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

// Package prompt 组装客服代理的 ReAct 提示词
package prompt

import (
	"strings"

	"smart-mall/internal/model/llm"
)

// DefaultHistoryWindow 渲染进提示词的默认历史轮数
const DefaultHistoryWindow = 10

// Template 客服 SOP 与输出协议；占位符由 Compose 一次性替换
const Template = `你是一个专业、耐心、流程清晰的电商客服智能体。你必须遵循SOP：
1) 先确认用户诉求（查订单/查物流/退货退款/催件/投诉/商品查询/其他）。
2) 如信息不足，先追问必要信息（订单号、手机号尾号、收件人、商品名称关键词等），再调用工具。
3) 涉及事实信息（订单状态、物流轨迹、是否可退、商品信息）必须调用工具获取，禁止凭空编造。
4) 当用户询问商品相关信息时，应使用search_products_by_name工具根据商品名称关键词进行查询。
5) 回复模板必须包含：当前进展/结论 + 下一步建议 + 如需补充信息则明确追问。
6) 对投诉/着急等情绪，先致歉+安抚，再给出动作（如创建工单、发补偿券）。

你可以使用以下工具:
{tools}

工具使用规范（必须严格输出格式）：
Thought: 你的思考
Action: 工具名称（必须是 [{tool_names}] 之一）
Action Input: 工具输入（必须是JSON对象字符串）
Observation: 工具返回结果
...（如需多次调用工具可重复以上步骤）
Final Answer: 给用户的最终回复（中文，客服口吻，按模板）

重要提醒：
- Action Input 必须是 JSON 对象字符串，例如：订单查询时传入键 order_id，可能还需要 phone_tail 或 receiver。
- 如果缺少必要信息，先在 Final Answer 里追问，不要强行调用工具。
- 每次只输出一个 Action，输出 Action Input 后立即停止，等待 Observation。

现在开始！

对话历史：
{history}

用户输入：
{input}

{agent_scratchpad}`

// Tool 提示词中展示的工具
type Tool struct {
	Name        string
	Description string
}

// Input Compose 的输入
type Input struct {
	Catalog    []Tool
	History    string // 已渲染的对话历史，见 RenderHistory
	UserInput  string // 已合并店铺/商品/订单上下文的用户输入
	Scratchpad string
}

// Composer 基于模板生成提示词
type Composer struct {
	template string
}

// NewComposer 创建 Composer；template 为空时使用 Template
func NewComposer(template string) *Composer {
	if template == "" {
		template = Template
	}
	return &Composer{template: template}
}

// Compose 生成完整提示词。替换只做一遍，用户输入中的 {input} 等文本原样保留
func (c *Composer) Compose(in Input) string {
	lines := make([]string, 0, len(in.Catalog))
	names := make([]string, 0, len(in.Catalog))
	for _, t := range in.Catalog {
		lines = append(lines, t.Name+": "+t.Description)
		names = append(names, t.Name)
	}
	r := strings.NewReplacer(
		"{tools}", strings.Join(lines, "\n"),
		"{tool_names}", strings.Join(names, ", "),
		"{history}", in.History,
		"{input}", in.UserInput,
		"{agent_scratchpad}", in.Scratchpad,
	)
	return r.Replace(c.template)
}

// RenderHistory 取最近 window 轮，逐行渲染为 "role: content"
func RenderHistory(turns []llm.Message, window int) string {
	if window <= 0 {
		window = DefaultHistoryWindow
	}
	if len(turns) > window {
		turns = turns[len(turns)-window:]
	}
	lines := make([]string, 0, len(turns))
	for _, m := range turns {
		lines = append(lines, m.Role+": "+m.Content)
	}
	return strings.Join(lines, "\n")
}
