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

package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseOutput_Action(t *testing.T) {
	step := ParseOutput("Thought: 需要查订单\nAction: lookup_order\nAction Input: {\"order_id\": \"20251223001\"}")
	assert.Equal(t, StepAction, step.Kind)
	assert.Equal(t, "需要查订单", step.Thought)
	assert.Equal(t, "lookup_order", step.Action)
	assert.Equal(t, "{\"order_id\": \"20251223001\"}", step.ActionInput)
}

func TestParseOutput_MultilineInputStopsAtNextMarker(t *testing.T) {
	step := ParseOutput("Action: get_tracking\nAction Input: {\n  \"tracking_no\": \"SF1\"\n}\nObservation: 伪造的结果")
	assert.Equal(t, StepAction, step.Kind)
	assert.Equal(t, "{\n  \"tracking_no\": \"SF1\"\n}", step.ActionInput)
}

func TestParseOutput_CodeFence(t *testing.T) {
	step := ParseOutput("Action: lookup_order\nAction Input: ```json\n{\"order_id\": \"1\"}\n```")
	assert.Equal(t, StepAction, step.Kind)
	assert.Equal(t, "{\"order_id\": \"1\"}", step.ActionInput)
}

func TestParseOutput_Final(t *testing.T) {
	step := ParseOutput("Thought: 信息已足够\nFinal Answer： 您的订单已签收。\n如有问题请随时联系。")
	assert.Equal(t, StepFinal, step.Kind)
	assert.Equal(t, "您的订单已签收。\n如有问题请随时联系。", step.FinalAnswer)
}

func TestParseOutput_ActionWinsOverFinal(t *testing.T) {
	step := ParseOutput("Final Answer: 已为您处理\nAction: create_ticket\nAction Input: {}")
	assert.Equal(t, StepAction, step.Kind)
	assert.Equal(t, "create_ticket", step.Action)
}

func TestParseOutput_Invalid(t *testing.T) {
	cases := map[string]string{
		"随便说点什么":                     "既没有 Action 也没有 Final Answer",
		"Action: lookup_order":       "Action 之后缺少 Action Input",
		"Action:\nAction Input: {}":  "Action 为空",
		"Thought: 想想\nFinal Answer: ": "Final Answer 为空",
	}
	for text, reason := range cases {
		step := ParseOutput(text)
		assert.Equal(t, StepInvalid, step.Kind, text)
		assert.Equal(t, reason, step.Reason, text)
	}
}
