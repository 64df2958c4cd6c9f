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

package prompt

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"smart-mall/internal/model/llm"
)

func TestCompose_EmbedsCatalogAndMarkers(t *testing.T) {
	c := NewComposer("")
	out := c.Compose(Input{
		Catalog: []Tool{
			{Name: "lookup_order", Description: "查询订单"},
			{Name: "get_tracking", Description: "查询物流"},
		},
		History:    "user: 你好",
		UserInput:  "用户问题：我的快递到哪了",
		Scratchpad: "Thought: ",
	})
	assert.Contains(t, out, "lookup_order: 查询订单\nget_tracking: 查询物流")
	assert.Contains(t, out, "[lookup_order, get_tracking]")
	for _, marker := range []string{"Thought:", "Action:", "Action Input:", "Observation:", "Final Answer:"} {
		assert.Contains(t, out, marker)
	}
	assert.Contains(t, out, "对话历史：\nuser: 你好")
	assert.True(t, strings.HasSuffix(out, "用户问题：我的快递到哪了\n\nThought: "))
}

func TestCompose_SinglePass(t *testing.T) {
	c := NewComposer("{input}|{history}")
	out := c.Compose(Input{UserInput: "试试 {history}", History: "h"})
	assert.Equal(t, "试试 {history}|h", out)
}

func TestRenderHistory_KeepsLastWindow(t *testing.T) {
	var turns []llm.Message
	for i := 0; i < 12; i++ {
		turns = append(turns, llm.Message{Role: llm.RoleUser, Content: fmt.Sprintf("m%d", i)})
	}
	out := RenderHistory(turns, 10)
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 10)
	assert.Equal(t, "user: m2", lines[0])
	assert.Equal(t, "user: m11", lines[9])

	assert.Equal(t, "", RenderHistory(nil, 0))
}
