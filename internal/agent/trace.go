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

// ActionRecord 一次工具调用的审计记录
type ActionRecord struct {
	Action      string `json:"action"`
	ActionInput string `json:"action_input"`
	Observation string `json:"observation"`
}

// Collector 按调用顺序收集单次调用内的 ActionRecord，不去重、不持久化
type Collector struct {
	records []ActionRecord
}

// Record 追加一条记录
func (c *Collector) Record(r ActionRecord) {
	c.records = append(c.records, r)
}

// Records 返回记录副本；无记录时返回空切片
func (c *Collector) Records() []ActionRecord {
	out := make([]ActionRecord, len(c.records))
	copy(out, c.records)
	return out
}

// Len 已收集条数
func (c *Collector) Len() int { return len(c.records) }
