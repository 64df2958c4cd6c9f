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

// State 循环状态
type State string

const (
	StateThinking       State = "THINKING"
	StateActing         State = "ACTING"
	StateAnswered       State = "ANSWERED"
	StateParseError     State = "PARSE_ERROR"
	StateBudgetExceeded State = "BUDGET_EXCEEDED"
)

// Outcome 单次调用的终态，用于指标与日志
type Outcome string

const (
	OutcomeAnswered         Outcome = "answered"
	OutcomeBudgetExceeded   Outcome = "budget_exceeded"
	OutcomeToolFailed       Outcome = "tool_failed"
	OutcomeCompletionFailed Outcome = "completion_failed"
)

// 降级回复
const (
	AnswerHandoff         = "抱歉，这个问题我暂时没能处理完，已为您记录，稍后会有人工客服跟进。您也可以补充订单号或问题细节，方便我们更快为您处理。"
	AnswerCompletionBusy  = "抱歉，系统繁忙，请稍后再试。"
	AnswerToolUnavailable = "抱歉，相关查询服务暂时不可用，请稍后再试，或联系人工客服为您处理。"
)
