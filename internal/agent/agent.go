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

// Package agent 电商客服的 ReAct 循环：组装提示词、调用模型、解析输出、分派工具
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"smart-mall/internal/agent/prompt"
	"smart-mall/internal/model/llm"
	"smart-mall/internal/tool"
	"smart-mall/internal/tool/registry"
	"smart-mall/pkg/errors"
	"smart-mall/pkg/log"
	"smart-mall/pkg/metrics"
	"smart-mall/pkg/redaction"
	"smart-mall/pkg/tracing"
)

// DefaultMaxIterations 单次调用默认的补全次数上限
const DefaultMaxIterations = 6

const parseErrorObservation = "无法解析你的输出（%s）。请严格按格式输出：Thought/Action/Action Input，或 Thought/Final Answer。"

// ToolDispatcher 工具注册表，*registry.Registry 实现了该接口
type ToolDispatcher interface {
	Catalog() []registry.Declaration
	Dispatch(ctx context.Context, name string, args tool.Args) (tool.Result, error)
}

// Request 单次调用输入；History 为本条消息之前的对话
type Request struct {
	SessionID     string
	UserMessage   string
	History       []llm.Message
	ContextPrefix string // 店铺人设、商品与订单上下文，由调用方生成
}

// Result 单次调用结果；NewTurns 交给调用方写回会话
type Result struct {
	Answer     string         `json:"answer"`
	Trace      []ActionRecord `json:"trace"`
	Outcome    Outcome        `json:"outcome"`
	State      State          `json:"state"`
	Iterations int            `json:"iterations"`
	Duration   time.Duration  `json:"duration"`
	NewTurns   []llm.Message  `json:"-"`
}

// Agent 客服代理；构造后只读，可被多个请求并发使用
type Agent struct {
	tools         ToolDispatcher
	completer     llm.Completer
	composer      *prompt.Composer
	maxIterations int
	historyWindow int
	timeout       time.Duration
	stop          []string
	logger        *log.Logger
	redactor      *redaction.Engine
}

// AgentOption 可选配置
type AgentOption func(*Agent)

// WithMaxIterations 设置单次调用的补全次数上限，<=0 忽略
func WithMaxIterations(n int) AgentOption {
	return func(a *Agent) {
		if n > 0 {
			a.maxIterations = n
		}
	}
}

// WithHistoryWindow 设置渲染进提示词的历史轮数
func WithHistoryWindow(n int) AgentOption {
	return func(a *Agent) {
		if n > 0 {
			a.historyWindow = n
		}
	}
}

// WithTimeout 设置单次调用截止时间，到期按预算耗尽处理
func WithTimeout(d time.Duration) AgentOption {
	return func(a *Agent) { a.timeout = d }
}

// WithStop 覆盖默认停止序列
func WithStop(stop []string) AgentOption {
	return func(a *Agent) {
		if len(stop) > 0 {
			a.stop = stop
		}
	}
}

// WithComposer 替换提示词模板
func WithComposer(c *prompt.Composer) AgentOption {
	return func(a *Agent) {
		if c != nil {
			a.composer = c
		}
	}
}

// WithLogger 设置日志
func WithLogger(l *log.Logger) AgentOption {
	return func(a *Agent) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithRedactor 调试日志中的工具参数与观察先经脱敏
func WithRedactor(e *redaction.Engine) AgentOption {
	return func(a *Agent) { a.redactor = e }
}

// New 创建 Agent
func New(tools ToolDispatcher, completer llm.Completer, opts ...AgentOption) *Agent {
	a := &Agent{
		tools:         tools,
		completer:     completer,
		composer:      prompt.NewComposer(""),
		maxIterations: DefaultMaxIterations,
		historyWindow: prompt.DefaultHistoryWindow,
		stop:          llm.DefaultStop,
		logger:        log.Discard(),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Invoke 执行一次客服对话。模型或工具故障均降级为回复文本，
// 只有配置缺失或消息为空时返回 error。
func (a *Agent) Invoke(ctx context.Context, req Request) (*Result, error) {
	if a.tools == nil || a.completer == nil {
		return nil, errors.Wrap(errors.ErrUnavailable, "agent 未正确配置（缺少工具注册表或模型）")
	}
	if strings.TrimSpace(req.UserMessage) == "" {
		return nil, errors.Wrap(errors.ErrInvalidArg, "消息不能为空")
	}
	start := time.Now()
	ctx, span := tracing.StartInvokeSpan(ctx, req.SessionID)
	defer span.End()
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	run := &invocation{
		agent:   a,
		logger:  a.logger.With("session_id", req.SessionID),
		catalog: promptCatalog(a.tools.Catalog()),
		history: prompt.RenderHistory(req.History, a.historyWindow),
		input:   req.ContextPrefix + "用户问题：" + req.UserMessage,
		state:   StateThinking,
		trace:   &Collector{},
	}
	answer, outcome := run.loop(ctx)

	result := &Result{
		Answer:     answer,
		Trace:      run.trace.Records(),
		Outcome:    outcome,
		State:      run.state,
		Iterations: run.iterations,
		Duration:   time.Since(start),
		NewTurns: []llm.Message{
			{Role: llm.RoleUser, Content: req.UserMessage},
			{Role: llm.RoleAssistant, Content: answer},
		},
	}
	tracing.EndInvoke(span, string(outcome), run.iterations)
	metrics.AgentInvocationsTotal.WithLabelValues(string(outcome)).Inc()
	metrics.AgentIterations.Observe(float64(run.iterations))
	run.logger.Info("agent invocation finished",
		"outcome", outcome,
		"state", run.state,
		"iterations", run.iterations,
		"actions", run.trace.Len(),
		"duration_ms", result.Duration.Milliseconds())
	return result, nil
}

// invocation 单次调用的可变状态
type invocation struct {
	agent      *Agent
	logger     *log.Logger
	catalog    []prompt.Tool
	history    string
	input      string
	scratchpad strings.Builder
	state      State
	iterations int
	trace      *Collector
}

func (r *invocation) transition(s State) {
	r.logger.Debug("agent state", "from", r.state, "to", s, "iteration", r.iterations)
	r.state = s
}

func (r *invocation) loop(ctx context.Context) (string, Outcome) {
	a := r.agent
	for r.iterations < a.maxIterations {
		if ctx.Err() != nil {
			break
		}
		text, err := a.completer.Complete(ctx, a.composer.Compose(prompt.Input{
			Catalog:    r.catalog,
			History:    r.history,
			UserInput:  r.input,
			Scratchpad: r.scratchpad.String(),
		}), a.stop)
		r.iterations++
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			r.logger.Error("completion failed", "iteration", r.iterations, "error", err)
			return AnswerCompletionBusy, OutcomeCompletionFailed
		}

		step := ParseOutput(text)
		switch step.Kind {
		case StepFinal:
			r.transition(StateAnswered)
			return step.FinalAnswer, OutcomeAnswered
		case StepInvalid:
			r.transition(StateParseError)
			metrics.AgentParseErrorsTotal.Inc()
			r.logger.Warn("unparsable completion", "iteration", r.iterations, "reason", step.Reason)
			r.appendScratchpad(text, fmt.Sprintf(parseErrorObservation, step.Reason))
		case StepAction:
			r.transition(StateActing)
			observation, err := r.act(ctx, step)
			if err == nil {
				r.trace.Record(ActionRecord{Action: step.Action, ActionInput: step.ActionInput, Observation: observation})
				r.logger.Debug("tool observation",
					"iteration", r.iterations,
					"tool", step.Action,
					"input", a.redactor.Redact(step.Action, step.ActionInput),
					"observation", a.redactor.Redact(step.Action, observation))
				r.appendScratchpad(text, observation)
			} else if ctx.Err() == nil {
				r.logger.Error("tool failed", "tool", step.Action, "error", err)
				return AnswerToolUnavailable, OutcomeToolFailed
			}
		}
		if ctx.Err() != nil {
			break
		}
		r.transition(StateThinking)
	}
	r.transition(StateBudgetExceeded)
	if ctx.Err() != nil {
		r.logger.Warn("agent deadline exceeded", "iterations", r.iterations)
	} else {
		r.logger.Warn("agent iteration budget exhausted", "iterations", r.iterations)
	}
	return AnswerHandoff, OutcomeBudgetExceeded
}

// act 分派工具并返回观察文本；未知工具作为观察反馈给模型，只有基础设施故障返回 error
func (r *invocation) act(ctx context.Context, step Step) (string, error) {
	res, err := r.agent.tools.Dispatch(ctx, step.Action, tool.DecodeArgs(step.ActionInput))
	if err != nil {
		var unknown *registry.UnknownToolError
		if errors.As(err, &unknown) {
			return unknown.Error(), nil
		}
		return "", err
	}
	return marshalObservation(res)
}

func (r *invocation) appendScratchpad(completion, observation string) {
	r.scratchpad.WriteString(strings.TrimRight(completion, " \t\n"))
	r.scratchpad.WriteString("\nObservation: ")
	r.scratchpad.WriteString(observation)
	r.scratchpad.WriteString("\nThought: ")
}

// marshalObservation 结果序列化为 JSON，中文与 <>& 不转义
func marshalObservation(res tool.Result) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(res); err != nil {
		return "", errors.Wrap(err, "序列化工具结果")
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

func promptCatalog(decls []registry.Declaration) []prompt.Tool {
	out := make([]prompt.Tool, 0, len(decls))
	for _, d := range decls {
		out = append(out, prompt.Tool{Name: string(d.Name), Description: d.Description})
	}
	return out
}
