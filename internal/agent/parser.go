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
	"strings"
)

// StepKind 单次补全解析出的步骤类型
type StepKind int

const (
	StepInvalid StepKind = iota
	StepAction
	StepFinal
)

// Step 补全的解析结果
type Step struct {
	Kind        StepKind
	Thought     string
	Action      string
	ActionInput string
	FinalAnswer string
	Reason      string // StepInvalid 时的原因，会反馈给模型
}

type marker int

const (
	markerNone marker = iota
	markerThought
	markerAction
	markerActionInput
	markerObservation
	markerFinal
)

// 按前缀长度从长到短匹配，"Action Input" 必须先于 "Action"
var markers = []struct {
	label string
	kind  marker
}{
	{"Action Input", markerActionInput},
	{"Final Answer", markerFinal},
	{"Observation", markerObservation},
	{"Thought", markerThought},
	{"Action", markerAction},
}

// matchMarker 判断行首是否为协议标记，返回标记及其后的文本；中英文冒号均可
func matchMarker(line string) (marker, string) {
	s := strings.TrimLeft(line, " \t")
	for _, m := range markers {
		if !strings.HasPrefix(s, m.label) {
			continue
		}
		rest := s[len(m.label):]
		switch {
		case strings.HasPrefix(rest, ":"):
			return m.kind, rest[1:]
		case strings.HasPrefix(rest, "："):
			return m.kind, rest[len("："):]
		}
	}
	return markerNone, ""
}

// ParseOutput 解析一次补全。每个字段从标记行开始，到下一个标记行结束；
// 同一标记出现多次时取第一次。完整的 Action + Action Input 优先于 Final Answer。
func ParseOutput(text string) Step {
	fields := make(map[marker]*strings.Builder)
	current := markerNone
	for _, line := range strings.Split(text, "\n") {
		if m, rest := matchMarker(line); m != markerNone {
			if _, seen := fields[m]; seen {
				current = markerNone
				continue
			}
			b := &strings.Builder{}
			b.WriteString(rest)
			fields[m] = b
			current = m
			continue
		}
		if current != markerNone {
			fields[current].WriteString("\n")
			fields[current].WriteString(line)
		}
	}
	get := func(m marker) (string, bool) {
		b, ok := fields[m]
		if !ok {
			return "", false
		}
		return strings.TrimSpace(b.String()), true
	}

	step := Step{}
	step.Thought, _ = get(markerThought)
	action, hasAction := get(markerAction)
	input, hasInput := get(markerActionInput)
	final, hasFinal := get(markerFinal)

	action = strings.Trim(action, "`\"' ")
	if hasAction && action != "" && hasInput {
		step.Kind = StepAction
		step.Action = action
		step.ActionInput = stripCodeFence(input)
		return step
	}
	if hasFinal && final != "" {
		step.Kind = StepFinal
		step.FinalAnswer = final
		return step
	}
	step.Kind = StepInvalid
	switch {
	case hasAction && action == "":
		step.Reason = "Action 为空"
	case hasAction:
		step.Reason = "Action 之后缺少 Action Input"
	case hasFinal:
		step.Reason = "Final Answer 为空"
	default:
		step.Reason = "既没有 Action 也没有 Final Answer"
	}
	return step
}

// stripCodeFence 去掉 ```json ... ``` 包裹
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.Index(s, "\n"); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
