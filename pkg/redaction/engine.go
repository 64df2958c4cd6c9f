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

package redaction

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

const redacted = "***"

// Engine 脱敏引擎；policy 为 nil 时原样返回
type Engine struct {
	policy *Policy
}

// NewEngine 创建脱敏引擎
func NewEngine(policy *Policy) *Engine {
	return &Engine{policy: policy}
}

// Redact 对 JSON 文本应用该工具的规则与全局规则；非 JSON 对象原样返回
func (e *Engine) Redact(toolName, data string) string {
	if e == nil || e.policy == nil || data == "" {
		return data
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(data), &obj); err != nil {
		return data
	}
	for _, rule := range e.policy.ToolRules[toolName] {
		apply(obj, strings.Split(rule.FieldPath, "."), rule)
	}
	for _, rule := range e.policy.GlobalRules {
		apply(obj, strings.Split(rule.FieldPath, "."), rule)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(obj); err != nil {
		return data
	}
	return strings.TrimRight(buf.String(), "\n")
}

func apply(node any, path []string, rule FieldMask) {
	switch v := node.(type) {
	case []any:
		for _, item := range v {
			apply(item, path, rule)
		}
	case map[string]any:
		if len(path) > 1 {
			apply(v[path[0]], path[1:], rule)
			return
		}
		value, ok := v[path[0]]
		if !ok || value == nil {
			return
		}
		switch rule.Mode {
		case ModeRedact:
			v[path[0]] = redacted
		case ModeMask:
			v[path[0]] = mask(fmt.Sprint(value))
		case ModeHash:
			v[path[0]] = hash(fmt.Sprint(value), rule.Salt)
		case ModeRemove:
			delete(v, path[0])
		}
	}
}

func mask(s string) string {
	r := []rune(s)
	if len(r) <= 1 {
		return redacted
	}
	return string(r[0]) + strings.Repeat("*", len(r)-1)
}

func hash(value, salt string) string {
	h := sha256.New()
	h.Write([]byte(value))
	h.Write([]byte(salt))
	return "hash:" + hex.EncodeToString(h.Sum(nil))[:16]
}
