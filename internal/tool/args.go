package tool

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Args 结构化工具参数
type Args map[string]any

// DecodeArgs 将模型输出的 Action Input 转为参数映射。
// 已是映射则原样返回；字符串须为 JSON 对象，空白、非 JSON、非对象及其他类型一律得到空映射。
func DecodeArgs(raw any) Args {
	switch v := raw.(type) {
	case Args:
		if v == nil {
			return Args{}
		}
		return v
	case map[string]any:
		if v == nil {
			return Args{}
		}
		return Args(v)
	case string:
		return decodeString(v)
	case []byte:
		return decodeString(string(v))
	default:
		return Args{}
	}
}

func decodeString(s string) Args {
	s = strings.TrimSpace(s)
	if s == "" {
		return Args{}
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(s), &out); err != nil || out == nil {
		return Args{}
	}
	return Args(out)
}

// String 读取字符串参数并去除首尾空白；数字等标量会被格式化为字符串
func (a Args) String(key string) string {
	switch v := a[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// StringOr 读取字符串参数，缺省或为空时返回 def
func (a Args) StringOr(key, def string) string {
	if s := a.String(key); s != "" {
		return s
	}
	return def
}

// Int 读取整数参数；缺省或无法解析时返回 def
func (a Args) Int(key string, def int) int {
	switch v := a[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}

// Has 判断参数是否提供了非空值
func (a Args) Has(key string) bool {
	return a.String(key) != ""
}
