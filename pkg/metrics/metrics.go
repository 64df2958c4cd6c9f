package metrics

import (
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// 全局 Registry，供 API 注册与暴露
var DefaultRegistry = prometheus.NewRegistry()

func init() {
	DefaultRegistry.MustRegister(
		AgentInvocationsTotal, AgentIterations, AgentParseErrorsTotal,
		ToolCallsTotal, ToolDuration,
		LLMRequestDuration, LLMErrorsTotal,
		RateLimitWaitSeconds, HTTPRequestsTotal,
	)
}

// AgentInvocationsTotal 客服代理调用总数（按终态）
var AgentInvocationsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "mall_agent_invocations_total",
		Help: "客服代理调用总数（按终态）",
	},
	[]string{"outcome"}, // answered | budget_exceeded | completion_failed | tool_failed
)

// AgentIterations 单次调用消耗的迭代数
var AgentIterations = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "mall_agent_iterations",
		Help:    "单次调用消耗的迭代数",
		Buckets: []float64{1, 2, 3, 4, 5, 6, 8, 10},
	},
)

// AgentParseErrorsTotal 模型输出无法解析的次数
var AgentParseErrorsTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "mall_agent_parse_errors_total",
		Help: "模型输出无法解析的次数",
	},
)

// ToolCallsTotal 工具调用总数
var ToolCallsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "mall_tool_calls_total",
		Help: "工具调用总数",
	},
	[]string{"tool", "result"}, // ok | business_fail | infra_fail | unknown
)

// ToolDuration 工具调用耗时（秒）
var ToolDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "mall_tool_duration_seconds",
		Help:    "工具调用耗时（秒）",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"tool"},
)

// LLMRequestDuration LLM 补全耗时（秒）
var LLMRequestDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "mall_llm_request_duration_seconds",
		Help:    "LLM 补全耗时（秒）",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	},
	[]string{"provider"},
)

// LLMErrorsTotal LLM 补全失败次数
var LLMErrorsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "mall_llm_errors_total",
		Help: "LLM 补全失败次数",
	},
	[]string{"provider"},
)

// RateLimitWaitSeconds 限流等待耗时（秒）
var RateLimitWaitSeconds = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "mall_rate_limit_wait_seconds",
		Help:    "限流等待耗时（秒）",
		Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
	},
	[]string{"type", "name"}, // type: llm | http
)

// HTTPRequestsTotal HTTP 请求总数
var HTTPRequestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "mall_http_requests_total",
		Help: "HTTP 请求总数",
	},
	[]string{"path", "code"},
)

// WritePrometheus 将 Prometheus 文本格式写入 w（供 Hertz 等复用）
func WritePrometheus(w io.Writer) error {
	metrics, err := DefaultRegistry.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.FmtText)
	for _, mf := range metrics {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
