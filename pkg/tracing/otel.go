// Copyright 2026 fanjia1024
// OpenTelemetry integration for distributed tracing

package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "smart-mall"

// OTelConfig OTLP/HTTP 导出配置
type OTelConfig struct {
	ServiceName    string
	ExportEndpoint string // host:port，不带 scheme
	Insecure       bool
}

// InitTracer 创建 OTLP/HTTP 导出的 TracerProvider 并设为全局
func InitTracer(config OTelConfig) (*sdktrace.TracerProvider, error) {
	ctx := context.Background()
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(config.ExportEndpoint)}
	if config.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, err
	}
	res, err := resource.Merge(resource.Default(),
		resource.NewSchemaless(semconv.ServiceName(config.ServiceName)))
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter), sdktrace.WithResource(res))
	otel.SetTracerProvider(tp)
	return tp, nil
}

func start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name, trace.WithAttributes(attrs...))
}

// StartInvokeSpan 一次客服调用
func StartInvokeSpan(ctx context.Context, sessionID string) (context.Context, trace.Span) {
	return start(ctx, "agent.invoke", attribute.String("session.id", sessionID))
}

// EndInvoke 记录调用结果；非 answered 的结果标为 Error 状态
func EndInvoke(span trace.Span, outcome string, iterations int) {
	span.SetAttributes(
		attribute.String("agent.outcome", outcome),
		attribute.Int("agent.iterations", iterations),
	)
	if outcome != "answered" {
		span.SetStatus(codes.Error, outcome)
	}
}

// StartCompletionSpan 一次模型补全
func StartCompletionSpan(ctx context.Context, provider, model string) (context.Context, trace.Span) {
	return start(ctx, "llm.complete",
		attribute.String("llm.provider", provider),
		attribute.String("llm.model", model))
}

// StartToolSpan 一次工具执行
func StartToolSpan(ctx context.Context, toolName string) (context.Context, trace.Span) {
	return start(ctx, "tool.invoke", attribute.String("tool.name", toolName))
}

// SetToolStatus ok | business_fail | infra_fail
func SetToolStatus(span trace.Span, status string) {
	span.SetAttributes(attribute.String("tool.status", status))
}
