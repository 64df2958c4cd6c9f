package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	"smart-mall/pkg/metrics"
	"smart-mall/pkg/tracing"
)

// DefaultStop ReAct 协议的默认停止序列：模型不得自行续写 Observation
var DefaultStop = []string{"\nObservation:", "\n\tObservation:"}

// Completer 文本补全能力：prompt 进，截断后的文本出
type Completer interface {
	Complete(ctx context.Context, prompt string, stop []string) (string, error)
}

// CompletionError 补全失败，Diagnostic 保留提供商原始诊断信息
type CompletionError struct {
	Provider   string
	Model      string
	Diagnostic string
	Err        error
}

func (e *CompletionError) Error() string {
	return "completion failed (" + e.Provider + "/" + e.Model + "): " + e.Diagnostic
}

func (e *CompletionError) Unwrap() error { return e.Err }

// ClientCompleter 将任意 Client 适配为 Completer
type ClientCompleter struct {
	client  Client
	options GenerateOptions
}

// NewCompleter 创建 Completer；options.Stop 会被每次调用传入的 stop 覆盖
func NewCompleter(client Client, options GenerateOptions) *ClientCompleter {
	return &ClientCompleter{client: client, options: options}
}

// Complete 调用模型并在首个停止序列处截断；失败统一为 *CompletionError
func (c *ClientCompleter) Complete(ctx context.Context, prompt string, stop []string) (string, error) {
	provider := c.client.Provider()
	ctx, span := tracing.StartCompletionSpan(ctx, provider, c.client.Model())
	defer span.End()

	opts := c.options
	opts.Stop = stop
	start := time.Now()
	text, err := c.client.GenerateWithContext(ctx, prompt, opts)
	metrics.LLMRequestDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.LLMErrorsTotal.WithLabelValues(provider).Inc()
		span.RecordError(err)
		return "", &CompletionError{
			Provider:   provider,
			Model:      c.client.Model(),
			Diagnostic: diagnostic(err),
			Err:        err,
		}
	}
	// 提供商可能忽略 stop 参数，这里再截断一次
	return TruncateAtStop(text, stop), nil
}

func diagnostic(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Body
	}
	return err.Error()
}

// TruncateAtStop 返回 text 在任一停止序列最早出现处之前的部分
func TruncateAtStop(text string, stop []string) string {
	cut := len(text)
	for _, s := range stop {
		if s == "" {
			continue
		}
		if i := strings.Index(text, s); i >= 0 && i < cut {
			cut = i
		}
	}
	return text[:cut]
}
