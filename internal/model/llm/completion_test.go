package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClient struct {
	reply    string
	err      error
	lastOpts GenerateOptions
}

func (s *stubClient) Generate(prompt string, options GenerateOptions) (string, error) {
	return s.GenerateWithContext(context.Background(), prompt, options)
}

func (s *stubClient) GenerateWithContext(ctx context.Context, prompt string, options GenerateOptions) (string, error) {
	s.lastOpts = options
	return s.reply, s.err
}

func (s *stubClient) ChatWithContext(ctx context.Context, messages []Message, options GenerateOptions) (string, error) {
	return s.reply, s.err
}

func (s *stubClient) Model() string    { return "stub-model" }
func (s *stubClient) Provider() string { return "stub" }

func TestTruncateAtStop(t *testing.T) {
	tests := []struct {
		name string
		text string
		stop []string
		want string
	}{
		{"no stop", "Thought: x\nAction: a", nil, "Thought: x\nAction: a"},
		{"cut at observation", "Action: lookup_order\nAction Input: {}\nObservation: made up", DefaultStop, "Action: lookup_order\nAction Input: {}"},
		{"earliest of several", "a STOP2 b STOP1 c", []string{"STOP1", "STOP2"}, "a "},
		{"empty stop ignored", "abc", []string{""}, "abc"},
		{"stop absent", "Final Answer: 好的", DefaultStop, "Final Answer: 好的"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TruncateAtStop(tt.text, tt.stop))
		})
	}
}

func TestCompleter_TruncatesAndPassesStop(t *testing.T) {
	client := &stubClient{reply: "Thought: 查询\nAction: get_tracking\nAction Input: {\"tracking_no\":\"SF1\"}\nObservation: 伪造"}
	c := NewCompleter(client, GenerateOptions{Temperature: 0.2})

	out, err := c.Complete(context.Background(), "prompt", DefaultStop)
	require.NoError(t, err)
	assert.Equal(t, "Thought: 查询\nAction: get_tracking\nAction Input: {\"tracking_no\":\"SF1\"}", out)
	assert.Equal(t, DefaultStop, client.lastOpts.Stop)
	assert.InDelta(t, 0.2, client.lastOpts.Temperature, 1e-9)
}

func TestCompleter_WrapsProviderFailure(t *testing.T) {
	client := &stubClient{err: &APIError{Provider: "stub", StatusCode: 401, Body: `{"code":"InvalidApiKey"}`}}
	c := NewCompleter(client, GenerateOptions{})

	_, err := c.Complete(context.Background(), "prompt", nil)
	require.Error(t, err)
	var ce *CompletionError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "stub", ce.Provider)
	assert.Equal(t, `{"code":"InvalidApiKey"}`, ce.Diagnostic)

	var apiErr *APIError
	assert.True(t, errors.As(err, &apiErr), "underlying APIError stays reachable")
}

func TestCompleter_TransportFailureKeepsMessage(t *testing.T) {
	client := &stubClient{err: errors.New("dial tcp: connection refused")}
	_, err := NewCompleter(client, GenerateOptions{}).Complete(context.Background(), "p", nil)
	var ce *CompletionError
	require.True(t, errors.As(err, &ce))
	assert.Contains(t, ce.Diagnostic, "connection refused")
}
