package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashScopeClient_Generate(t *testing.T) {
	var got dashScopeRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/services/aigc/text-generation/generation", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"request_id":"r1","output":{"text":"Final Answer: 您好","finish_reason":"stop"}}`))
	}))
	defer srv.Close()

	c, err := NewDashScopeClient("qwen-turbo", "sk-test", srv.URL)
	require.NoError(t, err)
	out, err := c.GenerateWithContext(context.Background(), "你好", GenerateOptions{Temperature: 0.2, Stop: DefaultStop})
	require.NoError(t, err)
	assert.Equal(t, "Final Answer: 您好", out)
	assert.Equal(t, "qwen-turbo", got.Model)
	assert.Equal(t, "你好", got.Input.Prompt)
	assert.Equal(t, "text", got.Parameters.ResultFormat)
	assert.Equal(t, DefaultStop, got.Parameters.Stop)
}

func TestDashScopeClient_NonOKCarriesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"code":"Throttling","message":"Requests rate limit exceeded"}`))
	}))
	defer srv.Close()

	c, err := NewDashScopeClient("qwen-turbo", "sk-test", srv.URL)
	require.NoError(t, err)
	_, err = NewCompleter(c, GenerateOptions{}).Complete(context.Background(), "p", nil)
	var ce *CompletionError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "dashscope", ce.Provider)
	assert.Contains(t, ce.Diagnostic, "Throttling")
}

func TestOpenAIClient_Chat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "qwen-plus", body["model"])
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"Thought: ok"}}]}`))
	}))
	defer srv.Close()

	c, err := NewClient("qwen", "qwen-plus", "k", srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "qwen", c.Provider())
	out, err := c.GenerateWithContext(context.Background(), "hi", GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Thought: ok", out)
}

func TestNewClient_UnknownProvider(t *testing.T) {
	_, err := NewClient("nope", "m", "k", "")
	assert.Error(t, err)
}

func TestOpenAIClient_EmptyChoicesIsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c, err := NewOpenAIClientWithBaseURL("openai", "gpt-4o-mini", "k", srv.URL)
	require.NoError(t, err)
	_, err = c.ChatWithContext(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, GenerateOptions{})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusOK, apiErr.StatusCode)
}
