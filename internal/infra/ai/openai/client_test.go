package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domai "github.com/bryanwahyu/grantsheet/internal/domain/ai"
	"github.com/bryanwahyu/grantsheet/internal/infra/ai/prompt"
)

type capturedRequest struct {
	Model          string   `json:"model"`
	Temperature    *float64 `json:"temperature"`
	MaxTokens      int      `json:"max_tokens"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func completionBody(content string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   DefaultModel,
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
	}
}

func newTestClient(t *testing.T, h http.HandlerFunc, timeout time.Duration) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(Options{APIKey: "test-key", BaseURL: srv.URL + "/v1", Timeout: timeout})
}

func TestCompleteSendsContractAndParameters(t *testing.T) {
	var got capturedRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(completionBody(`{"executiveSummary":"ok"}`))
	}, 0)

	out, err := c.Complete(context.Background(), "Appel à projets")
	require.NoError(t, err)
	assert.Equal(t, `{"executiveSummary":"ok"}`, out)

	assert.Equal(t, DefaultModel, got.Model)
	require.NotNil(t, got.Temperature)
	assert.InDelta(t, 0.2, *got.Temperature, 1e-6)
	assert.Equal(t, DefaultMaxTokens, got.MaxTokens)
	assert.Equal(t, "json_object", got.ResponseFormat.Type)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, prompt.GetSystemPrompt(), got.Messages[0].Content)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, prompt.GetUserPrompt("Appel à projets"), got.Messages[1].Content)
}

func TestCompleteRateLimited(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"Rate limit reached","type":"requests","code":"rate_limit_exceeded"}}`))
	}, 0)

	_, err := c.Complete(context.Background(), "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, domai.ErrRateLimited)
	assert.NotErrorIs(t, err, domai.ErrCompletionFailed)
}

func TestCompleteEmptyResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(completionBody(""))
	}, 0)

	_, err := c.Complete(context.Background(), "x")
	assert.ErrorIs(t, err, domai.ErrEmptyResponse)
}

func TestCompleteUpstreamFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	}, 0)

	_, err := c.Complete(context.Background(), "x")
	assert.ErrorIs(t, err, domai.ErrCompletionFailed)
}

func TestCompleteDeadlineIsCompletionFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}, 50*time.Millisecond)

	_, err := c.Complete(context.Background(), "x")
	assert.ErrorIs(t, err, domai.ErrCompletionFailed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient(Options{APIKey: "k"})
	assert.Equal(t, DefaultModel, c.Model)
	assert.InDelta(t, DefaultTemperature, c.Temperature, 1e-6)
	assert.Equal(t, DefaultMaxTokens, c.MaxTokens)
	assert.Equal(t, DefaultTimeout, c.Timeout)
	assert.True(t, isReasoningModel("o3-mini"))
	assert.False(t, isReasoningModel("llama-3.1-70b-versatile"))
}

func TestCompleteSendsZeroTemperature(t *testing.T) {
	var got capturedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(completionBody(`{}`))
	}))
	t.Cleanup(srv.Close)

	zero := float32(0)
	c := NewClient(Options{APIKey: "k", BaseURL: srv.URL + "/v1", Temperature: &zero})
	assert.Zero(t, c.Temperature)

	_, err := c.Complete(context.Background(), "x")
	require.NoError(t, err)
	require.NotNil(t, got.Temperature, "temperature must be on the wire")
	assert.InDelta(t, 0, *got.Temperature, 1e-6)
}
