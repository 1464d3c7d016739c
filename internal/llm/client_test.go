package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sinner-cli/sinner/internal/config"
)

func testConfig(baseURL string) config.LLMConfig {
	cfg := config.Default().LLM
	cfg.BaseURL = baseURL
	cfg.OllamaURL = baseURL
	cfg.Model = "test-model"
	cfg.Timeout = 2 * time.Second
	return cfg
}

const chatOK = `{
	"id": "chatcmpl-1",
	"object": "chat.completion",
	"created": 1700000000,
	"model": "test-model",
	"choices": [{"index": 0, "finish_reason": "stop",
		"message": {"role": "assistant", "content": "  Fixed the login bug  "}}],
	"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
}`

func TestNewClient(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.LLMConfig
		want    any
		wantErr bool
	}{
		{name: "openai", cfg: config.LLMConfig{Provider: "openai"}, want: &OpenAI{}},
		{name: "empty provider", cfg: config.LLMConfig{}, want: &OpenAI{}},
		{name: "anthropic", cfg: config.LLMConfig{Provider: "anthropic", AnthropicKey: "k"}, want: &Anthropic{}},
		{name: "anthropic missing key", cfg: config.LLMConfig{Provider: "anthropic"}, wantErr: true},
		{name: "ollama", cfg: config.LLMConfig{Provider: "ollama"}, want: &Ollama{}},
		{name: "unknown", cfg: config.LLMConfig{Provider: "gpt"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.cfg)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, client)
		})
	}
}

func TestOpenAIComplete(t *testing.T) {
	var body map[string]any
	var auth string
	var calls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"), r.URL.Path)
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(chatOK))
	}))
	defer srv.Close()

	client := NewOpenAI(testConfig(srv.URL + "/v1"))
	resp, err := client.Complete(context.Background(), "hello prompt", 0.5)
	require.NoError(t, err)

	assert.Equal(t, "Fixed the login bug", resp.Content)
	assert.Equal(t, "openai", resp.Provider)
	assert.Equal(t, 15, resp.TokensUsed)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, "Bearer lm-studio", auth)

	assert.Equal(t, "test-model", body["model"])
	assert.InDelta(t, 0.5, body["temperature"], 1e-9)
	msgs, ok := body["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 1)
	msg := msgs[0].(map[string]any)
	assert.Equal(t, "user", msg["role"])
	assert.Equal(t, "hello prompt", msg["content"])
}

func TestOpenAIServerErrorIsProtocolAndNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"model crashed"}}`))
	}))
	defer srv.Close()

	_, err := NewOpenAI(testConfig(srv.URL)).Complete(context.Background(), "p", 0.7)
	require.Error(t, err)

	var perr *ProtocolError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, http.StatusInternalServerError, perr.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestOpenAIMalformedResponses(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "no choices", body: `{"id":"x","object":"chat.completion","choices":[]}`},
		{name: "missing content", body: `{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant"}}]}`},
		{name: "not json", body: `<html>oops</html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewOpenAI(testConfig(srv.URL)).Complete(context.Background(), "p", 0.7)
			var perr *ProtocolError
			assert.ErrorAs(t, err, &perr)
		})
	}
}

func TestOpenAIUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewOpenAI(testConfig(url)).Complete(context.Background(), "p", 0.7)
	var uerr *UnavailableError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, "openai", uerr.Provider)
}

func TestOpenAITimeout(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Timeout = 50 * time.Millisecond

	_, err := NewOpenAI(cfg).Complete(context.Background(), "p", 0.7)
	var terr *TimeoutError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, 50*time.Millisecond, terr.After)
	assert.Equal(t, int32(1), calls.Load())
}

func TestOpenAIListModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/models"), r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[{"id":"gemma-3-4b","object":"model","created":0,"owned_by":"me"}]}`))
	}))
	defer srv.Close()

	models, err := NewOpenAI(testConfig(srv.URL)).ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"gemma-3-4b"}, models)
}

func TestAnthropicComplete(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_1", "type": "message", "role": "assistant", "model": "test-model",
			"content": [{"type": "text", "text": "Refactor "}, {"type": "text", "text": "parser"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 3, "output_tokens": 2}
		}`))
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.AnthropicKey = "test-key"

	resp, err := NewAnthropic(cfg, option.WithBaseURL(srv.URL)).Complete(context.Background(), "p", 0.6)
	require.NoError(t, err)
	assert.Equal(t, "Refactor parser", resp.Content)
	assert.Equal(t, 5, resp.TokensUsed)
	assert.InDelta(t, 0.6, body["temperature"], 1e-9)
	assert.Equal(t, "test-model", body["model"])
}

func TestAnthropicErrors(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"type":"error","error":{"type":"invalid_request_error","message":"bad"}}`))
		}))
		defer srv.Close()

		cfg := testConfig(srv.URL)
		cfg.AnthropicKey = "k"
		_, err := NewAnthropic(cfg, option.WithBaseURL(srv.URL)).Complete(context.Background(), "p", 0.6)
		var perr *ProtocolError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, http.StatusBadRequest, perr.StatusCode)
	})

	t.Run("no text", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"m","type":"message","role":"assistant","content":[],"usage":{"input_tokens":1,"output_tokens":0}}`))
		}))
		defer srv.Close()

		cfg := testConfig(srv.URL)
		cfg.AnthropicKey = "k"
		_, err := NewAnthropic(cfg, option.WithBaseURL(srv.URL)).Complete(context.Background(), "p", 0.6)
		var perr *ProtocolError
		require.ErrorAs(t, err, &perr)
		assert.Zero(t, perr.StatusCode)
	})
}

func TestOllamaComplete(t *testing.T) {
	var body struct {
		Model   string         `json:"model"`
		Prompt  string         `json:"prompt"`
		Stream  bool           `json:"stream"`
		Options map[string]any `json:"options"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, _ = w.Write([]byte(`{"response":" add retry flag \n","prompt_eval_count":4,"eval_count":3}`))
	}))
	defer srv.Close()

	resp, err := NewOllama(testConfig(srv.URL)).Complete(context.Background(), "p", 0.5)
	require.NoError(t, err)
	assert.Equal(t, "add retry flag", resp.Content)
	assert.Equal(t, 7, resp.TokensUsed)
	assert.Equal(t, "test-model", body.Model)
	assert.False(t, body.Stream)
	assert.InDelta(t, 0.5, body.Options["temperature"], 1e-9)
}

func TestOllamaErrors(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "model not found", http.StatusNotFound)
		}))
		defer srv.Close()

		_, err := NewOllama(testConfig(srv.URL)).Complete(context.Background(), "p", 0.5)
		var perr *ProtocolError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, http.StatusNotFound, perr.StatusCode)
	})

	t.Run("missing field", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"done":true}`))
		}))
		defer srv.Close()

		_, err := NewOllama(testConfig(srv.URL)).Complete(context.Background(), "p", 0.5)
		var perr *ProtocolError
		assert.ErrorAs(t, err, &perr)
	})

	t.Run("unavailable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := NewOllama(testConfig(url)).Complete(context.Background(), "p", 0.5)
		var uerr *UnavailableError
		assert.ErrorAs(t, err, &uerr)
	})

	t.Run("timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		defer srv.Close()

		cfg := testConfig(srv.URL)
		cfg.Timeout = 50 * time.Millisecond
		_, err := NewOllama(cfg).Complete(context.Background(), "p", 0.5)
		var terr *TimeoutError
		assert.ErrorAs(t, err, &terr)
	})
}

func TestOllamaListModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		_, _ = w.Write([]byte(`{"models":[{"name":"llama3.2"},{"name":"qwen2.5"}]}`))
	}))
	defer srv.Close()

	models, err := NewOllama(testConfig(srv.URL)).ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"llama3.2", "qwen2.5"}, models)
}

func TestClassify(t *testing.T) {
	typed := &ProtocolError{Provider: "x", StatusCode: 500}
	assert.Same(t, typed, Classify("x", "e", time.Second, typed))
	assert.ErrorIs(t, Classify("x", "e", time.Second, context.Canceled), context.Canceled)

	var terr *TimeoutError
	assert.ErrorAs(t, Classify("x", "e", time.Second, context.DeadlineExceeded), &terr)

	var perr *ProtocolError
	assert.ErrorAs(t, Classify("x", "e", time.Second, errors.New("weird")), &perr)
	assert.NoError(t, Classify("x", "e", time.Second, nil))
}

func TestMockClient(t *testing.T) {
	m := &MockClient{Response: &Response{Content: "ok"}}
	resp, err := m.Complete(context.Background(), "prompt", 0.6)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
	assert.Equal(t, []string{"prompt"}, m.Calls)
	assert.Equal(t, []float64{0.6}, m.Temperatures)

	m.Err = &UnavailableError{Provider: "mock"}
	_, err = m.Complete(context.Background(), "again", 0.5)
	var uerr *UnavailableError
	assert.ErrorAs(t, err, &uerr)
	assert.Equal(t, 2, m.CallCount())
}
