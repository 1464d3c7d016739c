package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sinner-cli/sinner/internal/config"
)

const providerOllama = "ollama"

// Ollama calls a local Ollama instance through its native API.
type Ollama struct {
	url       string
	model     string
	maxTokens int
	timeout   time.Duration
	client    *http.Client
}

// NewOllama creates a new Ollama client.
func NewOllama(cfg config.LLMConfig) *Ollama {
	url := strings.TrimRight(cfg.OllamaURL, "/")
	if url == "" {
		url = config.Default().LLM.OllamaURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = config.Default().LLM.Timeout
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = config.Default().LLM.MaxTokens
	}

	return &Ollama{
		url:       url,
		model:     cfg.ResolvedModel(),
		maxTokens: maxTokens,
		timeout:   timeout,
		client:    &http.Client{Timeout: timeout},
	}
}

// Complete sends a prompt to Ollama's generate endpoint.
func (o *Ollama) Complete(ctx context.Context, prompt string, temperature float64) (*Response, error) {
	reqBody := map[string]any{
		"model":  o.model,
		"prompt": prompt,
		"stream": false,
		"options": map[string]any{
			"temperature": temperature,
			"num_predict": o.maxTokens,
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	respBody, err := o.do(ctx, http.MethodPost, "/api/generate", body)
	if err != nil {
		return nil, err
	}

	var result struct {
		Response        *string `json:"response"`
		PromptEvalCount int     `json:"prompt_eval_count"`
		EvalCount       int     `json:"eval_count"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, errMalformed(providerOllama, "decode response: %w", err)
	}
	if result.Response == nil {
		return nil, errMalformed(providerOllama, "response is missing the response field")
	}

	return &Response{
		Content:    strings.TrimSpace(*result.Response),
		Provider:   providerOllama,
		Model:      o.model,
		TokensUsed: result.PromptEvalCount + result.EvalCount,
	}, nil
}

// ListModels returns the locally pulled model names.
func (o *Ollama) ListModels(ctx context.Context) ([]string, error) {
	respBody, err := o.do(ctx, http.MethodGet, "/api/tags", nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, errMalformed(providerOllama, "decode tags: %w", err)
	}

	names := make([]string, 0, len(result.Models))
	for _, m := range result.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

func (o *Ollama) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, o.url+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, Classify(providerOllama, o.url, o.timeout, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, Classify(providerOllama, o.url, o.timeout, fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &ProtocolError{
			Provider:   providerOllama,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%s", bytes.TrimSpace(respBody)),
		}
	}
	return respBody, nil
}
