package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"

	"github.com/sinner-cli/sinner/internal/config"
)

const providerOpenAI = "openai"

// OpenAI calls an OpenAI-compatible chat completions endpoint, such as
// LM Studio's local server.
type OpenAI struct {
	client  openai.Client
	baseURL string
	model   string
	timeout time.Duration
	log     *zap.Logger
}

// NewOpenAI creates a client for cfg.BaseURL. SDK retries are disabled.
func NewOpenAI(cfg config.LLMConfig, opts ...option.RequestOption) *OpenAI {
	base := []option.RequestOption{
		option.WithBaseURL(cfg.BaseURL),
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = config.Default().LLM.Timeout
	}

	return &OpenAI{
		client:  openai.NewClient(append(base, opts...)...),
		baseURL: cfg.BaseURL,
		model:   cfg.ResolvedModel(),
		timeout: timeout,
		log:     zap.NewNop(),
	}
}

// SetLogger replaces the no-op logger.
func (o *OpenAI) SetLogger(log *zap.Logger) {
	if log != nil {
		o.log = log
	}
}

// Complete sends the prompt as a single user message and returns
// choices[0].message.content.
func (o *OpenAI) Complete(ctx context.Context, prompt string, temperature float64) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model: o.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(temperature),
	}

	start := time.Now()
	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return nil, &ProtocolError{Provider: providerOpenAI, StatusCode: apiErr.StatusCode, Err: err}
		}
		return nil, Classify(providerOpenAI, o.baseURL, o.timeout, err)
	}

	if len(resp.Choices) == 0 {
		return nil, errMalformed(providerOpenAI, "response has no choices")
	}
	msg := resp.Choices[0].Message
	if !msg.JSON.Content.Valid() {
		return nil, errMalformed(providerOpenAI, "response is missing choices[0].message.content")
	}

	o.log.Debug("chat completed",
		zap.String("model", o.model),
		zap.Float64("temperature", temperature),
		zap.Duration("duration", time.Since(start)),
		zap.Int64("total_tokens", resp.Usage.TotalTokens))

	return &Response{
		Content:    strings.TrimSpace(msg.Content),
		Provider:   providerOpenAI,
		Model:      o.model,
		TokensUsed: int(resp.Usage.TotalTokens),
	}, nil
}

// ListModels returns the ids served by the endpoint's /models route.
func (o *OpenAI) ListModels(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	page, err := o.client.Models.List(ctx)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return nil, &ProtocolError{Provider: providerOpenAI, StatusCode: apiErr.StatusCode, Err: err}
		}
		return nil, Classify(providerOpenAI, o.baseURL, o.timeout, err)
	}

	ids := make([]string, 0, len(page.Data))
	for _, m := range page.Data {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

// String identifies the client in logs and `sinner config show`.
func (o *OpenAI) String() string {
	return fmt.Sprintf("openai(%s, %s)", o.baseURL, o.model)
}
