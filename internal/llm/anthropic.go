package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/sinner-cli/sinner/internal/config"
)

const (
	providerAnthropic = "anthropic"
	anthropicEndpoint = "https://api.anthropic.com"
)

// Anthropic calls the Anthropic Messages API.
type Anthropic struct {
	client    anthropic.Client
	model     string
	maxTokens int
	timeout   time.Duration
}

// NewAnthropic creates a new Anthropic API client. SDK retries are disabled.
func NewAnthropic(cfg config.LLMConfig, opts ...option.RequestOption) *Anthropic {
	base := []option.RequestOption{
		option.WithAPIKey(cfg.AnthropicKey),
		option.WithMaxRetries(0),
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = config.Default().LLM.MaxTokens
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = config.Default().LLM.Timeout
	}

	return &Anthropic{
		client:    anthropic.NewClient(append(base, opts...)...),
		model:     cfg.ResolvedModel(),
		maxTokens: maxTokens,
		timeout:   timeout,
	}
}

// Complete sends a prompt to the Anthropic API and joins the text blocks of
// the reply.
func (a *Anthropic) Complete(ctx context.Context, prompt string, temperature float64) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	resp, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: int64(a.maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
		Temperature: anthropic.Float(temperature),
	})
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return nil, &ProtocolError{Provider: providerAnthropic, StatusCode: apiErr.StatusCode, Err: err}
		}
		return nil, Classify(providerAnthropic, anthropicEndpoint, a.timeout, err)
	}

	var (
		text  strings.Builder
		found bool
	)
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
			found = true
		}
	}
	if !found {
		return nil, errMalformed(providerAnthropic, "response has no text content")
	}

	return &Response{
		Content:    strings.TrimSpace(text.String()),
		Provider:   providerAnthropic,
		Model:      a.model,
		TokensUsed: int(resp.Usage.InputTokens + resp.Usage.OutputTokens),
	}, nil
}
