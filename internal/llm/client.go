// Package llm talks to the inference endpoint.
//
// Failures are reported as *UnavailableError, *TimeoutError or
// *ProtocolError. Clients never retry; whether to try again is the
// caller's decision.
package llm

import (
	"context"
	"fmt"

	"github.com/sinner-cli/sinner/internal/config"
)

// Client is the interface for LLM providers.
type Client interface {
	Complete(ctx context.Context, prompt string, temperature float64) (*Response, error)
}

// ModelLister is implemented by providers that can enumerate served models.
type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}

// Response holds the result of an LLM completion.
type Response struct {
	Content    string
	Provider   string
	Model      string
	TokensUsed int
}

// NewClient creates an LLM client based on the config provider setting.
func NewClient(cfg config.LLMConfig) (Client, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI, "":
		return NewOpenAI(cfg), nil
	case config.ProviderAnthropic:
		if cfg.AnthropicKey == "" {
			return nil, fmt.Errorf("anthropic provider requires ANTHROPIC_API_KEY or config")
		}
		return NewAnthropic(cfg), nil
	case config.ProviderOllama:
		return NewOllama(cfg), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
}
