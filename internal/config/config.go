package config

import (
	"fmt"
	"time"
)

// Providers understood by llm.NewClient.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
)

// Config holds all sinner configuration.
type Config struct {
	LLM     LLMConfig     `yaml:"llm"`
	History HistoryConfig `yaml:"history"`
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`

	// File is the YAML file that was merged in, empty if none was found.
	File string `yaml:"-"`
}

type LLMConfig struct {
	Provider     string        `yaml:"provider"` // "openai", "anthropic", "ollama"
	BaseURL      string        `yaml:"base_url"` // OpenAI-compatible endpoint, e.g. LM Studio
	APIKey       string        `yaml:"api_key"`
	Model        string        `yaml:"model"` // empty = provider default
	Timeout      time.Duration `yaml:"timeout"`
	MaxTokens    int           `yaml:"max_tokens"`
	AnthropicKey string        `yaml:"anthropic_key"`
	OllamaURL    string        `yaml:"ollama_url"`
}

type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"` // empty = store.DefaultDBPath()
}

type ServerConfig struct {
	Bind string `yaml:"bind"`
	Port int    `yaml:"port"`
	// URL of a running `sinner serve` used by --remote.
	URL string `yaml:"url"`
}

type LogConfig struct {
	Level string `yaml:"level"` // "debug", "info", "warn", "error"
}

// Default returns a Config with sensible defaults for a local LM Studio.
func Default() Config {
	return Config{
		LLM: LLMConfig{
			Provider:  ProviderOpenAI,
			BaseURL:   "http://127.0.0.1:1234/v1",
			APIKey:    "lm-studio",
			Timeout:   30 * time.Second,
			MaxTokens: 1024,
			OllamaURL: "http://localhost:11434",
		},
		History: HistoryConfig{
			Enabled: true,
		},
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 37778,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// ResolvedModel returns the configured model, or the provider's default.
func (c LLMConfig) ResolvedModel() string {
	if c.Model != "" {
		return c.Model
	}
	switch c.Provider {
	case ProviderAnthropic:
		return "claude-haiku-4-5-20251001"
	case ProviderOllama:
		return "llama3.2"
	default:
		return "google/gemma-3-4b"
	}
}

// Validate reports configuration that no client could be built from.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderAnthropic, ProviderOllama:
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.LLM.Provider)
	}
	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("llm timeout must be positive, got %s", c.LLM.Timeout)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port out of range: %d", c.Server.Port)
	}
	return nil
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}

// ServerURL returns the remote server URL, defaulting to the local listen address.
func (c *Config) ServerURL() string {
	if c.Server.URL != "" {
		return c.Server.URL
	}
	return "http://" + c.ListenAddr()
}
