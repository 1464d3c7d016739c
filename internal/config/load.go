package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultEnvFile is the dotenv file read from the working directory.
const DefaultEnvFile = ".env"

// DefaultFile returns the YAML config path: $SINNER_CONFIG, or
// <user config dir>/sinner/config.yaml.
func DefaultFile() string {
	if p := os.Getenv("SINNER_CONFIG"); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "sinner", "config.yaml")
}

// Load resolves configuration from DefaultFile and DefaultEnvFile.
func Load() (Config, error) {
	return LoadFiles(DefaultFile(), DefaultEnvFile)
}

// LoadFiles layers configuration: defaults, then the YAML file, then the
// dotenv file, then the process environment. Missing files are skipped.
// Values in the process environment win over the dotenv file.
func LoadFiles(configFile, envFile string) (Config, error) {
	cfg := Default()

	if configFile != "" {
		raw, err := os.ReadFile(configFile)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", configFile, err)
			}
			cfg.File = configFile
		case errors.Is(err, fs.ErrNotExist):
		default:
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	dotenv := map[string]string{}
	if envFile != "" {
		env, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			dotenv = env
		case errors.Is(err, fs.ErrNotExist):
		default:
			return Config{}, fmt.Errorf("read env file: %w", err)
		}
	}

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str("SINNER_PROVIDER", &c.LLM.Provider)
	str("LMSTUDIO_BASE_URL", &c.LLM.BaseURL)
	str("LMSTUDIO_API_KEY", &c.LLM.APIKey)
	str("MODEL_ID", &c.LLM.Model)
	str("ANTHROPIC_API_KEY", &c.LLM.AnthropicKey)
	str("OLLAMA_URL", &c.LLM.OllamaURL)
	str("SINNER_DB", &c.History.Path)
	str("SINNER_LOG_LEVEL", &c.Log.Level)
	str("SINNER_SERVER_BIND", &c.Server.Bind)
	str("SINNER_SERVER_URL", &c.Server.URL)

	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	c.LLM.BaseURL = strings.TrimRight(c.LLM.BaseURL, "/")

	if v, ok := lookup("SINNER_TIMEOUT"); ok && v != "" {
		d, err := parseTimeout(v)
		if err != nil {
			return fmt.Errorf("SINNER_TIMEOUT: %w", err)
		}
		c.LLM.Timeout = d
	}
	if v, ok := lookup("SINNER_MAX_TOKENS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SINNER_MAX_TOKENS: %w", err)
		}
		c.LLM.MaxTokens = n
	}
	if v, ok := lookup("SINNER_HISTORY"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("SINNER_HISTORY: %w", err)
		}
		c.History.Enabled = b
	}
	if v, ok := lookup("SINNER_SERVER_PORT"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SINNER_SERVER_PORT: %w", err)
		}
		c.Server.Port = n
	}
	return nil
}

// parseTimeout accepts a Go duration ("45s") or a bare number of seconds.
func parseTimeout(v string) (time.Duration, error) {
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(v)
}

// SetEnvValue sets key in the dotenv file at path, creating the file if
// needed. Other keys are preserved; comments and ordering are not.
func SetEnvValue(path, key, value string) error {
	env, err := godotenv.Read(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("read env file: %w", err)
		}
		env = map[string]string{}
	}
	env[key] = value
	if err := godotenv.Write(env, path); err != nil {
		return fmt.Errorf("write env file: %w", err)
	}
	return nil
}
