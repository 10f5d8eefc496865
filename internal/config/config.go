package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// Config holds all application configuration.
type Config struct {
	// Environment
	Env string `koanf:"env"` // "development", "production", etc.

	// Server
	ServerAddr  string `koanf:"server_addr"`
	BaseURL     string `koanf:"base_url"`
	CORSOrigins string `koanf:"cors_origins"` // Comma-separated allowed origins

	// Datastore
	DatabaseURL string `koanf:"database_url"`
	RedisURL    string `koanf:"redis_url"` // Optional shared rate-limit store

	// Optional static bearer key gating /api/*
	APIKey string `koanf:"api_key"`

	// Text generation providers
	OpenAIAPIKey    string        `koanf:"openai_api_key"`
	OpenAIModel     string        `koanf:"openai_model"`
	AnthropicAPIKey string        `koanf:"anthropic_api_key"`
	AnthropicModel  string        `koanf:"anthropic_model"`
	GeminiAPIKey    string        `koanf:"gemini_api_key"`
	GeminiModel     string        `koanf:"gemini_model"`
	DefaultProvider string        `koanf:"default_provider"`
	ProviderTimeout time.Duration `koanf:"provider_timeout"`

	// Keyword metrics provider
	DataForSEOLogin    string `koanf:"dataforseo_login"`
	DataForSEOPassword string `koanf:"dataforseo_password"`
	DataForSEOBaseURL  string `koanf:"dataforseo_base_url"`

	// Rate limiting
	RateLimitMax             int           `koanf:"rate_limit_max"`
	RateLimitWindow          time.Duration `koanf:"rate_limit_window"`
	RateLimitExpensiveMax    int           `koanf:"rate_limit_expensive_max"`
	RateLimitExpensiveWindow time.Duration `koanf:"rate_limit_expensive_window"`

	// Logging
	LogLevel string `koanf:"log_level"`
}

var defaults = map[string]any{
	"env":                         "development",
	"server_addr":                 ":3000",
	"base_url":                    "http://localhost:3000",
	"database_url":                "postgres://localhost:5432/agencydesk?sslmode=disable",
	"openai_model":                "gpt-4o-mini",
	"anthropic_model":             "claude-3-5-haiku-latest",
	"gemini_model":                "gemini-2.0-flash",
	"provider_timeout":            "60s",
	"dataforseo_base_url":         "https://api.dataforseo.com",
	"rate_limit_max":              60,
	"rate_limit_window":           "1m",
	"rate_limit_expensive_max":    10,
	"rate_limit_expensive_window": "1m",
	"log_level":                   "info",
}

// Load reads configuration from an optional YAML file and environment variables.
// Environment variables win over the file; the file wins over defaults.
// The file path comes from CONFIG_FILE, defaulting to "config.yaml". A missing file is not an error.
func Load() (*Config, error) {
	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		path = "config.yaml"
	}
	return LoadFile(path)
}

// LoadFile is Load with an explicit YAML path.
func LoadFile(path string) (*Config, error) {
	k := koanf.New(".")

	for key, value := range defaults {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("failed to set default %s: %w", key, err)
		}
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := k.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	// DATABASE_URL -> database_url. Keys use underscores, so there is no nesting.
	if err := k.Load(env.Provider("", ".", strings.ToLower), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// NODE_ENV is honoured for deployments that still set it.
	if nodeEnv := k.String("node_env"); nodeEnv != "" && os.Getenv("ENV") == "" {
		cfg.Env = nodeEnv
	}

	return &cfg, nil
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// HasTextProvider reports whether at least one text generation provider has credentials.
func (c *Config) HasTextProvider() bool {
	return c.OpenAIAPIKey != "" || c.AnthropicAPIKey != "" || c.GeminiAPIKey != ""
}

// HasKeywordProvider reports whether the keyword metrics provider has credentials.
func (c *Config) HasKeywordProvider() bool {
	return c.DataForSEOLogin != "" && c.DataForSEOPassword != ""
}

// Credentials lists which provider credentials are present, by name.
func (c *Config) Credentials() map[string]bool {
	return map[string]bool{
		"database":   c.DatabaseURL != "",
		"openai":     c.OpenAIAPIKey != "",
		"anthropic":  c.AnthropicAPIKey != "",
		"gemini":     c.GeminiAPIKey != "",
		"dataforseo": c.HasKeywordProvider(),
	}
}
