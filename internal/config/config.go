package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/lalithlochan/nimbus-agent/pkg/log"
)

// Config holds all application configuration
// Supports environment variables with sensible defaults
//
// Environment Variables:
// LLM Configuration:
// - LLM_API_KEY: API key for the LLM provider (required)
// - LLM_API_URL: API endpoint URL (default: https://openrouter.ai/api/v1)
// - LLM_MODEL: Model name to use (default: openai/gpt-4o-mini)
// - LLM_MAX_TOKENS: Maximum tokens for responses (default: 1024)
// - LLM_TEMPERATURE: Temperature for responses (default: 0.2)
// - LLM_TIMEOUT: Request timeout in seconds (default: 30)
//
// Nimbus Configuration:
// - NIMBUS_BASE_URL: Nimbus gateway base URL (default: http://localhost:8080)
// - NIMBUS_TIMEOUT: Per-call timeout in seconds (default: 5)
//
// Agent Configuration:
// - AGENT_MAX_ITERATIONS: Max tool-calling iterations per run (default: 5)
// - AGENT_HISTORY_DB: SQLite path for run history (empty disables history)
// - AGENT_LOG_LEVEL: debug|info|warn|error (default: info)
type Config struct {
	LLM    LLMConfig    `json:"llm"`
	Nimbus NimbusConfig `json:"nimbus"`
	Agent  AgentConfig  `json:"agent"`
}

// LLMConfig holds the configuration for the LLM client
// Supports any OpenAI-compatible provider (OpenRouter, OpenAI, etc.)
type LLMConfig struct {
	APIKey      string  `json:"api_key"`
	APIURL      string  `json:"api_url"`
	Model       string  `json:"model"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	Timeout     int     `json:"timeout"`
}

// NimbusConfig holds the configuration for the Nimbus gateway client
type NimbusConfig struct {
	BaseURL string `json:"base_url"`
	Timeout int    `json:"timeout"` // seconds, applied per API call
}

// AgentConfig holds the configuration for the agent loop
type AgentConfig struct {
	MaxIterations int    `json:"max_iterations"` // Max tool-calling iterations per run
	HistoryDB     string `json:"history_db"`     // Empty disables run history
	LogLevel      string `json:"log_level"`
}

// Option is a function type for configuring Config
type Option func(*Config)

// WithNimbusBaseURL overrides the Nimbus gateway base URL (e.g. from a CLI flag).
func WithNimbusBaseURL(url string) Option {
	return func(c *Config) {
		if url != "" {
			c.Nimbus.BaseURL = url
		}
	}
}

// WithMaxIterations overrides the iteration bound.
func WithMaxIterations(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.Agent.MaxIterations = n
		}
	}
}

// NewFromEnv creates a new Config instance with values from environment variables and options
func NewFromEnv(opts ...Option) (*Config, error) {
	config := &Config{
		LLM: LLMConfig{
			APIKey:      getEnvString("LLM_API_KEY", ""),
			APIURL:      getEnvString("LLM_API_URL", "https://openrouter.ai/api/v1"),
			Model:       getEnvString("LLM_MODEL", "openai/gpt-4o-mini"),
			MaxTokens:   getEnvInt("LLM_MAX_TOKENS", 1024),
			Temperature: getEnvFloat("LLM_TEMPERATURE", 0.2),
			Timeout:     getEnvInt("LLM_TIMEOUT", 30),
		},
		Nimbus: NimbusConfig{
			BaseURL: getEnvString("NIMBUS_BASE_URL", "http://localhost:8080"),
			Timeout: getEnvInt("NIMBUS_TIMEOUT", 5),
		},
		Agent: AgentConfig{
			MaxIterations: getEnvInt("AGENT_MAX_ITERATIONS", 5),
			HistoryDB:     getEnvString("AGENT_HISTORY_DB", ""),
			LogLevel:      getEnvString("AGENT_LOG_LEVEL", "info"),
		},
	}

	for _, opt := range opts {
		opt(config)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	log.InitLogger(log.ParseLevel(config.Agent.LogLevel))

	return config, nil
}

// Validate checks the configuration for fatal problems.
// A missing LLM API key aborts before any run starts; everything else
// has a usable default.
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return fmt.Errorf("LLM_API_KEY is required; export it before running")
	}
	if c.LLM.APIURL == "" {
		return fmt.Errorf("LLM API URL is required")
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("LLM model is required")
	}
	if c.LLM.Timeout < 1 {
		return fmt.Errorf("LLM timeout must be greater than 0")
	}
	if c.Nimbus.BaseURL == "" {
		return fmt.Errorf("Nimbus base URL is required")
	}
	if c.Nimbus.Timeout < 1 {
		return fmt.Errorf("Nimbus timeout must be greater than 0")
	}
	if c.Agent.MaxIterations < 1 {
		return fmt.Errorf("max iterations must be greater than 0")
	}
	return nil
}

// Helper functions for environment variable parsing

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		log.Warn("Invalid integer value for %s, using default %d", key, defaultValue)
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
		log.Warn("Invalid float value for %s, using default %f", key, defaultValue)
	}
	return defaultValue
}
