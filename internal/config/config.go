package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all process-wide settings. It is constructed once at startup
// from the environment and passed by reference; deeper components never read
// the environment themselves.
type Config struct {
	// OpenAI settings
	APIKey      string
	Model       string
	Temperature float32
	MaxTokens   int

	// Timeouts
	GenerationTimeout time.Duration
	TestTimeout       time.Duration

	// Logging
	LogLevel  string
	LogFormat string
}

// FromEnv builds a Config from environment variables, applying defaults
// for everything except the API key.
func FromEnv() *Config {
	return &Config{
		APIKey:            os.Getenv("OPENAI_API_KEY"),
		Model:             envString("GENAI_MODEL", "gpt-4"),
		Temperature:       envFloat("GENAI_TEMPERATURE", 0.2),
		MaxTokens:         envInt("GENAI_MAX_TOKENS", 4000),
		GenerationTimeout: envDuration("GENAI_TIMEOUT", 120*time.Second),
		TestTimeout:       envDuration("TEST_TIMEOUT", 300*time.Second),
		LogLevel:          envString("TESTGEN_LOG_LEVEL", "info"),
		LogFormat:         envString("TESTGEN_LOG_FORMAT", "text"),
	}
}

// Validate returns a list of configuration problems. An empty list means
// the config is usable.
func (c *Config) Validate() []string {
	var issues []string

	if c.APIKey == "" {
		issues = append(issues, "OPENAI_API_KEY is required")
	}
	if c.Temperature < 0 || c.Temperature > 1 {
		issues = append(issues, "GENAI_TEMPERATURE must be between 0 and 1")
	}
	if c.MaxTokens <= 0 {
		issues = append(issues, "GENAI_MAX_TOKENS must be positive")
	}
	if c.GenerationTimeout <= 0 {
		issues = append(issues, "GENAI_TIMEOUT must be positive")
	}
	if c.TestTimeout <= 0 {
		issues = append(issues, "TEST_TIMEOUT must be positive")
	}

	return issues
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float32) float32 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil {
			return float32(f)
		}
	}
	return fallback
}

// envDuration accepts either a Go duration string ("90s") or a bare number
// of seconds ("300"), matching how the original env vars were written.
func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}
