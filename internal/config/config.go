// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port           string
	APIKey         string
	RedisURL       string
	AllowedOrigins []string

	SessionTTL           time.Duration
	HardCeiling          int
	ConfirmMinCategories int
	// RandomSeed fixes the reply and deflection RNG when > 0.
	RandomSeed int64

	LLM LLMConfig

	CallbackURL     string
	CallbackTimeout time.Duration
	ArchiveDBPath   string
}

// LLMConfig controls the upstream model client.
type LLMConfig struct {
	BaseURL             string
	APIKey              string
	Model               string
	Timeout             time.Duration
	CacheTTL            time.Duration
	AnalysisTemperature float64
	ReplyTemperature    float64
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		APIKey:         getEnv("API_KEY", ""),
		RedisURL:       getEnv("REDIS_URL", "redis://localhost:6379/0"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "*")),

		SessionTTL:           getEnvDuration("SESSION_TTL", time.Hour),
		HardCeiling:          getEnvInt("HARD_CEILING", 50),
		ConfirmMinCategories: getEnvInt("CONFIRM_MIN_CATEGORIES", 2),
		RandomSeed:           int64(getEnvInt("RANDOM_SEED", 0)),

		LLM: LLMConfig{
			BaseURL:             getEnv("LLM_BASE_URL", ""),
			APIKey:              getEnv("LLM_API_KEY", ""),
			Model:               getEnv("LLM_MODEL", "gpt-4o-mini"),
			Timeout:             getEnvDuration("LLM_TIMEOUT", 8*time.Second),
			CacheTTL:            getEnvDuration("LLM_CACHE_TTL", 10*time.Minute),
			AnalysisTemperature: getEnvFloat("LLM_TEMPERATURE_ANALYSIS", 0.1),
			ReplyTemperature:    getEnvFloat("LLM_TEMPERATURE_REPLY", 0.8),
		},

		CallbackURL:     getEnv("CALLBACK_URL", ""),
		CallbackTimeout: getEnvDuration("CALLBACK_TIMEOUT", 10*time.Second),
		ArchiveDBPath:   getEnv("ARCHIVE_DB_PATH", "./data/reports.db"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.RedisURL == "" {
		return fmt.Errorf("REDIS_URL cannot be empty")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be > 0")
	}
	if c.HardCeiling <= 0 {
		return fmt.Errorf("HARD_CEILING must be > 0")
	}
	if c.ConfirmMinCategories <= 0 {
		return fmt.Errorf("CONFIRM_MIN_CATEGORIES must be > 0")
	}
	if c.ArchiveDBPath == "" {
		return fmt.Errorf("ARCHIVE_DB_PATH cannot be empty")
	}
	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("LLM_TIMEOUT must be > 0")
	}
	return nil
}

// ModelEnabled reports whether an upstream model is configured.
func (c *Config) ModelEnabled() bool {
	return c.LLM.BaseURL != "" && c.LLM.APIKey != ""
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return f
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}
