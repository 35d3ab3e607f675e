package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Validate checks Config for production-critical problems.
// It collects all errors into a single joined error.
func (c *Config) Validate() error {
	var errs []string

	// Upstream API keys
	if c.Weather.APIKey == "" {
		errs = append(errs, "WEATHER_API_KEY is required")
	}
	if c.LLM.APIKey == "" {
		errs = append(errs, "LLM_API_KEY is required")
	}

	// DB password
	if c.DB.Password == "" {
		errs = append(errs, "DB_PASSWORD is required")
	}

	// Port ranges
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT must be 1–65535, got %d", c.Server.Port))
	}
	if c.DB.Port < 1 || c.DB.Port > 65535 {
		errs = append(errs, fmt.Sprintf("DB_PORT must be 1–65535, got %d", c.DB.Port))
	}
	if c.Redis.Port < 1 || c.Redis.Port > 65535 {
		errs = append(errs, fmt.Sprintf("REDIS_PORT must be 1–65535, got %d", c.Redis.Port))
	}

	// Pipeline parameters
	if c.Chat.HistoryLimit < 2 {
		errs = append(errs, fmt.Sprintf("CHAT_HISTORY_LIMIT must be at least 2, got %d", c.Chat.HistoryLimit))
	}
	if c.Chat.RetrievalTopN < 1 {
		errs = append(errs, fmt.Sprintf("CHAT_RETRIEVAL_TOPN must be at least 1, got %d", c.Chat.RetrievalTopN))
	}
	if c.Embedding.Dimensions < 1 {
		errs = append(errs, fmt.Sprintf("EMBEDDING_DIMENSIONS must be positive, got %d", c.Embedding.Dimensions))
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errs = append(errs, fmt.Sprintf("LLM_TEMPERATURE must be 0–2, got %g", c.LLM.Temperature))
	}

	// Event bus: warn only — the service runs fine without it
	if c.NATS.URL == "" {
		slog.Warn("NATS_URL is empty — event publishing disabled")
	}

	if len(errs) > 0 {
		return errors.New("config validation failed:\n  " + strings.Join(errs, "\n  "))
	}
	return nil
}
