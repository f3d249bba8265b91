package llm

import (
	"fmt"
	"time"

	"github.com/postcraft/backend/pkg/config"
)

// NewFromConfig builds the completer for the configured provider.
func NewFromConfig(cfg config.LLMConfig) (Completer, error) {
	opts := Options{
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		Timeout:     time.Duration(cfg.TimeoutSec) * time.Second,
		MaxAttempts: cfg.MaxAttempts,
		JSONMode:    cfg.JSONMode,
	}

	switch cfg.Provider {
	case "openai":
		return NewOpenAIClient(cfg.APIKey, cfg.BaseURL, opts), nil
	case "anthropic":
		return NewAnthropicClient(cfg.APIKey, cfg.BaseURL, opts), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.Provider)
	}
}
