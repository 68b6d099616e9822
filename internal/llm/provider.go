// Package llm talks to hosted language models.
package llm

import (
	"context"
	"time"
)

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a conversation sent to a model.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ProviderType represents the type of LLM provider
type ProviderType string

const (
	ProviderOpenAI     ProviderType = "openai"
	ProviderGroq       ProviderType = "groq"
	ProviderOpenRouter ProviderType = "openrouter"
	ProviderGemini     ProviderType = "gemini"
)

// ProviderConfig holds configuration for a single provider instance
type ProviderConfig struct {
	Type       ProviderType  `yaml:"type"`
	APIKey     string        `yaml:"api_key"`
	ModelName  string        `yaml:"model_name"`
	BaseURL    string        `yaml:"base_url"` // OpenAI-compatible providers only
	MaxRetries int           `yaml:"max_retries"`
	RetryDelay time.Duration `yaml:"retry_delay"`
	Timeout    time.Duration `yaml:"timeout"` // per attempt
	// Rate limiting per provider
	RequestsPerMinute int `yaml:"requests_per_minute"`
}

// Provider interface for any LLM provider
type Provider interface {
	Complete(ctx context.Context, messages []Message) (string, error)
	Close() error
	GetModelInfo() map[string]interface{}
}

func (cfg *ProviderConfig) applyDefaults(timeout time.Duration) {
	// One retry after the first attempt.
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 2
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = timeout
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
}

// sleepCtx waits for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
