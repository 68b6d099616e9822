package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ErrAllProvidersFailed is returned when every configured provider failed.
var ErrAllProvidersFailed = errors.New("all providers failed")

// RateLimitedProvider wraps a provider with rate limiting
type RateLimitedProvider struct {
	provider Provider
	limiter  *rate.Limiter
	logger   *zap.Logger
}

// NewRateLimitedProvider allows requestsPerMinute calls spread evenly over
// a minute, with bursts of up to a tenth of that.
func NewRateLimitedProvider(provider Provider, requestsPerMinute int, logger *zap.Logger) *RateLimitedProvider {
	burst := requestsPerMinute / 10
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedProvider{
		provider: provider,
		limiter:  rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), burst),
		logger:   logger,
	}
}

func (p *RateLimitedProvider) Complete(ctx context.Context, messages []Message) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait cancelled: %w", err)
	}
	return p.provider.Complete(ctx, messages)
}

func (p *RateLimitedProvider) Close() error {
	return p.provider.Close()
}

func (p *RateLimitedProvider) GetModelInfo() map[string]interface{} {
	return p.provider.GetModelInfo()
}

// MultiProviderClient manages multiple LLM providers with fallback
type MultiProviderClient struct {
	providers    []*RateLimitedProvider
	currentIndex int
	mu           sync.RWMutex
	logger       *zap.Logger
	failureCount map[int]int
	maxFailures  int
}

// MultiProviderConfig holds configuration for multiple providers
type MultiProviderConfig struct {
	Providers   []ProviderConfig
	MaxFailures int           // Max consecutive failures before switching provider
	Timeout     time.Duration // Per-attempt timeout for providers that don't set one
}

// NewProvider builds a single provider client from its config.
func NewProvider(cfg ProviderConfig, logger *zap.Logger) (Provider, error) {
	switch cfg.Type {
	case ProviderOpenAI, ProviderGroq, ProviderOpenRouter:
		return NewOpenAIClient(cfg, logger)
	case ProviderGemini:
		return NewGeminiClient(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown provider type %q", cfg.Type)
	}
}

// NewMultiProviderClient creates a new multi-provider client. Providers that
// fail to initialize are skipped.
func NewMultiProviderClient(cfg MultiProviderConfig, logger *zap.Logger) (*MultiProviderClient, error) {
	if len(cfg.Providers) == 0 {
		return nil, fmt.Errorf("at least one provider is required")
	}

	var (
		providers []Provider
		limits    []int
	)
	for i, providerCfg := range cfg.Providers {
		if providerCfg.Timeout == 0 {
			providerCfg.Timeout = cfg.Timeout
		}

		provider, err := NewProvider(providerCfg, logger)
		if err != nil {
			logger.Error("Failed to create provider",
				zap.String("type", string(providerCfg.Type)),
				zap.Int("index", i),
				zap.Error(err))
			continue
		}

		providers = append(providers, provider)
		limits = append(limits, providerCfg.RequestsPerMinute)

		logger.Info("Provider initialized",
			zap.String("type", string(providerCfg.Type)),
			zap.String("model", providerCfg.ModelName),
			zap.Int("rate_limit", providerCfg.RequestsPerMinute),
			zap.Int("index", i))
	}

	if len(providers) == 0 {
		return nil, fmt.Errorf("no providers could be initialized")
	}

	return newMultiProviderClient(providers, limits, cfg.MaxFailures, logger), nil
}

func newMultiProviderClient(providers []Provider, limits []int, maxFailures int, logger *zap.Logger) *MultiProviderClient {
	if maxFailures == 0 {
		maxFailures = 3
	}

	wrapped := make([]*RateLimitedProvider, len(providers))
	for i, p := range providers {
		limit := 0
		if i < len(limits) {
			limit = limits[i]
		}
		if limit == 0 {
			limit = 60
		}
		wrapped[i] = NewRateLimitedProvider(p, limit, logger)
	}

	return &MultiProviderClient{
		providers:    wrapped,
		logger:       logger,
		failureCount: make(map[int]int),
		maxFailures:  maxFailures,
	}
}

// getCurrentProvider returns the current provider and its index
func (c *MultiProviderClient) getCurrentProvider() (*RateLimitedProvider, int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.providers[c.currentIndex], c.currentIndex
}

// switchToNextProvider moves on from the provider at index from. It is a
// no-op if another caller already switched.
func (c *MultiProviderClient) switchToNextProvider(from int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.currentIndex != from {
		return
	}
	c.currentIndex = (c.currentIndex + 1) % len(c.providers)

	c.logger.Info("Switching provider",
		zap.Int("from_index", from),
		zap.Int("to_index", c.currentIndex),
		zap.Int("total_providers", len(c.providers)))
}

// recordFailure records a failure and reports whether the provider should be abandoned.
func (c *MultiProviderClient) recordFailure(providerIndex int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.failureCount[providerIndex]++

	if c.failureCount[providerIndex] >= c.maxFailures {
		c.logger.Warn("Provider reached max failures",
			zap.Int("provider_index", providerIndex),
			zap.Int("failures", c.failureCount[providerIndex]))
		c.failureCount[providerIndex] = 0
		return true
	}
	return false
}

func (c *MultiProviderClient) resetFailureCount(providerIndex int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failureCount[providerIndex] = 0
}

// Complete asks the current provider and falls back down the list on failure.
// The current provider only changes after maxFailures consecutive failures
// or a rate limit error.
func (c *MultiProviderClient) Complete(ctx context.Context, messages []Message) (string, error) {
	_, start := c.getCurrentProvider()

	var lastErr error
	for attempts := 0; attempts < len(c.providers); attempts++ {
		providerIndex := (start + attempts) % len(c.providers)
		provider := c.providers[providerIndex]

		c.logger.Debug("Attempting completion",
			zap.Int("provider_index", providerIndex),
			zap.Int("attempt", attempts+1))

		text, err := provider.Complete(ctx, messages)
		if err == nil {
			c.resetFailureCount(providerIndex)
			return text, nil
		}
		lastErr = err

		c.logger.Error("Provider failed",
			zap.Int("provider_index", providerIndex),
			zap.Error(err))

		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		if c.recordFailure(providerIndex) || isRateLimitError(err) {
			c.switchToNextProvider(providerIndex)
		}
	}

	return "", fmt.Errorf("%w: %v", ErrAllProvidersFailed, lastErr)
}

// isRateLimitError checks if error is a rate limit error
func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "429") ||
		strings.Contains(s, "quota") ||
		strings.Contains(s, "rate limit")
}

// Close closes all providers
func (c *MultiProviderClient) Close() error {
	var lastErr error
	for i, provider := range c.providers {
		if err := provider.Close(); err != nil {
			c.logger.Error("Failed to close provider",
				zap.Int("index", i),
				zap.Error(err))
			lastErr = err
		}
	}
	return lastErr
}

// GetModelInfo returns information about the current provider
func (c *MultiProviderClient) GetModelInfo() map[string]interface{} {
	provider, index := c.getCurrentProvider()
	info := provider.GetModelInfo()

	c.mu.RLock()
	defer c.mu.RUnlock()
	info["provider_index"] = index
	info["total_providers"] = len(c.providers)
	info["failure_count"] = c.failureCount[index]
	return info
}
