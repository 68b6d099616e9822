package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

var defaultBaseURLs = map[ProviderType]string{
	ProviderGroq:       "https://api.groq.com/openai/v1",
	ProviderOpenRouter: "https://openrouter.ai/api/v1",
}

var defaultModels = map[ProviderType]string{
	ProviderOpenAI:     "gpt-4o-mini",
	ProviderGroq:       "llama-3.3-70b-versatile",
	ProviderOpenRouter: "openai/gpt-4o-mini",
}

// OpenAIClient talks to any OpenAI-compatible chat completions API.
type OpenAIClient struct {
	client     *openai.Client
	provider   ProviderType
	modelName  string
	baseURL    string
	logger     *zap.Logger
	maxRetries int
	retryDelay time.Duration
	timeout    time.Duration
}

// NewOpenAIClient creates a client for OpenAI, Groq or OpenRouter.
func NewOpenAIClient(cfg ProviderConfig, logger *zap.Logger) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s API key is required", cfg.Type)
	}
	if cfg.Type == "" {
		cfg.Type = ProviderOpenAI
	}
	if cfg.ModelName == "" {
		cfg.ModelName = defaultModels[cfg.Type]
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURLs[cfg.Type]
	}
	cfg.applyDefaults(0)

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	logger.Info("OpenAI-compatible client initialized",
		zap.String("provider", string(cfg.Type)),
		zap.String("model", cfg.ModelName),
		zap.Int("max_retries", cfg.MaxRetries))

	return &OpenAIClient{
		client:     openai.NewClientWithConfig(clientCfg),
		provider:   cfg.Type,
		modelName:  cfg.ModelName,
		baseURL:    clientCfg.BaseURL,
		logger:     logger,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		timeout:    cfg.Timeout,
	}, nil
}

func (c *OpenAIClient) Close() error {
	return nil
}

func (c *OpenAIClient) Complete(ctx context.Context, messages []Message) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:    c.modelName,
		Messages: make([]openai.ChatCompletionMessage, 0, len(messages)),
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Warn("Retrying completion request",
				zap.String("provider", string(c.provider)),
				zap.Int("attempt", attempt+1),
				zap.Int("max_retries", c.maxRetries))
			if err := sleepCtx(ctx, c.retryDelay); err != nil {
				return "", err
			}
		}

		text, err := c.complete(ctx, req)
		if err == nil {
			return text, nil
		}
		lastErr = err
		c.logger.Error("Completion request failed",
			zap.String("provider", string(c.provider)),
			zap.Error(err),
			zap.Int("attempt", attempt+1))

		if !retryable(err) {
			break
		}
	}

	return "", fmt.Errorf("%s failed: %w", c.provider, lastErr)
}

func (c *OpenAIClient) complete(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty response")
	}
	return resp.Choices[0].Message.Content, nil
}

// retryable reports whether another attempt could succeed. Client errors
// other than 429 are final.
func retryable(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests || reqErr.HTTPStatusCode >= 500
	}
	return true
}

func (c *OpenAIClient) GetModelInfo() map[string]interface{} {
	return map[string]interface{}{
		"provider":    string(c.provider),
		"model":       c.modelName,
		"base_url":    c.baseURL,
		"max_retries": c.maxRetries,
		"retry_delay": c.retryDelay.String(),
	}
}
