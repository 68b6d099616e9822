package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// GeminiClient wraps the Gemini API client
type GeminiClient struct {
	client     *genai.Client
	logger     *zap.Logger
	modelName  string
	maxRetries int
	retryDelay time.Duration
	timeout    time.Duration
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(cfg ProviderConfig, logger *zap.Logger) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if cfg.ModelName == "" {
		cfg.ModelName = "gemini-2.0-flash"
	}
	cfg.applyDefaults(0)

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	logger.Info("Gemini client initialized",
		zap.String("model", cfg.ModelName),
		zap.Int("max_retries", cfg.MaxRetries))

	return &GeminiClient{
		client:     client,
		logger:     logger,
		modelName:  cfg.ModelName,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		timeout:    cfg.Timeout,
	}, nil
}

// Close closes the Gemini client
func (c *GeminiClient) Close() error {
	return c.client.Close()
}

// toGemini splits messages into a system instruction, prior turns and the
// final user prompt.
func toGemini(messages []Message) (system *genai.Content, history []*genai.Content, prompt string) {
	var systemParts []genai.Part
	for i, m := range messages {
		switch {
		case m.Role == RoleSystem:
			systemParts = append(systemParts, genai.Text(m.Content))
		case i == len(messages)-1:
			prompt = m.Content
		default:
			role := "user"
			if m.Role == RoleAssistant {
				role = "model"
			}
			history = append(history, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(m.Content)}})
		}
	}
	if len(systemParts) > 0 {
		system = &genai.Content{Parts: systemParts}
	}
	return system, history, prompt
}

func (c *GeminiClient) Complete(ctx context.Context, messages []Message) (string, error) {
	system, history, prompt := toGemini(messages)
	if prompt == "" {
		return "", errors.New("gemini: last message must carry the prompt")
	}

	model := c.client.GenerativeModel(c.modelName)
	model.SystemInstruction = system

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Warn("Retrying Gemini request",
				zap.Int("attempt", attempt+1),
				zap.Int("max_retries", c.maxRetries))
			if err := sleepCtx(ctx, c.retryDelay); err != nil {
				return "", err
			}
		}

		text, err := c.send(ctx, model, history, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err
		c.logger.Error("Gemini API error", zap.Error(err), zap.Int("attempt", attempt+1))
	}

	return "", fmt.Errorf("gemini failed after %d attempts: %w", c.maxRetries, lastErr)
}

func (c *GeminiClient) send(ctx context.Context, model *genai.GenerativeModel, history []*genai.Content, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	session := model.StartChat()
	session.History = history

	resp, err := session.SendMessage(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("empty response from gemini")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", errors.New("unexpected response type from gemini")
	}
	return sb.String(), nil
}

// GetModelInfo returns model information
func (c *GeminiClient) GetModelInfo() map[string]interface{} {
	return map[string]interface{}{
		"provider":    "gemini",
		"model":       c.modelName,
		"max_retries": c.maxRetries,
		"retry_delay": c.retryDelay.String(),
	}
}
