package service

import (
	"context"

	"nexum/internal/llm"

	"go.uber.org/zap"
)

// DefaultSystemPrompt frames every assistant conversation.
const DefaultSystemPrompt = "You are Nexum’s planning assistant. Be concise and actionable."

type Assistant interface {
	// Ask sends a single user message to the language model and returns its reply.
	Ask(ctx context.Context, message string) (string, error)
}

type assistant struct {
	provider     llm.Provider
	systemPrompt string
	logger       *zap.Logger
}

func NewAssistant(provider llm.Provider, systemPrompt string, logger *zap.Logger) Assistant {
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}
	return &assistant{provider: provider, systemPrompt: systemPrompt, logger: logger}
}

// truncate cuts s to at most n characters.
func truncate(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

func (a *assistant) Ask(ctx context.Context, message string) (string, error) {
	message = truncate(message, MaxMessageLength)
	if message == "" {
		return "", newError(ErrValidation, "message is required")
	}
	if a.provider == nil {
		return "", upstreamError("assistant unavailable", errNoProvider)
	}

	text, err := a.provider.Complete(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: a.systemPrompt},
		{Role: llm.RoleUser, Content: message},
	})
	if err != nil {
		a.logger.Error("Assistant completion failed", zap.Error(err))
		return "", upstreamError("assistant request failed", err)
	}
	return text, nil
}
