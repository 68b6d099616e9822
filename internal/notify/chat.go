package notify

import (
	"context"

	"nexum/internal/models"

	"go.uber.org/zap"
)

// ChatLog announces suggestions in the structured log that chat clients tail.
type ChatLog struct {
	logger *zap.Logger
}

func NewChatLog(logger *zap.Logger) *ChatLog {
	return &ChatLog{logger: logger}
}

func (c *ChatLog) NotifySuggestions(_ context.Context, group *models.Group, suggestions []*models.Suggestion) error {
	for i, s := range suggestions {
		c.logger.Info("New meetup suggestion",
			zap.String("group_id", group.ID),
			zap.String("group", group.Name),
			zap.Int("rank", i+1),
			zap.String("suggestion_id", s.ID),
			zap.String("title", s.Title),
			zap.Time("start", s.StartAt),
			zap.String("source", s.Source))
	}
	return nil
}
