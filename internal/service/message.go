package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"nexum/internal/models"
	"nexum/internal/repository"

	"go.uber.org/zap"
)

// MaxMessageLength bounds chat messages and assistant prompts, in characters.
const MaxMessageLength = 4000

type MessageService interface {
	PostMessage(ctx context.Context, groupRef string, input models.PostMessageInput) (*models.Message, error)
	ListMessages(ctx context.Context, groupRef string, limit int) ([]*models.Message, error)
}

type messageService struct {
	groups   GroupService
	groupDB  repository.GroupRepository
	messages repository.MessageRepository
	logger   *zap.Logger
}

func NewMessageService(groups GroupService, groupDB repository.GroupRepository, messages repository.MessageRepository, logger *zap.Logger) MessageService {
	return &messageService{groups: groups, groupDB: groupDB, messages: messages, logger: logger}
}

func (s *messageService) PostMessage(ctx context.Context, groupRef string, input models.PostMessageInput) (*models.Message, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return nil, newError(ErrValidation, "text is required")
	}
	if utf8.RuneCountInString(text) > MaxMessageLength {
		return nil, newError(ErrValidation, "text must be at most %d characters", MaxMessageLength)
	}

	group, err := s.groups.Resolve(ctx, groupRef)
	if err != nil {
		return nil, err
	}

	member, err := s.groupDB.GetMember(ctx, group.ID, input.UserID)
	if err != nil {
		return nil, upstreamError("failed to load membership", err)
	}
	if member == nil {
		return nil, newError(ErrForbidden, "only group members can post messages")
	}

	msg := &models.Message{GroupID: group.ID, UserID: input.UserID, Text: text}
	if err := s.messages.SaveMessage(ctx, msg); err != nil {
		s.logger.Error("Failed to save message", zap.String("group_id", group.ID), zap.Error(err))
		return nil, upstreamError("failed to save message", err)
	}
	return msg, nil
}

func (s *messageService) ListMessages(ctx context.Context, groupRef string, limit int) ([]*models.Message, error) {
	group, err := s.groups.Resolve(ctx, groupRef)
	if err != nil {
		return nil, err
	}

	messages, err := s.messages.ListMessages(ctx, group.ID, limit)
	if err != nil {
		s.logger.Error("Failed to list messages", zap.String("group_id", group.ID), zap.Error(err))
		return nil, upstreamError("failed to list messages", err)
	}
	return messages, nil
}
