package service

import (
	"context"
	"strings"

	"nexum/internal/models"
	"nexum/internal/repository"

	"go.uber.org/zap"
)

type UserService interface {
	CreateUser(ctx context.Context, input models.CreateUserInput) (*models.User, error)
	AddInterest(ctx context.Context, userID string, input models.CreateInterestInput) (*models.Interest, error)
	AddBucketItem(ctx context.Context, userID string, input models.CreateBucketItemInput) (*models.BucketItem, error)
}

type userService struct {
	users  repository.UserRepository
	logger *zap.Logger
}

func NewUserService(users repository.UserRepository, logger *zap.Logger) UserService {
	return &userService{users: users, logger: logger}
}

func (s *userService) CreateUser(ctx context.Context, input models.CreateUserInput) (*models.User, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, newError(ErrValidation, "name is required")
	}
	if (input.HomeLat == nil) != (input.HomeLng == nil) {
		return nil, newError(ErrValidation, "homeLat and homeLng must be set together")
	}

	user := &models.User{Name: name, HomeLat: input.HomeLat, HomeLng: input.HomeLng}
	if err := s.users.CreateUser(ctx, user); err != nil {
		s.logger.Error("Failed to create user", zap.Error(err))
		return nil, upstreamError("failed to create user", err)
	}
	return user, nil
}

func (s *userService) requireUser(ctx context.Context, userID string) error {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return upstreamError("failed to load user", err)
	}
	if user == nil {
		return newError(ErrNotFound, "user not found")
	}
	return nil
}

func (s *userService) AddInterest(ctx context.Context, userID string, input models.CreateInterestInput) (*models.Interest, error) {
	tag := strings.TrimSpace(input.Tag)
	if tag == "" {
		return nil, newError(ErrValidation, "tag is required")
	}
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	interest := &models.Interest{UserID: userID, Tag: tag}
	if err := s.users.AddInterest(ctx, interest); err != nil {
		s.logger.Error("Failed to add interest", zap.String("user_id", userID), zap.Error(err))
		return nil, upstreamError("failed to add interest", err)
	}
	return interest, nil
}

func (s *userService) AddBucketItem(ctx context.Context, userID string, input models.CreateBucketItemInput) (*models.BucketItem, error) {
	text := strings.TrimSpace(input.Item)
	if text == "" {
		return nil, newError(ErrValidation, "item is required")
	}
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}

	item := &models.BucketItem{UserID: userID, Item: text}
	if err := s.users.AddBucketItem(ctx, item); err != nil {
		s.logger.Error("Failed to add bucket item", zap.String("user_id", userID), zap.Error(err))
		return nil, upstreamError("failed to add bucket item", err)
	}
	return item, nil
}
