package service

import (
	"context"
	"strings"

	"nexum/internal/models"
	"nexum/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type GroupService interface {
	// EnsureDemo returns the demo group, creating it with three members and
	// default AI prefs if it does not exist yet.
	EnsureDemo(ctx context.Context) (*models.Group, error)
	// Resolve looks a group up by id. The reference "demo" resolves to the
	// demo group, provisioning it when missing.
	Resolve(ctx context.Context, groupRef string) (*models.Group, error)
	CreateGroup(ctx context.Context, input models.CreateGroupInput) (*models.Group, error)
	// GetGroup returns the group with its members.
	GetGroup(ctx context.Context, groupRef string) (*models.Group, error)
	AddMember(ctx context.Context, groupRef string, input models.AddMemberInput) (*models.GroupMember, error)
}

type groupService struct {
	groups repository.GroupRepository
	users  repository.UserRepository
	demo   singleflight.Group
	logger *zap.Logger
}

func NewGroupService(groups repository.GroupRepository, users repository.UserRepository, logger *zap.Logger) GroupService {
	return &groupService{groups: groups, users: users, logger: logger}
}

func float(v float64) *float64 { return &v }

// demoUsers are created in this order; the first becomes the leader.
func demoUsers() []*models.User {
	return []*models.User{
		{Name: "Alice", HomeLat: float(-33.86), HomeLng: float(151.20)},
		{Name: "Bob", HomeLat: float(-33.87), HomeLng: float(151.18)},
		{Name: "Cara", HomeLat: float(-33.88), HomeLng: float(151.22)},
	}
}

func (s *groupService) EnsureDemo(ctx context.Context) (*models.Group, error) {
	v, err, _ := s.demo.Do(models.DemoGroupName, func() (interface{}, error) {
		// The flight is shared by joined callers and outlives the first one's cancellation.
		group, created, err := s.groups.EnsureNamedGroup(context.WithoutCancel(ctx), models.DemoGroupName, demoUsers())
		if err != nil {
			return nil, err
		}
		if created {
			s.logger.Info("Demo group provisioned", zap.String("group_id", group.ID))
		}
		return group, nil
	})
	if err != nil {
		s.logger.Error("Failed to provision demo group", zap.Error(err))
		return nil, upstreamError("failed to provision demo group", err)
	}
	return v.(*models.Group), nil
}

func (s *groupService) Resolve(ctx context.Context, groupRef string) (*models.Group, error) {
	if groupRef == models.DemoGroupName {
		return s.EnsureDemo(ctx)
	}

	group, err := s.groups.GetGroupByID(ctx, groupRef)
	if err != nil {
		s.logger.Error("Failed to get group", zap.String("group_id", groupRef), zap.Error(err))
		return nil, upstreamError("failed to load group", err)
	}
	if group == nil {
		return nil, newError(ErrNotFound, "group not found")
	}
	return group, nil
}

func (s *groupService) CreateGroup(ctx context.Context, input models.CreateGroupInput) (*models.Group, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, newError(ErrValidation, "name is required")
	}

	group := &models.Group{Name: name}
	if err := s.groups.CreateGroup(ctx, group); err != nil {
		s.logger.Error("Failed to create group", zap.Error(err))
		return nil, upstreamError("failed to create group", err)
	}
	return group, nil
}

func (s *groupService) GetGroup(ctx context.Context, groupRef string) (*models.Group, error) {
	group, err := s.Resolve(ctx, groupRef)
	if err != nil {
		return nil, err
	}

	members, err := s.groups.ListMembers(ctx, group.ID)
	if err != nil {
		s.logger.Error("Failed to list members", zap.String("group_id", group.ID), zap.Error(err))
		return nil, upstreamError("failed to load members", err)
	}
	group.Members = members
	return group, nil
}

func (s *groupService) AddMember(ctx context.Context, groupRef string, input models.AddMemberInput) (*models.GroupMember, error) {
	group, err := s.Resolve(ctx, groupRef)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByID(ctx, input.UserID)
	if err != nil {
		return nil, upstreamError("failed to load user", err)
	}
	if user == nil {
		return nil, newError(ErrNotFound, "user not found")
	}

	existing, err := s.groups.GetMember(ctx, group.ID, user.ID)
	if err != nil {
		return nil, upstreamError("failed to load membership", err)
	}
	if existing != nil {
		return nil, newError(ErrValidation, "user is already a member")
	}

	role := input.Role
	if role == "" {
		role = models.RoleMember
	}
	if role != models.RoleLeader && role != models.RoleMember {
		return nil, newError(ErrValidation, "role must be leader or member")
	}

	member := &models.GroupMember{GroupID: group.ID, UserID: user.ID, Role: role, User: user}
	if err := s.groups.AddMember(ctx, member); err != nil {
		s.logger.Error("Failed to add member",
			zap.String("group_id", group.ID),
			zap.String("user_id", user.ID),
			zap.Error(err))
		return nil, upstreamError("failed to add member", err)
	}
	return member, nil
}
