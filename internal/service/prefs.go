package service

import (
	"context"
	"strings"

	"nexum/internal/auth"
	"nexum/internal/models"
	"nexum/internal/repository"

	"go.uber.org/zap"
)

const maxChatWindowDays = 365

type PrefsService interface {
	GetPrefs(ctx context.Context, groupRef string) (*models.AIPrefs, error)
	// UpdatePrefs replaces a group's AI prefs. Only a group leader may do so.
	UpdatePrefs(ctx context.Context, groupRef string, claim auth.LeaderClaim, input models.UpdateAIPrefsInput) (*models.AIPrefs, error)
}

type prefsService struct {
	groups  GroupService
	members repository.GroupRepository
	prefs   repository.PrefsRepository
	logger  *zap.Logger
}

func NewPrefsService(groups GroupService, members repository.GroupRepository, prefs repository.PrefsRepository, logger *zap.Logger) PrefsService {
	return &prefsService{groups: groups, members: members, prefs: prefs, logger: logger}
}

func (s *prefsService) GetPrefs(ctx context.Context, groupRef string) (*models.AIPrefs, error) {
	group, err := s.groups.Resolve(ctx, groupRef)
	if err != nil {
		return nil, err
	}
	prefs, err := s.prefs.GetOrCreatePrefs(ctx, group.ID)
	if err != nil {
		return nil, upstreamError("failed to load preferences", err)
	}
	return prefs, nil
}

func (s *prefsService) UpdatePrefs(ctx context.Context, groupRef string, claim auth.LeaderClaim, input models.UpdateAIPrefsInput) (*models.AIPrefs, error) {
	group, err := s.groups.Resolve(ctx, groupRef)
	if err != nil {
		return nil, err
	}

	if err := s.checkLeader(ctx, group.ID, claim); err != nil {
		return nil, err
	}

	prefs, err := buildPrefs(group.ID, input)
	if err != nil {
		return nil, err
	}

	saved, err := s.prefs.UpsertPrefs(ctx, prefs)
	if err != nil {
		s.logger.Error("Failed to save ai prefs", zap.String("group_id", group.ID), zap.Error(err))
		return nil, upstreamError("failed to save preferences", err)
	}

	s.logger.Info("AI prefs updated",
		zap.String("group_id", group.ID),
		zap.Bool("read_chat_on", saved.ReadChatOn),
		zap.Bool("plan_from_profiles_on", saved.PlanFromProfilesOn),
		zap.String("notify_channel", saved.NotifyChannel))
	return saved, nil
}

// checkLeader accepts a demo leader claim, or a user claim whose user is a
// leader member of the group.
func (s *prefsService) checkLeader(ctx context.Context, groupID string, claim auth.LeaderClaim) error {
	if claim.DemoLeader {
		return nil
	}
	if claim.Anonymous() {
		return newError(ErrForbidden, "leader required (X-Demo-Leader: true)")
	}

	member, err := s.members.GetMember(ctx, groupID, claim.UserID)
	if err != nil {
		return upstreamError("failed to load membership", err)
	}
	if !member.IsLeader() {
		return newError(ErrForbidden, "leader required (X-Demo-Leader: true)")
	}
	return nil
}

func buildPrefs(groupID string, input models.UpdateAIPrefsInput) (*models.AIPrefs, error) {
	prefs := models.DefaultAIPrefs(groupID)
	prefs.ReadChatOn = input.ReadChatOn
	prefs.PlanFromProfilesOn = input.PlanFromProfilesOn

	if input.ReadChatWindowDays != nil {
		days := *input.ReadChatWindowDays
		if days < 1 || days > maxChatWindowDays {
			return nil, newError(ErrValidation, "readChatWindowDays must be between 1 and %d", maxChatWindowDays)
		}
		prefs.ReadChatWindowDays = days
	}

	if input.PlanFromProfilesFreq != nil {
		freq := strings.ToUpper(strings.TrimSpace(*input.PlanFromProfilesFreq))
		switch freq {
		case models.FreqDaily, models.FreqWeekly, models.FreqMonthly:
			prefs.PlanFromProfilesFreq = freq
		default:
			return nil, newError(ErrValidation, "planFromProfilesFreq must be DAILY, WEEKLY or MONTHLY")
		}
	}

	if input.NotifyChannel != nil {
		channel := strings.ToUpper(strings.TrimSpace(*input.NotifyChannel))
		switch channel {
		case models.ChannelChat, models.ChannelTelegram, models.ChannelNone:
			prefs.NotifyChannel = channel
		default:
			return nil, newError(ErrValidation, "notifyChannel must be CHAT, TELEGRAM or NONE")
		}
	}

	return prefs, nil
}
