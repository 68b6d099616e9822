package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"nexum/internal/models"
	"nexum/internal/places"
	"nexum/internal/planner"
	"nexum/internal/repository"

	"go.uber.org/zap"
)

// Dispatcher delivers new suggestions on a group's notify channel.
type Dispatcher interface {
	Dispatch(ctx context.Context, channel string, group *models.Group, suggestions []*models.Suggestion) error
}

type SuggestionService interface {
	// Suggest runs the planning pipeline for a group in "chat" or "profiles"
	// mode and stores the ranked suggestions.
	Suggest(ctx context.Context, groupRef, mode string) ([]*models.Suggestion, error)
	// ApplyAction moves a suggestion to the status mapped from action.
	ApplyAction(ctx context.Context, suggestionID, action string) (*models.Suggestion, error)
	ListSuggestions(ctx context.Context, groupRef string) ([]*models.Suggestion, error)
}

// SuggestionDeps groups what the pipeline talks to.
type SuggestionDeps struct {
	Groups       GroupService
	GroupRepo    repository.GroupRepository
	UserRepo     repository.UserRepository
	MessageRepo  repository.MessageRepository
	PrefsRepo    repository.PrefsRepository
	Suggestions  repository.SuggestionRepository
	Places       places.Searcher
	Availability planner.AvailabilityResolver
	// Notifier is optional.
	Notifier Dispatcher
	// Now defaults to time.Now.
	Now func() time.Time
}

type suggestionService struct {
	SuggestionDeps
	logger *zap.Logger
}

func NewSuggestionService(deps SuggestionDeps, logger *zap.Logger) SuggestionService {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &suggestionService{SuggestionDeps: deps, logger: logger}
}

// ParseMode maps a requested mode to a suggestion source. Empty means profiles.
func ParseMode(mode string) (string, error) {
	switch strings.ToUpper(strings.TrimSpace(mode)) {
	case "", models.SourceProfiles:
		return models.SourceProfiles, nil
	case models.SourceChat:
		return models.SourceChat, nil
	default:
		return "", newError(ErrValidation, "mode must be chat or profiles")
	}
}

func (s *suggestionService) Suggest(ctx context.Context, groupRef, mode string) ([]*models.Suggestion, error) {
	group, err := s.Groups.Resolve(ctx, groupRef)
	if err != nil {
		return nil, err
	}

	source, err := ParseMode(mode)
	if err != nil {
		return nil, err
	}

	prefs, err := s.PrefsRepo.GetOrCreatePrefs(ctx, group.ID)
	if err != nil {
		s.logger.Error("Failed to load ai prefs", zap.String("group_id", group.ID), zap.Error(err))
		return nil, upstreamError("failed to load preferences", err)
	}
	if source == models.SourceChat && !prefs.ReadChatOn {
		return nil, newError(ErrPolicy, "chat scan is off")
	}
	if source == models.SourceProfiles && !prefs.PlanFromProfilesOn {
		return nil, newError(ErrPolicy, "profiles planning is off")
	}

	members, err := s.GroupRepo.ListMembers(ctx, group.ID)
	if err != nil {
		return nil, upstreamError("failed to load members", err)
	}

	var hints planner.Hints
	if source == models.SourceChat {
		hints, err = s.chatHints(ctx, group.ID, prefs)
	} else {
		hints, err = s.profileHints(ctx, members)
	}
	if err != nil {
		return nil, err
	}

	slots, err := s.Availability.FindSlots(ctx, members)
	if err != nil {
		return nil, upstreamError("failed to find time slots", err)
	}
	if len(slots) == 0 {
		return []*models.Suggestion{}, nil
	}
	slot := slots[0]

	center := planner.Midpoint(members)
	venues, err := s.Places.Search(ctx, places.Query{
		Center:   center,
		Keywords: hints.Keywords,
		Window:   &places.Window{Start: slot.Start, End: slot.End},
	})
	if err != nil {
		s.logger.Error("Venue search failed",
			zap.String("group_id", group.ID),
			zap.Strings("keywords", hints.Keywords),
			zap.Error(err))
		return nil, upstreamError("venue search failed", err)
	}

	ranked := planner.Rank(venues, slots, members)

	suggestions := make([]*models.Suggestion, 0, len(ranked))
	for _, v := range ranked {
		details, err := json.Marshal(models.SuggestionDetails{URL: v.URL, Keywords: hints.Keywords})
		if err != nil {
			return nil, upstreamError("failed to encode details", err)
		}
		suggestions = append(suggestions, &models.Suggestion{
			GroupID:     group.ID,
			Title:       "Meetup: " + v.Name,
			StartAt:     slot.Start,
			EndAt:       slot.End,
			VenueName:   v.Name,
			VenueLat:    v.Lat,
			VenueLng:    v.Lng,
			Source:      source,
			Status:      models.StatusProposed,
			DetailsJSON: string(details),
		})
	}

	if err := s.Suggestions.CreateSuggestions(ctx, suggestions); err != nil {
		s.logger.Error("Failed to save suggestions", zap.String("group_id", group.ID), zap.Error(err))
		return nil, upstreamError("failed to save suggestions", err)
	}

	s.logger.Info("Suggestions created",
		zap.String("group_id", group.ID),
		zap.String("source", source),
		zap.Strings("keywords", hints.Keywords),
		zap.Int("count", len(suggestions)))

	s.notify(ctx, prefs, group, suggestions)

	return suggestions, nil
}

func (s *suggestionService) chatHints(ctx context.Context, groupID string, prefs *models.AIPrefs) (planner.Hints, error) {
	since := s.Now().Add(-prefs.ChatWindow())
	messages, err := s.MessageRepo.ListMessagesSince(ctx, groupID, since)
	if err != nil {
		return planner.Hints{}, upstreamError("failed to load messages", err)
	}
	return planner.ExtractFromChat(messages), nil
}

func (s *suggestionService) profileHints(ctx context.Context, members []*models.GroupMember) (planner.Hints, error) {
	userIDs := make([]string, 0, len(members))
	for _, m := range members {
		userIDs = append(userIDs, m.UserID)
	}

	interests, err := s.UserRepo.ListInterests(ctx, userIDs)
	if err != nil {
		return planner.Hints{}, upstreamError("failed to load interests", err)
	}
	bucket, err := s.UserRepo.ListBucketItems(ctx, userIDs)
	if err != nil {
		return planner.Hints{}, upstreamError("failed to load bucket items", err)
	}

	profiles := make([]*models.Profile, 0, len(members))
	byUser := make(map[string]*models.Profile, len(members))
	for _, m := range members {
		p := &models.Profile{UserID: m.UserID, User: m.User}
		profiles = append(profiles, p)
		byUser[m.UserID] = p
	}
	for _, in := range interests {
		if p, ok := byUser[in.UserID]; ok {
			p.Interests = append(p.Interests, in)
		}
	}
	for _, b := range bucket {
		if p, ok := byUser[b.UserID]; ok {
			p.Bucket = append(p.Bucket, b)
		}
	}

	return planner.ExtractFromProfiles(profiles), nil
}

// notify is best effort; failures are only logged.
func (s *suggestionService) notify(ctx context.Context, prefs *models.AIPrefs, group *models.Group, suggestions []*models.Suggestion) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.Dispatch(ctx, prefs.NotifyChannel, group, suggestions); err != nil {
		s.logger.Warn("Failed to notify group",
			zap.String("group_id", group.ID),
			zap.String("channel", prefs.NotifyChannel),
			zap.Error(err))
	}
}

func (s *suggestionService) ApplyAction(ctx context.Context, suggestionID, action string) (*models.Suggestion, error) {
	status, ok := models.ActionStatus[strings.ToUpper(strings.TrimSpace(action))]
	if !ok {
		return nil, newError(ErrValidation, "invalid action")
	}

	suggestion, err := s.Suggestions.UpdateStatus(ctx, suggestionID, status)
	if err != nil {
		s.logger.Error("Failed to update suggestion",
			zap.String("suggestion_id", suggestionID),
			zap.Error(err))
		return nil, upstreamError("failed to update suggestion", err)
	}
	if suggestion == nil {
		return nil, newError(ErrNotFound, "suggestion not found")
	}

	s.logger.Info("Suggestion status changed",
		zap.String("suggestion_id", suggestion.ID),
		zap.String("status", suggestion.Status))
	return suggestion, nil
}

func (s *suggestionService) ListSuggestions(ctx context.Context, groupRef string) ([]*models.Suggestion, error) {
	group, err := s.Groups.Resolve(ctx, groupRef)
	if err != nil {
		return nil, err
	}
	suggestions, err := s.Suggestions.ListByGroup(ctx, group.ID)
	if err != nil {
		return nil, upstreamError("failed to list suggestions", err)
	}
	return suggestions, nil
}
