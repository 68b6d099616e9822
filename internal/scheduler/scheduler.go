// Package scheduler runs profile-based planning on each group's chosen cadence.
package scheduler

import (
	"context"
	"errors"
	"time"

	"nexum/internal/models"
	"nexum/internal/repository"
	"nexum/internal/service"

	"go.uber.org/zap"
)

// Planner periodically proposes profile-based meetups for groups that have
// planFromProfilesOn set. A group is planned again once its newest PROFILES
// suggestion is older than its planFromProfilesFreq period.
type Planner struct {
	prefs       repository.PrefsRepository
	suggestions repository.SuggestionRepository
	suggester   service.SuggestionService
	interval    time.Duration
	now         func() time.Time
	logger      *zap.Logger
}

func NewPlanner(
	prefs repository.PrefsRepository,
	suggestions repository.SuggestionRepository,
	suggester service.SuggestionService,
	interval time.Duration,
	logger *zap.Logger,
) *Planner {
	return &Planner{
		prefs:       prefs,
		suggestions: suggestions,
		suggester:   suggester,
		interval:    interval,
		now:         time.Now,
		logger:      logger,
	}
}

// Run plans once at startup and then on every tick until ctx is cancelled.
func (p *Planner) Run(ctx context.Context) {
	p.logger.Info("Profile planner started.", zap.Duration("interval", p.interval))

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Profile planner stopped.")
			return
		case <-ticker.C:
			p.RunOnce(ctx)
		}
	}
}

// RunOnce plans every due group and returns how many were planned.
func (p *Planner) RunOnce(ctx context.Context) int {
	enabled, err := p.prefs.ListProfilePlanningPrefs(ctx)
	if err != nil {
		p.logger.Error("Failed to list groups with profile planning", zap.Error(err))
		return 0
	}

	planned := 0
	for _, prefs := range enabled {
		if ctx.Err() != nil {
			return planned
		}

		due, err := p.due(ctx, prefs)
		if err != nil {
			p.logger.Error("Failed to check last suggestion", zap.String("group_id", prefs.GroupID), zap.Error(err))
			continue
		}
		if !due {
			p.logger.Debug("Skipping group, not due yet",
				zap.String("group_id", prefs.GroupID),
				zap.String("freq", prefs.PlanFromProfilesFreq))
			continue
		}

		created, err := p.suggester.Suggest(ctx, prefs.GroupID, models.SourceProfiles)
		if err != nil {
			// Prefs may have been switched off between listing and planning.
			if errors.Is(err, service.ErrPolicy) {
				continue
			}
			p.logger.Error("Scheduled planning failed", zap.String("group_id", prefs.GroupID), zap.Error(err))
			continue
		}

		planned++
		p.logger.Info("Scheduled planning done",
			zap.String("group_id", prefs.GroupID),
			zap.Int("suggestions", len(created)))
	}
	return planned
}

func (p *Planner) due(ctx context.Context, prefs *models.AIPrefs) (bool, error) {
	latest, err := p.suggestions.LatestBySource(ctx, prefs.GroupID, models.SourceProfiles)
	if err != nil {
		return false, err
	}
	if latest == nil {
		return true, nil
	}
	return p.now().Sub(latest.CreatedAt) >= prefs.FreqPeriod(), nil
}
