package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"nexum/internal/models"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type PrefsRepository interface {
	GetPrefs(ctx context.Context, groupID string) (*models.AIPrefs, error)
	// GetOrCreatePrefs returns the group's prefs, inserting defaults if there are none.
	GetOrCreatePrefs(ctx context.Context, groupID string) (*models.AIPrefs, error)
	UpsertPrefs(ctx context.Context, prefs *models.AIPrefs) (*models.AIPrefs, error)
	// ListProfilePlanningPrefs returns prefs of every group with planFromProfilesOn set.
	ListProfilePlanningPrefs(ctx context.Context) ([]*models.AIPrefs, error)
}

type prefsRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewPrefsRepository(db *sqlx.DB, logger *zap.Logger) PrefsRepository {
	return &prefsRepository{db: db, logger: logger}
}

const selectPrefs = `SELECT group_id, read_chat_on, plan_from_profiles_on, read_chat_window_days,
	plan_from_profiles_freq, notify_channel, updated_at FROM ai_prefs`

func (r *prefsRepository) GetPrefs(ctx context.Context, groupID string) (*models.AIPrefs, error) {
	var prefs models.AIPrefs
	err := r.db.GetContext(ctx, &prefs, r.db.Rebind(selectPrefs+` WHERE group_id = ?`), groupID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &prefs, nil
}

func (r *prefsRepository) GetOrCreatePrefs(ctx context.Context, groupID string) (*models.AIPrefs, error) {
	if err := upsertPrefs(ctx, r.db, models.DefaultAIPrefs(groupID), false); err != nil {
		return nil, err
	}
	return r.GetPrefs(ctx, groupID)
}

func (r *prefsRepository) UpsertPrefs(ctx context.Context, prefs *models.AIPrefs) (*models.AIPrefs, error) {
	if err := upsertPrefs(ctx, r.db, prefs, true); err != nil {
		return nil, err
	}
	return r.GetPrefs(ctx, prefs.GroupID)
}

func (r *prefsRepository) ListProfilePlanningPrefs(ctx context.Context) ([]*models.AIPrefs, error) {
	var prefs []*models.AIPrefs
	query := r.db.Rebind(selectPrefs + ` WHERE plan_from_profiles_on = ? ORDER BY group_id`)
	if err := r.db.SelectContext(ctx, &prefs, query, true); err != nil {
		return nil, err
	}
	return prefs, nil
}

// upsertPrefs writes prefs keyed by group. With overwrite false an existing row is kept.
func upsertPrefs(ctx context.Context, db sqlx.ExtContext, prefs *models.AIPrefs, overwrite bool) error {
	prefs.UpdatedAt = time.Now().UTC()

	conflict := `ON CONFLICT (group_id) DO NOTHING`
	if overwrite {
		conflict = `ON CONFLICT (group_id) DO UPDATE SET
			read_chat_on = excluded.read_chat_on,
			plan_from_profiles_on = excluded.plan_from_profiles_on,
			read_chat_window_days = excluded.read_chat_window_days,
			plan_from_profiles_freq = excluded.plan_from_profiles_freq,
			notify_channel = excluded.notify_channel,
			updated_at = excluded.updated_at`
	}

	query := db.Rebind(`INSERT INTO ai_prefs (group_id, read_chat_on, plan_from_profiles_on, read_chat_window_days,
		plan_from_profiles_freq, notify_channel, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?) ` + conflict)

	_, err := db.ExecContext(ctx, query, prefs.GroupID, prefs.ReadChatOn, prefs.PlanFromProfilesOn,
		prefs.ReadChatWindowDays, prefs.PlanFromProfilesFreq, prefs.NotifyChannel, prefs.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert ai prefs: %w", err)
	}
	return nil
}
