package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"nexum/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type SuggestionRepository interface {
	// CreateSuggestions inserts all suggestions in one transaction: either every
	// row is written or none is.
	CreateSuggestions(ctx context.Context, suggestions []*models.Suggestion) error
	GetSuggestionByID(ctx context.Context, id string) (*models.Suggestion, error)
	// UpdateStatus sets a suggestion's status and returns the updated row,
	// or nil if no suggestion has that id.
	UpdateStatus(ctx context.Context, id, status string) (*models.Suggestion, error)
	ListByGroup(ctx context.Context, groupID string) ([]*models.Suggestion, error)
	// ListByGroup returns newest batches first, each batch in ranked order.
	// LatestBySource returns the newest suggestion of a group from the given source.
	LatestBySource(ctx context.Context, groupID, source string) (*models.Suggestion, error)
}

type suggestionRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewSuggestionRepository(db *sqlx.DB, logger *zap.Logger) SuggestionRepository {
	return &suggestionRepository{db: db, logger: logger}
}

const selectSuggestion = `SELECT id, group_id, title, start_at, end_at, venue_name, venue_lat, venue_lng,
	source, status, details_json, created_at, updated_at FROM suggestions`

func (r *suggestionRepository) CreateSuggestions(ctx context.Context, suggestions []*models.Suggestion) error {
	if len(suggestions) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := tx.Rebind(`INSERT INTO suggestions (id, group_id, title, start_at, end_at, venue_name, venue_lat, venue_lng,
		source, status, details_json, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	now := time.Now().UTC()
	for i, s := range suggestions {
		if s.ID == "" {
			s.ID = uuid.NewString()
		}
		if s.Status == "" {
			s.Status = models.StatusProposed
		}
		if s.DetailsJSON == "" {
			s.DetailsJSON = "{}"
		}
		// Newest-first listing keeps ranked order within a batch.
		s.CreatedAt = now.Add(-time.Duration(i) * time.Microsecond)
		s.UpdatedAt = s.CreatedAt
		s.StartAt = s.StartAt.UTC()
		s.EndAt = s.EndAt.UTC()

		_, err := tx.ExecContext(ctx, query, s.ID, s.GroupID, s.Title, s.StartAt, s.EndAt, s.VenueName,
			s.VenueLat, s.VenueLng, s.Source, s.Status, s.DetailsJSON, s.CreatedAt, s.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert suggestion %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *suggestionRepository) GetSuggestionByID(ctx context.Context, id string) (*models.Suggestion, error) {
	var s models.Suggestion
	err := r.db.GetContext(ctx, &s, r.db.Rebind(selectSuggestion+` WHERE id = ?`), id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *suggestionRepository) UpdateStatus(ctx context.Context, id, status string) (*models.Suggestion, error) {
	query := r.db.Rebind(`UPDATE suggestions SET status = ?, updated_at = ? WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return nil, fmt.Errorf("failed to update suggestion status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	return r.GetSuggestionByID(ctx, id)
}

func (r *suggestionRepository) ListByGroup(ctx context.Context, groupID string) ([]*models.Suggestion, error) {
	var suggestions []*models.Suggestion
	query := r.db.Rebind(selectSuggestion + ` WHERE group_id = ? ORDER BY created_at DESC`)
	if err := r.db.SelectContext(ctx, &suggestions, query, groupID); err != nil {
		return nil, err
	}
	return suggestions, nil
}

func (r *suggestionRepository) LatestBySource(ctx context.Context, groupID, source string) (*models.Suggestion, error) {
	var s models.Suggestion
	query := r.db.Rebind(selectSuggestion + ` WHERE group_id = ? AND source = ? ORDER BY created_at DESC LIMIT 1`)
	err := r.db.GetContext(ctx, &s, query, groupID, source)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}
