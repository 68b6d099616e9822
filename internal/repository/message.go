package repository

import (
	"context"
	"time"

	"nexum/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type MessageRepository interface {
	SaveMessage(ctx context.Context, msg *models.Message) error
	// ListMessagesSince returns a group's messages created at or after since, newest first.
	ListMessagesSince(ctx context.Context, groupID string, since time.Time) ([]*models.Message, error)
	ListMessages(ctx context.Context, groupID string, limit int) ([]*models.Message, error)
}

type messageRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewMessageRepository(db *sqlx.DB, logger *zap.Logger) MessageRepository {
	return &messageRepository{db: db, logger: logger}
}

func (r *messageRepository) SaveMessage(ctx context.Context, msg *models.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	msg.CreatedAt = msg.CreatedAt.UTC()

	query := r.db.Rebind(`INSERT INTO messages (id, group_id, user_id, text, created_at) VALUES (?, ?, ?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, query, msg.ID, msg.GroupID, msg.UserID, msg.Text, msg.CreatedAt)
	return err
}

func (r *messageRepository) ListMessagesSince(ctx context.Context, groupID string, since time.Time) ([]*models.Message, error) {
	var messages []*models.Message
	query := r.db.Rebind(`SELECT id, group_id, user_id, text, created_at FROM messages
	          WHERE group_id = ? AND created_at >= ? ORDER BY created_at DESC`)
	if err := r.db.SelectContext(ctx, &messages, query, groupID, since.UTC()); err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *messageRepository) ListMessages(ctx context.Context, groupID string, limit int) ([]*models.Message, error) {
	if limit <= 0 {
		limit = 100
	}
	var messages []*models.Message
	query := r.db.Rebind(`SELECT id, group_id, user_id, text, created_at FROM messages
	          WHERE group_id = ? ORDER BY created_at DESC LIMIT ?`)
	if err := r.db.SelectContext(ctx, &messages, query, groupID, limit); err != nil {
		return nil, err
	}
	return messages, nil
}
