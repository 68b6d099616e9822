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

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	AddInterest(ctx context.Context, interest *models.Interest) error
	AddBucketItem(ctx context.Context, item *models.BucketItem) error
	ListInterests(ctx context.Context, userIDs []string) ([]*models.Interest, error)
	ListBucketItems(ctx context.Context, userIDs []string) ([]*models.BucketItem, error)
}

type userRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewUserRepository(db *sqlx.DB, logger *zap.Logger) UserRepository {
	return &userRepository{db: db, logger: logger}
}

func (r *userRepository) CreateUser(ctx context.Context, user *models.User) error {
	return insertUser(ctx, r.db, user)
}

func insertUser(ctx context.Context, db sqlx.ExtContext, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	query := db.Rebind(`INSERT INTO users (id, name, home_lat, home_lng, created_at) VALUES (?, ?, ?, ?, ?)`)
	if _, err := db.ExecContext(ctx, query, user.ID, user.Name, user.HomeLat, user.HomeLng, user.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (r *userRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	query := r.db.Rebind(`SELECT id, name, home_lat, home_lng, created_at FROM users WHERE id = ?`)
	err := r.db.GetContext(ctx, &user, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // User not found
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) AddInterest(ctx context.Context, interest *models.Interest) error {
	if interest.ID == "" {
		interest.ID = uuid.NewString()
	}
	query := r.db.Rebind(`INSERT INTO interests (id, user_id, tag) VALUES (?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, query, interest.ID, interest.UserID, interest.Tag)
	return err
}

func (r *userRepository) AddBucketItem(ctx context.Context, item *models.BucketItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	query := r.db.Rebind(`INSERT INTO bucket_items (id, user_id, item) VALUES (?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, query, item.ID, item.UserID, item.Item)
	return err
}

func (r *userRepository) ListInterests(ctx context.Context, userIDs []string) ([]*models.Interest, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT id, user_id, tag FROM interests WHERE user_id IN (?) ORDER BY user_id, id`, userIDs)
	if err != nil {
		return nil, err
	}

	var interests []*models.Interest
	if err := r.db.SelectContext(ctx, &interests, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	return interests, nil
}

func (r *userRepository) ListBucketItems(ctx context.Context, userIDs []string) ([]*models.BucketItem, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT id, user_id, item FROM bucket_items WHERE user_id IN (?) ORDER BY user_id, id`, userIDs)
	if err != nil {
		return nil, err
	}

	var items []*models.BucketItem
	if err := r.db.SelectContext(ctx, &items, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	return items, nil
}
