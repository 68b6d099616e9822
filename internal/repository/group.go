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

type GroupRepository interface {
	CreateGroup(ctx context.Context, group *models.Group) error
	GetGroupByID(ctx context.Context, id string) (*models.Group, error)
	GetGroupByName(ctx context.Context, name string) (*models.Group, error)
	ListGroups(ctx context.Context) ([]*models.Group, error)
	AddMember(ctx context.Context, member *models.GroupMember) error
	GetMember(ctx context.Context, groupID, userID string) (*models.GroupMember, error)
	ListMembers(ctx context.Context, groupID string) ([]*models.GroupMember, error)
	// EnsureNamedGroup returns the first group called name. If there is none it
	// creates the group, the given users as members (first one leader) and default
	// AI prefs in one transaction. The bool reports whether anything was created.
	EnsureNamedGroup(ctx context.Context, name string, users []*models.User) (*models.Group, bool, error)
}

type groupRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewGroupRepository(db *sqlx.DB, logger *zap.Logger) GroupRepository {
	return &groupRepository{db: db, logger: logger}
}

const selectGroup = `SELECT id, name, created_at FROM groups`

func (r *groupRepository) CreateGroup(ctx context.Context, group *models.Group) error {
	return insertGroup(ctx, r.db, group)
}

func insertGroup(ctx context.Context, db sqlx.ExtContext, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.NewString()
	}
	if group.CreatedAt.IsZero() {
		group.CreatedAt = time.Now().UTC()
	}
	query := db.Rebind(`INSERT INTO groups (id, name, created_at) VALUES (?, ?, ?)`)
	if _, err := db.ExecContext(ctx, query, group.ID, group.Name, group.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}
	return nil
}

func (r *groupRepository) GetGroupByID(ctx context.Context, id string) (*models.Group, error) {
	var group models.Group
	err := r.db.GetContext(ctx, &group, r.db.Rebind(selectGroup+` WHERE id = ?`), id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Group not found
		}
		return nil, err
	}
	return &group, nil
}

func (r *groupRepository) GetGroupByName(ctx context.Context, name string) (*models.Group, error) {
	return getGroupByName(ctx, r.db, name)
}

func getGroupByName(ctx context.Context, db sqlx.ExtContext, name string) (*models.Group, error) {
	var group models.Group
	query := db.Rebind(selectGroup + ` WHERE name = ? ORDER BY created_at, id LIMIT 1`)
	err := sqlx.GetContext(ctx, db, &group, query, name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &group, nil
}

func (r *groupRepository) ListGroups(ctx context.Context) ([]*models.Group, error) {
	var groups []*models.Group
	if err := r.db.SelectContext(ctx, &groups, selectGroup+` ORDER BY created_at, id`); err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *groupRepository) AddMember(ctx context.Context, member *models.GroupMember) error {
	return insertMember(ctx, r.db, member)
}

func insertMember(ctx context.Context, db sqlx.ExtContext, member *models.GroupMember) error {
	if member.ID == "" {
		member.ID = uuid.NewString()
	}
	if member.Role == "" {
		member.Role = models.RoleMember
	}
	if member.CreatedAt.IsZero() {
		member.CreatedAt = time.Now().UTC()
	}
	query := db.Rebind(`INSERT INTO group_members (id, group_id, user_id, role, created_at) VALUES (?, ?, ?, ?, ?)`)
	if _, err := db.ExecContext(ctx, query, member.ID, member.GroupID, member.UserID, member.Role, member.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert group member: %w", err)
	}
	return nil
}

// memberRow is a group_members row joined with its user.
type memberRow struct {
	ID            string    `db:"id"`
	GroupID       string    `db:"group_id"`
	UserID        string    `db:"user_id"`
	Role          string    `db:"role"`
	CreatedAt     time.Time `db:"created_at"`
	UserName      string    `db:"user_name"`
	HomeLat       *float64  `db:"home_lat"`
	HomeLng       *float64  `db:"home_lng"`
	UserCreatedAt time.Time `db:"user_created_at"`
}

func (row *memberRow) toModel() *models.GroupMember {
	return &models.GroupMember{
		ID:        row.ID,
		GroupID:   row.GroupID,
		UserID:    row.UserID,
		Role:      row.Role,
		CreatedAt: row.CreatedAt,
		User: &models.User{
			ID:        row.UserID,
			Name:      row.UserName,
			HomeLat:   row.HomeLat,
			HomeLng:   row.HomeLng,
			CreatedAt: row.UserCreatedAt,
		},
	}
}

const selectMember = `
	SELECT
		gm.id,
		gm.group_id,
		gm.user_id,
		gm.role,
		gm.created_at,
		u.name AS user_name,
		u.home_lat,
		u.home_lng,
		u.created_at AS user_created_at
	FROM group_members gm
	JOIN users u ON u.id = gm.user_id`

func (r *groupRepository) GetMember(ctx context.Context, groupID, userID string) (*models.GroupMember, error) {
	var row memberRow
	query := r.db.Rebind(selectMember + ` WHERE gm.group_id = ? AND gm.user_id = ?`)
	err := r.db.GetContext(ctx, &row, query, groupID, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return row.toModel(), nil
}

func (r *groupRepository) ListMembers(ctx context.Context, groupID string) ([]*models.GroupMember, error) {
	var rows []memberRow
	query := r.db.Rebind(selectMember + ` WHERE gm.group_id = ? ORDER BY gm.created_at, gm.id`)
	if err := r.db.SelectContext(ctx, &rows, query, groupID); err != nil {
		return nil, err
	}

	members := make([]*models.GroupMember, 0, len(rows))
	for i := range rows {
		members = append(members, rows[i].toModel())
	}
	return members, nil
}

func (r *groupRepository) EnsureNamedGroup(ctx context.Context, name string, users []*models.User) (*models.Group, bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	existing, err := getGroupByName(ctx, tx, name)
	if err != nil {
		return nil, false, fmt.Errorf("failed to look up group %q: %w", name, err)
	}
	if existing != nil {
		return existing, false, nil
	}

	now := time.Now().UTC()
	for _, u := range users {
		u.CreatedAt = now
		if err := insertUser(ctx, tx, u); err != nil {
			return nil, false, err
		}
	}

	group := &models.Group{Name: name, CreatedAt: now}
	if err := insertGroup(ctx, tx, group); err != nil {
		return nil, false, err
	}

	for i, u := range users {
		role := models.RoleMember
		if i == 0 {
			role = models.RoleLeader
		}
		member := &models.GroupMember{
			GroupID: group.ID,
			UserID:  u.ID,
			Role:    role,
			// Distinct timestamps keep membership order stable.
			CreatedAt: now.Add(time.Duration(i) * time.Millisecond),
		}
		if err := insertMember(ctx, tx, member); err != nil {
			return nil, false, err
		}
	}

	if err := upsertPrefs(ctx, tx, models.DefaultAIPrefs(group.ID), false); err != nil {
		return nil, false, err
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.logger.Info("Provisioned group",
		zap.String("group_id", group.ID),
		zap.String("name", name),
		zap.Int("members", len(users)))

	return group, true, nil
}
