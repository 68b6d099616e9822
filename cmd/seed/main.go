// Command seed provisions the demo group and gives it a few recent chat
// messages so chat-mode planning has something to read.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"nexum/internal/auth"
	"nexum/internal/config"
	"nexum/internal/models"
	"nexum/internal/repository"
	"nexum/internal/service"

	"go.uber.org/zap"
)

type seedMessage struct {
	text    string
	daysAgo int
}

var demoMessages = []seedMessage{
	{"Anyone up for sushi this Friday evening?", 2},
	{"Bowling or arcade could be fun too!", 1},
	{"I’m free 7–9pm tomorrow.", 0},
}

// seedMessages writes demoMessages to the demo group, alternating between
// its first two members. It returns the group's leader.
func seedMessages(ctx context.Context, groups service.GroupService, groupRepo repository.GroupRepository,
	messages repository.MessageRepository, now time.Time) (*models.GroupMember, error) {
	group, err := groups.EnsureDemo(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to provision demo group: %w", err)
	}

	members, err := groupRepo.ListMembers(ctx, group.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list demo members: %w", err)
	}
	if len(members) == 0 {
		return nil, errors.New("no members in demo group")
	}

	authors := []string{members[0].UserID, members[0].UserID}
	if len(members) > 1 {
		authors[1] = members[1].UserID
	}

	for i, m := range demoMessages {
		msg := &models.Message{
			GroupID:   group.ID,
			UserID:    authors[i%2],
			Text:      m.text,
			CreatedAt: now.Add(-time.Duration(m.daysAgo) * 24 * time.Hour),
		}
		if err := messages.SaveMessage(ctx, msg); err != nil {
			return nil, fmt.Errorf("failed to save message %d: %w", i, err)
		}
	}

	for _, m := range members {
		if m.IsLeader() {
			return m, nil
		}
	}
	return members[0], nil
}

func run(ctx context.Context, logger *zap.Logger) error {
	cfg, err := config.LoadConfig(config.Path())
	if err != nil {
		return err
	}

	db, err := repository.NewDB(cfg.Database.Driver, cfg.Database.URL, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := repository.MigrateDB(db, logger); err != nil {
		return err
	}

	groupRepo := repository.NewGroupRepository(db, logger)
	userRepo := repository.NewUserRepository(db, logger)
	groups := service.NewGroupService(groupRepo, userRepo, logger)

	leader, err := seedMessages(ctx, groups, groupRepo, repository.NewMessageRepository(db, logger), time.Now())
	if err != nil {
		return err
	}
	logger.Info("Seeded demo chat messages", zap.Int("count", len(demoMessages)))

	if cfg.Auth.JWTSecret == "" {
		logger.Info("auth.jwt_secret is empty, skipping leader token")
		return nil
	}
	name := ""
	if leader.User != nil {
		name = leader.User.Name
	}
	token, expiresAt, err := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL).GenerateToken(leader.UserID, name)
	if err != nil {
		return fmt.Errorf("failed to issue leader token: %w", err)
	}
	fmt.Printf("Leader token for %s (expires %s):\n%s\n", name, expiresAt.Format(time.RFC3339), token)
	return nil
}

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := run(context.Background(), logger); err != nil {
		logger.Error("Seeding failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}
