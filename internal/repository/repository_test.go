package repository

import (
	"context"
	"testing"
	"time"

	"nexum/internal/models"

	"go.uber.org/zap"
)

func ptr(f float64) *float64 { return &f }

func demoUsers() []*models.User {
	return []*models.User{
		{Name: "Alice", HomeLat: ptr(-33.86), HomeLng: ptr(151.20)},
		{Name: "Bob", HomeLat: ptr(-33.87), HomeLng: ptr(151.18)},
		{Name: "Cara", HomeLat: ptr(-33.88), HomeLng: ptr(151.22)},
	}
}

func TestGroupRepository(t *testing.T) {
	db := NewTestDB(t)
	groups := NewGroupRepository(db, zap.NewNop())
	ctx := context.Background()

	t.Run("EnsureNamedGroup creates group, members and prefs once", func(t *testing.T) {
		group, created, err := groups.EnsureNamedGroup(ctx, "demo", demoUsers())
		if err != nil {
			t.Fatalf("EnsureNamedGroup failed: %v", err)
		}
		if !created {
			t.Fatal("Expected group to be created")
		}

		again, created, err := groups.EnsureNamedGroup(ctx, "demo", demoUsers())
		if err != nil {
			t.Fatalf("second EnsureNamedGroup failed: %v", err)
		}
		if created {
			t.Error("Expected second call to reuse the group")
		}
		if again.ID != group.ID {
			t.Errorf("Expected group %s, got %s", group.ID, again.ID)
		}

		all, err := groups.ListGroups(ctx)
		if err != nil {
			t.Fatalf("ListGroups failed: %v", err)
		}
		if len(all) != 1 {
			t.Errorf("Expected 1 group, got %d", len(all))
		}

		members, err := groups.ListMembers(ctx, group.ID)
		if err != nil {
			t.Fatalf("ListMembers failed: %v", err)
		}
		if len(members) != 3 {
			t.Fatalf("Expected 3 members, got %d", len(members))
		}
		if members[0].User.Name != "Alice" || !members[0].IsLeader() {
			t.Errorf("Expected Alice as leader, got %s (%s)", members[0].User.Name, members[0].Role)
		}
		for _, m := range members[1:] {
			if m.IsLeader() {
				t.Errorf("Expected %s to be a plain member", m.User.Name)
			}
		}
		if !members[1].User.HasHome() || *members[1].User.HomeLat != -33.87 {
			t.Errorf("Expected Bob's home to round-trip, got %+v", members[1].User)
		}

		prefs, err := NewPrefsRepository(db, zap.NewNop()).GetPrefs(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetPrefs failed: %v", err)
		}
		if prefs == nil {
			t.Fatal("Expected default prefs to be created")
		}
		if prefs.ReadChatOn || prefs.PlanFromProfilesOn {
			t.Error("Expected both planning toggles to default off")
		}
		if prefs.ReadChatWindowDays != models.DefaultChatWindowDays {
			t.Errorf("Expected window %d, got %d", models.DefaultChatWindowDays, prefs.ReadChatWindowDays)
		}
	})

	t.Run("missing rows return nil", func(t *testing.T) {
		g, err := groups.GetGroupByID(ctx, "nope")
		if err != nil || g != nil {
			t.Errorf("Expected nil, nil; got %v, %v", g, err)
		}
		m, err := groups.GetMember(ctx, "nope", "nope")
		if err != nil || m != nil {
			t.Errorf("Expected nil, nil; got %v, %v", m, err)
		}
	})
}

func TestUserRepository_ProfileItems(t *testing.T) {
	db := NewTestDB(t)
	users := NewUserRepository(db, zap.NewNop())
	ctx := context.Background()

	u := &models.User{Name: "Dana"}
	if err := users.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if err := users.AddInterest(ctx, &models.Interest{UserID: u.ID, Tag: "Hiking"}); err != nil {
		t.Fatalf("AddInterest failed: %v", err)
	}
	if err := users.AddBucketItem(ctx, &models.BucketItem{UserID: u.ID, Item: "karaoke"}); err != nil {
		t.Fatalf("AddBucketItem failed: %v", err)
	}

	got, err := users.GetUserByID(ctx, u.ID)
	if err != nil || got == nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if got.HasHome() {
		t.Error("Expected user without home coordinates")
	}

	interests, err := users.ListInterests(ctx, []string{u.ID, "other"})
	if err != nil {
		t.Fatalf("ListInterests failed: %v", err)
	}
	if len(interests) != 1 || interests[0].Tag != "Hiking" {
		t.Errorf("Unexpected interests: %+v", interests)
	}

	items, err := users.ListBucketItems(ctx, []string{u.ID})
	if err != nil {
		t.Fatalf("ListBucketItems failed: %v", err)
	}
	if len(items) != 1 || items[0].Item != "karaoke" {
		t.Errorf("Unexpected bucket items: %+v", items)
	}

	none, err := users.ListInterests(ctx, nil)
	if err != nil || none != nil {
		t.Errorf("Expected nil for empty id list, got %v, %v", none, err)
	}
}

func TestMessageRepository_ListMessagesSince(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	group, _, err := NewGroupRepository(db, zap.NewNop()).EnsureNamedGroup(ctx, "demo", demoUsers())
	if err != nil {
		t.Fatalf("EnsureNamedGroup failed: %v", err)
	}
	members, _ := NewGroupRepository(db, zap.NewNop()).ListMembers(ctx, group.ID)

	messages := NewMessageRepository(db, zap.NewNop())
	now := time.Now()
	for i, age := range []time.Duration{20 * 24 * time.Hour, 2 * 24 * time.Hour, time.Hour} {
		msg := &models.Message{
			GroupID:   group.ID,
			UserID:    members[i%2].UserID,
			Text:      "msg",
			CreatedAt: now.Add(-age),
		}
		if err := messages.SaveMessage(ctx, msg); err != nil {
			t.Fatalf("SaveMessage failed: %v", err)
		}
	}

	recent, err := messages.ListMessagesSince(ctx, group.ID, now.Add(-14*24*time.Hour))
	if err != nil {
		t.Fatalf("ListMessagesSince failed: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("Expected 2 messages inside the window, got %d", len(recent))
	}
	if !recent[0].CreatedAt.After(recent[1].CreatedAt) {
		t.Error("Expected newest message first")
	}

	all, err := messages.ListMessages(ctx, group.ID, 0)
	if err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("Expected 3 messages, got %d", len(all))
	}
}

func TestPrefsRepository_Upsert(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	group, _, err := NewGroupRepository(db, zap.NewNop()).EnsureNamedGroup(ctx, "g", demoUsers()[:1])
	if err != nil {
		t.Fatalf("EnsureNamedGroup failed: %v", err)
	}

	prefsRepo := NewPrefsRepository(db, zap.NewNop())
	p := models.DefaultAIPrefs(group.ID)
	p.PlanFromProfilesOn = true
	p.NotifyChannel = models.ChannelNone
	p.ReadChatWindowDays = 7

	saved, err := prefsRepo.UpsertPrefs(ctx, p)
	if err != nil {
		t.Fatalf("UpsertPrefs failed: %v", err)
	}
	if !saved.PlanFromProfilesOn || saved.NotifyChannel != models.ChannelNone || saved.ReadChatWindowDays != 7 {
		t.Errorf("Upsert did not overwrite: %+v", saved)
	}

	// GetOrCreate must not reset existing prefs.
	got, err := prefsRepo.GetOrCreatePrefs(ctx, group.ID)
	if err != nil {
		t.Fatalf("GetOrCreatePrefs failed: %v", err)
	}
	if !got.PlanFromProfilesOn {
		t.Error("GetOrCreatePrefs overwrote existing prefs")
	}

	enabled, err := prefsRepo.ListProfilePlanningPrefs(ctx)
	if err != nil {
		t.Fatalf("ListProfilePlanningPrefs failed: %v", err)
	}
	if len(enabled) != 1 || enabled[0].GroupID != group.ID {
		t.Errorf("Unexpected enabled prefs: %+v", enabled)
	}
}

func TestSuggestionRepository(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	group, _, err := NewGroupRepository(db, zap.NewNop()).EnsureNamedGroup(ctx, "g", demoUsers())
	if err != nil {
		t.Fatalf("EnsureNamedGroup failed: %v", err)
	}

	repo := NewSuggestionRepository(db, zap.NewNop())
	start := time.Now().Add(24 * time.Hour)
	var batch []*models.Suggestion
	for _, name := range []string{"A", "B", "C"} {
		batch = append(batch, &models.Suggestion{
			GroupID:   group.ID,
			Title:     "Meetup: " + name,
			StartAt:   start,
			EndAt:     start.Add(2 * time.Hour),
			VenueName: name,
			Source:    models.SourceProfiles,
		})
	}
	if err := repo.CreateSuggestions(ctx, batch); err != nil {
		t.Fatalf("CreateSuggestions failed: %v", err)
	}

	list, err := repo.ListByGroup(ctx, group.ID)
	if err != nil {
		t.Fatalf("ListByGroup failed: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("Expected 3 suggestions, got %d", len(list))
	}
	for i, s := range list {
		if s.Status != models.StatusProposed {
			t.Errorf("Expected PROPOSED, got %s", s.Status)
		}
		if s.VenueName != batch[i].VenueName {
			t.Errorf("Expected ranked order at %d: want %s, got %s", i, batch[i].VenueName, s.VenueName)
		}
	}

	latest, err := repo.LatestBySource(ctx, group.ID, models.SourceProfiles)
	if err != nil || latest == nil {
		t.Fatalf("LatestBySource failed: %v", err)
	}
	if latest.VenueName != "A" {
		t.Errorf("Expected top-ranked suggestion of the batch, got %s", latest.VenueName)
	}
	if chat, _ := repo.LatestBySource(ctx, group.ID, models.SourceChat); chat != nil {
		t.Error("Expected no chat suggestion")
	}

	updated, err := repo.UpdateStatus(ctx, batch[0].ID, models.StatusAccepted)
	if err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	if updated.Status != models.StatusAccepted {
		t.Errorf("Expected ACCEPTED, got %s", updated.Status)
	}

	missing, err := repo.UpdateStatus(ctx, "missing", models.StatusAccepted)
	if err != nil || missing != nil {
		t.Errorf("Expected nil, nil for missing suggestion; got %v, %v", missing, err)
	}
}

func TestSuggestionRepository_CreateIsAtomic(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	group, _, err := NewGroupRepository(db, zap.NewNop()).EnsureNamedGroup(ctx, "g", demoUsers()[:1])
	if err != nil {
		t.Fatalf("EnsureNamedGroup failed: %v", err)
	}

	repo := NewSuggestionRepository(db, zap.NewNop())
	batch := []*models.Suggestion{
		{GroupID: group.ID, Title: "ok", Source: models.SourceChat},
		// Unknown group violates the foreign key.
		{GroupID: "does-not-exist", Title: "bad", Source: models.SourceChat},
	}
	if err := repo.CreateSuggestions(ctx, batch); err == nil {
		t.Fatal("Expected CreateSuggestions to fail")
	}

	list, err := repo.ListByGroup(ctx, group.ID)
	if err != nil {
		t.Fatalf("ListByGroup failed: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("Expected no suggestions after a failed batch, got %d", len(list))
	}
}
