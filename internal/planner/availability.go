package planner

import (
	"context"
	"encoding/json"
	"time"

	"nexum/internal/models"
)

// TimeSlot is a proposed meetup window.
type TimeSlot struct {
	Start time.Time
	End   time.Time
}

func (s TimeSlot) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		StartISO string `json:"startISO"`
		EndISO   string `json:"endISO"`
	}{
		StartISO: s.Start.Format(time.RFC3339),
		EndISO:   s.End.Format(time.RFC3339),
	})
}

// AvailabilityResolver finds windows when members can meet.
type AvailabilityResolver interface {
	FindSlots(ctx context.Context, members []*models.GroupMember) ([]TimeSlot, error)
}

// EveningSlot proposes 19:00-21:00 on the day after now, ignoring members.
type EveningSlot struct {
	Location *time.Location
	// Now defaults to time.Now.
	Now func() time.Time
}

func (e EveningSlot) FindSlots(_ context.Context, _ []*models.GroupMember) ([]TimeSlot, error) {
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	loc := e.Location
	if loc == nil {
		loc = time.Local
	}

	day := now().In(loc).Add(24 * time.Hour)
	start := time.Date(day.Year(), day.Month(), day.Day(), 19, 0, 0, 0, loc)
	return []TimeSlot{{Start: start, End: start.Add(2 * time.Hour)}}, nil
}
