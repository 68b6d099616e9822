package models

import (
	"encoding/json"
	"time"
)

// Suggestion sources.
const (
	SourceChat     = "CHAT"
	SourceProfiles = "PROFILES"
)

// Suggestion statuses. PROPOSED is set at creation; the rest are reached via actions.
const (
	StatusProposed            = "PROPOSED"
	StatusAccepted            = "ACCEPTED"
	StatusDeclined            = "DECLINED"
	StatusDismissed           = "DISMISSED"
	StatusRescheduleRequested = "RESCHEDULE_REQUESTED"
)

// ActionStatus maps an action name to the status it sets.
var ActionStatus = map[string]string{
	"ACCEPT":     StatusAccepted,
	"DECLINE":    StatusDeclined,
	"DISMISS":    StatusDismissed,
	"RESCHEDULE": StatusRescheduleRequested,
}

// Suggestion is a proposed meetup generated for a group.
type Suggestion struct {
	ID          string    `db:"id" json:"id"`
	GroupID     string    `db:"group_id" json:"groupId"`
	Title       string    `db:"title" json:"title"`
	StartAt     time.Time `db:"start_at" json:"startISO"`
	EndAt       time.Time `db:"end_at" json:"endISO"`
	VenueName   string    `db:"venue_name" json:"venueName"`
	VenueLat    float64   `db:"venue_lat" json:"venueLat"`
	VenueLng    float64   `db:"venue_lng" json:"venueLng"`
	Source      string    `db:"source" json:"source"`
	Status      string    `db:"status" json:"status"`
	DetailsJSON string    `db:"details_json" json:"detailsJson"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// SuggestionDetails is serialized into Suggestion.DetailsJSON.
type SuggestionDetails struct {
	URL      string   `json:"url"`
	Keywords []string `json:"keywords"`
}

// Details decodes DetailsJSON. Malformed payloads yield zero details.
func (s *Suggestion) Details() SuggestionDetails {
	var d SuggestionDetails
	_ = json.Unmarshal([]byte(s.DetailsJSON), &d)
	return d
}

// SuggestInput is the body of POST /groups/:groupId/suggest.
type SuggestInput struct {
	Mode string `json:"mode"`
}

// ActionInput is the body of POST /suggestions/:id/action.
type ActionInput struct {
	Action string `json:"action"`
}
