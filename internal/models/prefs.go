package models

import "time"

// Planning frequencies for profile-based suggestions.
const (
	FreqDaily   = "DAILY"
	FreqWeekly  = "WEEKLY"
	FreqMonthly = "MONTHLY"
)

// Notification channels.
const (
	ChannelChat     = "CHAT"
	ChannelTelegram = "TELEGRAM"
	ChannelNone     = "NONE"
)

// DefaultChatWindowDays is how far back chat mode looks when prefs don't say.
const DefaultChatWindowDays = 14

// AIPrefs controls what the planner may read for a group. At most one row per group.
type AIPrefs struct {
	GroupID              string    `db:"group_id" json:"groupId"`
	ReadChatOn           bool      `db:"read_chat_on" json:"readChatOn"`
	PlanFromProfilesOn   bool      `db:"plan_from_profiles_on" json:"planFromProfilesOn"`
	ReadChatWindowDays   int       `db:"read_chat_window_days" json:"readChatWindowDays"`
	PlanFromProfilesFreq string    `db:"plan_from_profiles_freq" json:"planFromProfilesFreq"`
	NotifyChannel        string    `db:"notify_channel" json:"notifyChannel"`
	UpdatedAt            time.Time `db:"updated_at" json:"updatedAt"`
}

// DefaultAIPrefs returns the preferences a group starts with.
func DefaultAIPrefs(groupID string) *AIPrefs {
	return &AIPrefs{
		GroupID:              groupID,
		ReadChatWindowDays:   DefaultChatWindowDays,
		PlanFromProfilesFreq: FreqWeekly,
		NotifyChannel:        ChannelChat,
	}
}

// ChatWindow returns the lookback window, falling back to the default.
func (p *AIPrefs) ChatWindow() time.Duration {
	days := p.ReadChatWindowDays
	if days <= 0 {
		days = DefaultChatWindowDays
	}
	return time.Duration(days) * 24 * time.Hour
}

// FreqPeriod maps PlanFromProfilesFreq to a scheduling period.
func (p *AIPrefs) FreqPeriod() time.Duration {
	switch p.PlanFromProfilesFreq {
	case FreqDaily:
		return 24 * time.Hour
	case FreqMonthly:
		return 30 * 24 * time.Hour
	default:
		return 7 * 24 * time.Hour
	}
}

// UpdateAIPrefsInput is the body of POST /groups/:groupId/ai-prefs.
// Absent fields take their defaults, as in a full replace.
type UpdateAIPrefsInput struct {
	ReadChatOn           bool    `json:"readChatOn"`
	PlanFromProfilesOn   bool    `json:"planFromProfilesOn"`
	ReadChatWindowDays   *int    `json:"readChatWindowDays"`
	PlanFromProfilesFreq *string `json:"planFromProfilesFreq"`
	NotifyChannel        *string `json:"notifyChannel"`
}
