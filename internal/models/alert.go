package models

import "time"

// Alert trigger type constants
const (
	AlertTriggerScoreChange = "score_change"
	AlertTriggerTierChange  = "tier_change"
	AlertTriggerPriceMove   = "price_move"
	AlertTriggerVolumeSpike = "volume_spike"
)

// Alert is a notification produced by the alert pipeline. Clients may only
// flip the is_read / is_dismissed flags; alerts are never deleted through
// the API.
type Alert struct {
	ID          string    `json:"id"`
	Ticker      string    `json:"ticker"`
	UserID      string    `json:"user_id,omitempty"` // empty = visible to all users
	TriggerType string    `json:"trigger_type"`
	Tier        Tier      `json:"tier"`  // tier snapshot at creation
	Price       float64   `json:"price"` // price snapshot at creation
	Rationale   string    `json:"rationale"`
	IsRead      bool      `json:"is_read"`
	IsDismissed bool      `json:"is_dismissed"`
	CreatedAt   time.Time `json:"created_at"`
}

// AlertFilter narrows alert listings for a user.
type AlertFilter struct {
	Ticker        string `json:"ticker"`
	UnreadOnly    bool   `json:"unread_only"`
	IncludeHidden bool   `json:"include_hidden"` // include dismissed alerts
	Limit         int    `json:"limit"`
}
