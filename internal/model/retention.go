package model

import "time"

// CoachUsage counts coach openings per calendar month.
type CoachUsage struct {
	LastUsageMonth string `json:"last_usage_month"` // YYYY-MM
	Count          int    `json:"count"`
}

// RetentionState tracks streaks and inactivity for the couple.
type RetentionState struct {
	CoupleStreak     int         `json:"couple_streak"`
	LastPlayDate     *Date       `json:"last_play_date"`
	SurvivalMode     bool        `json:"survival_mode"`
	LastActivityDate time.Time   `json:"last_activity_date"`
	CoachUsage       *CoachUsage `json:"coach_usage,omitempty"`
}

// Clone returns a deep copy.
func (r RetentionState) Clone() RetentionState {
	out := r
	if r.LastPlayDate != nil {
		d := *r.LastPlayDate
		out.LastPlayDate = &d
	}
	if r.CoachUsage != nil {
		u := *r.CoachUsage
		out.CoachUsage = &u
	}
	return out
}
