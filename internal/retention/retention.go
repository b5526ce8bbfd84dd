package retention

import (
	"time"

	"Bingo2Gether/internal/model"
)

// DefaultInactivityThreshold switches a couple into survival mode after two quiet weeks.
const DefaultInactivityThreshold = 14 * 24 * time.Hour

// Update records a qualifying draw on actionDay. The streak grows on the day right after
// the last play, stays on the same day and restarts at 1 otherwise.
func Update(prior model.RetentionState, actionDay model.Date, now time.Time) model.RetentionState {
	next := prior.Clone()

	switch {
	case prior.LastPlayDate == nil:
		next.CoupleStreak = 1
	case *prior.LastPlayDate == actionDay:
		if next.CoupleStreak == 0 {
			next.CoupleStreak = 1
		}
	case prior.LastPlayDate.AddDays(1) == actionDay:
		next.CoupleStreak++
	default:
		next.CoupleStreak = 1
	}

	day := actionDay
	next.LastPlayDate = &day
	next.LastActivityDate = now
	next.SurvivalMode = false
	return next
}

// Touch records activity that keeps the couple alive without counting toward the streak.
func Touch(prior model.RetentionState, now time.Time) model.RetentionState {
	next := prior.Clone()
	next.LastActivityDate = now
	return next
}

// CheckInactivity reports whether the couple has been idle longer than threshold.
// A zero LastActivityDate never counts as inactive.
func CheckInactivity(state model.RetentionState, now time.Time, threshold time.Duration) bool {
	if state.LastActivityDate.IsZero() {
		return false
	}
	if threshold <= 0 {
		threshold = DefaultInactivityThreshold
	}
	return now.Sub(state.LastActivityDate) > threshold
}

// Refresh raises the survival flag when the couple went idle. The flag is only cleared by
// a new qualifying draw in Update.
func Refresh(state model.RetentionState, now time.Time, threshold time.Duration) model.RetentionState {
	next := state.Clone()
	if CheckInactivity(state, now, threshold) {
		next.SurvivalMode = true
	}
	return next
}

// InSurvival reports the flag or the live inactivity check.
func InSurvival(state model.RetentionState, now time.Time, threshold time.Duration) bool {
	return state.SurvivalMode || CheckInactivity(state, now, threshold)
}

// RecordCoachUsage counts one coach opening in the calendar month of now.
func RecordCoachUsage(prior model.RetentionState, now time.Time) model.RetentionState {
	next := prior.Clone()
	month := now.Format("2006-01")
	count := 1
	if prior.CoachUsage != nil && prior.CoachUsage.LastUsageMonth == month {
		count = prior.CoachUsage.Count + 1
	}
	next.CoachUsage = &model.CoachUsage{LastUsageMonth: month, Count: count}
	return next
}

// CoachUsesThisMonth returns the usage count for the month of now.
func CoachUsesThisMonth(state model.RetentionState, now time.Time) int {
	if state.CoachUsage == nil || state.CoachUsage.LastUsageMonth != now.Format("2006-01") {
		return 0
	}
	return state.CoachUsage.Count
}
