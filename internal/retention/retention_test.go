package retention

import (
	"testing"
	"time"

	"Bingo2Gether/internal/model"
)

func day(s string) model.Date {
	d, err := model.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestUpdate_StreakScenario(t *testing.T) {
	last := day("2024-01-01")
	prior := model.RetentionState{CoupleStreak: 3, LastPlayDate: &last}
	now := time.Date(2024, 1, 2, 20, 0, 0, 0, time.UTC)

	next := Update(prior, day("2024-01-02"), now)
	if next.CoupleStreak != 4 {
		t.Fatalf("next-day action: expected streak 4, got %d", next.CoupleStreak)
	}
	if *next.LastPlayDate != day("2024-01-02") || !next.LastActivityDate.Equal(now) {
		t.Fatalf("dates not updated: %+v", next)
	}

	gap := Update(next, day("2024-01-05"), now.AddDate(0, 0, 3))
	if gap.CoupleStreak != 1 {
		t.Fatalf("gap: expected streak reset to 1, got %d", gap.CoupleStreak)
	}
}

func TestUpdate_Cases(t *testing.T) {
	last := day("2024-03-10")
	tests := []struct {
		name   string
		prior  model.RetentionState
		action string
		want   int
	}{
		{"first play", model.RetentionState{}, "2024-03-10", 1},
		{"same day", model.RetentionState{CoupleStreak: 5, LastPlayDate: &last}, "2024-03-10", 5},
		{"next day", model.RetentionState{CoupleStreak: 5, LastPlayDate: &last}, "2024-03-11", 6},
		{"two day gap", model.RetentionState{CoupleStreak: 5, LastPlayDate: &last}, "2024-03-12", 1},
		{"earlier date", model.RetentionState{CoupleStreak: 5, LastPlayDate: &last}, "2024-03-01", 1},
	}
	for _, tt := range tests {
		got := Update(tt.prior, day(tt.action), time.Now())
		if got.CoupleStreak != tt.want {
			t.Errorf("%s: expected %d, got %d", tt.name, tt.want, got.CoupleStreak)
		}
	}
}

func TestUpdate_MonthBoundary(t *testing.T) {
	last := day("2024-02-29")
	got := Update(model.RetentionState{CoupleStreak: 2, LastPlayDate: &last}, day("2024-03-01"), time.Now())
	if got.CoupleStreak != 3 {
		t.Fatalf("leap-day rollover should continue the streak, got %d", got.CoupleStreak)
	}
}

func TestUpdate_DoesNotAliasPrior(t *testing.T) {
	last := day("2024-01-01")
	prior := model.RetentionState{CoupleStreak: 1, LastPlayDate: &last}
	_ = Update(prior, day("2024-01-02"), time.Now())
	if *prior.LastPlayDate != day("2024-01-01") || prior.CoupleStreak != 1 {
		t.Fatal("Update mutated its input")
	}
}

func TestUpdate_ClearsSurvival(t *testing.T) {
	got := Update(model.RetentionState{SurvivalMode: true}, day("2024-01-01"), time.Now())
	if got.SurvivalMode {
		t.Fatal("qualifying activity should clear survival mode")
	}
}

func TestTouch_KeepsStreak(t *testing.T) {
	last := day("2024-01-01")
	now := time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC)
	got := Touch(model.RetentionState{CoupleStreak: 4, LastPlayDate: &last}, now)
	if got.CoupleStreak != 4 || *got.LastPlayDate != last {
		t.Fatalf("Touch changed the streak: %+v", got)
	}
	if !got.LastActivityDate.Equal(now) {
		t.Fatal("Touch should move LastActivityDate")
	}
}

func TestCheckInactivity(t *testing.T) {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	st := model.RetentionState{LastActivityDate: base}
	if CheckInactivity(st, base.Add(13*24*time.Hour), DefaultInactivityThreshold) {
		t.Error("13 days should not be inactive")
	}
	if !CheckInactivity(st, base.Add(15*24*time.Hour), DefaultInactivityThreshold) {
		t.Error("15 days should be inactive")
	}
	if CheckInactivity(model.RetentionState{}, base, time.Hour) {
		t.Error("zero activity date should not be inactive")
	}

	refreshed := Refresh(st, base.Add(30*24*time.Hour), DefaultInactivityThreshold)
	if !refreshed.SurvivalMode || st.SurvivalMode {
		t.Error("Refresh should set the flag on a copy")
	}
	if !InSurvival(model.RetentionState{SurvivalMode: true}, base, time.Hour) {
		t.Error("flag alone should count as survival")
	}
}

func TestRecordCoachUsage(t *testing.T) {
	jan := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	st := RecordCoachUsage(model.RetentionState{}, jan)
	st = RecordCoachUsage(st, jan.Add(time.Hour))
	if CoachUsesThisMonth(st, jan) != 2 {
		t.Fatalf("expected 2 uses in January, got %d", CoachUsesThisMonth(st, jan))
	}
	feb := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	if CoachUsesThisMonth(st, feb) != 0 {
		t.Fatal("usage should not carry into February")
	}
	st = RecordCoachUsage(st, feb)
	if st.CoachUsage.Count != 1 || st.CoachUsage.LastUsageMonth != "2024-02" {
		t.Fatalf("expected reset in new month, got %+v", st.CoachUsage)
	}
}
