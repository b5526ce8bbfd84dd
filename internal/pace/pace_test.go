package pace

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"Bingo2Gether/internal/model"
)

func mustDate(s string) model.Date {
	d, err := model.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newState(drawn []int, available int) model.GameState {
	pool := make([]int, available)
	for i := range pool {
		pool[i] = 100 + i
	}
	return model.GameState{
		AvailableNumbers: pool,
		DrawnNumbers:     drawn,
		IsSetup:          true,
		StartDate:        mustDate("2024-01-01"),
		TargetDate:       mustDate("2024-12-31"),
		Settings: model.Settings{
			TotalBingoGoal: decimal.NewFromInt(1000),
			MonthlyTarget:  4,
		},
	}
}

func TestMapTier_AllBoundaries(t *testing.T) {
	tests := []struct {
		delta float64
		label string
	}{
		{50, "Ahead"},
		{10, "Ahead"},
		{9.9, "On track"},
		{-5, "On track"},
		{-10, "Slightly behind"},
		{-15, "Slightly behind"},
		{-20, "Behind"},
		{-30, "Behind"},
		{-30.1, "Far behind"},
		{-90, "Far behind"},
	}
	for _, tt := range tests {
		tier := mapTier(tt.delta)
		if tier.Label != tt.label {
			t.Errorf("delta %.1f: expected %q, got %q", tt.delta, tt.label, tier.Label)
		}
	}
}

func TestExpectedPercent(t *testing.T) {
	start, target := mustDate("2024-01-01"), mustDate("2024-01-11")
	tests := []struct {
		today string
		want  float64
	}{
		{"2023-12-01", 0},
		{"2024-01-01", 0},
		{"2024-01-06", 50},
		{"2024-01-11", 100},
		{"2024-02-01", 100},
	}
	for _, tt := range tests {
		if got := ExpectedPercent(start, target, mustDate(tt.today)); got != tt.want {
			t.Errorf("today %s: expected %.1f, got %.1f", tt.today, tt.want, got)
		}
	}
	if ExpectedPercent(model.Date{}, target, start) != 0 {
		t.Error("missing start date should yield 0")
	}
}

func TestEvaluate_OnTrackAtStart(t *testing.T) {
	p, err := Evaluate(newState(nil, 10), time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Tier.Label != "On track" {
		t.Errorf("expected on track, got %q (delta %.2f)", p.Tier.Label, p.Delta)
	}
	if p.SuggestedDraws != 4 {
		t.Errorf("expected 4 suggested draws, got %d", p.SuggestedDraws)
	}
}

func TestEvaluate_SurvivalHalvesSuggestion(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	normal, _ := Evaluate(newState(nil, 10), now, false)
	survival, err := Evaluate(newState(nil, 10), now, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if survival.SuggestedDraws != normal.SuggestedDraws/2 {
		t.Errorf("expected %d, got %d", normal.SuggestedDraws/2, survival.SuggestedDraws)
	}

	st := newState(nil, 10)
	st.Settings.MonthlyTarget = 1
	low, _ := Evaluate(st, now, true)
	if low.SuggestedDraws != 1 {
		t.Errorf("survival suggestion should stay at least 1, got %d", low.SuggestedDraws)
	}
}

func TestEvaluate_FarBehindCappedByPool(t *testing.T) {
	p, err := Evaluate(newState(nil, 5), time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Tier.Label != "Far behind" {
		t.Errorf("expected far behind, got %q", p.Tier.Label)
	}
	if p.SuggestedDraws != 5 {
		t.Errorf("suggestion should be capped by the 5 available numbers, got %d", p.SuggestedDraws)
	}
}

func TestEvaluate_CompletedPool(t *testing.T) {
	p, err := Evaluate(newState([]int{1000}, 0), time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.SuggestedDraws != 0 || p.Tier.Label != "Ahead" {
		t.Errorf("completed game: got %+v", p)
	}
}
