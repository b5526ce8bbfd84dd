// Package pace compares the couple's savings progress with the time elapsed in the cycle.
package pace

import (
	"math"
	"time"

	"Bingo2Gether/internal/calculator"
	"Bingo2Gether/internal/model"
)

// Tier is one band of the pace scale.
type Tier struct {
	Label      string
	Multiplier float64 // applied to the monthly target for the suggested draw count
	Advice     string
}

// Tiers maps the progress delta (actual - expected, in percent points) to a tier.
var Tiers = []struct {
	MinDelta float64
	Tier     Tier
}{
	{10, Tier{Label: "Ahead", Multiplier: 1.0, Advice: "You are ahead of schedule. Keep the ritual going."}},
	{-5, Tier{Label: "On track", Multiplier: 1.0, Advice: "Right on pace for the deadline."}},
	{-15, Tier{Label: "Slightly behind", Multiplier: 1.25, Advice: "A couple of extra chips this month closes the gap."}},
	{-30, Tier{Label: "Behind", Multiplier: 1.5, Advice: "Consider an extra draw session or an extra payoff."}},
}

// DefaultTier is used for deltas below the last band.
var DefaultTier = Tier{Label: "Far behind", Multiplier: 2.0, Advice: "Time to revisit the deadline or the monthly plan together."}

func mapTier(delta float64) Tier {
	for _, t := range Tiers {
		if delta >= t.MinDelta {
			return t.Tier
		}
	}
	return DefaultTier
}

// Pace is the evaluated schedule position.
type Pace struct {
	ExpectedPercent float64
	ActualPercent   float64
	Delta           float64
	Tier            Tier
	SuggestedDraws  int
	Survival        bool
}

// Evaluate scores the state at now. In survival mode the suggested draw count is halved.
func Evaluate(state model.GameState, now time.Time, survival bool) (Pace, error) {
	progress, err := calculator.ComputeProgress(state)
	if err != nil {
		return Pace{}, err
	}

	expected := ExpectedPercent(state.StartDate, state.TargetDate, model.DateOf(now))
	delta := progress.Percent - expected
	tier := mapTier(delta)

	p := Pace{
		ExpectedPercent: expected,
		ActualPercent:   progress.Percent,
		Delta:           delta,
		Tier:            tier,
		Survival:        survival,
	}

	available := len(state.AvailableNumbers)
	if available == 0 {
		return p, nil
	}
	suggested := int(math.Ceil(float64(state.Settings.MonthlyTarget) * tier.Multiplier))
	if survival {
		suggested /= 2
	}
	if suggested < 1 {
		suggested = 1
	}
	if suggested > available {
		suggested = available
	}
	p.SuggestedDraws = suggested
	return p, nil
}

// ExpectedPercent is the share of the cycle elapsed at today, 0..100.
func ExpectedPercent(start, target, today model.Date) float64 {
	if start.IsZero() || target.IsZero() {
		return 0
	}
	total := start.DaysUntil(target)
	if total <= 0 {
		return 100
	}
	elapsed := start.DaysUntil(today)
	pct := float64(elapsed) / float64(total) * 100
	return math.Min(math.Max(pct, 0), 100)
}
