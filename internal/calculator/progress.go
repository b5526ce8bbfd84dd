package calculator

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"Bingo2Gether/internal/model"
)

var hundred = decimal.NewFromInt(100)

// Progress is the derived savings position of a couple.
type Progress struct {
	TotalSaved decimal.Decimal
	TotalGoal  decimal.Decimal
	Percent    float64 // 0..100
	Remaining  decimal.Decimal
}

// ComputeProgress derives totals from the drawn numbers and the initial investment.
func ComputeProgress(state model.GameState) (Progress, error) {
	goal := state.Settings.TotalGoal()
	if !goal.IsPositive() {
		return Progress{}, fmt.Errorf("%w: total goal must be positive, got %s", model.ErrInvalidConfiguration, goal)
	}

	saved := decimal.NewFromInt(state.DrawnSum()).Add(state.Settings.InitialInvestment)
	pct, _ := saved.Div(goal).Mul(hundred).Float64()
	pct = math.Min(math.Max(pct, 0), 100)

	remaining := goal.Sub(saved)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	return Progress{TotalSaved: saved, TotalGoal: goal, Percent: pct, Remaining: remaining}, nil
}

// MonthlyTarget is the number of chips per monthly batch needed to empty the pool in time.
func MonthlyTarget(remaining, months int) int {
	if remaining <= 0 {
		return 0
	}
	if months < 1 {
		months = 1
	}
	return (remaining + months - 1) / months
}

// IncomeShares converts two incomes into integer percentage shares summing to 100.
func IncomeShares(income1, income2 decimal.Decimal) (p1, p2 int) {
	total := income1.Add(income2)
	if !total.IsPositive() {
		return 50, 50
	}
	p2 = int(income2.Mul(hundred).Div(total).Round(0).IntPart())
	if p2 < 0 {
		p2 = 0
	} else if p2 > 100 {
		p2 = 100
	}
	return 100 - p2, p2
}

// MaxNumberForGoal returns the smallest N whose triangular number 1+..+N covers goal.
func MaxNumberForGoal(goal decimal.Decimal) int {
	if !goal.IsPositive() {
		return 0
	}
	g, _ := goal.Ceil().Float64()
	n := int(math.Floor((math.Sqrt(8*g+1) - 1) / 2))
	for int64(n)*int64(n+1)/2 < int64(g) {
		n++
	}
	for n > 1 && int64(n-1)*int64(n)/2 >= int64(g) {
		n--
	}
	return n
}

// Triangular returns 1+2+..+n.
func Triangular(n int) int64 {
	if n <= 0 {
		return 0
	}
	return int64(n) * int64(n+1) / 2
}
