package game

import (
	"fmt"

	"github.com/shopspring/decimal"

	"Bingo2Gether/internal/calculator"
	"Bingo2Gether/internal/model"
)

// DefaultSkin is available on every plan.
const DefaultSkin = "default"

// UpdateDeadline changes the number of months left and recomputes the monthly target
// and target date.
func (r *Reducer) UpdateDeadline(state model.GameState, months int) (Result, error) {
	if err := requirePhase(state, "update deadline", model.PhaseActive); err != nil {
		return Result{State: state}, err
	}
	if months < 1 {
		return Result{State: state}, fmt.Errorf("%w: deadline must be at least one month, got %d", model.ErrInvalidArgument, months)
	}

	next := state.Clone()
	start := state.StartDate
	if start.IsZero() {
		start = model.DateOf(r.clock.Now())
		next.StartDate = start
	}
	next.Settings.DeadlineMonths = months
	next.Settings.MonthlyTarget = calculator.MonthlyTarget(len(state.AvailableNumbers), months)
	next.TargetDate = start.AddMonths(months)
	next.UpdatedAt = r.clock.Now()

	r.clearHistory()
	return Result{State: next}, nil
}

// UpdateIncomeShares stores new incomes and rebalances the income shares.
func (r *Reducer) UpdateIncomeShares(state model.GameState, income1, income2 decimal.Decimal) (Result, error) {
	if err := requirePhase(state, "update incomes", model.PhaseActive); err != nil {
		return Result{State: state}, err
	}
	if income1.IsNegative() || income2.IsNegative() {
		return Result{State: state}, fmt.Errorf("%w: incomes must not be negative", model.ErrInvalidArgument)
	}

	p1, p2 := calculator.IncomeShares(income1, income2)
	next := state.Clone()
	next.Players.P1.EstimatedIncome = income1
	next.Players.P1.IncomeShare = p1
	next.Players.P2.EstimatedIncome = income2
	next.Players.P2.IncomeShare = p2
	next.UpdatedAt = r.clock.Now()

	r.clearHistory()
	return Result{State: next}, nil
}

// SetSkin changes the board theme. Skins other than the default need a Pro plan.
func (r *Reducer) SetSkin(state model.GameState, skin string) (Result, error) {
	if err := requirePhase(state, "set skin", model.PhaseActive); err != nil {
		return Result{State: state}, err
	}
	if skin == "" {
		skin = DefaultSkin
	}
	if skin != DefaultSkin && !state.Settings.IsPro {
		return Result{State: state}, fmt.Errorf("%w: skin %q requires a pro plan", model.ErrPreconditionViolation, skin)
	}

	next := state.Clone()
	next.Settings.Skin = skin
	next.UpdatedAt = r.clock.Now()
	return Result{State: next}, nil
}
