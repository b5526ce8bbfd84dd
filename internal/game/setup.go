package game

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"Bingo2Gether/internal/calculator"
	"Bingo2Gether/internal/model"
)

// PlayerInput describes one partner at onboarding.
type PlayerInput struct {
	Name   string
	Avatar string
	Income decimal.Decimal
}

// SetupInput is the onboarding form.
type SetupInput struct {
	P1, P2            PlayerInput
	TotalBingoGoal    decimal.Decimal
	InitialInvestment decimal.Decimal
	MaxNumber         int // 0 derives the smallest pool whose sum covers the goal
	DeadlineMonths    int
	RitualDay         time.Weekday
	CustomGoalName    string
	IsPro             bool
}

func (in SetupInput) validate() error {
	switch {
	case !in.TotalBingoGoal.IsPositive():
		return fmt.Errorf("%w: bingo goal must be positive", model.ErrInvalidConfiguration)
	case in.InitialInvestment.IsNegative():
		return fmt.Errorf("%w: initial investment must not be negative", model.ErrInvalidConfiguration)
	case in.DeadlineMonths < 1:
		return fmt.Errorf("%w: deadline must be at least one month", model.ErrInvalidConfiguration)
	case in.MaxNumber < 0:
		return fmt.Errorf("%w: max number must be at least 1", model.ErrInvalidConfiguration)
	case in.RitualDay < time.Sunday || in.RitualDay > time.Saturday:
		return fmt.Errorf("%w: ritual day %d outside 0-6", model.ErrInvalidConfiguration, in.RitualDay)
	case in.P1.Income.IsNegative() || in.P2.Income.IsNegative():
		return fmt.Errorf("%w: incomes must not be negative", model.ErrInvalidConfiguration)
	}
	return nil
}

// Setup completes onboarding and returns an Active state with a full pool.
func (r *Reducer) Setup(state model.GameState, in SetupInput) (Result, error) {
	if err := requirePhase(state, "setup", model.PhaseUninitialized, model.PhaseSetup); err != nil {
		return Result{State: state}, err
	}
	if err := in.validate(); err != nil {
		return Result{State: state}, err
	}

	maxNumber := in.MaxNumber
	if maxNumber == 0 {
		maxNumber = calculator.MaxNumberForGoal(in.TotalBingoGoal)
	}
	if maxNumber < 1 {
		return Result{State: state}, fmt.Errorf("%w: max number must be at least 1", model.ErrInvalidConfiguration)
	}

	now := r.clock.Now()
	today := model.DateOf(now)
	p1Share, p2Share := calculator.IncomeShares(in.P1.Income, in.P2.Income)

	next := model.GameState{
		AvailableNumbers: freshPool(maxNumber),
		DrawnNumbers:     []int{},
		History:          []model.Transaction{},
		Players: model.Players{
			P1: model.Player{Name: in.P1.Name, Avatar: in.P1.Avatar, EstimatedIncome: in.P1.Income, IncomeShare: p1Share},
			P2: model.Player{Name: in.P2.Name, Avatar: in.P2.Avatar, EstimatedIncome: in.P2.Income, IncomeShare: p2Share},
		},
		Settings: model.Settings{
			MaxNumber:         maxNumber,
			TotalBingoGoal:    in.TotalBingoGoal,
			InitialInvestment: in.InitialInvestment,
			DeadlineMonths:    in.DeadlineMonths,
			MonthlyTarget:     calculator.MonthlyTarget(maxNumber, in.DeadlineMonths),
			RitualDay:         in.RitualDay,
			Skin:              state.Settings.Skin,
			CustomGoalName:    in.CustomGoalName,
			IsPro:             in.IsPro,
		},
		Retention:  model.RetentionState{LastActivityDate: now},
		IsSetup:    true,
		StartDate:  today,
		TargetDate: today.AddMonths(in.DeadlineMonths),
		UpdatedAt:  now,
	}
	if next.Settings.Skin == "" {
		next.Settings.Skin = DefaultSkin
	}

	r.clearHistory()
	r.turn, r.session = model.P1, 0
	return Result{State: next}, nil
}

// Reset starts a fresh cycle with the same settings and players. It is the only
// operation accepted once the pool is empty.
func (r *Reducer) Reset(state model.GameState) (Result, error) {
	if err := requirePhase(state, "reset", model.PhaseActive, model.PhaseCompleted); err != nil {
		return Result{State: state}, err
	}

	now := r.clock.Now()
	today := model.DateOf(now)
	next := state.Clone()

	next.AvailableNumbers = freshPool(state.Settings.MaxNumber)
	next.DrawnNumbers = []int{}
	next.History = []model.Transaction{}
	next.Players.P1.TotalContributed = 0
	next.Players.P2.TotalContributed = 0
	next.Settings.MonthlyTarget = calculator.MonthlyTarget(state.Settings.MaxNumber, state.Settings.DeadlineMonths)
	next.Retention = model.RetentionState{
		LastActivityDate: now,
		CoachUsage:       next.Retention.CoachUsage,
	}
	next.StartDate = today
	next.TargetDate = today.AddMonths(state.Settings.DeadlineMonths)
	next.UpdatedAt = now

	r.clearHistory()
	r.turn, r.session = model.P1, 0
	return Result{State: next}, nil
}
