package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Settings holds the goal configuration of a couple.
type Settings struct {
	MaxNumber         int             `json:"max_number"`
	TotalBingoGoal    decimal.Decimal `json:"total_bingo_goal"`
	InitialInvestment decimal.Decimal `json:"initial_investment"`
	DeadlineMonths    int             `json:"deadline_months"`
	MonthlyTarget     int             `json:"monthly_target"` // chips per monthly batch
	RitualDay         time.Weekday    `json:"ritual_day"`

	// Set by the identity/plan collaborator, read-only here.
	Skin           string `json:"skin,omitempty"`
	CustomGoalName string `json:"custom_goal_name,omitempty"`
	IsPro          bool   `json:"is_pro"`
}

// TotalGoal is the bingo goal plus the initial investment.
func (s Settings) TotalGoal() decimal.Decimal {
	return s.TotalBingoGoal.Add(s.InitialInvestment)
}

// GameState is the root aggregate owned by one couple.
type GameState struct {
	AvailableNumbers []int          `json:"available_numbers"` // ascending
	DrawnNumbers     []int          `json:"drawn_numbers"`     // most recent first
	History          []Transaction  `json:"history"`           // most recent first
	Players          Players        `json:"players"`
	Settings         Settings       `json:"settings"`
	Retention        RetentionState `json:"retention"`
	IsSetup          bool           `json:"is_setup"`
	StartDate        Date           `json:"start_date"`
	TargetDate       Date           `json:"target_date"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// Phase is the lifecycle position of a GameState.
type Phase string

const (
	PhaseUninitialized Phase = "uninitialized"
	PhaseSetup         Phase = "setup"
	PhaseActive        Phase = "active"
	PhaseCompleted     Phase = "completed"
)

// Phase derives the lifecycle phase from the state.
func (s GameState) Phase() Phase {
	switch {
	case s.Settings.MaxNumber == 0 && !s.IsSetup:
		return PhaseUninitialized
	case !s.IsSetup:
		return PhaseSetup
	case len(s.AvailableNumbers) == 0:
		return PhaseCompleted
	default:
		return PhaseActive
	}
}

// Clone returns a deep copy so reducers never share backing arrays.
func (s GameState) Clone() GameState {
	out := s
	out.AvailableNumbers = append([]int(nil), s.AvailableNumbers...)
	out.DrawnNumbers = append([]int(nil), s.DrawnNumbers...)
	out.History = append([]Transaction(nil), s.History...)
	out.Retention = s.Retention.Clone()
	return out
}

// DrawnSum is the sum of all drawn numbers.
func (s GameState) DrawnSum() int64 {
	var sum int64
	for _, n := range s.DrawnNumbers {
		sum += int64(n)
	}
	return sum
}

// BingoCard is a derived fixed-size chunk of the number space.
type BingoCard struct {
	ID         int   `json:"id"`
	Numbers    []int `json:"numbers"`
	IsComplete bool  `json:"is_complete"`
}
