package game

import (
	"fmt"

	"github.com/shopspring/decimal"

	"Bingo2Gether/internal/model"
)

// IntentKind names a reducer operation.
type IntentKind string

const (
	IntentSetup        IntentKind = "setup"
	IntentBatchDraw    IntentKind = "batch_draw"
	IntentSingleDraw   IntentKind = "single_draw"
	IntentUndo         IntentKind = "undo"
	IntentPenalty      IntentKind = "penalty"
	IntentExtraPayoff  IntentKind = "extra_payoff"
	IntentDeadline     IntentKind = "update_deadline"
	IntentIncomeShares IntentKind = "update_income_shares"
	IntentSkin         IntentKind = "set_skin"
	IntentReset        IntentKind = "reset"
)

// Intent is a request to change the game. Only the fields of its Kind are read.
type Intent struct {
	Kind    IntentKind
	Player  model.PlayerID
	Amount  decimal.Decimal
	Months  int
	Income1 decimal.Decimal
	Income2 decimal.Decimal
	Skin    string
	Setup   *SetupInput
}

// Dispatch routes intent to its operation.
func (r *Reducer) Dispatch(state model.GameState, intent Intent) (Result, error) {
	switch intent.Kind {
	case IntentSetup:
		if intent.Setup == nil {
			return Result{State: state}, fmt.Errorf("%w: setup intent without input", model.ErrInvalidArgument)
		}
		return r.Setup(state, *intent.Setup)
	case IntentBatchDraw:
		return r.BatchDraw(state)
	case IntentSingleDraw:
		return r.SingleDraw(state, intent.Player)
	case IntentUndo:
		return r.Undo(state)
	case IntentPenalty:
		return r.Penalty(state, intent.Player)
	case IntentExtraPayoff:
		return r.ExtraValuePayoff(state, intent.Amount)
	case IntentDeadline:
		return r.UpdateDeadline(state, intent.Months)
	case IntentIncomeShares:
		return r.UpdateIncomeShares(state, intent.Income1, intent.Income2)
	case IntentSkin:
		return r.SetSkin(state, intent.Skin)
	case IntentReset:
		return r.Reset(state)
	default:
		return Result{State: state}, fmt.Errorf("%w: unknown intent %q", model.ErrInvalidArgument, intent.Kind)
	}
}
