// Package couple serialises all game operations of one couple through a single writer.
package couple

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"Bingo2Gether/internal/calculator"
	"Bingo2Gether/internal/cards"
	"Bingo2Gether/internal/game"
	"Bingo2Gether/internal/ledger"
	"Bingo2Gether/internal/model"
	"Bingo2Gether/internal/pace"
	"Bingo2Gether/internal/recorder"
	"Bingo2Gether/internal/retention"
	"Bingo2Gether/internal/store"
)

// Options tunes a Manager.
type Options struct {
	InactivityThreshold time.Duration
	Clock               game.Clock
}

// Manager owns the current state of one couple. Every operation loads from the cache,
// reduces, persists the full document and only then replaces the cache.
type Manager struct {
	mu        sync.Mutex
	coupleID  string
	store     store.Store
	rec       recorder.Recorder
	reducer   *game.Reducer
	clock     game.Clock
	threshold time.Duration
	state     model.GameState
}

// NewManager creates a Manager, loading the saved state of coupleID if there is one.
func NewManager(ctx context.Context, coupleID string, st store.Store, rec recorder.Recorder, reducer *game.Reducer, opts Options) (*Manager, error) {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if opts.Clock == nil {
		opts.Clock = game.RealClock{}
	}
	if opts.InactivityThreshold <= 0 {
		opts.InactivityThreshold = retention.DefaultInactivityThreshold
	}

	saved, err := st.Load(ctx, coupleID)
	if err != nil {
		return nil, fmt.Errorf("load couple %s: %w", coupleID, err)
	}
	m := &Manager{
		coupleID:  coupleID,
		store:     st,
		rec:       rec,
		reducer:   reducer,
		clock:     opts.Clock,
		threshold: opts.InactivityThreshold,
	}
	if saved != nil {
		m.state = *saved
		log.Printf("[INFO] loaded game for couple %s (phase=%s, available=%d)", coupleID, m.state.Phase(), len(m.state.AvailableNumbers))
	} else {
		log.Printf("[INFO] no saved game for couple %s, waiting for setup", coupleID)
	}
	return m, nil
}

// CoupleID returns the id this manager serves.
func (m *Manager) CoupleID() string { return m.coupleID }

// State returns a copy of the current state.
func (m *Manager) State() model.GameState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Clone()
}

// Turn is the player who makes the next single draw.
func (m *Manager) Turn() model.PlayerID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reducer.Turn()
}

// UndoLen is the number of single draws that can be undone.
func (m *Manager) UndoLen() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reducer.UndoLen()
}

// Progress derives the savings totals of the current state.
func (m *Manager) Progress() (calculator.Progress, error) {
	return calculator.ComputeProgress(m.State())
}

// Pace evaluates the schedule position, taking survival mode into account.
func (m *Manager) Pace() (pace.Pace, error) {
	st := m.State()
	now := m.clock.Now()
	return pace.Evaluate(st, now, retention.InSurvival(st.Retention, now, m.threshold))
}

// CardSize is the number of chips per card used by the reducer.
func (m *Manager) CardSize() int { return m.reducer.CardSize() }

// Cards builds the grid view of the current state.
func (m *Manager) Cards() []model.BingoCard {
	st := m.State()
	return cards.Build(st.Settings.MaxNumber, m.reducer.CardSize(), ledger.Owners(st.History))
}

// Setup completes onboarding.
func (m *Manager) Setup(ctx context.Context, in game.SetupInput) (game.Result, error) {
	return m.apply(ctx, "setup", func(st model.GameState) (game.Result, error) { return m.reducer.Setup(st, in) })
}

// BatchDraw draws the monthly batch.
func (m *Manager) BatchDraw(ctx context.Context) (game.Result, error) {
	return m.apply(ctx, "batch_draw", m.reducer.BatchDraw)
}

// SingleDraw draws one number for player, or for the current turn when player is empty.
func (m *Manager) SingleDraw(ctx context.Context, player model.PlayerID) (game.Result, error) {
	return m.apply(ctx, "single_draw", func(st model.GameState) (game.Result, error) { return m.reducer.SingleDraw(st, player) })
}

// Undo reverts the most recent single draw.
func (m *Manager) Undo(ctx context.Context) (game.Result, error) {
	return m.apply(ctx, "undo", m.reducer.Undo)
}

// Penalty charges the loser of a challenge one random number.
func (m *Manager) Penalty(ctx context.Context, loser model.PlayerID) (game.Result, error) {
	return m.apply(ctx, "penalty", func(st model.GameState) (game.Result, error) { return m.reducer.Penalty(st, loser) })
}

// ExtraValuePayoff pays off numbers that fit amount.
func (m *Manager) ExtraValuePayoff(ctx context.Context, amount decimal.Decimal) (game.Result, error) {
	return m.apply(ctx, "extra_payoff", func(st model.GameState) (game.Result, error) { return m.reducer.ExtraValuePayoff(st, amount) })
}

// UpdateDeadline sets the months left.
func (m *Manager) UpdateDeadline(ctx context.Context, months int) (game.Result, error) {
	return m.apply(ctx, "update_deadline", func(st model.GameState) (game.Result, error) { return m.reducer.UpdateDeadline(st, months) })
}

// UpdateIncomeShares rebalances the partners' shares from new incomes.
func (m *Manager) UpdateIncomeShares(ctx context.Context, income1, income2 decimal.Decimal) (game.Result, error) {
	return m.apply(ctx, "update_income_shares", func(st model.GameState) (game.Result, error) {
		return m.reducer.UpdateIncomeShares(st, income1, income2)
	})
}

// SetSkin changes the board theme.
func (m *Manager) SetSkin(ctx context.Context, skin string) (game.Result, error) {
	return m.apply(ctx, "set_skin", func(st model.GameState) (game.Result, error) { return m.reducer.SetSkin(st, skin) })
}

// Reset starts a new cycle with the same settings.
func (m *Manager) Reset(ctx context.Context) (game.Result, error) {
	return m.apply(ctx, "reset", m.reducer.Reset)
}

// DeleteGame removes the saved game of the couple. The manager then waits for a new setup.
func (m *Manager) DeleteGame(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Delete(ctx, m.coupleID); err != nil {
		return fmt.Errorf("delete game: %w", err)
	}
	m.state = model.GameState{}
	m.reducer.ClearUndo()
	m.record("delete_game", game.Result{State: m.state})
	log.Printf("[INFO] couple %s game deleted", m.coupleID)
	return nil
}

// Dispatch applies an arbitrary intent.
func (m *Manager) Dispatch(ctx context.Context, intent game.Intent) (game.Result, error) {
	return m.apply(ctx, string(intent.Kind), func(st model.GameState) (game.Result, error) { return m.reducer.Dispatch(st, intent) })
}

// ResolveChallenge settles a coach challenge. The financial option charges the loser a
// penalty draw; the task option is settled off-board and changes nothing.
func (m *Manager) ResolveChallenge(ctx context.Context, loser model.PlayerID, option model.ChallengeOption) (game.Result, error) {
	switch option {
	case model.OptionFinancial:
		return m.Penalty(ctx, loser)
	case model.OptionTask:
		if !loser.Valid() {
			return game.Result{State: m.State()}, fmt.Errorf("%w: unknown player %q", model.ErrInvalidArgument, loser)
		}
		log.Printf("[INFO] couple %s: %s takes the task option", m.coupleID, loser)
		return game.Result{State: m.State(), Player: loser}, nil
	default:
		return game.Result{State: m.State()}, fmt.Errorf("%w: unknown challenge option %q", model.ErrInvalidArgument, option)
	}
}

// RefreshSurvival raises the survival flag if the couple went idle. It reports whether the
// flag was newly raised.
func (m *Manager) RefreshSurvival(ctx context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.state.IsSetup || m.state.Retention.SurvivalMode {
		return false, nil
	}
	next := m.state.Clone()
	next.Retention = retention.Refresh(m.state.Retention, m.clock.Now(), m.threshold)
	if !next.Retention.SurvivalMode {
		return false, nil
	}
	if err := m.store.Save(ctx, m.coupleID, next); err != nil {
		return false, fmt.Errorf("save survival flag: %w", err)
	}
	m.state = next
	// An undo would put back the play fields from before the idle period.
	m.reducer.ClearUndo()
	log.Printf("[WARN] couple %s inactive for more than %s, survival mode on", m.coupleID, m.threshold)
	return true, nil
}

// CoachUsed counts one coach request in the current month and returns the new count.
func (m *Manager) CoachUsed(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	next := m.state.Clone()
	next.Retention = retention.RecordCoachUsage(m.state.Retention, now)
	if err := m.store.Save(ctx, m.coupleID, next); err != nil {
		return 0, fmt.Errorf("save coach usage: %w", err)
	}
	m.state = next
	return retention.CoachUsesThisMonth(next.Retention, now), nil
}

func (m *Manager) apply(ctx context.Context, op string, fn func(model.GameState) (game.Result, error)) (game.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := m.reducer.Checkpoint()
	res, err := fn(m.state)
	if err != nil {
		if !errors.Is(err, model.ErrPreconditionViolation) && !errors.Is(err, model.ErrInvalidArgument) &&
			!errors.Is(err, model.ErrInsufficientPool) && !errors.Is(err, model.ErrInvalidConfiguration) {
			log.Printf("[ERROR] couple %s %s: %v", m.coupleID, op, err)
		}
		return game.Result{State: m.state.Clone()}, err
	}

	if err := m.store.Save(ctx, m.coupleID, res.State); err != nil {
		log.Printf("[ERROR] failed to save game state for couple %s after %s: %v", m.coupleID, op, err)
		m.reducer.Rollback(cp)
		return game.Result{State: m.state.Clone()}, fmt.Errorf("save %s: %w", op, err)
	}
	m.state = res.State
	res.State = res.State.Clone()

	m.record(op, res)
	log.Printf("[INFO] couple %s %s: drawn=%v available=%d", m.coupleID, op, res.Drawn, len(res.State.AvailableNumbers))
	return res, nil
}

func (m *Manager) record(op string, res game.Result) {
	if len(res.Transactions) > 0 {
		var err error
		if op == "undo" || op == string(game.IntentUndo) {
			err = m.rec.RecordUndo(m.coupleID, res.Transactions)
		} else {
			err = m.rec.RecordTransactions(m.coupleID, res.Transactions)
		}
		if err != nil {
			log.Printf("[WARN] failed to record ledger entries for %s: %v", op, err)
		}
	}

	evt := &recorder.OperationEvent{
		CoupleID:    m.coupleID,
		Operation:   op,
		Numbers:     res.Drawn,
		Streak:      res.State.Retention.CoupleStreak,
		Survival:    res.State.Retention.SurvivalMode,
		Bingo:       res.Bingo,
		CardsClosed: len(res.NewCards),
		Note:        res.Reward,
	}
	if p, err := calculator.ComputeProgress(res.State); err == nil {
		evt.TotalSaved, _ = p.TotalSaved.Float64()
		evt.Percent = p.Percent
	}
	if err := m.rec.RecordOperation(evt); err != nil {
		log.Printf("[WARN] failed to record operation %s: %v", op, err)
	}
}
