// Package game is the state machine of a couple's bingo. Every operation takes a
// GameState and returns a new one; the input is never modified.
package game

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"Bingo2Gether/internal/cards"
	"Bingo2Gether/internal/draw"
	"Bingo2Gether/internal/model"
)

// DefaultUndoDepth bounds the single-draw undo history.
const DefaultUndoDepth = 5

// Result is the outcome of one operation.
type Result struct {
	State        model.GameState
	Drawn        []int               // numbers drawn by this operation, in draw order
	Transactions []model.Transaction // ledger entries added by this operation
	Player       model.PlayerID      // drawing player for single draws and penalties
	Bingo        bool
	NewCards     []int // ids of cards completed by this operation
	Reward       string
}

// command holds what a single draw replaced, so Undo can put it back.
type command struct {
	players   model.Players
	retention model.RetentionState
	updatedAt time.Time
	turn      model.PlayerID
	session   int
	txIDs     []string // ledger entries added by the draw, most recent first
}

// Reducer applies game operations. It owns the session-scoped single draw turn, the
// session draw counter and the undo history. A Reducer is not safe for concurrent use.
type Reducer struct {
	src      draw.Source
	clock    Clock
	newID    func() string
	depth    int
	cardSize int

	turn    model.PlayerID
	session int
	history []command
}

// Option configures a Reducer.
type Option func(*Reducer)

// WithUndoDepth sets how many single draws can be undone.
func WithUndoDepth(n int) Option {
	return func(r *Reducer) {
		if n >= 0 {
			r.depth = n
		}
	}
}

// WithCardSize overrides the number of chips per bingo card.
func WithCardSize(n int) Option {
	return func(r *Reducer) {
		if n > 0 {
			r.cardSize = n
		}
	}
}

// WithIDFunc overrides the transaction id generator.
func WithIDFunc(f func() string) Option {
	return func(r *Reducer) {
		if f != nil {
			r.newID = f
		}
	}
}

// New creates a Reducer drawing from src and reading time from clock.
func New(src draw.Source, clock Clock, opts ...Option) *Reducer {
	if clock == nil {
		clock = RealClock{}
	}
	r := &Reducer{
		src:      src,
		clock:    clock,
		newID:    uuid.NewString,
		depth:    DefaultUndoDepth,
		cardSize: cards.DefaultSize,
		turn:     model.P1,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Turn is the player who makes the next single draw.
func (r *Reducer) Turn() model.PlayerID { return r.turn }

// SessionDraws counts single draws made in this session.
func (r *Reducer) SessionDraws() int { return r.session }

// UndoLen is the number of single draws that can be undone.
func (r *Reducer) UndoLen() int { return len(r.history) }

// CardSize is the configured card size.
func (r *Reducer) CardSize() int { return r.cardSize }

func (r *Reducer) push(c command) {
	if r.depth == 0 {
		return
	}
	r.history = append([]command{c}, r.history...)
	if len(r.history) > r.depth {
		r.history = r.history[:r.depth]
	}
}

func (r *Reducer) clearHistory() { r.history = nil }

// Checkpoint is a copy of the session-scoped fields of a Reducer.
type Checkpoint struct {
	turn    model.PlayerID
	session int
	history []command
}

// Checkpoint returns the current session state.
func (r *Reducer) Checkpoint() Checkpoint {
	return Checkpoint{turn: r.turn, session: r.session, history: append([]command(nil), r.history...)}
}

// Rollback restores a checkpoint taken before an operation whose result was discarded.
func (r *Reducer) Rollback(cp Checkpoint) {
	r.turn, r.session = cp.turn, cp.session
	r.history = append([]command(nil), cp.history...)
}

// ClearUndo drops the undo history. Callers use it after changing the state outside the reducer.
func (r *Reducer) ClearUndo() { r.clearHistory() }

func requirePhase(state model.GameState, op string, allowed ...model.Phase) error {
	phase := state.Phase()
	for _, p := range allowed {
		if phase == p {
			return nil
		}
	}
	return fmt.Errorf("%w: %s not allowed in phase %s", model.ErrPreconditionViolation, op, phase)
}

// cardOutcome fills the bingo fields of res by comparing the drawn set before and after.
func (r *Reducer) cardOutcome(res *Result, before model.GameState) {
	maxNumber := res.State.Settings.MaxNumber
	newly := cards.NewlyCompleted(cards.NewSet(before.DrawnNumbers), cards.NewSet(res.State.DrawnNumbers), maxNumber, r.cardSize)
	if len(newly) == 0 {
		return
	}
	res.Bingo = true
	res.NewCards = newly
	res.Reward = cards.Reward(r.src.Intn)
}

func (r *Reducer) transaction(n int, player model.PlayerID, typ model.TransactionType) model.Transaction {
	now := r.clock.Now()
	return model.Transaction{
		ID:        r.newID(),
		Number:    n,
		PlayerID:  player,
		Date:      model.DateOf(now),
		Type:      typ,
		Timestamp: now.UnixMilli(),
	}
}

func freshPool(maxNumber int) []int {
	pool := make([]int, maxNumber)
	for i := range pool {
		pool[i] = i + 1
	}
	return pool
}
