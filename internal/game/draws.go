package game

import (
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"Bingo2Gether/internal/calculator"
	"Bingo2Gether/internal/draw"
	"Bingo2Gether/internal/ledger"
	"Bingo2Gether/internal/model"
	"Bingo2Gether/internal/retention"
)

// BatchDraw draws the monthly target, split as evenly as possible with p1 taking the odd chip.
// All draws of a batch are weighted against the pool as it was before the batch.
func (r *Reducer) BatchDraw(state model.GameState) (Result, error) {
	if err := requirePhase(state, "batch draw", model.PhaseActive); err != nil {
		return Result{State: state}, err
	}

	target := state.Settings.MonthlyTarget
	if target < 1 {
		target = calculator.MonthlyTarget(len(state.AvailableNumbers), state.Settings.DeadlineMonths)
	}
	count := min(target, len(state.AvailableNumbers))
	p1Count := (count + 1) / 2
	p2Count := count - p1Count

	next := state.Clone()
	snapshot := state.AvailableNumbers
	pool := next.AvailableNumbers
	var drawn []int
	var txs []model.Transaction

	for _, side := range []struct {
		id    model.PlayerID
		count int
	}{{model.P1, p1Count}, {model.P2, p2Count}} {
		player := state.Players.Get(side.id)
		var sum int64
		for i := 0; i < side.count && len(pool) > 0; i++ {
			n, err := draw.Draw(pool, player, snapshot, r.src)
			if err != nil {
				return Result{State: state}, err
			}
			pool = draw.Remove(pool, n)
			drawn = append(drawn, n)
			txs = append(txs, r.transaction(n, side.id, model.TxMonthly))
			sum += int64(n)
		}
		pl := next.Players.Get(side.id)
		pl.TotalContributed += sum
		next.Players = next.Players.With(side.id, pl)
	}

	now := r.clock.Now()
	next.AvailableNumbers = pool
	next.DrawnNumbers = append(append([]int(nil), drawn...), state.DrawnNumbers...)
	next.History = ledger.Prepend(state.History, txs...)
	next.Retention = retention.Update(state.Retention, model.DateOf(now), now)
	next.UpdatedAt = now

	res := Result{State: next, Drawn: drawn, Transactions: txs}
	r.cardOutcome(&res, state)
	r.clearHistory()
	return res, nil
}

// SingleDraw draws one number for player, or for the current turn when player is empty,
// and flips the turn. The draw can be undone.
func (r *Reducer) SingleDraw(state model.GameState, player model.PlayerID) (Result, error) {
	if err := requirePhase(state, "single draw", model.PhaseActive); err != nil {
		return Result{State: state}, err
	}
	if player == "" {
		player = r.turn
	}
	if !player.Valid() {
		return Result{State: state}, fmt.Errorf("%w: unknown player %q", model.ErrInvalidArgument, player)
	}

	n, err := draw.Draw(state.AvailableNumbers, state.Players.Get(player), state.AvailableNumbers, r.src)
	if err != nil {
		return Result{State: state}, err
	}

	now := r.clock.Now()
	tx := r.transaction(n, player, model.TxMonthly)
	next := state.Clone()
	next.AvailableNumbers = draw.Remove(state.AvailableNumbers, n)
	next.DrawnNumbers = append([]int{n}, state.DrawnNumbers...)
	next.History = ledger.Prepend(state.History, tx)
	pl := next.Players.Get(player)
	pl.TotalContributed += int64(n)
	next.Players = next.Players.With(player, pl)
	next.Retention = retention.Update(state.Retention, model.DateOf(now), now)
	next.UpdatedAt = now

	r.push(command{
		players:   state.Players,
		retention: state.Retention.Clone(),
		updatedAt: state.UpdatedAt,
		turn:      r.turn,
		session:   r.session,
		txIDs:     []string{tx.ID},
	})
	r.turn = player.Other()
	r.session++

	res := Result{State: next, Drawn: []int{n}, Transactions: []model.Transaction{tx}, Player: player}
	r.cardOutcome(&res, state)
	return res, nil
}

// Undo reverts the most recent single draw. With nothing to undo the state is returned as is.
// Undoing the draw that emptied the pool reopens the game.
func (r *Reducer) Undo(state model.GameState) (Result, error) {
	if err := requirePhase(state, "undo", model.PhaseActive, model.PhaseCompleted); err != nil {
		return Result{State: state}, err
	}
	if len(r.history) == 0 {
		return Result{State: state}, nil
	}

	cmd := r.history[0]
	count := len(cmd.txIDs)
	if len(state.DrawnNumbers) < count || len(state.History) < count {
		r.clearHistory()
		return Result{State: state}, fmt.Errorf("%w: undo history does not match the ledger", model.ErrPreconditionViolation)
	}
	rest, popped := ledger.Pop(state.History, count)
	for i, tx := range popped {
		if tx.ID != cmd.txIDs[i] || state.DrawnNumbers[i] != tx.Number {
			r.clearHistory()
			return Result{State: state}, fmt.Errorf("%w: undo history does not match the ledger", model.ErrPreconditionViolation)
		}
	}

	next := state.Clone()
	next.History = rest
	next.DrawnNumbers = append(make([]int, 0, len(state.DrawnNumbers)-count), state.DrawnNumbers[count:]...)
	pool := append([]int(nil), state.AvailableNumbers...)
	for _, tx := range popped {
		pool = append(pool, tx.Number)
	}
	sort.Ints(pool)
	next.AvailableNumbers = pool
	next.Players = cmd.players
	next.Retention = restoreRetention(state.Retention, cmd.retention)
	next.UpdatedAt = cmd.updatedAt

	r.history = r.history[1:]
	r.turn = cmd.turn
	r.session = cmd.session

	undone := make([]int, len(popped))
	for i, tx := range popped {
		undone[i] = tx.Number
	}
	return Result{State: next, Drawn: undone, Transactions: popped}, nil
}

// restoreRetention puts back the play fields a single draw changed. Coach usage is counted
// outside the reducer and is kept from current.
func restoreRetention(current, saved model.RetentionState) model.RetentionState {
	next := current.Clone()
	prior := saved.Clone()
	next.CoupleStreak = prior.CoupleStreak
	next.LastPlayDate = prior.LastPlayDate
	next.LastActivityDate = prior.LastActivityDate
	next.SurvivalMode = prior.SurvivalMode
	return next
}

// Penalty draws one uniformly random number and charges it to the loser of a challenge.
// It keeps the couple active without counting toward the streak.
func (r *Reducer) Penalty(state model.GameState, loser model.PlayerID) (Result, error) {
	if err := requirePhase(state, "penalty", model.PhaseActive); err != nil {
		return Result{State: state}, err
	}
	if !loser.Valid() {
		return Result{State: state}, fmt.Errorf("%w: unknown player %q", model.ErrInvalidArgument, loser)
	}

	n, err := draw.Uniform(state.AvailableNumbers, r.src)
	if err != nil {
		return Result{State: state}, err
	}

	now := r.clock.Now()
	tx := r.transaction(n, loser, model.TxExtra)
	tx.LoserName = state.Players.Get(loser).Name

	next := state.Clone()
	next.AvailableNumbers = draw.Remove(state.AvailableNumbers, n)
	next.DrawnNumbers = append([]int{n}, state.DrawnNumbers...)
	next.History = ledger.Prepend(state.History, tx)
	pl := next.Players.Get(loser)
	pl.TotalContributed += int64(n)
	next.Players = next.Players.With(loser, pl)
	next.Retention = retention.Touch(state.Retention, now)
	next.UpdatedAt = now

	res := Result{State: next, Drawn: []int{n}, Transactions: []model.Transaction{tx}, Player: loser}
	r.cardOutcome(&res, state)
	r.clearHistory()
	return res, nil
}

// ExtraValuePayoff pays off the set of available numbers whose sum best fits amount.
// The chips are attributed by income share and the rounded amount is credited to the
// players in the same proportion.
func (r *Reducer) ExtraValuePayoff(state model.GameState, amount decimal.Decimal) (Result, error) {
	if err := requirePhase(state, "extra payoff", model.PhaseActive); err != nil {
		return Result{State: state}, err
	}
	if !amount.IsPositive() {
		return Result{State: state}, fmt.Errorf("%w: amount must be positive", model.ErrInvalidArgument)
	}

	numbers := calculator.FindNumbersForExtraValue(state.AvailableNumbers, amount)
	if len(numbers) == 0 {
		return Result{State: state}, fmt.Errorf("%w: %s", model.ErrInsufficientPool, amount)
	}

	now := r.clock.Now()
	p2Share := state.Players.P2.IncomeShare
	p2Count := int(math.Round(float64(len(numbers)) * float64(p2Share) / 100))

	txs := make([]model.Transaction, len(numbers))
	for i, n := range numbers {
		owner := model.P1
		if i < p2Count {
			owner = model.P2
		}
		txs[i] = r.transaction(n, owner, model.TxBonus)
	}

	credited := amount.Round(0).IntPart()
	p1Portion := int64(math.Round(float64(credited) * float64(100-p2Share) / 100))
	p2Portion := credited - p1Portion

	next := state.Clone()
	pool := next.AvailableNumbers
	for _, n := range numbers {
		pool = draw.Remove(pool, n)
	}
	next.AvailableNumbers = pool
	next.DrawnNumbers = append(append([]int(nil), numbers...), state.DrawnNumbers...)
	next.History = ledger.Prepend(state.History, txs...)
	next.Players.P1.TotalContributed += p1Portion
	next.Players.P2.TotalContributed += p2Portion
	next.Settings.MonthlyTarget = calculator.MonthlyTarget(len(pool), state.Settings.DeadlineMonths)
	next.Retention = retention.Update(state.Retention, model.DateOf(now), now)
	next.UpdatedAt = now

	res := Result{State: next, Drawn: numbers, Transactions: txs}
	r.cardOutcome(&res, state)
	r.clearHistory()
	return res, nil
}
