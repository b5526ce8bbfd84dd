// Package ledger folds the most-recent-first transaction log of a couple.
//
// The log only grows at the front. Undo pops entries from the front, so the log never
// has gaps.
package ledger

import (
	"sort"
	"time"

	"Bingo2Gether/internal/model"
)

// Prepend returns a new history with txs placed before the existing entries.
// txs keep their given order.
func Prepend(history []model.Transaction, txs ...model.Transaction) []model.Transaction {
	out := make([]model.Transaction, 0, len(txs)+len(history))
	out = append(out, txs...)
	return append(out, history...)
}

// Pop returns history without its n most recent entries, plus the removed entries.
func Pop(history []model.Transaction, n int) (rest, popped []model.Transaction) {
	if n <= 0 {
		return append([]model.Transaction(nil), history...), nil
	}
	if n > len(history) {
		n = len(history)
	}
	popped = append([]model.Transaction(nil), history[:n]...)
	rest = append(make([]model.Transaction, 0, len(history)-n), history[n:]...)
	return rest, popped
}

// Owners maps every ledgered number to the player it is attributed to.
func Owners(history []model.Transaction) map[int]model.PlayerID {
	owners := make(map[int]model.PlayerID, len(history))
	for i := len(history) - 1; i >= 0; i-- {
		tx := history[i]
		owners[tx.Number] = tx.PlayerID
	}
	return owners
}

// Contributions sums the numbers attributed to each player.
func Contributions(history []model.Transaction) map[model.PlayerID]int64 {
	out := map[model.PlayerID]int64{model.P1: 0, model.P2: 0}
	for _, tx := range history {
		out[tx.PlayerID] += int64(tx.Number)
	}
	return out
}

// Batch summarises a group of transactions per player.
type Batch struct {
	Date      model.Date
	P1Numbers []int
	P2Numbers []int
	P1Sum     int64
	P2Sum     int64
}

// Total is the combined sum of the batch.
func (b Batch) Total() int64 { return b.P1Sum + b.P2Sum }

// Len is the number of chips in the batch.
func (b Batch) Len() int { return len(b.P1Numbers) + len(b.P2Numbers) }

// MonthBatch groups every transaction of the given calendar month. ok is false when the
// month has no entries.
func MonthBatch(history []model.Transaction, year int, month time.Month) (Batch, bool) {
	var picked []model.Transaction
	for _, tx := range history {
		if tx.Date.SameMonth(year, month) {
			picked = append(picked, tx)
		}
	}
	return summarise(picked)
}

// LatestBatch groups the monthly-type transactions of the most recent draw day.
func LatestBatch(history []model.Transaction) (Batch, bool) {
	var latest *model.Date
	var picked []model.Transaction
	for _, tx := range history {
		if tx.Type != model.TxMonthly {
			continue
		}
		if latest == nil {
			d := tx.Date
			latest = &d
		}
		if tx.Date == *latest {
			picked = append(picked, tx)
		}
	}
	return summarise(picked)
}

func summarise(txs []model.Transaction) (Batch, bool) {
	if len(txs) == 0 {
		return Batch{}, false
	}
	b := Batch{Date: txs[0].Date}
	for _, tx := range txs {
		if tx.PlayerID == model.P2 {
			b.P2Numbers = append(b.P2Numbers, tx.Number)
			b.P2Sum += int64(tx.Number)
		} else {
			b.P1Numbers = append(b.P1Numbers, tx.Number)
			b.P1Sum += int64(tx.Number)
		}
	}
	sort.Ints(b.P1Numbers)
	sort.Ints(b.P2Numbers)
	return b, true
}
