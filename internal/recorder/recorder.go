package recorder

import "Bingo2Gether/internal/model"

// OperationEvent records one applied game operation.
type OperationEvent struct {
	CoupleID    string
	Operation   string // "batch_draw", "single_draw", "undo", "penalty", ...
	Numbers     []int
	TotalSaved  float64
	Percent     float64
	Streak      int
	Survival    bool
	Bingo       bool
	CardsClosed int
	Note        string
}

// Recorder keeps an append-only audit trail of ledger entries and operations.
type Recorder interface {
	RecordTransactions(coupleID string, txs []model.Transaction) error
	RecordUndo(coupleID string, txs []model.Transaction) error
	RecordOperation(evt *OperationEvent) error
	Close() error
}
