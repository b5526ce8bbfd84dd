package model

// TransactionType tags why a number entered the ledger.
type TransactionType string

const (
	TxMonthly TransactionType = "monthly"
	TxBonus   TransactionType = "bonus"
	TxExtra   TransactionType = "extra"
)

// Transaction is one immutable ledger entry.
type Transaction struct {
	ID        string          `json:"id"`
	Number    int             `json:"number"`
	PlayerID  PlayerID        `json:"player_id"`
	Date      Date            `json:"date"`
	Type      TransactionType `json:"type"`
	Timestamp int64           `json:"timestamp"` // epoch millis
	LoserName string          `json:"loser_name,omitempty"`
}
