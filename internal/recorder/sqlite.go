package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"Bingo2Gether/internal/model"
)

// SQLiteRecorder persists the audit trail to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	now func() time.Time
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, now: time.Now}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS ledger_entries (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			recorded_at INTEGER NOT NULL,
			couple_id   TEXT NOT NULL,
			tx_id       TEXT NOT NULL,
			number      INTEGER NOT NULL,
			player_id   TEXT NOT NULL,
			tx_date     TEXT NOT NULL,
			tx_type     TEXT NOT NULL,
			tx_ts       INTEGER NOT NULL,
			loser_name  TEXT,
			undone      INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ledger_couple ON ledger_entries(couple_id, tx_ts)`,
		`CREATE INDEX IF NOT EXISTS idx_ledger_tx ON ledger_entries(tx_id)`,

		`CREATE TABLE IF NOT EXISTS operations (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			recorded_at  INTEGER NOT NULL,
			couple_id    TEXT NOT NULL,
			operation    TEXT NOT NULL,
			numbers      TEXT,
			total_saved  REAL,
			percent      REAL,
			streak       INTEGER,
			survival     INTEGER,
			bingo        INTEGER,
			cards_closed INTEGER,
			note         TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_operations_couple ON operations(couple_id, recorded_at)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordTransactions(coupleID string, txs []model.Transaction) error {
	if len(txs) == 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	dbTx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	now := r.now().Unix()
	// oldest first so autoincrement ids follow draw order
	for i := len(txs) - 1; i >= 0; i-- {
		t := txs[i]
		if _, err := dbTx.Exec(`INSERT INTO ledger_entries
			(recorded_at, couple_id, tx_id, number, player_id, tx_date, tx_type, tx_ts, loser_name)
			VALUES (?,?,?,?,?,?,?,?,?)`,
			now, coupleID, t.ID, t.Number, string(t.PlayerID), t.Date.String(),
			string(t.Type), t.Timestamp, t.LoserName,
		); err != nil {
			dbTx.Rollback()
			return fmt.Errorf("insert ledger entry %s: %w", t.ID, err)
		}
	}
	return dbTx.Commit()
}

// RecordUndo marks entries as undone. The rows stay in the trail.
func (r *SQLiteRecorder) RecordUndo(coupleID string, txs []model.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range txs {
		if _, err := r.db.Exec(`UPDATE ledger_entries SET undone = 1 WHERE couple_id = ? AND tx_id = ?`,
			coupleID, t.ID); err != nil {
			return fmt.Errorf("mark undone %s: %w", t.ID, err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordOperation(evt *OperationEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO operations
		(recorded_at, couple_id, operation, numbers, total_saved, percent, streak, survival, bingo, cards_closed, note)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		r.now().Unix(), evt.CoupleID, evt.Operation, joinNumbers(evt.Numbers),
		evt.TotalSaved, evt.Percent, evt.Streak, boolInt(evt.Survival), boolInt(evt.Bingo),
		evt.CardsClosed, evt.Note,
	)
	return err
}

// CountEntries returns the number of live (not undone) ledger rows of a couple.
func (r *SQLiteRecorder) CountEntries(coupleID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM ledger_entries WHERE couple_id = ? AND undone = 0`, coupleID).Scan(&n)
	return n, err
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}

func joinNumbers(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
