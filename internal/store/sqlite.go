package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"Bingo2Gether/internal/model"
)

// SQLiteStore keeps game documents in a single SQLite table.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (or creates) the database and its games table.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		dbPath = "data/games.db"
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS games (
		couple_id  TEXT PRIMARY KEY,
		state      TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create games table: %w", err)
	}

	log.Printf("[INFO] sqlite store opened: %s", dbPath)
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load(ctx context.Context, coupleID string) (*model.GameState, error) {
	if err := validID(coupleID); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var data string
	err := s.db.QueryRowContext(ctx, `SELECT state FROM games WHERE couple_id = ?`, coupleID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load game %s: %w", coupleID, err)
	}
	return decode([]byte(data))
}

func (s *SQLiteStore) Save(ctx context.Context, coupleID string, state model.GameState) error {
	if err := validID(coupleID); err != nil {
		return err
	}
	data, err := encode(state)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, `INSERT INTO games (couple_id, state, updated_at) VALUES (?,?,?)
		ON CONFLICT(couple_id) DO UPDATE SET state = excluded.state, updated_at = excluded.updated_at`,
		coupleID, string(data), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("save game %s: %w", coupleID, err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, coupleID string) error {
	if err := validID(coupleID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM games WHERE couple_id = ?`, coupleID); err != nil {
		return fmt.Errorf("delete game %s: %w", coupleID, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	log.Println("[INFO] closing sqlite store")
	return s.db.Close()
}
