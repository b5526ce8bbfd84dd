// Package store persists one GameState document per couple.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"Bingo2Gether/internal/model"
)

// ErrNoChange is returned by Migrator when the schema is already current.
var ErrNoChange = errors.New("no change")

// Store loads and saves the full state of a couple. Load returns nil, nil when the couple
// has no saved game. Writes are last-write-wins.
type Store interface {
	Load(ctx context.Context, coupleID string) (*model.GameState, error)
	Save(ctx context.Context, coupleID string, state model.GameState) error
	Delete(ctx context.Context, coupleID string) error
	Close() error
}

// Options selects and configures a Store implementation.
type Options struct {
	Driver string // "file", "sqlite" or "postgres"
	Path   string // directory for file, database file for sqlite
	DSN    string // postgres
}

// Open builds the Store named by opts.Driver.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case "", "file":
		return NewFileStore(opts.Path)
	case "sqlite":
		return NewSQLiteStore(opts.Path)
	case "postgres":
		return NewPostgresStore(ctx, opts.DSN)
	default:
		return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
	}
}

func validID(coupleID string) error {
	if coupleID == "" || strings.ContainsAny(coupleID, `/\`) || strings.Contains(coupleID, "..") {
		return fmt.Errorf("%w: invalid couple id %q", model.ErrInvalidArgument, coupleID)
	}
	return nil
}

func encode(state model.GameState) ([]byte, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("encode game state: %w", err)
	}
	return data, nil
}

func decode(data []byte) (*model.GameState, error) {
	var state model.GameState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode game state: %w", err)
	}
	return &state, nil
}
