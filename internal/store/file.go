package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"Bingo2Gether/internal/model"
)

// FileStore keeps one JSON file per couple in a directory.
type FileStore struct {
	dir string
}

// NewFileStore creates dir if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		dir = "data"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(coupleID string) string {
	return filepath.Join(s.dir, coupleID+".json")
}

// Load reads the state file. A missing file is not an error.
func (s *FileStore) Load(_ context.Context, coupleID string) (*model.GameState, error) {
	if err := validID(coupleID); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(coupleID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read state %s: %w", coupleID, err)
	}
	return decode(data)
}

// Save writes the state through a temp file so readers never see a partial document.
func (s *FileStore) Save(_ context.Context, coupleID string, state model.GameState) error {
	if err := validID(coupleID); err != nil {
		return err
	}
	data, err := encode(state)
	if err != nil {
		return err
	}
	tmp := s.path(coupleID) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write state %s: %w", coupleID, err)
	}
	if err := os.Rename(tmp, s.path(coupleID)); err != nil {
		return fmt.Errorf("replace state %s: %w", coupleID, err)
	}
	return nil
}

func (s *FileStore) Delete(_ context.Context, coupleID string) error {
	if err := validID(coupleID); err != nil {
		return err
	}
	if err := os.Remove(s.path(coupleID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete state %s: %w", coupleID, err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }
