package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/DoyleJ11/fa-bid-backend/internal/engine"
)

type FileStore struct {
	path string
	log  *zap.Logger
}

func NewFileStore(path string, logger *zap.Logger) *FileStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileStore{path: path, log: logger.Named("filestore")}
}

func (s *FileStore) Path() string { return s.path }

// Load never fails: a missing, unreadable or corrupt file yields an empty
// draft.
func (s *FileStore) Load(ctx context.Context) (engine.State, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.log.Info("no snapshot file, starting empty", zap.String("path", s.path))
		return engine.NewEmptyState(), nil
	}
	if err != nil {
		s.log.Warn("snapshot file unreadable, starting empty", zap.String("path", s.path), zap.Error(err))
		return engine.NewEmptyState(), nil
	}

	state, err := Decode(b)
	if err != nil {
		s.log.Warn("snapshot file corrupt, starting empty", zap.String("path", s.path), zap.Error(err))
		return engine.NewEmptyState(), nil
	}
	return state, nil
}

// Save writes to a temp file in the same directory and renames it over the
// snapshot so a crash never leaves a half-written file.
func (s *FileStore) Save(ctx context.Context, state engine.State) error {
	body, err := Encode(state)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }
