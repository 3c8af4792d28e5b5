package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/matzehuels/redline/pkg/batch"
	"github.com/matzehuels/redline/pkg/errors"
)

// FileStore keeps one JSON file per batch in a directory.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a file-based batch store.
// If baseDir is empty, defaults to ~/.local/share/redline/batches/
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".local", "share", "redline", "batches")
	}
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "create batch dir")
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) batchPath(id string) string {
	return filepath.Join(s.baseDir, id+".json")
}

func (s *FileStore) Save(_ context.Context, b *batch.Batch) error {
	if err := ValidateID(b.ID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := batch.WriteFile(b, s.batchPath(b.ID)); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "write batch %s", b.ID)
	}
	return nil
}

func (s *FileStore) Get(_ context.Context, id string) (*batch.Batch, error) {
	if err := ValidateID(id); err != nil {
		return nil, notFound(id)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, err := batch.ReadFile(s.batchPath(id))
	if errors.Is(err, errors.ErrCodeFileNotFound) {
		return nil, notFound(id)
	}
	return b, err
}

func (s *FileStore) List(_ context.Context, limit int) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "read batch dir")
	}

	var out []Summary
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		b, err := batch.ReadFile(filepath.Join(s.baseDir, entry.Name()))
		if err != nil {
			continue
		}
		out = append(out, Summarize(b))
	}
	newestFirst(out)
	return out[:min(len(out), normalizeLimit(limit))], nil
}

func (s *FileStore) Delete(_ context.Context, id string) error {
	if err := ValidateID(id); err != nil {
		return notFound(id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.batchPath(id))
	if os.IsNotExist(err) {
		return notFound(id)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "remove batch %s", id)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

// Path returns the directory holding the batch files.
func (s *FileStore) Path() string {
	return s.baseDir
}

var _ Store = (*FileStore)(nil)
