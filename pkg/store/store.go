// Package store persists annotation batches so they can be fetched again by
// id, for example through `GET /v1/batches/{id}`.
//
// Three backends implement [Store]:
//   - [MemoryStore]: process-local map, for tests and single-instance servers
//   - [FileStore]: one JSON file per batch, for the CLI
//   - [MongoStore]: a MongoDB collection, for shared deployments
//
// # Usage
//
//	st, err := store.NewFileStore("")  // Uses ~/.local/share/redline/batches/
//	if err := st.Save(ctx, b); err != nil {
//	    return err
//	}
//	b, err := st.Get(ctx, id)
//	if errors.Is(err, errors.ErrCodeBatchNotFound) {
//	    // unknown or deleted
//	}
package store

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/redline/pkg/batch"
	"github.com/matzehuels/redline/pkg/errors"
)

// DefaultListLimit caps List when the caller passes zero.
const DefaultListLimit = 50

// Store saves and loads batches by id.
type Store interface {
	// Save inserts or replaces the batch with b.ID.
	Save(ctx context.Context, b *batch.Batch) error

	// Get returns the batch with the given id, or a BATCH_NOT_FOUND error.
	Get(ctx context.Context, id string) (*batch.Batch, error)

	// List returns summaries of the most recent batches, newest first.
	List(ctx context.Context, limit int) ([]Summary, error)

	// Delete removes a batch. Deleting a missing batch is a BATCH_NOT_FOUND
	// error.
	Delete(ctx context.Context, id string) error

	Close() error
}

// Summary describes a stored batch without its geometry.
type Summary struct {
	ID          string    `json:"id"`
	SceneHash   string    `json:"scene_hash"`
	CreatedAt   time.Time `json:"created_at"`
	Frames      int       `json:"frames"`
	Annotations int       `json:"annotations"`
	Skipped     int       `json:"skipped"`
}

// Summarize builds the summary of b.
func Summarize(b *batch.Batch) Summary {
	return Summary{
		ID:          b.ID,
		SceneHash:   b.SceneHash,
		CreatedAt:   b.CreatedAt,
		Frames:      len(b.Frames),
		Annotations: len(b.Annotations),
		Skipped:     len(b.Skipped),
	}
}

// ValidateID checks that id is a batch id.
func ValidateID(id string) error {
	if err := uuid.Validate(id); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid batch id %q", id)
	}
	return nil
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeBatchNotFound, "batch %s not found", id)
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}

// newestFirst sorts summaries by creation time descending, then by id.
func newestFirst(s []Summary) {
	slices.SortFunc(s, func(a, b Summary) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
