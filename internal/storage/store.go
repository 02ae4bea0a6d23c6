// Package storage holds the samples of one run. Ingestion owns a store until it
// calls Freeze; after that the store is read-only and analysis may read it.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/netstats-history/netdelta/internal/models"
)

var (
	// ErrFrozen is returned by Append once the store has been frozen.
	ErrFrozen = errors.New("sample store is frozen")
	// ErrNotFrozen is returned by Samples while ingestion still owns the store.
	ErrNotFrozen = errors.New("sample store is still being written")
)

// SampleStore accumulates samples in arrival order. No deduplication, no reordering.
type SampleStore interface {
	Append(sample models.Sample) error
	// Freeze ends the write phase.
	Freeze() error
	// Samples returns the full ordered sequence. Callers must not modify it.
	Samples(ctx context.Context) ([]models.Sample, error)
	Len() int
	Close() error
}

// Backend names accepted by New.
const (
	BackendMemory = "memory"
	BackendDuckDB = "duckdb"
)

// New creates a store for the named backend.
func New(backend string, opts DuckStoreOptions) (SampleStore, error) {
	switch backend {
	case "", BackendMemory:
		return NewMemoryStore(), nil
	case BackendDuckDB:
		return NewDuckStore(opts)
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}
