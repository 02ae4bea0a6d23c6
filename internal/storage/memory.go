package storage

import (
	"context"

	"github.com/netstats-history/netdelta/internal/models"
)

// MemoryStore keeps samples in a slice. It grows with the input, which is fine
// for a batch run over a single file.
type MemoryStore struct {
	samples []models.Sample
	frozen  bool
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{samples: make([]models.Sample, 0, 1024)}
}

func (s *MemoryStore) Append(sample models.Sample) error {
	if s.frozen {
		return ErrFrozen
	}
	s.samples = append(s.samples, sample)
	return nil
}

func (s *MemoryStore) Freeze() error {
	s.frozen = true
	return nil
}

// Samples returns the stored samples. The slice is capped so an append by the
// caller cannot write into the store's backing array.
func (s *MemoryStore) Samples(ctx context.Context) ([]models.Sample, error) {
	if !s.frozen {
		return nil, ErrNotFrozen
	}
	return s.samples[:len(s.samples):len(s.samples)], nil
}

func (s *MemoryStore) Len() int {
	return len(s.samples)
}

func (s *MemoryStore) Close() error {
	s.samples = nil
	return nil
}
