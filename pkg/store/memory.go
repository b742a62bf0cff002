// Package store implements durable, ordered, append-only persistence for
// ledger entries. Stores hold no hashing logic; they persist what the service
// hands them and guard the physical sequence.
package store

import (
	"context"
	"sync"

	"github.com/hydrohub/ledger/pkg/ledger"
)

// MemoryStore keeps the chain in process memory. It honors the same append
// and range contracts as the durable stores, which makes it the store of
// choice for tests and throwaway demo data. It is not durable.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []ledger.Entry
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make([]ledger.Entry, 0)}
}

func (s *MemoryStore) Append(ctx context.Context, entry ledger.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.Sequence != uint64(len(s.entries)) {
		return ledger.ErrSequenceConflict
	}
	s.entries = append(s.entries, entry)
	return nil
}

func (s *MemoryStore) Tail(ctx context.Context) (*ledger.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.entries) == 0 {
		return nil, nil
	}
	tail := s.entries[len(s.entries)-1]
	return &tail, nil
}

func (s *MemoryStore) ReadRange(ctx context.Context, from, to uint64) ([]ledger.Entry, error) {
	if from > to {
		return nil, &ledger.RangeError{From: from, To: to, Reason: "inverted bounds"}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if to >= uint64(len(s.entries)) {
		missing := uint64(len(s.entries))
		if from > missing {
			missing = from
		}
		return nil, &ledger.RangeError{From: from, To: to, Missing: &missing}
	}

	out := make([]ledger.Entry, to-from+1)
	copy(out, s.entries[from:to+1])
	return out, nil
}

func (s *MemoryStore) Count(ctx context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(len(s.entries)), nil
}

func (s *MemoryStore) Close() error { return nil }
