package memory

import (
	"context"
	"sync"
	"time"

	"github.com/meridian-labs/docket-cli/internal/core/domain"
	"github.com/meridian-labs/docket-cli/internal/core/ports/driven"
)

// Ensure SearchLogStore implements the interface.
var _ driven.SearchLogStore = (*SearchLogStore)(nil)

// SearchLogStore is an in-memory implementation of driven.SearchLogStore.
type SearchLogStore struct {
	mu      sync.RWMutex
	entries []domain.SearchLogEntry
}

// NewSearchLogStore creates a new in-memory search log store.
func NewSearchLogStore() *SearchLogStore {
	return &SearchLogStore{}
}

// Append records one search.
func (s *SearchLogStore) Append(_ context.Context, entry domain.SearchLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	s.entries = append(s.entries, entry)
	return nil
}

// List returns logged searches, newest first.
func (s *SearchLogStore) List(_ context.Context) ([]domain.SearchLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.SearchLogEntry, len(s.entries))
	for i, e := range s.entries {
		out[len(s.entries)-1-i] = e
	}
	return out, nil
}
