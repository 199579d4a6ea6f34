// Package memory provides in-memory store implementations used by unit
// tests and ephemeral runs.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/meridian-labs/docket-cli/internal/core/domain"
	"github.com/meridian-labs/docket-cli/internal/core/ports/driven"
)

// Ensure RelationshipStore implements the interface.
var _ driven.RelationshipStore = (*RelationshipStore)(nil)

// RelationshipStore is an in-memory implementation of driven.RelationshipStore.
type RelationshipStore struct {
	mu       sync.RWMutex
	rels     map[string]domain.Relationship
	history  map[string][]domain.ChangeEntry
	archives []domain.ArchiveEntry
}

// NewRelationshipStore creates a new in-memory relationship store.
func NewRelationshipStore() *RelationshipStore {
	return &RelationshipStore{
		rels:    make(map[string]domain.Relationship),
		history: make(map[string][]domain.ChangeEntry),
	}
}

// Create stores a new relationship.
func (s *RelationshipStore) Create(_ context.Context, rel *domain.Relationship) error {
	if rel.ID == "" || rel.OrderNumber == "" {
		return domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.rels {
		if existing.IsActive && existing.OrderNumber == rel.OrderNumber {
			return domain.ErrAlreadyExists
		}
	}

	now := time.Now().UTC()
	if rel.CreatedAt.IsZero() {
		rel.CreatedAt = now
	}
	rel.UpdatedAt = now

	stored := *rel
	stored.RowData = rel.RowData.Clone()
	s.rels[rel.ID] = stored
	return nil
}

// GetByID retrieves a relationship by ID.
func (s *RelationshipStore) GetByID(_ context.Context, id string) (*domain.Relationship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rel, ok := s.rels[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &rel, nil
}

// GetByOrderNumber retrieves the active relationship for an order number.
func (s *RelationshipStore) GetByOrderNumber(_ context.Context, orderNumber string) (*domain.Relationship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rel := range s.rels {
		if rel.IsActive && rel.OrderNumber == orderNumber {
			return &rel, nil
		}
	}
	return nil, domain.ErrNotFound
}

// UpdateRowData overwrites the row snapshot only.
func (s *RelationshipStore) UpdateRowData(_ context.Context, id string, rowData domain.RowData) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rel, ok := s.rels[id]
	if !ok {
		return domain.ErrNotFound
	}
	rel.RowData = rowData.Clone()
	rel.UpdatedAt = time.Now().UTC()
	s.rels[id] = rel
	return nil
}

// SetDocument attaches or replaces the document path with a history entry.
func (s *RelationshipStore) SetDocument(
	_ context.Context, id, path string, action domain.ChangeAction, reason string,
) error {
	if path == "" {
		return domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rel, ok := s.rels[id]
	if !ok {
		return domain.ErrNotFound
	}

	for otherID, other := range s.rels {
		if otherID != id && other.IsActive && other.DocumentPath != nil && *other.DocumentPath == path {
			return domain.ErrDocumentConflict
		}
	}

	now := time.Now().UTC()
	oldPath := ""
	if rel.DocumentPath != nil {
		oldPath = *rel.DocumentPath
	}

	rel.DocumentPath = &path
	rel.UpdatedAt = now
	s.rels[id] = rel

	s.history[id] = append(s.history[id], domain.ChangeEntry{
		RelationshipID: id,
		Action:         action,
		OldPath:        oldPath,
		NewPath:        path,
		Reason:         reason,
		CreatedAt:      now,
	})
	return nil
}

// ClearDocument removes the document path with a remove entry.
func (s *RelationshipStore) ClearDocument(_ context.Context, id, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rel, ok := s.rels[id]
	if !ok {
		return domain.ErrNotFound
	}

	now := time.Now().UTC()
	oldPath := ""
	if rel.DocumentPath != nil {
		oldPath = *rel.DocumentPath
	}

	rel.DocumentPath = nil
	rel.UpdatedAt = now
	s.rels[id] = rel

	s.history[id] = append(s.history[id], domain.ChangeEntry{
		RelationshipID: id,
		Action:         domain.ChangeRemove,
		OldPath:        oldPath,
		Reason:         reason,
		CreatedAt:      now,
	})
	return nil
}

// MarkArchived finalises an archival.
func (s *RelationshipStore) MarkArchived(_ context.Context, id string, entry domain.ArchiveEntry) error {
	if entry.ID == "" || entry.ArchivePath == "" {
		return domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rel, ok := s.rels[id]
	if !ok {
		return domain.ErrNotFound
	}

	now := entry.ArchivedAt
	if now.IsZero() {
		now = time.Now().UTC()
	}

	archivePath := entry.ArchivePath
	rel.Processed = true
	rel.ProcessedDate = &now
	rel.DocumentPath = &archivePath
	rel.UpdatedAt = now
	s.rels[id] = rel

	s.history[id] = append(s.history[id], domain.ChangeEntry{
		RelationshipID: id,
		Action:         domain.ChangeArchive,
		OldPath:        entry.OriginalPath,
		NewPath:        entry.ArchivePath,
		Reason:         domain.ReasonArchived,
		CreatedAt:      now,
	})

	entry.RelationshipID = id
	entry.ArchivedAt = now
	s.archives = append(s.archives, entry)
	return nil
}

// Deactivate retires a relationship.
func (s *RelationshipStore) Deactivate(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rel, ok := s.rels[id]
	if !ok {
		return domain.ErrNotFound
	}
	rel.IsActive = false
	rel.UpdatedAt = time.Now().UTC()
	s.rels[id] = rel
	return nil
}

// ListActive returns all active relationships.
func (s *RelationshipStore) ListActive(_ context.Context) ([]domain.Relationship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rels []domain.Relationship
	for _, rel := range s.rels {
		if rel.IsActive {
			rels = append(rels, rel)
		}
	}
	sortByOrderNumber(rels)
	return rels, nil
}

// ListActiveWithDocuments returns active relationships holding a document.
func (s *RelationshipStore) ListActiveWithDocuments(_ context.Context) ([]domain.Relationship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rels []domain.Relationship
	for _, rel := range s.rels {
		if rel.IsActive && rel.DocumentPath != nil {
			rels = append(rels, rel)
		}
	}
	sortByOrderNumber(rels)
	return rels, nil
}

// Search returns active relationships matching the term.
func (s *RelationshipStore) Search(
	_ context.Context, term string, scope domain.SearchScope,
) ([]domain.Relationship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(term)
	var rels []domain.Relationship
	for _, rel := range s.rels {
		if !rel.IsActive {
			continue
		}
		if strings.Contains(strings.ToLower(rel.OrderNumber), needle) {
			rels = append(rels, rel)
			continue
		}
		if scope == domain.ScopeGeneral && rowDataContains(rel.RowData, needle) {
			rels = append(rels, rel)
		}
	}
	sortByOrderNumber(rels)
	return rels, nil
}

// History returns the change history, oldest entry first.
func (s *RelationshipStore) History(_ context.Context, id string) ([]domain.ChangeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.history[id]
	out := make([]domain.ChangeEntry, len(entries))
	copy(out, entries)
	return out, nil
}

// ListArchiveEntries returns all archive entries, newest first.
func (s *RelationshipStore) ListArchiveEntries(_ context.Context) ([]domain.ArchiveEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.ArchiveEntry, len(s.archives))
	for i, e := range s.archives {
		out[len(s.archives)-1-i] = e
	}
	return out, nil
}

func rowDataContains(row domain.RowData, needle string) bool {
	for _, f := range row {
		if strings.Contains(strings.ToLower(f.Value), needle) {
			return true
		}
	}
	return false
}

func sortByOrderNumber(rels []domain.Relationship) {
	sort.Slice(rels, func(i, j int) bool {
		return rels[i].OrderNumber < rels[j].OrderNumber
	})
}
