package driven

import (
	"context"

	"github.com/meridian-labs/docket-cli/internal/core/domain"
)

// RelationshipStore persists relationships, their change history and the
// archive index. Backed by SQLite.
//
// Every mutating method is one commit boundary: a document mutation and its
// history entry land in the same transaction, so a crash mid-operation never
// leaves the store violating its invariants.
type RelationshipStore interface {
	// Create stores a new relationship. Fails with domain.ErrAlreadyExists
	// if an active relationship already claims the order number.
	Create(ctx context.Context, rel *domain.Relationship) error

	// GetByID retrieves a relationship by its opaque key.
	GetByID(ctx context.Context, id string) (*domain.Relationship, error)

	// GetByOrderNumber retrieves the active relationship for an order number.
	GetByOrderNumber(ctx context.Context, orderNumber string) (*domain.Relationship, error)

	// UpdateRowData overwrites the row snapshot, leaving all other fields
	// untouched.
	UpdateRowData(ctx context.Context, id string, row domain.RowData) error

	// SetDocument attaches or replaces the document path and appends the
	// matching history entry. Fails with domain.ErrDocumentConflict if the
	// path is claimed by another active relationship.
	SetDocument(ctx context.Context, id, path string, action domain.ChangeAction, reason string) error

	// ClearDocument removes the document path and appends a remove entry.
	ClearDocument(ctx context.Context, id, reason string) error

	// MarkArchived finalises an archival: sets processed and the processed
	// date, points the document path at the archive location, appends an
	// archive history entry and records the archive entry.
	MarkArchived(ctx context.Context, id string, entry domain.ArchiveEntry) error

	// Deactivate retires a relationship from normal queries.
	Deactivate(ctx context.Context, id string) error

	// ListActive returns all active relationships.
	ListActive(ctx context.Context) ([]domain.Relationship, error)

	// ListActiveWithDocuments returns active relationships with a
	// non-null document path.
	ListActiveWithDocuments(ctx context.Context) ([]domain.Relationship, error)

	// Search returns active relationships whose order number (or row data,
	// for the general scope) contains the term, case-insensitive.
	Search(ctx context.Context, term string, scope domain.SearchScope) ([]domain.Relationship, error)

	// History returns the change history, oldest entry first.
	History(ctx context.Context, id string) ([]domain.ChangeEntry, error)

	// ListArchiveEntries returns all archive entries, newest first.
	ListArchiveEntries(ctx context.Context) ([]domain.ArchiveEntry, error)
}

// SearchLogStore persists the append-only search audit log.
type SearchLogStore interface {
	// Append records one search.
	Append(ctx context.Context, entry domain.SearchLogEntry) error

	// List returns logged searches, newest first.
	List(ctx context.Context) ([]domain.SearchLogEntry, error)
}
