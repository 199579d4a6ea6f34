package driving

import (
	"context"

	"github.com/meridian-labs/docket-cli/internal/core/domain"
)

// Query is the lookup and substring-search facade over active
// relationships. Every search is recorded in the audit log.
type Query interface {
	// FindByIdentifier returns the active relationship for an order number.
	FindByIdentifier(ctx context.Context, orderNumber string) (*domain.Relationship, error)

	// FindByRelationshipID returns a relationship by its opaque key.
	FindByRelationshipID(ctx context.Context, id string) (*domain.Relationship, error)

	// Search performs a substring match over active relationships.
	Search(ctx context.Context, term string, scope domain.SearchScope) ([]domain.Relationship, error)
}
