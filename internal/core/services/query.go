package services

import (
	"context"
	"fmt"
	"time"

	"github.com/meridian-labs/docket-cli/internal/core/domain"
	"github.com/meridian-labs/docket-cli/internal/core/ports/driven"
	"github.com/meridian-labs/docket-cli/internal/core/ports/driving"
	"github.com/meridian-labs/docket-cli/internal/logger"
)

// Ensure QueryService implements the interface.
var _ driving.Query = (*QueryService)(nil)

// QueryService is the lookup facade over the relationship store. Searches
// are appended to the audit log; a failed log write never fails the search.
type QueryService struct {
	store     driven.RelationshipStore
	searchLog driven.SearchLogStore
	now       func() time.Time
}

// NewQueryService creates a new query service. searchLog may be nil to
// disable search auditing.
func NewQueryService(store driven.RelationshipStore, searchLog driven.SearchLogStore) *QueryService {
	return &QueryService{
		store:     store,
		searchLog: searchLog,
		now:       time.Now,
	}
}

// FindByIdentifier returns the active relationship for an order number.
func (s *QueryService) FindByIdentifier(ctx context.Context, orderNumber string) (*domain.Relationship, error) {
	rel, err := s.store.GetByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, fmt.Errorf("find by identifier %q: %w", orderNumber, err)
	}
	return rel, nil
}

// FindByRelationshipID returns a relationship by its opaque key.
func (s *QueryService) FindByRelationshipID(ctx context.Context, id string) (*domain.Relationship, error) {
	rel, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find by id %q: %w", id, err)
	}
	return rel, nil
}

// Search performs a substring match over active relationships and records
// the term and result count in the search log.
func (s *QueryService) Search(ctx context.Context, term string, scope domain.SearchScope) ([]domain.Relationship, error) {
	if term == "" {
		return nil, fmt.Errorf("%w: empty search term", domain.ErrInvalidInput)
	}

	results, err := s.store.Search(ctx, term, scope)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", term, err)
	}

	if s.searchLog != nil {
		entry := domain.SearchLogEntry{
			Term:        term,
			Scope:       scope,
			ResultCount: len(results),
			CreatedAt:   s.now(),
		}
		if err := s.searchLog.Append(ctx, entry); err != nil {
			logger.Warn("Could not record search %q: %v", term, err)
		}
	}

	return results, nil
}
