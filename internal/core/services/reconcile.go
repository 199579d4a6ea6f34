package services

import (
	"context"
	"fmt"
	"os"

	"github.com/meridian-labs/docket-cli/internal/core/domain"
	"github.com/meridian-labs/docket-cli/internal/core/ports/driven"
	"github.com/meridian-labs/docket-cli/internal/core/ports/driving"
	"github.com/meridian-labs/docket-cli/internal/logger"
)

// Ensure ReconcileService implements the interface.
var _ driving.Reconciler = (*ReconcileService)(nil)

// ReconcileService clears document pointers whose backing files are gone.
// Run before each matching pass so externally deleted files don't block a
// relationship from being rematched to a replacement.
type ReconcileService struct {
	store driven.RelationshipStore
}

// NewReconcileService creates a new reconcile service.
func NewReconcileService(store driven.RelationshipStore) *ReconcileService {
	return &ReconcileService{store: store}
}

// Reconcile checks every attached document. A missing file is the
// expected trigger for cleanup, not an error; each cleanup is its own
// commit.
func (s *ReconcileService) Reconcile(ctx context.Context) (int, error) {
	logger.Section("Orphan Reconciliation")

	rels, err := s.store.ListActiveWithDocuments(ctx)
	if err != nil {
		return 0, fmt.Errorf("list relationships: %w", err)
	}
	logger.Debug("Checking %d attached documents", len(rels))

	cleaned := 0
	for i := range rels {
		if err := ctx.Err(); err != nil {
			return cleaned, err
		}

		path := *rels[i].DocumentPath
		if _, err := os.Stat(path); err == nil {
			continue
		} else if !os.IsNotExist(err) {
			logger.Warn("Cannot stat %s: %v", path, err)
			continue
		}

		if err := s.store.ClearDocument(ctx, rels[i].ID, domain.ReasonFileDeleted); err != nil {
			return cleaned, fmt.Errorf("clear document for %s: %w", rels[i].OrderNumber, err)
		}
		cleaned++
		logger.Debug("Cleared missing document %s from %s", path, rels[i].OrderNumber)
	}

	logger.Info("Reconcile complete: %d cleaned", cleaned)
	return cleaned, nil
}
