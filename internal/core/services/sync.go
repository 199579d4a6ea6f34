package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/meridian-labs/docket-cli/internal/core/domain"
	"github.com/meridian-labs/docket-cli/internal/core/ports/driven"
	"github.com/meridian-labs/docket-cli/internal/core/ports/driving"
	"github.com/meridian-labs/docket-cli/internal/identifier"
	"github.com/meridian-labs/docket-cli/internal/logger"
)

// DefaultIdentityColumn is used when no identity column is configured.
const DefaultIdentityColumn = "OrderNumber"

// Ensure SyncService implements the interface.
var _ driving.Synchroniser = (*SyncService)(nil)

// SyncService merges imported order rows into the relationship store.
type SyncService struct {
	store          driven.RelationshipStore
	identityColumn string
}

// NewSyncService creates a new sync service. identityColumn names the
// import column holding the order number; empty falls back to
// DefaultIdentityColumn.
func NewSyncService(store driven.RelationshipStore, identityColumn string) *SyncService {
	if identityColumn == "" {
		identityColumn = DefaultIdentityColumn
	}
	return &SyncService{
		store:          store,
		identityColumn: identityColumn,
	}
}

// Sync classifies each row as new, updated, unchanged or skipped.
// Safe to re-run on the same input: a second pass over unchanged rows
// yields zero new and zero updated. Each row is its own commit; a store
// failure aborts the pass with prior rows intact.
func (s *SyncService) Sync(ctx context.Context, rows []domain.RowData) (driving.SyncReport, error) {
	logger.Section("Import Synchronisation")
	logger.Debug("Identity column: %s, rows: %d", s.identityColumn, len(rows))

	var report driving.SyncReport

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		orderNumber, ok := s.rowIdentifier(row)
		if !ok {
			report.Skipped++
			logger.Warn("Row without usable identifier skipped")
			continue
		}

		rel, err := s.store.GetByOrderNumber(ctx, orderNumber)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			created := &domain.Relationship{
				ID:          uuid.NewString(),
				OrderNumber: orderNumber,
				RowData:     row.Clone(),
				IsActive:    true,
				CreatedAt:   time.Now().UTC(),
			}
			if err := s.store.Create(ctx, created); err != nil {
				return report, fmt.Errorf("create relationship %s: %w", orderNumber, err)
			}
			report.New++
			logger.Debug("Created %s", orderNumber)

		case err != nil:
			return report, fmt.Errorf("lookup %s: %w", orderNumber, err)

		case rel.RowData.Equal(row):
			report.Unchanged++

		default:
			// Row data only; document, processed flag and history are
			// preserved untouched.
			if err := s.store.UpdateRowData(ctx, rel.ID, row.Clone()); err != nil {
				return report, fmt.Errorf("update relationship %s: %w", orderNumber, err)
			}
			report.Updated++
			logger.Debug("Updated %s", orderNumber)
		}
	}

	logger.Info("Sync complete: %d new, %d updated, %d unchanged, %d skipped",
		report.New, report.Updated, report.Unchanged, report.Skipped)
	return report, nil
}

// rowIdentifier derives the validated order number from the identity
// column, falling back to extraction for decorated values.
func (s *SyncService) rowIdentifier(row domain.RowData) (string, bool) {
	raw, ok := row.Get(s.identityColumn)
	if !ok {
		return "", false
	}

	token := strings.TrimSpace(raw)
	if identifier.Validate(token) {
		return token, true
	}
	return identifier.FromText(token)
}
