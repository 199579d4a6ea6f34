package driving

import (
	"context"

	"github.com/meridian-labs/docket-cli/internal/core/domain"
)

// SyncReport summarises one import synchronisation pass.
type SyncReport struct {
	// New counts relationships created for first-seen order numbers.
	New int

	// Updated counts relationships whose row data changed.
	Updated int

	// Unchanged counts rows structurally equal to the stored snapshot.
	Unchanged int

	// Skipped counts rows with no usable identifier.
	Skipped int
}

// Synchroniser merges imported order rows into the relationship store.
// Re-running on identical input yields zero new and zero updated.
type Synchroniser interface {
	// Sync classifies each row as new, updated, unchanged or skipped.
	// Each row is committed independently; an aborted pass leaves a
	// valid, partially synchronised store.
	Sync(ctx context.Context, rows []domain.RowData) (SyncReport, error)
}
