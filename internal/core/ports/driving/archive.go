package driving

import (
	"context"

	"github.com/meridian-labs/docket-cli/internal/core/domain"
)

// Archiver moves processed documents into the dated archive tree and
// exposes search, statistics and export over it.
type Archiver interface {
	// Archive copies the relationship's document into its year bucket,
	// writes the metadata sidecar, deletes the original and marks the
	// relationship processed. Returns the archive path. Nothing is
	// mutated on failure; the whole call is safe to retry.
	Archive(ctx context.Context, relationshipID string) (string, error)

	// Search scans archive filenames and sidecar content for a term,
	// case-insensitive.
	Search(ctx context.Context, term string) ([]domain.ArchiveMatch, error)

	// Statistics summarises the archive tree.
	Statistics(ctx context.Context) (*domain.ArchiveStats, error)

	// ExportIndex writes a tabular index of the archive for backup/audit.
	ExportIndex(ctx context.Context, path string) error

	// CleanupEmptyBuckets removes year directories left empty.
	// Returns how many were removed.
	CleanupEmptyBuckets(ctx context.Context) (int, error)
}
