package driven

import (
	"context"

	"github.com/meridian-labs/docket-cli/internal/core/domain"
)

// RowSource yields order row snapshots from an import file.
// The whole file is ingested per call; there is no delta format.
type RowSource interface {
	// Rows reads all rows, one ordered snapshot per order.
	Rows(ctx context.Context) ([]domain.RowData, error)
}

// FolderLister enumerates candidate document paths under a root folder.
type FolderLister interface {
	// List returns candidate file paths, sorted for deterministic passes.
	List(ctx context.Context, root string) ([]string, error)
}

// TextExtractor pulls plain text out of a candidate document file.
type TextExtractor interface {
	// ExtractText returns the document's text content. Empty text with a
	// nil error means the file carries no extractable text.
	ExtractText(ctx context.Context, path string) (string, error)
}
