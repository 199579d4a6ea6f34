package driving

import (
	"context"

	"github.com/meridian-labs/docket-cli/internal/core/domain"
)

// ProcessReport summarises one mark-processed pass.
type ProcessReport struct {
	// Archived counts relationships whose documents were archived.
	Archived int

	// NoDocument counts relationships skipped for lack of a document.
	NoDocument int

	// Failed counts relationships whose archival failed.
	Failed int
}

// Listener receives change notifications from the workflow surface.
// Replaces the original UI refresh callbacks with an explicit interface.
type Listener interface {
	// RefreshNeeded signals that relationship state changed.
	RefreshNeeded()

	// DocumentAttached signals a document was linked to a relationship.
	DocumentAttached(relationshipID, path string)
}

// Workflow is the mutation surface the external print/output workflow and
// the presentation layer drive.
type Workflow interface {
	// Overview returns the read model for all active relationships.
	Overview(ctx context.Context) ([]domain.RelationshipSummary, error)

	// MarkProcessed archives the documents of the given relationships
	// after the workflow confirmed success. Per-relationship failures are
	// counted, not fatal.
	MarkProcessed(ctx context.Context, relationshipIDs []string) (ProcessReport, error)

	// AttachDocument manually links a file to a relationship. An existing
	// attachment is replaced, with history recording the reason.
	AttachDocument(ctx context.Context, relationshipID, path, reason string) error

	// History exposes the raw change history for audit reporting.
	History(ctx context.Context, relationshipID string) ([]domain.ChangeEntry, error)

	// Subscribe registers a listener for change notifications.
	Subscribe(l Listener)
}
