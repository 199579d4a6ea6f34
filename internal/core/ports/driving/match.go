package driving

import "context"

// MatchReport summarises one document matching pass.
type MatchReport struct {
	// Matched counts documents attached to a relationship.
	Matched int

	// Unmatched counts documents with no identifier or no relationship.
	Unmatched int

	// AlreadyAttached counts relationships that already had a document.
	AlreadyAttached int

	// Skipped counts attaches short-circuited by the past-due policy.
	Skipped int
}

// Matcher scans candidate files and attaches them to relationships by
// extracted identifier. First match wins; an existing attachment is never
// overwritten automatically.
type Matcher interface {
	// Match processes the candidate paths. Each attach is committed
	// independently.
	Match(ctx context.Context, paths []string) (MatchReport, error)
}

// Reconciler clears document pointers whose backing files are gone.
type Reconciler interface {
	// Reconcile checks every attached document and clears missing ones.
	// Returns how many relationships were cleaned.
	Reconcile(ctx context.Context) (int, error)
}
