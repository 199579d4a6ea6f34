package domain

import "time"

// SearchScope selects what a relationship search matches against.
type SearchScope string

// Search scopes.
const (
	// ScopeGeneral matches order numbers and row data values.
	ScopeGeneral SearchScope = "general"

	// ScopeIdentifierOnly matches order numbers only.
	ScopeIdentifierOnly SearchScope = "identifier_only"
)

// SearchLogEntry is one record in the append-only search audit log.
// Separate from change history; used for usage analytics.
type SearchLogEntry struct {
	// Term is the search term as entered.
	Term string

	// Scope is the search scope used.
	Scope SearchScope

	// ResultCount is how many relationships matched.
	ResultCount int

	// CreatedAt is when the search ran.
	CreatedAt time.Time
}
