package domain

import "time"

// ChangeAction enumerates the mutations recorded in a relationship's
// change history.
type ChangeAction string

// Change actions.
const (
	ChangeAttach  ChangeAction = "attach"
	ChangeReplace ChangeAction = "replace"
	ChangeRemove  ChangeAction = "remove"
	ChangeArchive ChangeAction = "archive"
)

// Change reasons written by the engine. Manual attachments carry
// caller-supplied reasons instead.
const (
	ReasonAutomaticMatching = "automatic_matching"
	ReasonFileDeleted       = "file_deleted"
	ReasonArchived          = "archived_after_processing"
)

// Relationship links one imported business order to at most one document
// on disk. Relationships are never hard-deleted; they are deactivated and
// kept for history.
type Relationship struct {
	// ID is the opaque unique key, assigned at creation and never reused.
	ID string

	// OrderNumber is the business identifier. Unique among active
	// relationships.
	OrderNumber string

	// RowData is the ordered column snapshot of the imported row.
	// Overwritten wholesale when a sync detects a change.
	RowData RowData

	// DocumentPath points at the currently attached file, if any.
	// At most one active relationship may claim a given path.
	DocumentPath *string

	// Processed is set once the document has been archived after a
	// successful workflow run. ProcessedDate is set iff Processed.
	Processed     bool
	ProcessedDate *time.Time

	// IsActive is false for relationships retained for history only.
	IsActive bool

	// CreatedAt is when the relationship was first created.
	CreatedAt time.Time

	// UpdatedAt advances on any mutation.
	UpdatedAt time.Time
}

// HasDocument reports whether a document is currently attached.
func (r *Relationship) HasDocument() bool {
	return r.DocumentPath != nil && *r.DocumentPath != ""
}

// ChangeEntry is one record in a relationship's append-only change history.
// Entries are only ever appended, never rewritten.
type ChangeEntry struct {
	// RelationshipID links back to the relationship.
	RelationshipID string

	// Action is what happened to the document pointer.
	Action ChangeAction

	// OldPath and NewPath capture the document pointer before and after.
	OldPath string
	NewPath string

	// Reason states why, e.g. "automatic_matching" or "file_deleted".
	Reason string

	// CreatedAt is when the entry was appended.
	CreatedAt time.Time
}

// AttachmentMethod describes how the current document ended up attached,
// derived from the most recent attach/replace history entry.
type AttachmentMethod string

// Attachment methods.
const (
	AttachmentNone      AttachmentMethod = ""
	AttachmentAutomatic AttachmentMethod = "automatic"
	AttachmentManual    AttachmentMethod = "manual"
)

// MethodFromHistory derives the attachment method from a change history,
// oldest entry first. Only attach and replace entries count; a later
// remove or archive does not erase how the document was linked.
func MethodFromHistory(history []ChangeEntry) AttachmentMethod {
	method := AttachmentNone
	for _, e := range history {
		switch e.Action {
		case ChangeAttach, ChangeReplace:
			if e.Reason == ReasonAutomaticMatching {
				method = AttachmentAutomatic
			} else {
				method = AttachmentManual
			}
		case ChangeRemove:
			method = AttachmentNone
		case ChangeArchive:
			// Archival moves the document; the link method stands.
		}
	}
	return method
}

// RelationshipSummary is the read model handed to the presentation and
// workflow layers.
type RelationshipSummary struct {
	ID               string
	OrderNumber      string
	RowData          RowData
	HasDocument      bool
	DocumentPath     string
	Processed        bool
	AttachmentMethod AttachmentMethod
}
