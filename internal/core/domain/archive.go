package domain

import "time"

// ArchiveEntry records one archived document. The entry back-references
// its relationship but does not own it.
type ArchiveEntry struct {
	// ID is the unique identifier for the entry.
	ID string

	// RelationshipID links back to the archived relationship.
	RelationshipID string

	// OriginalPath is where the document lived before archival.
	OriginalPath string

	// ArchivePath is the document's location inside a year bucket.
	ArchivePath string

	// SidecarPath is the plain-text metadata file written alongside.
	SidecarPath string

	// ArchivedAt is when the document was archived.
	ArchivedAt time.Time
}

// ArchiveMatch is a single hit from an archive search.
type ArchiveMatch struct {
	// ArchivePath is the matched archive file.
	ArchivePath string

	// MatchedIn says where the term matched: "filename" or "sidecar".
	MatchedIn string

	// Snippet is the sidecar line containing the term, if any.
	Snippet string
}

// ArchiveStats summarises the archive folder tree.
type ArchiveStats struct {
	// TotalFiles counts archived documents (sidecars excluded).
	TotalFiles int

	// FilesByYear maps year bucket name to document count.
	FilesByYear map[string]int

	// TotalSize is the combined size of archived documents in bytes.
	TotalSize int64
}
