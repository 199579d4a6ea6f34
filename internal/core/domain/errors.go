package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoDocument indicates the relationship has no attached document.
	// Archival and processing require one.
	ErrNoDocument = errors.New("no document attached")

	// ErrDocumentConflict indicates the document path is already claimed
	// by another active relationship.
	ErrDocumentConflict = errors.New("document already attached to another relationship")

	// ErrAlreadyProcessed indicates the relationship was archived before.
	ErrAlreadyProcessed = errors.New("relationship already processed")

	// ErrArchiveFailed indicates the archive copy or sidecar write failed.
	// The source file is untouched and the whole operation is retryable.
	ErrArchiveFailed = errors.New("archive failed")
)
