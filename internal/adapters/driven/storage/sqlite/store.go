package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/meridian-labs/docket-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/meridian-labs/docket-cli/internal/core/domain"
	"github.com/meridian-labs/docket-cli/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to the
// relationship and search-log store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.docket/data/docket.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".docket", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "docket.db")

	// Open database with WAL mode for multi-instance access
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// RelationshipStore returns a RelationshipStore interface backed by this store.
func (s *Store) RelationshipStore() driven.RelationshipStore {
	return &relationshipStore{store: s}
}

// SearchLogStore returns a SearchLogStore interface backed by this store.
func (s *Store) SearchLogStore() driven.SearchLogStore {
	return &searchLogStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(
			"INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Relationship Store ====================

// relationshipStore implements driven.RelationshipStore.
type relationshipStore struct {
	store *Store
}

var _ driven.RelationshipStore = (*relationshipStore)(nil)

const relationshipColumns = `id, order_number, row_data, document_path,
	processed, processed_date, is_active, created_at, updated_at`

// Create stores a new relationship.
func (s *relationshipStore) Create(ctx context.Context, rel *domain.Relationship) error {
	if rel.ID == "" || rel.OrderNumber == "" {
		return domain.ErrInvalidInput
	}

	rowJSON, err := json.Marshal(rel.RowData)
	if err != nil {
		return fmt.Errorf("marshalling row data: %w", err)
	}

	now := time.Now().UTC()
	if rel.CreatedAt.IsZero() {
		rel.CreatedAt = now
	}
	rel.UpdatedAt = now

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var count int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM relationships WHERE order_number = ? AND is_active = 1
	`, rel.OrderNumber).Scan(&count)
	if err != nil {
		return fmt.Errorf("checking order number: %w", err)
	}
	if count > 0 {
		return domain.ErrAlreadyExists
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO relationships
			(id, order_number, row_data, document_path, processed, processed_date, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rel.ID, rel.OrderNumber, string(rowJSON), nullString(stringValue(rel.DocumentPath)),
		rel.Processed, nullTime(rel.ProcessedDate), rel.IsActive, rel.CreatedAt, rel.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating relationship: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetByID retrieves a relationship by ID.
func (s *relationshipStore) GetByID(ctx context.Context, id string) (*domain.Relationship, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT `+relationshipColumns+`
		FROM relationships WHERE id = ?
	`, id)

	return scanRelationship(row)
}

// GetByOrderNumber retrieves the active relationship for an order number.
func (s *relationshipStore) GetByOrderNumber(ctx context.Context, orderNumber string) (*domain.Relationship, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT `+relationshipColumns+`
		FROM relationships WHERE order_number = ? AND is_active = 1
	`, orderNumber)

	return scanRelationship(row)
}

// UpdateRowData overwrites the row snapshot only.
func (s *relationshipStore) UpdateRowData(ctx context.Context, id string, rowData domain.RowData) error {
	rowJSON, err := json.Marshal(rowData)
	if err != nil {
		return fmt.Errorf("marshalling row data: %w", err)
	}

	res, err := s.store.db.ExecContext(ctx, `
		UPDATE relationships SET row_data = ?, updated_at = ? WHERE id = ?
	`, string(rowJSON), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("updating row data: %w", err)
	}
	return requireRow(res)
}

// SetDocument attaches or replaces the document path and appends the
// matching history entry, in one transaction.
func (s *relationshipStore) SetDocument(
	ctx context.Context, id, path string, action domain.ChangeAction, reason string,
) error {
	if path == "" {
		return domain.ErrInvalidInput
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	// The path must not be claimed by another active relationship.
	var claims int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM relationships
		WHERE document_path = ? AND is_active = 1 AND id != ?
	`, path, id).Scan(&claims)
	if err != nil {
		return fmt.Errorf("checking document claim: %w", err)
	}
	if claims > 0 {
		return domain.ErrDocumentConflict
	}

	oldPath, err := currentDocumentPath(ctx, tx, id)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx, `
		UPDATE relationships SET document_path = ?, updated_at = ? WHERE id = ?
	`, path, now, id); err != nil {
		return fmt.Errorf("setting document path: %w", err)
	}

	if err := appendHistory(ctx, tx, domain.ChangeEntry{
		RelationshipID: id,
		Action:         action,
		OldPath:        oldPath,
		NewPath:        path,
		Reason:         reason,
		CreatedAt:      now,
	}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// ClearDocument removes the document path and appends a remove entry,
// in one transaction.
func (s *relationshipStore) ClearDocument(ctx context.Context, id, reason string) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	oldPath, err := currentDocumentPath(ctx, tx, id)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx, `
		UPDATE relationships SET document_path = NULL, updated_at = ? WHERE id = ?
	`, now, id); err != nil {
		return fmt.Errorf("clearing document path: %w", err)
	}

	if err := appendHistory(ctx, tx, domain.ChangeEntry{
		RelationshipID: id,
		Action:         domain.ChangeRemove,
		OldPath:        oldPath,
		Reason:         reason,
		CreatedAt:      now,
	}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// MarkArchived finalises an archival in one transaction: processed flag,
// processed date, document path, history entry and archive entry.
func (s *relationshipStore) MarkArchived(ctx context.Context, id string, entry domain.ArchiveEntry) error {
	if entry.ID == "" || entry.ArchivePath == "" {
		return domain.ErrInvalidInput
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := currentDocumentPath(ctx, tx, id); err != nil {
		return err
	}

	now := entry.ArchivedAt
	if now.IsZero() {
		now = time.Now().UTC()
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE relationships
		SET processed = 1, processed_date = ?, document_path = ?, updated_at = ?
		WHERE id = ?
	`, now, entry.ArchivePath, now, id); err != nil {
		return fmt.Errorf("marking archived: %w", err)
	}

	if err := appendHistory(ctx, tx, domain.ChangeEntry{
		RelationshipID: id,
		Action:         domain.ChangeArchive,
		OldPath:        entry.OriginalPath,
		NewPath:        entry.ArchivePath,
		Reason:         domain.ReasonArchived,
		CreatedAt:      now,
	}); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO archive_entries
			(id, relationship_id, original_path, archive_path, sidecar_path, archived_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, entry.ID, id, entry.OriginalPath, entry.ArchivePath, entry.SidecarPath, now); err != nil {
		return fmt.Errorf("recording archive entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Deactivate retires a relationship from normal queries.
func (s *relationshipStore) Deactivate(ctx context.Context, id string) error {
	res, err := s.store.db.ExecContext(ctx, `
		UPDATE relationships SET is_active = 0, updated_at = ? WHERE id = ?
	`, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("deactivating relationship: %w", err)
	}
	return requireRow(res)
}

// ListActive returns all active relationships.
func (s *relationshipStore) ListActive(ctx context.Context) ([]domain.Relationship, error) {
	return s.list(ctx, `
		SELECT `+relationshipColumns+`
		FROM relationships WHERE is_active = 1
		ORDER BY order_number
	`)
}

// ListActiveWithDocuments returns active relationships holding a document.
func (s *relationshipStore) ListActiveWithDocuments(ctx context.Context) ([]domain.Relationship, error) {
	return s.list(ctx, `
		SELECT `+relationshipColumns+`
		FROM relationships WHERE is_active = 1 AND document_path IS NOT NULL
		ORDER BY order_number
	`)
}

// Search returns active relationships matching the term, case-insensitive.
func (s *relationshipStore) Search(
	ctx context.Context, term string, scope domain.SearchScope,
) ([]domain.Relationship, error) {
	pattern := "%" + strings.ToLower(term) + "%"

	if scope == domain.ScopeIdentifierOnly {
		return s.list(ctx, `
			SELECT `+relationshipColumns+`
			FROM relationships
			WHERE is_active = 1 AND lower(order_number) LIKE ?
			ORDER BY order_number
		`, pattern)
	}

	return s.list(ctx, `
		SELECT `+relationshipColumns+`
		FROM relationships
		WHERE is_active = 1 AND (lower(order_number) LIKE ? OR lower(row_data) LIKE ?)
		ORDER BY order_number
	`, pattern, pattern)
}

// History returns the change history, oldest entry first.
func (s *relationshipStore) History(ctx context.Context, id string) ([]domain.ChangeEntry, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT relationship_id, action, old_path, new_path, reason, created_at
		FROM change_history WHERE relationship_id = ?
		ORDER BY id
	`, id)
	if err != nil {
		return nil, fmt.Errorf("querying change history: %w", err)
	}
	defer rows.Close()

	var entries []domain.ChangeEntry //nolint:prealloc // size unknown from query
	for rows.Next() {
		var e domain.ChangeEntry
		var action string
		var oldPath, newPath sql.NullString
		if err := rows.Scan(&e.RelationshipID, &action, &oldPath, &newPath,
			&e.Reason, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning change entry: %w", err)
		}
		e.Action = domain.ChangeAction(action)
		e.OldPath = oldPath.String
		e.NewPath = newPath.String
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating change history: %w", err)
	}

	return entries, nil
}

// ListArchiveEntries returns all archive entries, newest first.
func (s *relationshipStore) ListArchiveEntries(ctx context.Context) ([]domain.ArchiveEntry, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, relationship_id, original_path, archive_path, sidecar_path, archived_at
		FROM archive_entries
		ORDER BY archived_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying archive entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.ArchiveEntry //nolint:prealloc // size unknown from query
	for rows.Next() {
		var e domain.ArchiveEntry
		if err := rows.Scan(&e.ID, &e.RelationshipID, &e.OriginalPath,
			&e.ArchivePath, &e.SidecarPath, &e.ArchivedAt); err != nil {
			return nil, fmt.Errorf("scanning archive entry: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating archive entries: %w", err)
	}

	return entries, nil
}

// list runs a relationship query and scans all rows.
func (s *relationshipStore) list(ctx context.Context, query string, args ...any) ([]domain.Relationship, error) {
	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying relationships: %w", err)
	}
	defer rows.Close()

	var rels []domain.Relationship //nolint:prealloc // size unknown from query
	for rows.Next() {
		rel, err := scanRelationshipRows(rows)
		if err != nil {
			return nil, err
		}
		rels = append(rels, *rel)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating relationships: %w", err)
	}

	return rels, nil
}

// ==================== Search Log Store ====================

// searchLogStore implements driven.SearchLogStore.
type searchLogStore struct {
	store *Store
}

var _ driven.SearchLogStore = (*searchLogStore)(nil)

// Append records one search.
func (s *searchLogStore) Append(ctx context.Context, entry domain.SearchLogEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO search_log (term, scope, result_count, created_at)
		VALUES (?, ?, ?, ?)
	`, entry.Term, string(entry.Scope), entry.ResultCount, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("appending search log: %w", err)
	}
	return nil
}

// List returns logged searches, newest first.
func (s *searchLogStore) List(ctx context.Context) ([]domain.SearchLogEntry, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT term, scope, result_count, created_at
		FROM search_log
		ORDER BY id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying search log: %w", err)
	}
	defer rows.Close()

	var entries []domain.SearchLogEntry //nolint:prealloc // size unknown from query
	for rows.Next() {
		var e domain.SearchLogEntry
		var scope string
		if err := rows.Scan(&e.Term, &scope, &e.ResultCount, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning search log entry: %w", err)
		}
		e.Scope = domain.SearchScope(scope)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating search log: %w", err)
	}

	return entries, nil
}

// ==================== Helper Functions ====================

// scanTarget abstracts *sql.Row and *sql.Rows scanning.
type scanTarget interface {
	Scan(dest ...any) error
}

// scanRelationship scans a single relationship row.
func scanRelationship(row *sql.Row) (*domain.Relationship, error) {
	rel, err := scanRelationshipFrom(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	return rel, err
}

// scanRelationshipRows scans a relationship from *sql.Rows.
func scanRelationshipRows(rows *sql.Rows) (*domain.Relationship, error) {
	return scanRelationshipFrom(rows)
}

func scanRelationshipFrom(t scanTarget) (*domain.Relationship, error) {
	var rel domain.Relationship
	var rowJSON string
	var documentPath sql.NullString
	var processedDate sql.NullTime

	if err := t.Scan(&rel.ID, &rel.OrderNumber, &rowJSON, &documentPath,
		&rel.Processed, &processedDate, &rel.IsActive, &rel.CreatedAt, &rel.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scanning relationship: %w", err)
	}

	if err := json.Unmarshal([]byte(rowJSON), &rel.RowData); err != nil {
		return nil, fmt.Errorf("unmarshaling row data: %w", err)
	}

	if documentPath.Valid {
		rel.DocumentPath = &documentPath.String
	}
	if processedDate.Valid {
		utc := processedDate.Time.UTC()
		rel.ProcessedDate = &utc
	}

	return &rel, nil
}

// currentDocumentPath reads the document path inside a transaction and
// maps a missing row to domain.ErrNotFound.
func currentDocumentPath(ctx context.Context, tx *sql.Tx, id string) (string, error) {
	var path sql.NullString
	err := tx.QueryRowContext(ctx,
		"SELECT document_path FROM relationships WHERE id = ?", id).Scan(&path)
	if err == sql.ErrNoRows {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("reading document path: %w", err)
	}
	return path.String, nil
}

// appendHistory inserts one change history entry inside a transaction.
func appendHistory(ctx context.Context, tx *sql.Tx, entry domain.ChangeEntry) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO change_history
			(relationship_id, action, old_path, new_path, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, entry.RelationshipID, string(entry.Action),
		nullString(entry.OldPath), nullString(entry.NewPath),
		entry.Reason, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("appending change history: %w", err)
	}
	return nil
}

// requireRow maps a zero-row update to domain.ErrNotFound.
func requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// nullString converts an empty string to NULL.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// nullTime converts a nil time pointer to NULL.
func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

// stringValue dereferences a string pointer, empty when nil.
func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
