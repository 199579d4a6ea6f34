package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/meridian-labs/docket-cli/internal/core/domain"
	"github.com/meridian-labs/docket-cli/internal/core/ports/driven"
	"github.com/meridian-labs/docket-cli/internal/core/ports/driving"
	"github.com/meridian-labs/docket-cli/internal/logger"
)

const (
	// DefaultNameColumn is the row column used as the secondary archive
	// filename part when none is configured.
	DefaultNameColumn = "Customer"

	// sidecarSuffix is appended to the archive path for the metadata file.
	sidecarSuffix = ".metadata.txt"

	// maxNamePart bounds the sanitized business-name filename part.
	maxNamePart = 60
)

// invalidNameChars are replaced during filename sanitisation.
var invalidNameChars = regexp.MustCompile(`[\\/:*?"<>|[:cntrl:]]+`)

// Ensure ArchiveService implements the interface.
var _ driving.Archiver = (*ArchiveService)(nil)

// ArchiveService moves processed documents into year buckets under the
// archive root, each with a plain-text metadata sidecar.
type ArchiveService struct {
	store      driven.RelationshipStore
	root       string
	nameColumn string
	now        func() time.Time
}

// ArchiveOption configures an ArchiveService.
type ArchiveOption func(*ArchiveService)

// WithNameColumn sets the row column used for the filename's business
// name part.
func WithNameColumn(column string) ArchiveOption {
	return func(s *ArchiveService) {
		if column != "" {
			s.nameColumn = column
		}
	}
}

// WithClock overrides the archival clock. Useful for testing bucket and
// filename dating.
func WithClock(now func() time.Time) ArchiveOption {
	return func(s *ArchiveService) { s.now = now }
}

// NewArchiveService creates a new archive service rooted at root.
func NewArchiveService(store driven.RelationshipStore, root string, opts ...ArchiveOption) *ArchiveService {
	s := &ArchiveService{
		store:      store,
		root:       root,
		nameColumn: DefaultNameColumn,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Archive copies the relationship's document into its year bucket, writes
// the metadata sidecar, deletes the original and marks the relationship
// processed, in that order. Failure before the final store update leaves
// the source file and the relationship untouched, so the whole call can
// be retried.
func (s *ArchiveService) Archive(ctx context.Context, relationshipID string) (string, error) {
	logger.Section("Archive")

	rel, err := s.store.GetByID(ctx, relationshipID)
	if err != nil {
		return "", fmt.Errorf("get relationship: %w", err)
	}
	if rel.Processed {
		return "", domain.ErrAlreadyProcessed
	}
	if !rel.HasDocument() {
		return "", domain.ErrNoDocument
	}
	sourcePath := *rel.DocumentPath

	sourceInfo, err := os.Stat(sourcePath)
	if err != nil {
		return "", fmt.Errorf("%w: source document %s: %v", domain.ErrArchiveFailed, sourcePath, err)
	}

	now := s.now().UTC()
	bucket := filepath.Join(s.root, fmt.Sprintf("%d", now.Year()))
	if err := os.MkdirAll(bucket, 0755); err != nil {
		return "", fmt.Errorf("%w: creating bucket: %v", domain.ErrArchiveFailed, err)
	}

	candidate := s.candidateName(rel, now) + filepath.Ext(sourcePath)

	// Claim a free name with O_EXCL so two concurrent archivals cannot
	// resolve to the same file.
	archivePath, dst, err := claimArchiveFile(bucket, candidate)
	if err != nil {
		return "", fmt.Errorf("%w: claiming archive name: %v", domain.ErrArchiveFailed, err)
	}

	if err := copyVerified(dst, sourcePath, sourceInfo.Size()); err != nil {
		dst.Close()
		os.Remove(archivePath)
		return "", fmt.Errorf("%w: copying %s: %v", domain.ErrArchiveFailed, sourcePath, err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(archivePath)
		return "", fmt.Errorf("%w: closing archive file: %v", domain.ErrArchiveFailed, err)
	}

	sidecarPath := archivePath + sidecarSuffix
	if err := writeSidecar(sidecarPath, rel, sourcePath, now); err != nil {
		os.Remove(archivePath)
		os.Remove(sidecarPath)
		return "", fmt.Errorf("%w: writing sidecar: %v", domain.ErrArchiveFailed, err)
	}

	// Copy and sidecar are verified on disk; only now remove the source.
	if err := os.Remove(sourcePath); err != nil {
		logger.Warn("Could not remove source %s: %v", sourcePath, err)
	}

	entry := domain.ArchiveEntry{
		ID:             uuid.NewString(),
		RelationshipID: rel.ID,
		OriginalPath:   sourcePath,
		ArchivePath:    archivePath,
		SidecarPath:    sidecarPath,
		ArchivedAt:     now,
	}
	if err := s.store.MarkArchived(ctx, rel.ID, entry); err != nil {
		return "", fmt.Errorf("mark archived: %w", err)
	}

	logger.Info("Archived %s to %s", rel.OrderNumber, archivePath)
	return archivePath, nil
}

// Search scans archive filenames and sidecar content, case-insensitive.
// One match per archived document; a filename hit wins over a sidecar hit
// for the same file.
func (s *ArchiveService) Search(ctx context.Context, term string) ([]domain.ArchiveMatch, error) {
	needle := strings.ToLower(term)
	var matches []domain.ArchiveMatch
	seen := make(map[string]int)

	record := func(m domain.ArchiveMatch) {
		if i, ok := seen[m.ArchivePath]; ok {
			if matches[i].MatchedIn == "sidecar" && m.MatchedIn == "filename" {
				matches[i] = m
			}
			return
		}
		seen[m.ArchivePath] = len(matches)
		matches = append(matches, m)
	}

	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return filepath.SkipAll
			}
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			return nil
		}

		if strings.HasSuffix(path, sidecarSuffix) {
			content, err := os.ReadFile(path)
			if err != nil {
				logger.Warn("Cannot read sidecar %s: %v", path, err)
				return nil
			}
			if snippet, ok := findLine(string(content), needle); ok {
				record(domain.ArchiveMatch{
					ArchivePath: strings.TrimSuffix(path, sidecarSuffix),
					MatchedIn:   "sidecar",
					Snippet:     snippet,
				})
			}
			return nil
		}

		if strings.Contains(strings.ToLower(filepath.Base(path)), needle) {
			record(domain.ArchiveMatch{
				ArchivePath: path,
				MatchedIn:   "filename",
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("searching archive: %w", err)
	}

	return matches, nil
}

// Statistics summarises the archive tree. Sidecars are not counted.
func (s *ArchiveService) Statistics(ctx context.Context) (*domain.ArchiveStats, error) {
	stats := &domain.ArchiveStats{FilesByYear: make(map[string]int)}

	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return filepath.SkipAll
			}
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() || strings.HasSuffix(path, sidecarSuffix) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		stats.TotalFiles++
		stats.TotalSize += info.Size()

		rel, err := filepath.Rel(s.root, path)
		if err == nil {
			if year, _, ok := strings.Cut(rel, string(filepath.Separator)); ok {
				stats.FilesByYear[year]++
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("collecting statistics: %w", err)
	}

	return stats, nil
}

// ExportIndex writes a CSV index of the archive for backup/audit.
func (s *ArchiveService) ExportIndex(ctx context.Context, path string) error {
	entries, err := s.store.ListArchiveEntries(ctx)
	if err != nil {
		return fmt.Errorf("list archive entries: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating index file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"filename", "archive_path", "archive_date", "identifier", "business_name", "original_path"}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing index header: %w", err)
	}

	for _, entry := range entries {
		orderNumber := ""
		businessName := ""
		if rel, err := s.store.GetByID(ctx, entry.RelationshipID); err == nil {
			orderNumber = rel.OrderNumber
			businessName, _ = rel.RowData.Get(s.nameColumn)
		}

		record := []string{
			filepath.Base(entry.ArchivePath),
			entry.ArchivePath,
			entry.ArchivedAt.Format("2006-01-02"),
			orderNumber,
			businessName,
			entry.OriginalPath,
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("writing index record: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing index: %w", err)
	}

	logger.Info("Exported %d archive entries to %s", len(entries), path)
	return nil
}

// CleanupEmptyBuckets removes year directories left empty after pruning.
func (s *ArchiveService) CleanupEmptyBuckets(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading archive root: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if !entry.IsDir() || !isYearBucket(entry.Name()) {
			continue
		}

		bucket := filepath.Join(s.root, entry.Name())
		contents, err := os.ReadDir(bucket)
		if err != nil {
			logger.Warn("Cannot read bucket %s: %v", bucket, err)
			continue
		}
		if len(contents) > 0 {
			continue
		}

		if err := os.Remove(bucket); err != nil {
			logger.Warn("Cannot remove bucket %s: %v", bucket, err)
			continue
		}
		removed++
		logger.Debug("Removed empty bucket %s", bucket)
	}

	return removed, nil
}

// candidateName builds the archive filename stem:
// identifier + sanitized business name + date.
func (s *ArchiveService) candidateName(rel *domain.Relationship, now time.Time) string {
	parts := []string{rel.OrderNumber}
	if name, ok := rel.RowData.Get(s.nameColumn); ok {
		if sanitized := SanitizeFilename(name); sanitized != "" {
			parts = append(parts, sanitized)
		}
	}
	parts = append(parts, now.Format("2006-01-02"))
	return strings.Join(parts, "_")
}

// SanitizeFilename replaces filesystem-invalid characters, collapses
// whitespace to underscores and bounds the length.
func SanitizeFilename(name string) string {
	name = invalidNameChars.ReplaceAllString(name, "_")
	name = strings.Join(strings.Fields(name), "_")
	name = strings.Trim(name, "._ ")
	if len(name) > maxNamePart {
		name = name[:maxNamePart]
	}
	return name
}

// claimArchiveFile opens a free archive path with O_EXCL, appending an
// incrementing numeric suffix on collisions.
func claimArchiveFile(bucket, candidate string) (string, *os.File, error) {
	ext := filepath.Ext(candidate)
	stem := strings.TrimSuffix(candidate, ext)

	for attempt := 0; ; attempt++ {
		name := candidate
		if attempt > 0 {
			name = fmt.Sprintf("%s_%d%s", stem, attempt, ext)
		}
		path := filepath.Join(bucket, name)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err == nil {
			return path, f, nil
		}
		if !os.IsExist(err) {
			return "", nil, err
		}
	}
}

// copyVerified copies the source into dst, syncs and verifies the size
// before the caller may delete the original.
func copyVerified(dst *os.File, sourcePath string, wantSize int64) error {
	src, err := os.Open(sourcePath)
	if err != nil {
		return err
	}
	defer src.Close()

	written, err := io.Copy(dst, src)
	if err != nil {
		return err
	}
	if err := dst.Sync(); err != nil {
		return err
	}
	if written != wantSize {
		return fmt.Errorf("size mismatch: copied %d of %d bytes", written, wantSize)
	}
	return nil
}

// writeSidecar writes the plain-text metadata file: archive timestamp,
// original path, identifier and the full row snapshot.
func writeSidecar(path string, rel *domain.Relationship, originalPath string, now time.Time) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Archived: %s\n", now.Format(time.RFC3339))
	fmt.Fprintf(&b, "Original path: %s\n", originalPath)
	fmt.Fprintf(&b, "Order number: %s\n", rel.OrderNumber)
	b.WriteString("\n")
	for _, field := range rel.RowData {
		fmt.Fprintf(&b, "%s: %s\n", field.Key, field.Value)
	}
	return os.WriteFile(path, []byte(b.String()), 0644)
}

// findLine returns the first line of content containing the lowercase
// needle, trimmed for display.
func findLine(content, needle string) (string, bool) {
	for _, line := range strings.Split(content, "\n") {
		if strings.Contains(strings.ToLower(line), needle) {
			return strings.TrimSpace(line), true
		}
	}
	return "", false
}

// isYearBucket reports whether a directory name looks like a year.
func isYearBucket(name string) bool {
	if len(name) != 4 {
		return false
	}
	for _, r := range name {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
