package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-labs/docket-cli/internal/adapters/driven/storage/memory"
	"github.com/meridian-labs/docket-cli/internal/core/domain"
)

func fixedClock() func() time.Time {
	return func() time.Time {
		return time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	}
}

func seedAttached(t *testing.T, store *memory.RelationshipStore, dir, orderNumber string) *domain.Relationship {
	t.Helper()
	ctx := context.Background()

	row := orderRow(orderNumber, "Acme Industrie")
	rel := seedRelationship(t, store, orderNumber, row)

	doc := writeTestFile(t, dir, orderNumber+"_note.pdf")
	require.NoError(t, store.SetDocument(ctx, rel.ID, doc,
		domain.ChangeAttach, domain.ReasonAutomaticMatching))
	return rel
}

func TestArchiveService_ArchivesDocument(t *testing.T) {
	ctx := context.Background()
	store := memory.NewRelationshipStore()
	inbox := t.TempDir()
	root := t.TempDir()

	rel := seedAttached(t, store, inbox, "4079038")
	original := filepath.Join(inbox, "4079038_note.pdf")

	svc := NewArchiveService(store, root, WithClock(fixedClock()))
	archivePath, err := svc.Archive(ctx, rel.ID)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "2026", "4079038_Acme_Industrie_2026-08-29.pdf"), archivePath)

	content, err := os.ReadFile(archivePath)
	require.NoError(t, err)
	assert.Equal(t, "content", string(content))

	// Original is gone, sidecar carries the row snapshot.
	_, err = os.Stat(original)
	assert.True(t, os.IsNotExist(err))

	sidecar, err := os.ReadFile(archivePath + ".metadata.txt")
	require.NoError(t, err)
	assert.Contains(t, string(sidecar), "Order number: 4079038")
	assert.Contains(t, string(sidecar), "Customer: Acme Industrie")
	assert.Contains(t, string(sidecar), original)

	got, err := store.GetByID(ctx, rel.ID)
	require.NoError(t, err)
	assert.True(t, got.Processed)
	require.NotNil(t, got.ProcessedDate)
	require.True(t, got.HasDocument())
	assert.Equal(t, archivePath, *got.DocumentPath)

	history, err := store.History(ctx, rel.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, domain.ChangeArchive, history[1].Action)
	assert.Equal(t, domain.ReasonArchived, history[1].Reason)
}

func TestArchiveService_CollisionGetsSuffix(t *testing.T) {
	ctx := context.Background()
	store := memory.NewRelationshipStore()
	inbox := t.TempDir()
	root := t.TempDir()

	rel := seedAttached(t, store, inbox, "4079038")

	bucket := filepath.Join(root, "2026")
	require.NoError(t, os.MkdirAll(bucket, 0755))
	taken := filepath.Join(bucket, "4079038_Acme_Industrie_2026-08-29.pdf")
	require.NoError(t, os.WriteFile(taken, []byte("other"), 0644))

	svc := NewArchiveService(store, root, WithClock(fixedClock()))
	archivePath, err := svc.Archive(ctx, rel.ID)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(bucket, "4079038_Acme_Industrie_2026-08-29_1.pdf"), archivePath)

	// The colliding file is untouched.
	content, err := os.ReadFile(taken)
	require.NoError(t, err)
	assert.Equal(t, "other", string(content))
}

func TestArchiveService_NoDocument(t *testing.T) {
	store := memory.NewRelationshipStore()
	rel := seedRelationship(t, store, "4079038", orderRow("4079038", "Acme"))

	svc := NewArchiveService(store, t.TempDir())
	_, err := svc.Archive(context.Background(), rel.ID)

	assert.ErrorIs(t, err, domain.ErrNoDocument)
}

func TestArchiveService_AlreadyProcessed(t *testing.T) {
	ctx := context.Background()
	store := memory.NewRelationshipStore()
	inbox := t.TempDir()
	rel := seedAttached(t, store, inbox, "4079038")

	svc := NewArchiveService(store, t.TempDir(), WithClock(fixedClock()))
	_, err := svc.Archive(ctx, rel.ID)
	require.NoError(t, err)

	_, err = svc.Archive(ctx, rel.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)
}

func TestArchiveService_MissingSourceLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	store := memory.NewRelationshipStore()
	inbox := t.TempDir()
	rel := seedAttached(t, store, inbox, "4079038")
	require.NoError(t, os.Remove(filepath.Join(inbox, "4079038_note.pdf")))

	svc := NewArchiveService(store, t.TempDir())
	_, err := svc.Archive(ctx, rel.ID)

	assert.ErrorIs(t, err, domain.ErrArchiveFailed)

	got, err := store.GetByID(ctx, rel.ID)
	require.NoError(t, err)
	assert.False(t, got.Processed)
}

func TestArchiveService_SearchFilenameAndSidecar(t *testing.T) {
	ctx := context.Background()
	store := memory.NewRelationshipStore()
	inbox := t.TempDir()
	root := t.TempDir()
	rel := seedAttached(t, store, inbox, "4079038")

	svc := NewArchiveService(store, root, WithClock(fixedClock()))
	_, err := svc.Archive(ctx, rel.ID)
	require.NoError(t, err)

	// The order number appears in the filename and in the sidecar's
	// original-path line; still one match per document, filename first.
	byName, err := svc.Search(ctx, "4079038")
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "filename", byName[0].MatchedIn)

	// "note" only occurs in the sidecar's original-path line.
	bySidecar, err := svc.Search(ctx, "note")
	require.NoError(t, err)
	require.Len(t, bySidecar, 1)
	assert.Equal(t, "sidecar", bySidecar[0].MatchedIn)
	assert.Contains(t, bySidecar[0].Snippet, "4079038_note.pdf")

	none, err := svc.Search(ctx, "unrelated-term")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestArchiveService_Statistics(t *testing.T) {
	ctx := context.Background()
	store := memory.NewRelationshipStore()
	inbox := t.TempDir()
	root := t.TempDir()

	for _, orderNumber := range []string{"4079038", "5012345"} {
		rel := seedAttached(t, store, inbox, orderNumber)
		svc := NewArchiveService(store, root, WithClock(fixedClock()))
		_, err := svc.Archive(ctx, rel.ID)
		require.NoError(t, err)
	}

	stats, err := NewArchiveService(store, root).Statistics(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.TotalFiles)
	assert.Equal(t, 2, stats.FilesByYear["2026"])
	assert.Equal(t, int64(2*len("content")), stats.TotalSize)
}

func TestArchiveService_ExportIndex(t *testing.T) {
	ctx := context.Background()
	store := memory.NewRelationshipStore()
	inbox := t.TempDir()
	root := t.TempDir()
	rel := seedAttached(t, store, inbox, "4079038")

	svc := NewArchiveService(store, root, WithClock(fixedClock()))
	_, err := svc.Archive(ctx, rel.ID)
	require.NoError(t, err)

	indexPath := filepath.Join(t.TempDir(), "index.csv")
	require.NoError(t, svc.ExportIndex(ctx, indexPath))

	content, err := os.ReadFile(indexPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "filename,archive_path,archive_date,identifier,business_name,original_path")
	assert.Contains(t, string(content), "4079038")
	assert.Contains(t, string(content), "2026-08-29")
}

func TestArchiveService_CleanupEmptyBuckets(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()

	require.NoError(t, os.MkdirAll(filepath.Join(root, "2024"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "2025"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "2025", "kept.pdf"), []byte("x"), 0644))

	svc := NewArchiveService(memory.NewRelationshipStore(), root)
	removed, err := svc.CleanupEmptyBuckets(ctx)

	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = os.Stat(filepath.Join(root, "2024"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(root, "2025"))
	assert.NoError(t, err)
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Acme", "Acme"},
		{"spaces", "Acme Industrie GmbH", "Acme_Industrie_GmbH"},
		{"invalid chars", `Acme/Co:KG*?`, "Acme_Co_KG"},
		{"trailing dots", "Acme. ", "Acme"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFilename(tt.in))
		})
	}
}
