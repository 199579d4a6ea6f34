package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-labs/docket-cli/internal/adapters/driven/storage/memory"
	"github.com/meridian-labs/docket-cli/internal/core/domain"
)

func orderRow(orderNumber, customer string) domain.RowData {
	row := domain.RowData{}
	row.Set("OrderNumber", orderNumber)
	row.Set("Customer", customer)
	return row
}

func TestSyncService_CreatesNewRelationships(t *testing.T) {
	store := memory.NewRelationshipStore()
	svc := NewSyncService(store, "")

	report, err := svc.Sync(context.Background(), []domain.RowData{
		orderRow("4079038", "Acme"),
		orderRow("5012345", "Globex"),
	})

	require.NoError(t, err)
	assert.Equal(t, 2, report.New)
	assert.Equal(t, 0, report.Updated)

	rel, err := store.GetByOrderNumber(context.Background(), "4079038")
	require.NoError(t, err)
	assert.True(t, rel.IsActive)
	assert.False(t, rel.HasDocument())

	customer, ok := rel.RowData.Get("Customer")
	require.True(t, ok)
	assert.Equal(t, "Acme", customer)
}

func TestSyncService_RerunIsIdempotent(t *testing.T) {
	store := memory.NewRelationshipStore()
	svc := NewSyncService(store, "")
	rows := []domain.RowData{orderRow("4079038", "Acme")}

	_, err := svc.Sync(context.Background(), rows)
	require.NoError(t, err)

	report, err := svc.Sync(context.Background(), rows)
	require.NoError(t, err)
	assert.Equal(t, 0, report.New)
	assert.Equal(t, 0, report.Updated)
	assert.Equal(t, 1, report.Unchanged)
}

func TestSyncService_UpdatesChangedRowData(t *testing.T) {
	store := memory.NewRelationshipStore()
	svc := NewSyncService(store, "")

	_, err := svc.Sync(context.Background(), []domain.RowData{orderRow("4079038", "Acme")})
	require.NoError(t, err)

	report, err := svc.Sync(context.Background(), []domain.RowData{orderRow("4079038", "Acme GmbH")})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Updated)

	rel, err := store.GetByOrderNumber(context.Background(), "4079038")
	require.NoError(t, err)
	customer, _ := rel.RowData.Get("Customer")
	assert.Equal(t, "Acme GmbH", customer)
}

func TestSyncService_UpdatePreservesDocumentAndHistory(t *testing.T) {
	ctx := context.Background()
	store := memory.NewRelationshipStore()
	svc := NewSyncService(store, "")

	_, err := svc.Sync(ctx, []domain.RowData{orderRow("4079038", "Acme")})
	require.NoError(t, err)

	rel, err := store.GetByOrderNumber(ctx, "4079038")
	require.NoError(t, err)
	require.NoError(t, store.SetDocument(ctx, rel.ID, "/inbox/4079038.pdf",
		domain.ChangeAttach, domain.ReasonAutomaticMatching))

	_, err = svc.Sync(ctx, []domain.RowData{orderRow("4079038", "Acme GmbH")})
	require.NoError(t, err)

	rel, err = store.GetByOrderNumber(ctx, "4079038")
	require.NoError(t, err)
	require.True(t, rel.HasDocument())
	assert.Equal(t, "/inbox/4079038.pdf", *rel.DocumentPath)

	history, err := store.History(ctx, rel.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestSyncService_SkipsRowsWithoutIdentifier(t *testing.T) {
	store := memory.NewRelationshipStore()
	svc := NewSyncService(store, "")

	blank := domain.RowData{}
	blank.Set("Customer", "Acme")

	bad := orderRow("12", "Initech")

	report, err := svc.Sync(context.Background(), []domain.RowData{blank, bad})
	require.NoError(t, err)
	assert.Equal(t, 0, report.New)
	assert.Equal(t, 2, report.Skipped)
}

func TestSyncService_ExtractsDecoratedIdentifier(t *testing.T) {
	store := memory.NewRelationshipStore()
	svc := NewSyncService(store, "")

	report, err := svc.Sync(context.Background(), []domain.RowData{
		orderRow("Order #4079038", "Acme"),
	})

	require.NoError(t, err)
	assert.Equal(t, 1, report.New)

	_, err = store.GetByOrderNumber(context.Background(), "4079038")
	assert.NoError(t, err)
}

func TestSyncService_CustomIdentityColumn(t *testing.T) {
	store := memory.NewRelationshipStore()
	svc := NewSyncService(store, "Auftragsnummer")

	row := domain.RowData{}
	row.Set("Auftragsnummer", "5012345")
	row.Set("Kunde", "Globex")

	report, err := svc.Sync(context.Background(), []domain.RowData{row})
	require.NoError(t, err)
	assert.Equal(t, 1, report.New)
}
