package importfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeImport(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "orders.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestReader_ReadsHeaderKeyedRows(t *testing.T) {
	path := writeImport(t, "OrderNumber,Customer,DueDate\n4079038,Acme,2026-09-01\n5012345,Globex,2026-09-15\n")

	rows, err := NewReader(path).Rows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, []string{"OrderNumber", "Customer", "DueDate"}, rows[0].Keys())
	orderNumber, _ := rows[0].Get("OrderNumber")
	assert.Equal(t, "4079038", orderNumber)
	due, _ := rows[1].Get("DueDate")
	assert.Equal(t, "2026-09-15", due)
}

func TestReader_SemicolonSeparator(t *testing.T) {
	path := writeImport(t, "OrderNumber;Customer\n4079038;Acme GmbH\n")

	rows, err := NewReader(path, WithSeparator(';')).Rows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)

	customer, _ := rows[0].Get("Customer")
	assert.Equal(t, "Acme GmbH", customer)
}

func TestReader_PadsShortAndSkipsBlankRows(t *testing.T) {
	path := writeImport(t, "OrderNumber,Customer\n4079038\n\n,\n5012345,Globex\n")

	rows, err := NewReader(path).Rows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	customer, ok := rows[0].Get("Customer")
	assert.True(t, ok, "short rows are padded with empty cells")
	assert.Equal(t, "", customer)
}

func TestReader_TrimsWhitespace(t *testing.T) {
	path := writeImport(t, " OrderNumber , Customer \n 4079038 , Acme \n")

	rows, err := NewReader(path).Rows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)

	orderNumber, ok := rows[0].Get("OrderNumber")
	require.True(t, ok)
	assert.Equal(t, "4079038", orderNumber)
}

func TestReader_EmptyFile(t *testing.T) {
	path := writeImport(t, "")

	rows, err := NewReader(path).Rows(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestReader_MissingFile(t *testing.T) {
	_, err := NewReader("/nowhere/orders.csv").Rows(context.Background())
	assert.Error(t, err)
}
