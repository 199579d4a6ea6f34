package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
}

func TestConfigStore_SetAndGet(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	err = store.Set("archive.root", "/srv/archive")
	require.NoError(t, err)

	assert.Equal(t, "/srv/archive", store.GetString("archive.root"))
}

func TestConfigStore_TypedGetters(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("import.identity_column", "Auftragsnummer"))
	require.NoError(t, store.Set("matching.skip_past_due", true))
	require.NoError(t, store.Set("matching.extensions", []string{".pdf", ".tiff"}))

	assert.Equal(t, "Auftragsnummer", store.GetString("import.identity_column"))
	assert.True(t, store.GetBool("matching.skip_past_due"))
	assert.Equal(t, []string{".pdf", ".tiff"}, store.GetStringSlice("matching.extensions"))

	// Missing or mistyped keys fall back to zero values.
	assert.Equal(t, "", store.GetString("nonexistent"))
	assert.False(t, store.GetBool("import.identity_column"))
	assert.Nil(t, store.GetStringSlice("matching.skip_past_due"))
}

func TestConfigStore_PersistsAcrossLoads(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	require.NoError(t, store.Set("watch.folder", "/srv/inbox"))

	// A second store over the same directory reads the saved value.
	reopened, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "/srv/inbox", reopened.GetString("watch.folder"))
}

func TestConfigStore_LoadMissingFile(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	// The file only exists once something was set.
	require.NoError(t, store.Set("watch.folder", "/srv/inbox"))
	require.NoError(t, os.Remove(store.Path()))

	// A missing file is not an error; the store just starts empty.
	assert.NoError(t, store.Load())
	assert.Equal(t, "", store.GetString("watch.folder"))
}
