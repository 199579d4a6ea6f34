package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-labs/docket-cli/internal/core/ports/driving"
)

func TestMatchCmd_Use(t *testing.T) {
	assert.Equal(t, "match [folder]", matchCmd.Use)
}

func TestMatchCmd_RequiresExactlyOneArg(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"match"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestMatchCmd_ReconcilesBeforeMatching(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	reconciler := &mockReconciler{cleaned: 1}
	matcher := &mockMatcher{report: driving.MatchReport{Matched: 1}}
	reconcileService = reconciler
	matchService = matcher

	dir := t.TempDir()
	doc := filepath.Join(dir, "4079038.pdf")
	require.NoError(t, os.WriteFile(doc, []byte("x"), 0644))

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"match", dir})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Equal(t, 1, reconciler.calls, "match must reconcile stale links first")
	assert.Equal(t, []string{doc}, matcher.paths)
	assert.Contains(t, buf.String(), "Cleared 1 stale links.")
	assert.Contains(t, buf.String(), "1 matched")
}

func TestMatchCmd_ReconcileFailureAborts(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	matcher := &mockMatcher{}
	reconcileService = &mockReconciler{err: assert.AnError}
	matchService = matcher

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"match", t.TempDir()})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Empty(t, matcher.paths, "matching must not run after a failed reconcile")
}
