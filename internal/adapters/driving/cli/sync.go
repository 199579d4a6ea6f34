package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meridian-labs/docket-cli/internal/adapters/driven/importfile"
	"github.com/meridian-labs/docket-cli/internal/connectors/filesystem"
)

var (
	syncFile      string
	syncMatchDir  string
	syncSeparator string
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run a full sync cycle",
	Long: `Runs one sync cycle: ingests the import file, clears links whose
documents disappeared, then matches candidate files against the imported
orders. Each stage prints its report.`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().StringVarP(&syncFile, "file", "f", "", "import file to ingest (CSV)")
	syncCmd.Flags().StringVarP(&syncMatchDir, "match-dir", "d", "", "folder of candidate documents to match")
	syncCmd.Flags().StringVar(&syncSeparator, "separator", ",", "import file field separator")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	if syncService == nil || reconcileService == nil || matchService == nil {
		return errors.New("sync services not configured")
	}

	ctx := context.Background()

	if syncFile != "" {
		sep := ','
		for _, r := range syncSeparator {
			sep = r
			break
		}

		reader := importfile.NewReader(syncFile, importfile.WithSeparator(sep))
		rows, err := reader.Rows(ctx)
		if err != nil {
			return fmt.Errorf("reading import file: %w", err)
		}

		report, err := syncService.Sync(ctx, rows)
		if err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}
		cmd.Printf("Import: %d new, %d updated, %d unchanged, %d skipped\n",
			report.New, report.Updated, report.Unchanged, report.Skipped)
	}

	cleaned, err := reconcileService.Reconcile(ctx)
	if err != nil {
		return fmt.Errorf("reconcile failed: %w", err)
	}
	cmd.Printf("Reconcile: %d stale links cleared\n", cleaned)

	matchDir := syncMatchDir
	if matchDir == "" && configStore != nil {
		matchDir = configStore.GetString("watch.folder")
	}
	if matchDir == "" {
		return nil
	}

	paths, err := candidateLister().List(ctx, matchDir)
	if err != nil {
		return fmt.Errorf("listing %s: %w", matchDir, err)
	}

	report, err := matchService.Match(ctx, paths)
	if err != nil {
		return fmt.Errorf("match failed: %w", err)
	}
	cmd.Printf("Match: %d matched, %d unmatched, %d already attached, %d skipped\n",
		report.Matched, report.Unmatched, report.AlreadyAttached, report.Skipped)

	return nil
}

// candidateLister builds a folder lister from the configured extensions.
func candidateLister() *filesystem.Lister {
	var extensions []string
	if configStore != nil {
		extensions = configStore.GetStringSlice("matching.extensions")
	}
	return filesystem.NewLister(extensions)
}
