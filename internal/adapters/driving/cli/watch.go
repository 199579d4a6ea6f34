package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/meridian-labs/docket-cli/internal/connectors/filesystem"
)

var watchFolder string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the inbox folder and match new documents",
	Long: `Watches the inbox folder for new candidate documents. Every file
that appears is reconciled and matched against the imported orders.
Runs until interrupted.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchFolder, "folder", "d", "", "folder to watch (default from config)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if matchService == nil || reconcileService == nil {
		return errors.New("match service not configured")
	}

	folder := watchFolder
	if folder == "" && configStore != nil {
		folder = configStore.GetString("watch.folder")
	}
	if folder == "" {
		return errors.New("no watch folder configured")
	}

	watcher, err := filesystem.NewWatcher(candidateLister())
	if err != nil {
		return err
	}
	defer watcher.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = watcher.Watch(ctx, folder, func(path string) {
		if cleaned, err := reconcileService.Reconcile(ctx); err != nil {
			cmd.PrintErrf("reconcile failed: %v\n", err)
		} else if cleaned > 0 {
			cmd.Printf("Cleared %d stale links.\n", cleaned)
		}

		report, err := matchService.Match(ctx, []string{path})
		if err != nil {
			cmd.PrintErrf("match failed for %s: %v\n", path, err)
			return
		}
		if report.Matched > 0 {
			cmd.Printf("Matched %s.\n", path)
		}
	})
	if errors.Is(err, context.Canceled) {
		cmd.Println("\nStopped.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("watch failed: %w", err)
	}
	return nil
}
