package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var matchCmd = &cobra.Command{
	Use:   "match [folder]",
	Short: "Match candidate documents against orders",
	Long: `Scans a folder for candidate documents, extracts order identifiers
from their filenames (falling back to the document text when pdftotext
is installed) and attaches each document to its order. Documents already
attached elsewhere and orders that already have a document are left
alone.`,
	Args: cobra.ExactArgs(1),
	RunE: runMatch,
}

func init() {
	rootCmd.AddCommand(matchCmd)
}

func runMatch(cmd *cobra.Command, args []string) error {
	if matchService == nil || reconcileService == nil {
		return errors.New("match service not configured")
	}

	ctx := context.Background()

	// Stale links would otherwise report candidates as already attached.
	cleaned, err := reconcileService.Reconcile(ctx)
	if err != nil {
		return fmt.Errorf("reconcile failed: %w", err)
	}
	if cleaned > 0 {
		cmd.Printf("Cleared %d stale links.\n", cleaned)
	}

	paths, err := candidateLister().List(ctx, args[0])
	if err != nil {
		return fmt.Errorf("listing %s: %w", args[0], err)
	}
	if len(paths) == 0 {
		cmd.Println("No candidate documents found.")
		return nil
	}

	report, err := matchService.Match(ctx, paths)
	if err != nil {
		return fmt.Errorf("match failed: %w", err)
	}

	cmd.Printf("%d matched, %d unmatched, %d already attached, %d skipped\n",
		report.Matched, report.Unmatched, report.AlreadyAttached, report.Skipped)
	return nil
}
