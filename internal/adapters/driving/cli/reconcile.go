package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Clear links to deleted documents",
	Long: `Checks every attached document on disk and clears the link for
files that no longer exist. The removal is recorded in the order's change
history.`,
	RunE: runReconcile,
}

func init() {
	rootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, _ []string) error {
	if reconcileService == nil {
		return errors.New("reconcile service not configured")
	}

	cleaned, err := reconcileService.Reconcile(context.Background())
	if err != nil {
		return fmt.Errorf("reconcile failed: %w", err)
	}

	if cleaned == 0 {
		cmd.Println("All attached documents present.")
		return nil
	}
	cmd.Printf("Cleared %d stale links.\n", cleaned)
	return nil
}
