package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var processCmd = &cobra.Command{
	Use:   "process [order-number...]",
	Short: "Mark orders processed and archive their documents",
	Long: `Marks the given orders as processed. Each order's attached document
is copied into the dated archive with a metadata sidecar, the original is
deleted and the order is stamped with the processing date. Orders accept
either the order number or the relationship ID.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	if workflowService == nil {
		return errors.New("workflow service not configured")
	}

	report, err := workflowService.MarkProcessed(context.Background(), args)
	if err != nil {
		return fmt.Errorf("processing failed: %w", err)
	}

	cmd.Printf("%d archived, %d without document, %d failed\n",
		report.Archived, report.NoDocument, report.Failed)
	if report.Failed > 0 {
		return fmt.Errorf("%d orders failed", report.Failed)
	}
	return nil
}
