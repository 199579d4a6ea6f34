package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show [order-number]",
	Short: "Show one order with its change history",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	if queryService == nil || workflowService == nil {
		return errors.New("query service not configured")
	}

	ctx := context.Background()

	rel, err := queryService.FindByIdentifier(ctx, args[0])
	if err != nil {
		return fmt.Errorf("lookup failed: %w", err)
	}

	cmd.Printf("Order:     %s\n", rel.OrderNumber)
	if rel.HasDocument() {
		cmd.Printf("Document:  %s\n", *rel.DocumentPath)
	} else {
		cmd.Println("Document:  none")
	}
	if rel.Processed && rel.ProcessedDate != nil {
		cmd.Printf("Processed: %s\n", rel.ProcessedDate.Format("2006-01-02"))
	}
	cmd.Println()
	for _, field := range rel.RowData {
		cmd.Printf("  %s: %s\n", field.Key, field.Value)
	}

	history, err := workflowService.History(ctx, rel.ID)
	if err != nil {
		return fmt.Errorf("history failed: %w", err)
	}
	if len(history) == 0 {
		return nil
	}

	cmd.Println("\nHistory:")
	for _, e := range history {
		cmd.Printf("  %s  %-8s %s", e.CreatedAt.Format("2006-01-02 15:04"), e.Action, e.Reason)
		if e.NewPath != "" {
			cmd.Printf("  -> %s", e.NewPath)
		}
		cmd.Println()
	}
	return nil
}
