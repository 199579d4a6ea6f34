package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// attachReason is a flag for the attach command.
var attachReason string

var attachCmd = &cobra.Command{
	Use:   "attach [order-number] [file]",
	Short: "Manually attach a document to an order",
	Long: `Links a file to an order, replacing any existing attachment. The
change is recorded in the order's history with the given reason.`,
	Args: cobra.ExactArgs(2),
	RunE: runAttach,
}

func init() {
	attachCmd.Flags().StringVarP(&attachReason, "reason", "r", "manual", "reason recorded in the change history")
	rootCmd.AddCommand(attachCmd)
}

func runAttach(cmd *cobra.Command, args []string) error {
	if workflowService == nil {
		return errors.New("workflow service not configured")
	}

	if err := workflowService.AttachDocument(context.Background(), args[0], args[1], attachReason); err != nil {
		return fmt.Errorf("attach failed: %w", err)
	}

	cmd.Printf("Attached %s to %s.\n", args[1], args[0])
	return nil
}
