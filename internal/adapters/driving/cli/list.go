package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meridian-labs/docket-cli/internal/core/domain"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List active orders",
	Long:  `Lists all active orders with their document and processing state.`,
	RunE:  runList,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	if workflowService == nil {
		return errors.New("workflow service not configured")
	}

	summaries, err := workflowService.Overview(context.Background())
	if err != nil {
		return fmt.Errorf("list failed: %w", err)
	}

	if listJSON {
		return outputListJSON(cmd, summaries)
	}
	return outputListTable(cmd, summaries)
}

func outputListJSON(cmd *cobra.Command, summaries []domain.RelationshipSummary) error {
	data, err := json.MarshalIndent(summaries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal summaries: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputListTable(cmd *cobra.Command, summaries []domain.RelationshipSummary) error {
	if len(summaries) == 0 {
		cmd.Println("No active orders.")
		return nil
	}

	for i := range summaries {
		s := &summaries[i]

		state := "no document"
		if s.HasDocument {
			state = string(s.AttachmentMethod)
		}
		if s.Processed {
			state = "processed"
		}

		cmd.Printf("  %s  [%s]\n", s.OrderNumber, state)
		if s.DocumentPath != "" {
			cmd.Printf("      %s\n", s.DocumentPath)
		}
	}
	cmd.Printf("\n%d orders.\n", len(summaries))
	return nil
}
