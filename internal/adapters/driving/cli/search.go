package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meridian-labs/docket-cli/internal/core/domain"
)

var (
	searchIdentifierOnly bool
	searchJSON           bool
)

var searchCmd = &cobra.Command{
	Use:   "search [term]",
	Short: "Search active orders",
	Long: `Performs a case-insensitive substring search across active orders.
By default every row column and the order number are searched; with
--identifier-only the search is restricted to order numbers.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().BoolVar(&searchIdentifierOnly, "identifier-only", false, "match order numbers only")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}

	scope := domain.ScopeGeneral
	if searchIdentifierOnly {
		scope = domain.ScopeIdentifierOnly
	}

	results, err := queryService.Search(context.Background(), args[0], scope)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	for i := range results {
		r := &results[i]
		cmd.Printf("  %s", r.OrderNumber)
		if r.HasDocument() {
			cmd.Printf("  %s", *r.DocumentPath)
		}
		cmd.Println()
	}
	cmd.Printf("\n%d results.\n", len(results))
	return nil
}
