package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Inspect and maintain the document archive",
	Long:  `Search, summarise, export and clean up the dated archive tree.`,
}

var archiveSearchCmd = &cobra.Command{
	Use:   "search [term]",
	Short: "Search archived documents",
	Long: `Searches archive filenames and metadata sidecars for a term,
case-insensitive.`,
	Args: cobra.ExactArgs(1),
	RunE: runArchiveSearch,
}

var archiveStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show archive statistics",
	RunE:  runArchiveStats,
}

var archiveExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export the archive index as CSV",
	Args:  cobra.ExactArgs(1),
	RunE:  runArchiveExport,
}

var archiveCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove empty year folders",
	RunE:  runArchiveCleanup,
}

func init() {
	archiveCmd.AddCommand(archiveSearchCmd)
	archiveCmd.AddCommand(archiveStatsCmd)
	archiveCmd.AddCommand(archiveExportCmd)
	archiveCmd.AddCommand(archiveCleanupCmd)
	rootCmd.AddCommand(archiveCmd)
}

func runArchiveSearch(cmd *cobra.Command, args []string) error {
	if archiveService == nil {
		return errors.New("archive service not configured")
	}

	matches, err := archiveService.Search(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("archive search failed: %w", err)
	}

	if len(matches) == 0 {
		cmd.Println("No matches found.")
		return nil
	}

	for _, m := range matches {
		cmd.Printf("  %s (%s)\n", m.ArchivePath, m.MatchedIn)
		if m.Snippet != "" {
			cmd.Printf("      %s\n", m.Snippet)
		}
	}
	cmd.Printf("\n%d matches.\n", len(matches))
	return nil
}

func runArchiveStats(cmd *cobra.Command, _ []string) error {
	if archiveService == nil {
		return errors.New("archive service not configured")
	}

	stats, err := archiveService.Statistics(context.Background())
	if err != nil {
		return fmt.Errorf("archive stats failed: %w", err)
	}

	cmd.Printf("Files: %d\n", stats.TotalFiles)
	cmd.Printf("Total size: %d bytes\n", stats.TotalSize)

	years := make([]string, 0, len(stats.FilesByYear))
	for year := range stats.FilesByYear {
		years = append(years, year)
	}
	sort.Strings(years)
	for _, year := range years {
		cmd.Printf("  %s: %d\n", year, stats.FilesByYear[year])
	}
	return nil
}

func runArchiveExport(cmd *cobra.Command, args []string) error {
	if archiveService == nil {
		return errors.New("archive service not configured")
	}

	if err := archiveService.ExportIndex(context.Background(), args[0]); err != nil {
		return fmt.Errorf("archive export failed: %w", err)
	}
	cmd.Printf("Index written to %s.\n", args[0])
	return nil
}

func runArchiveCleanup(cmd *cobra.Command, _ []string) error {
	if archiveService == nil {
		return errors.New("archive service not configured")
	}

	removed, err := archiveService.CleanupEmptyBuckets(context.Background())
	if err != nil {
		return fmt.Errorf("archive cleanup failed: %w", err)
	}
	cmd.Printf("Removed %d empty folders.\n", removed)
	return nil
}
