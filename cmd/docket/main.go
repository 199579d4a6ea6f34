package main

import (
	"fmt"
	"os"
	"path/filepath"

	configfile "github.com/meridian-labs/docket-cli/internal/adapters/driven/config/file"
	"github.com/meridian-labs/docket-cli/internal/adapters/driven/pdftext"
	"github.com/meridian-labs/docket-cli/internal/adapters/driven/storage/sqlite"
	"github.com/meridian-labs/docket-cli/internal/adapters/driving/cli"
	"github.com/meridian-labs/docket-cli/internal/core/services"
)

// version is overridden at build time via ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	config, err := configfile.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	store, err := sqlite.NewStore(config.GetString("data_dir"))
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer store.Close()

	rels := store.RelationshipStore()

	identityColumn := config.GetString("import.identity_column")
	if identityColumn == "" {
		identityColumn = services.DefaultIdentityColumn
	}

	archiveRoot := config.GetString("archive.root")
	if archiveRoot == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolving home directory: %w", err)
		}
		archiveRoot = filepath.Join(home, ".docket", "archive")
	}

	var archiveOpts []services.ArchiveOption
	if column := config.GetString("archive.name_column"); column != "" {
		archiveOpts = append(archiveOpts, services.WithNameColumn(column))
	}
	archiver := services.NewArchiveService(rels, archiveRoot, archiveOpts...)

	matchOpts := services.MatchOptions{
		SkipPastDue:   config.GetBool("matching.skip_past_due"),
		DueDateColumn: config.GetString("import.due_date_column"),
	}
	if err := pdftext.CheckAvailable(); err == nil {
		matchOpts.Extractor = pdftext.New()
	} else {
		fmt.Fprintln(os.Stderr, pdftext.InstallInstructions())
	}

	cli.SetServices(cli.Services{
		Sync:      services.NewSyncService(rels, identityColumn),
		Match:     services.NewMatchService(rels, matchOpts),
		Reconcile: services.NewReconcileService(rels),
		Archive:   archiver,
		Query:     services.NewQueryService(rels, store.SearchLogStore()),
		Workflow:  services.NewWorkflowService(rels, archiver),
		Config:    config,
	})
	cli.SetVersion(version)

	return cli.Execute()
}
