package cli

import (
	"github.com/spf13/cobra"

	"github.com/meridian-labs/docket-cli/internal/core/ports/driven"
	"github.com/meridian-labs/docket-cli/internal/core/ports/driving"
	"github.com/meridian-labs/docket-cli/internal/logger"
)

// Services injected by the composition root before Execute.
var (
	syncService      driving.Synchroniser
	matchService     driving.Matcher
	reconcileService driving.Reconciler
	archiveService   driving.Archiver
	queryService     driving.Query
	workflowService  driving.Workflow
	configStore      driven.ConfigStore
)

// version is set at build time via ldflags.
var version = "dev"

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "docket",
	Short: "Order-document correlation engine",
	Long: `docket keeps imported order rows and the documents on disk in sync:
it extracts order identifiers from filenames, attaches documents to orders,
clears links whose files disappeared and archives processed documents into
dated folders.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

// Services bundles everything the commands need.
type Services struct {
	Sync      driving.Synchroniser
	Match     driving.Matcher
	Reconcile driving.Reconciler
	Archive   driving.Archiver
	Query     driving.Query
	Workflow  driving.Workflow
	Config    driven.ConfigStore
}

// SetServices injects the service implementations the commands use.
func SetServices(s Services) {
	syncService = s.Sync
	matchService = s.Match
	reconcileService = s.Reconcile
	archiveService = s.Archive
	queryService = s.Query
	workflowService = s.Workflow
	configStore = s.Config
}

// SetVersion sets the version string printed by the version command.
func SetVersion(v string) {
	version = v
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
