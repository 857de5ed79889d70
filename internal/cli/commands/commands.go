package commands

import (
	"context"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"conform/internal/cli"
	"conform/internal/config"
	"conform/internal/discovery"
	"conform/internal/execution"
	"conform/internal/parser"
	"conform/internal/storage"
	"conform/internal/ui"
)

// Commands holds all CLI commands
type Commands struct {
	Run      *RunCommand
	List     *ListCommand
	Migrate  *MigrateCommand
	Failures *FailuresCommand
}

// StoreOpener opens the configured run store. Commands open it lazily so
// a broken results database only fails the commands that need it.
type StoreOpener func(ctx context.Context) (storage.Storage, error)

// NewCommands creates all commands with dependencies
func NewCommands(cfg *config.Config, logger *slog.Logger) *Commands {
	// Initialize dependencies
	scanner := discovery.NewScanner(cfg.PathsToIgnore)
	outcomeParser := parser.NewOutcomeParser()
	runner := execution.NewRunner(cfg, outcomeParser, logger)
	engine := execution.NewEngine(cfg, execution.NewDepthFirstPlanner(), runner, logger)
	formatter := ui.NewFormatter(cfg, os.Stdout)
	trees := newTreeLoader(scanner, logger)
	openStore := func(ctx context.Context) (storage.Storage, error) {
		return storage.Open(ctx, cfg, logger)
	}

	return &Commands{
		Run:      NewRunCommand(cfg, trees, engine, outcomeParser, openStore, formatter, logger),
		List:     NewListCommand(cfg, trees, openStore, formatter, logger),
		Migrate:  NewMigrateCommand(cfg, logger),
		Failures: NewFailuresCommand(cfg, openStore, formatter),
	}
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags, cfg *config.Config) {
	applyFlags := func(cmd *cobra.Command, args []string) error {
		// Update config with flags after parsing
		flags.Paths = args
		if err := cfg.ApplyFlags(flags.ToConfigFlags()); err != nil {
			return cli.WrapExitError(cli.ExitCommandError, "invalid flags", err)
		}
		if flags.NoColor {
			color.NoColor = true
		}
		return nil
	}
	rootCmd.PersistentFlags().BoolVar(&flags.NoColor, "no-color", false, "Disable colored output")

	// Run command
	runCmd := &cobra.Command{
		Use:     "run [paths|globs...]",
		Short:   "Run conformance examples",
		Long:    "Load spec sources, run every selected example against the embedded JavaScript engine and report pass/fail/error per example",
		RunE:    c.Run.Execute,
		PreRunE: applyFlags,
	}
	runCmd.Flags().StringVarP(&flags.Filter, "filter", "f", "", "Only run examples whose path contains this text ('*' wildcards allowed, e.g. 'Grammar*Numbers')")
	runCmd.Flags().BoolVar(&flags.Bail, "bail", false, "Stop after the first example that does not pass")
	runCmd.Flags().StringVar(&flags.Format, "format", config.DefaultFormat, "Report format: text or json")
	runCmd.Flags().DurationVar(&flags.Timeout, "timeout", 0, "Per-example timeout (default "+config.DefaultTimeout.String()+")")
	runCmd.Flags().BoolVar(&flags.Progress, "progress", false, "Show a progress bar on stderr when it is a terminal")
	runCmd.Flags().BoolVar(&flags.OnlyFailed, "failed", false, "Run only the examples that did not pass in the last stored run")
	runCmd.Flags().BoolVar(&flags.OpenFailures, "open-failures", false, "Open the failures viewer when the run finishes with failures")
	runCmd.Flags().StringVar(&flags.MetricsFile, "metrics-file", "", "Write run metrics in the Prometheus text format to this file")
	rootCmd.AddCommand(runCmd)

	// List command
	listCmd := &cobra.Command{
		Use:     "list [paths|globs...]",
		Short:   "List registered examples",
		Long:    "Load spec sources and print the group tree without running anything",
		RunE:    c.List.Execute,
		PreRunE: applyFlags,
	}
	listCmd.Flags().StringVarP(&flags.Filter, "filter", "f", "", "Only list examples whose path contains this text ('*' wildcards allowed)")
	rootCmd.AddCommand(listCmd)

	// Migrate command
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the results schema",
		Long:  "Create the runs, results and failures tables in the database named by " + config.EnvResultsDSN,
		Args:  cobra.NoArgs,
		RunE:  c.Migrate.Execute,
	}
	rootCmd.AddCommand(migrateCmd)

	// Failures command
	failuresCmd := &cobra.Command{
		Use:     "failures",
		Short:   "View failures interactively",
		Long:    "Browse the failures of the last stored run; r marks a failure as reviewed",
		Args:    cobra.NoArgs,
		RunE:    c.Failures.Execute,
		PreRunE: applyFlags,
	}
	failuresCmd.Flags().BoolVar(&flags.Stats, "stats", false, "Print the stored run's statistics instead of opening the viewer")
	rootCmd.AddCommand(failuresCmd)
}
