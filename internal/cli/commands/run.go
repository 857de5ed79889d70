package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"conform/internal/cli"
	"conform/internal/config"
	"conform/internal/discovery"
	"conform/internal/domain"
	"conform/internal/execution"
	"conform/internal/metrics"
	"conform/internal/parser"
	"conform/internal/storage"
	"conform/internal/ui"
)

// RunCommand handles the run command
type RunCommand struct {
	config    *config.Config
	trees     *treeLoader
	engine    *execution.Engine
	parser    parser.Parser
	openStore StoreOpener
	formatter *ui.Formatter
	logger    *slog.Logger
}

// NewRunCommand creates a new RunCommand
func NewRunCommand(
	cfg *config.Config,
	trees *treeLoader,
	engine *execution.Engine,
	p parser.Parser,
	openStore StoreOpener,
	formatter *ui.Formatter,
	logger *slog.Logger,
) *RunCommand {
	return &RunCommand{
		config:    cfg,
		trees:     trees,
		engine:    engine,
		parser:    p,
		openStore: openStore,
		formatter: formatter,
		logger:    logger,
	}
}

// Execute runs the command
func (rc *RunCommand) Execute(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// Load sources
	root, _, err := rc.trees.Load(ctx, rc.config.GetSpecPaths())
	if err != nil {
		return cli.WrapExitError(cli.ExitCommandError, "failed to load sources", err)
	}

	st, err := rc.openStore(ctx)
	if err != nil {
		return cli.WrapExitError(cli.ExitCommandError, "failed to open run store", err)
	}
	defer st.Close()

	// Select examples
	var selector execution.Selector = discovery.NewFilter(rc.config.Flags.Filter)
	if rc.config.Flags.OnlyFailed {
		last, err := st.Load(ctx)
		if errors.Is(err, storage.ErrNoRecord) {
			return cli.NewExitError(cli.ExitCommandError, "no stored run to take failures from; run without --failed first")
		}
		if err != nil {
			return cli.WrapExitError(cli.ExitCommandError, "failed to load last run", err)
		}
		selector = execution.AllOf{execution.KeySet(last.FailedKeys()), selector}
	}
	rc.engine.SetSelector(selector)

	json := rc.config.Flags.Format == "json"
	if !json && ui.ProgressWanted(rc.config.Flags.Progress) {
		rc.engine.SetObserver(ui.NewProgressBar(os.Stderr))
	}

	// Execute examples
	report, err := rc.engine.Execute(ctx, root)
	if err != nil {
		return cli.WrapExitError(cli.ExitCommandError, "run failed", err)
	}

	if json {
		if err := rc.formatter.PrintJSONLines(report); err != nil {
			return cli.WrapExitError(cli.ExitCommandError, "failed to write report", err)
		}
	} else {
		rc.formatter.PrintReport(report)
	}

	// Save results
	record := storage.NewRecord(report, rc.parser, time.Now())
	if err := saveRun(ctx, st, record); err != nil {
		return cli.WrapExitError(cli.ExitCommandError, "failed to save run", err)
	}
	rc.logger.Debug("run saved", "run_id", record.Meta.RunID, "failures", len(record.Details))

	if path := rc.config.Flags.MetricsFile; path != "" {
		recorder := metrics.New()
		recorder.Record(report)
		if err := recorder.WriteFile(path); err != nil {
			return cli.WrapExitError(cli.ExitCommandError, "failed to write metrics", err)
		}
	}

	if !report.OK() && rc.config.Flags.OpenFailures && !json {
		if err := ui.NewErrorViewer(rc.config, st, os.Stdout).View(record); err != nil {
			rc.logger.Warn("failures viewer", "error", err)
		}
	}
	return exitStatus(report)
}

// saveRun stores the record even when ctx was cancelled by an interrupt,
// so an aborted run still leaves its partial report behind.
func saveRun(ctx context.Context, st storage.Storage, record *domain.RunRecord) error {
	return st.Save(context.WithoutCancel(ctx), record)
}

// exitStatus maps a finished run to its exit error. An interrupted run
// never exits 0, even when everything it reached passed.
func exitStatus(report *domain.Report) error {
	c := report.Counts
	switch {
	case !report.OK():
		return cli.NewExitError(cli.ExitFailure,
			fmt.Sprintf("%d of %d example(s) did not pass", c.Failed+c.Errored, c.Total()))
	case report.Aborted:
		return cli.NewExitError(cli.ExitFailure,
			fmt.Sprintf("run interrupted after %d example(s)", c.Total()))
	default:
		return nil
	}
}

// noticef prints a yellow notice line to stderr.
func noticef(format string, args ...interface{}) {
	color.New(color.FgYellow).Fprintf(os.Stderr, format+"\n", args...)
}
