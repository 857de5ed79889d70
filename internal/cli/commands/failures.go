package commands

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"conform/internal/cli"
	"conform/internal/config"
	"conform/internal/storage"
	"conform/internal/ui"
)

// FailuresCommand handles the failures command
type FailuresCommand struct {
	config    *config.Config
	openStore StoreOpener
	formatter *ui.Formatter
}

// NewFailuresCommand creates a new FailuresCommand
func NewFailuresCommand(cfg *config.Config, openStore StoreOpener, formatter *ui.Formatter) *FailuresCommand {
	return &FailuresCommand{
		config:    cfg,
		openStore: openStore,
		formatter: formatter,
	}
}

// Execute runs the command
func (fc *FailuresCommand) Execute(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	st, err := fc.openStore(ctx)
	if err != nil {
		return cli.WrapExitError(cli.ExitCommandError, "failed to open run store", err)
	}
	defer st.Close()

	record, err := st.Load(ctx)
	if errors.Is(err, storage.ErrNoRecord) {
		noticef("No stored run yet; use conform run first")
		return nil
	}
	if err != nil {
		return cli.WrapExitError(cli.ExitCommandError, "failed to load last run", err)
	}

	if fc.config.Flags.Stats {
		fc.formatter.PrintMetaStats(record)
		return nil
	}

	var viewer ui.Viewer = ui.NewErrorViewer(fc.config, st, os.Stdout)
	if err := viewer.View(record); err != nil {
		return cli.WrapExitError(cli.ExitCommandError, "failures viewer", err)
	}
	return nil
}
