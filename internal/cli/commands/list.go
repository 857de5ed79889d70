package commands

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"conform/internal/cli"
	"conform/internal/config"
	"conform/internal/discovery"
	"conform/internal/storage"
	"conform/internal/ui"
)

// ListCommand handles the list command
type ListCommand struct {
	config    *config.Config
	trees     *treeLoader
	openStore StoreOpener
	formatter *ui.Formatter
	logger    *slog.Logger
}

// NewListCommand creates a new ListCommand
func NewListCommand(
	cfg *config.Config,
	trees *treeLoader,
	openStore StoreOpener,
	formatter *ui.Formatter,
	logger *slog.Logger,
) *ListCommand {
	return &ListCommand{
		config:    cfg,
		trees:     trees,
		openStore: openStore,
		formatter: formatter,
		logger:    logger,
	}
}

// Execute runs the command
func (lc *ListCommand) Execute(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	root, sources, err := lc.trees.Load(ctx, lc.config.GetSpecPaths())
	if err != nil {
		return cli.WrapExitError(cli.ExitCommandError, "failed to load sources", err)
	}

	// Filter examples
	if filter := discovery.NewFilter(lc.config.Flags.Filter); !filter.Empty() {
		root = pruneTree(root, nil, filter)
	}

	if root.CountExamples() == 0 && len(root.Children) == 0 {
		noticef("No examples found")
		return nil
	}

	lc.formatter.PrintTree(root, sources, lc.lastFailures(cmd))
	return nil
}

// lastFailures returns the keys that did not pass in the last stored run.
// A missing or unreadable store only loses the markers.
func (lc *ListCommand) lastFailures(cmd *cobra.Command) map[string]struct{} {
	ctx := cmd.Context()
	st, err := lc.openStore(ctx)
	if err != nil {
		lc.logger.Warn("run store unavailable", "error", err)
		return nil
	}
	defer st.Close()

	record, err := st.Load(ctx)
	if err != nil {
		if !errors.Is(err, storage.ErrNoRecord) {
			lc.logger.Warn("failed to load last run", "error", err)
		}
		return nil
	}
	return record.FailedKeys()
}
