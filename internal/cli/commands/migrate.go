package commands

import (
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"conform/internal/cli"
	"conform/internal/config"
	"conform/internal/migration"
)

// MigrateCommand handles the migrate command
type MigrateCommand struct {
	config *config.Config
	logger *slog.Logger
}

// NewMigrateCommand creates a new MigrateCommand
func NewMigrateCommand(cfg *config.Config, logger *slog.Logger) *MigrateCommand {
	return &MigrateCommand{
		config: cfg,
		logger: logger,
	}
}

// Execute runs the command
func (mc *MigrateCommand) Execute(cmd *cobra.Command, args []string) error {
	dsn := mc.config.ResultsDSN
	if dsn == "" {
		return cli.NewExitError(cli.ExitCommandError, config.EnvResultsDSN+" is not set; the JSON store needs no schema")
	}

	db, err := migration.Open(dsn)
	if err != nil {
		return cli.WrapExitError(cli.ExitCommandError, "failed to open results database", err)
	}
	defer db.Close()

	var migrator migration.Migrator = migration.NewSchemaMigrator(db, mc.logger)
	if err := migrator.Run(cmd.Context()); err != nil {
		return cli.WrapExitError(cli.ExitCommandError, "migration failed", err)
	}
	color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✓ Results schema is ready (%s)\n", db.Driver)
	return nil
}
