package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"conform/internal/cli"
	"conform/internal/cli/commands"
	"conform/internal/config"
	"conform/internal/logging"
)

var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// Create root command
	rootCmd := &cobra.Command{
		Use:           "conform",
		Short:         "Language conformance assertion runner",
		Long:          `Runs executable examples that document the semantics of JavaScript against an embedded engine, and reports pass, fail or error per example grouped like the reference text.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return cli.WrapExitError(cli.ExitCommandError, "invalid flags for "+cmd.Name(), err)
	})

	// Load config: defaults, then .env, then the environment
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.ExitCommandError
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.ExitCommandError
	}
	logger := logging.New(level)

	// Create flags struct (will be populated by command flags)
	var flags cli.Flags

	// Create commands with dependencies and register them
	commands.NewCommands(cfg, logger).Register(rootCmd, &flags, cfg)

	// Interrupts stop the run between examples
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.GetExitCode(err)
	}
	return cli.ExitSuccess
}
