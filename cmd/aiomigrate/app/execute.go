package app

import (
	"context"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/workloadsec/aiomigrate/internal/cmd/output"
	"github.com/workloadsec/aiomigrate/pkg/constants"
	"github.com/workloadsec/aiomigrate/pkg/logging"
)

// Execute runs the aiomigrate CLI application with the given arguments.
// This is the main entry point called from main.go.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     constants.AppName,
		Short:   "Migrate objects between workload security platforms",
		Version: a.version,
		Long: `aiomigrate copies computer groups, smart folders, scheduled tasks and
event-based tasks from one workload security platform to another.

Endpoints are numbered in the order they appear in the configuration file,
starting at 1. Without --destination a command lists the objects of the
source endpoint; with it a one-way merge runs. Merges can be repeated:
objects that already exist on the destination are reused.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.AddGroup(&cobra.Group{
		ID:    "migrate",
		Title: "Migration Commands:",
	})

	rootCmd.AddGroup(&cobra.Group{
		ID:    "config",
		Title: "Configuration Commands:",
	})

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.config.ConfigFile, "config", a.config.ConfigFile, "config file (default is ./config.yaml, then $XDG_CONFIG_HOME/aiomigrate/config.yaml)")
	flags.BoolVarP(&a.config.Verbose, "verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	flags.BoolVarP(&a.config.Quiet, "quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	flags.BoolVar(&a.config.NoColor, "no-color", a.config.NoColor, "disable colored output")
	flags.StringVarP(&a.config.Format, "format", "o", a.config.Format, "output format: yaml, json, table, dump")
	flags.StringVar(&a.config.LogLevel, "log-level", a.config.LogLevel, "log level: trace, debug, info, warn, error (overrides -v/-q)")

	rootCmd.SetVersionTemplate(constants.AppName + " {{.Version}}\n")
	if a.out != nil {
		rootCmd.SetOut(a.out)
	}

	a.registerCommands(rootCmd)

	return rootCmd
}

// setupCommand is called before any command runs.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	if _, err := output.ParseFormat(a.config.Format); err != nil {
		return err
	}

	// Reinitialize logger with the parsed flags
	logger := NewLogger(a.config)
	a.logger = &logger
	logging.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logging.WithLogger(ctx, a.logger)
	ctx = logging.WithRunID(ctx, uuid.NewString())
	ctx = logging.WithOperation(ctx, cmd.Name())
	cmd.SetContext(ctx)

	return nil
}

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(a.CreateGroupsCommand())
	rootCmd.AddCommand(a.CreateFoldersCommand())
	rootCmd.AddCommand(a.CreateScheduledTasksCommand())
	rootCmd.AddCommand(a.CreateEventBasedTasksCommand())

	rootCmd.AddCommand(a.CreateEndpointsCommand())
	rootCmd.AddCommand(a.CreateVersionCommand())
}

// ExitOnError is a helper that prints an error and exits with status 1.
// This is meant to be used in main.go for top-level error handling.
func ExitOnError(err error) {
	if err != nil {
		//nolint:errcheck // Ignoring write error since we're exiting anyway
		_, _ = os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}
