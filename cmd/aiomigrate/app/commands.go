package app

import (
	"github.com/spf13/cobra"

	"github.com/workloadsec/aiomigrate/cmd/aiomigrate/cmd/endpoints"
	"github.com/workloadsec/aiomigrate/cmd/aiomigrate/cmd/migrate"
	appcontext "github.com/workloadsec/aiomigrate/cmd/aiomigrate/context"
)

// Ensure App implements the command context at compile time.
var _ appcontext.Context = (*App)(nil)

// CreateEndpointsCommand creates the endpoints command with app dependencies.
func (a *App) CreateEndpointsCommand() *cobra.Command {
	return endpoints.NewCommand(a)
}

// CreateGroupsCommand creates the groups command with app dependencies.
func (a *App) CreateGroupsCommand() *cobra.Command {
	return migrate.NewGroupsCommand(a)
}

// CreateFoldersCommand creates the folders command with app dependencies.
func (a *App) CreateFoldersCommand() *cobra.Command {
	return migrate.NewFoldersCommand(a)
}

// CreateScheduledTasksCommand creates the scheduled-tasks command with app dependencies.
func (a *App) CreateScheduledTasksCommand() *cobra.Command {
	return migrate.NewScheduledTasksCommand(a)
}

// CreateEventBasedTasksCommand creates the event-based-tasks command with app dependencies.
func (a *App) CreateEventBasedTasksCommand() *cobra.Command {
	return migrate.NewEventBasedTasksCommand(a)
}

// CreateVersionCommand creates the version command.
func (a *App) CreateVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		GroupID: "config",
		Short:   "Show version information",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("aiomigrate %s\n", a.version)
			if a.config.Verbose {
				cmd.Printf("  commit:   %s\n", a.commit)
				cmd.Printf("  built:    %s\n", a.date)
				cmd.Printf("  built by: %s\n", a.builtBy)
			}
		},
	}
}
