// Package migrate implements the groups, folders, scheduled-tasks and
// event-based-tasks commands. Each lists the objects of a source endpoint,
// or merges them into a destination endpoint when --destination is given.
package migrate

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	appcontext "github.com/workloadsec/aiomigrate/cmd/aiomigrate/context"
	"github.com/workloadsec/aiomigrate/internal/cmd/output"
	"github.com/workloadsec/aiomigrate/pkg/errors"
	"github.com/workloadsec/aiomigrate/pkg/logging"
	"github.com/workloadsec/aiomigrate/pkg/merge"
	"github.com/workloadsec/aiomigrate/pkg/platform"
)

// MergeFunc merges one collection from source to target.
type MergeFunc func(ctx context.Context, source, target merge.Platform, opts ...merge.Option) (*merge.Report, error)

// command describes one migration command.
type command struct {
	use      string
	aliases  []string
	short    string
	long     string
	resource platform.Resource
	columns  []string
	run      MergeFunc
	tasks    bool // accepts --task-prefix
	policies bool // accepts --policy-suffix
}

// Flags holds the flags shared by the migration commands.
type Flags struct {
	Destination  int
	TaskPrefix   string
	PolicySuffix string
}

// NewGroupsCommand creates the groups command.
func NewGroupsCommand(app appcontext.Context) *cobra.Command {
	return newCommand(app, command{
		use:     "groups",
		aliases: []string{"computer-groups"},
		short:   "List or merge computer groups",
		long: `List the computer groups of SOURCE, or merge them into --destination.

Groups are created parents first. A group whose name already exists under the
same parent on the destination is reused.`,
		resource: platform.ComputerGroups,
		columns:  []string{"ID", "name", "parentGroupID", "type"},
		run:      merge.Groups,
	})
}

// NewFoldersCommand creates the folders command.
func NewFoldersCommand(app appcontext.Context) *cobra.Command {
	return newCommand(app, command{
		use:     "folders",
		aliases: []string{"smart-folders"},
		short:   "List or merge smart folders",
		long: `List the smart folders of SOURCE, or merge them into --destination.

Policy references in folder rules are translated to the destination policy
with the same name and parent name.`,
		resource: platform.SmartFolders,
		columns:  []string{"ID", "name", "parentSmartFolderID"},
		run:      merge.Folders,
		policies: true,
	})
}

// NewScheduledTasksCommand creates the scheduled-tasks command.
func NewScheduledTasksCommand(app appcontext.Context) *cobra.Command {
	return newCommand(app, command{
		use:     "scheduled-tasks",
		aliases: []string{"scheduledtasks"},
		short:   "List or merge scheduled tasks",
		long: `List the scheduled tasks of SOURCE, or merge them into --destination.

Computer, group, policy, smart folder and contact references are translated
to the destination. A task with a reference that cannot be translated is
left behind and reported; the other tasks are still merged.`,
		resource: platform.ScheduledTasks,
		columns:  []string{"ID", "name", "type", "enabled"},
		run:      merge.ScheduledTasks,
		tasks:    true,
		policies: true,
	})
}

// NewEventBasedTasksCommand creates the event-based-tasks command.
func NewEventBasedTasksCommand(app appcontext.Context) *cobra.Command {
	return newCommand(app, command{
		use:     "event-based-tasks",
		aliases: []string{"eventbasedtasks"},
		short:   "List or merge event-based tasks",
		long: `List the event-based tasks of SOURCE, or merge them into --destination.

Policy and group assignments are translated to the destination. Relay group
assignments cannot be translated and are removed.`,
		resource: platform.EventBasedTasks,
		columns:  []string{"ID", "name", "type", "enabled"},
		run:      merge.EventBasedTasks,
		tasks:    true,
		policies: true,
	})
}

func newCommand(app appcontext.Context, s command) *cobra.Command {
	flags := &Flags{}
	cmd := &cobra.Command{
		Use:     s.use + " SOURCE",
		Aliases: s.aliases,
		GroupID: "migrate",
		Short:   s.short,
		Long:    s.long,
		Example: "  aiomigrate " + s.use + " 1                    # list objects of endpoint 1\n" +
			"  aiomigrate " + s.use + " 1 --destination 2    # merge endpoint 1 into endpoint 2",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := parseEndpointID(args[0])
			if err != nil {
				return err
			}
			if flags.Destination == 0 {
				return list(cmd, app, s, source)
			}
			return run(cmd, app, s, source, flags)
		},
	}

	f := cmd.Flags()
	f.IntVarP(&flags.Destination, "destination", "d", 0, "endpoint ID to merge into")
	if s.tasks {
		f.StringVar(&flags.TaskPrefix, "task-prefix", "", "prefix for the names of merged tasks")
		f.StringVar(&flags.TaskPrefix, "taskprefix", "", "")
		_ = f.MarkHidden("taskprefix")
	}
	if s.policies {
		f.StringVar(&flags.PolicySuffix, "policy-suffix", "", "suffix the destination appended to imported policy names")
		f.StringVar(&flags.PolicySuffix, "policysuffix", "", "")
		_ = f.MarkHidden("policysuffix")
	}
	return cmd
}

func parseEndpointID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id < 1 {
		return 0, errors.NewValidationError("source", arg, "endpoint ID must be a positive number")
	}
	return id, nil
}

func list(cmd *cobra.Command, app appcontext.Context, s command, sourceID int) error {
	source, err := app.Connector(sourceID)
	if err != nil {
		return err
	}
	ctx := logging.WithEndpoint(cmd.Context(), source.Label())

	coll, err := merge.Source(ctx, source, s.resource)
	if err != nil {
		return err
	}
	logging.FromContext(ctx).Debug().Int("count", coll.Len()).Msgf("Listing %s", s.resource.Name)

	format := output.Resolve(app.OutputFormat(), output.FormatYAML)
	var data any = output.Plain(coll.Records())
	if format == output.FormatTable {
		data = output.RecordsTable(coll.Records(), s.columns...)
	}
	return output.NewFormatter(format).Format(cmd.OutOrStdout(), data)
}

func run(cmd *cobra.Command, app appcontext.Context, s command, sourceID int, flags *Flags) error {
	if flags.Destination == sourceID {
		return errors.NewValidationError("destination", flags.Destination, "destination must differ from the source")
	}
	source, err := app.Connector(sourceID)
	if err != nil {
		return err
	}
	target, err := app.Connector(flags.Destination)
	if err != nil {
		return err
	}

	report, err := s.run(cmd.Context(), source, target,
		merge.WithTaskPrefix(flags.TaskPrefix),
		merge.WithPolicySuffix(flags.PolicySuffix),
	)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	switch format := output.Resolve(app.OutputFormat(), ""); format {
	case output.FormatJSON, output.FormatYAML, output.FormatDump:
		return output.NewFormatter(format).Format(w, report)
	default:
		return output.WriteSummary(w, report, output.NewStyles(output.ColorEnabled(w, app.NoColor())))
	}
}
