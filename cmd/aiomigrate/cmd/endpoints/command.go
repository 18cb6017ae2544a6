// Package endpoints implements the endpoints command.
package endpoints

import (
	"github.com/spf13/cobra"

	appcontext "github.com/workloadsec/aiomigrate/cmd/aiomigrate/context"
	"github.com/workloadsec/aiomigrate/internal/cmd/output"
)

// Endpoint is one row of the endpoints listing.
type Endpoint struct {
	ID     int    `json:"id" yaml:"id"`
	Kind   string `json:"type" yaml:"type"`
	URL    string `json:"url" yaml:"url"`
	APIKey string `json:"api_key" yaml:"api_key"`
}

// NewCommand creates the endpoints command.
func NewCommand(app appcontext.Context) *cobra.Command {
	return &cobra.Command{
		Use:     "endpoints",
		Aliases: []string{"list"},
		GroupID: "config",
		Short:   "List configured endpoints",
		Long: `List the endpoints from the configuration file with the IDs used by the
migration commands. Only the last characters of each API key are shown.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			connectors, err := app.Connectors()
			if err != nil {
				return err
			}

			rows := make([]Endpoint, 0, len(connectors))
			for _, c := range connectors {
				rows = append(rows, Endpoint{
					ID:     c.ID(),
					Kind:   c.Kind().String(),
					URL:    c.URL(),
					APIKey: c.MaskedKey(),
				})
			}

			format := output.Resolve(app.OutputFormat(), output.FormatTable)
			return output.NewFormatter(format).Format(cmd.OutOrStdout(), rows)
		},
	}
}
