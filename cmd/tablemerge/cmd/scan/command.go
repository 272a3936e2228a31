// Package scan implements the scan command.
package scan

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/tablemerge/internal/appcontext"
	"github.com/agentstation/tablemerge/internal/cmd/cmdutil"
	"github.com/agentstation/tablemerge/internal/cmd/table"
)

// NewCommand creates the scan command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:     "scan",
		GroupID: "core",
		Short:   "Discover table families under the root directories",
		Long: `Scan walks every root directory recursively, following symlinks, and
groups record files into families: a base file plus the variants whose
names end in a known suffix tag (items.csv, items_kcc.csv, ...).`,
		Example: `  tablemerge scan -r ./data
  tablemerge scan -r ./data -r ./mods -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			result, err := client.Scan(cmd.Context())
			if err != nil {
				return err
			}
			app.Logger().Debug().
				Int("files", result.TotalFiles).
				Int("families", len(result.Families)).
				Msg("Scan complete")
			return cmdutil.Print(cmd, app, result, func(bool) table.Data {
				return table.ScanToTableData(result)
			})
		},
	}
}
