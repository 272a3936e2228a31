// Package families implements the families and search commands.
package families

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/tablemerge/internal/appcontext"
	"github.com/agentstation/tablemerge/internal/cmd/cmdutil"
	"github.com/agentstation/tablemerge/internal/cmd/table"
	"github.com/agentstation/tablemerge/pkg/family"
)

// NewCommand creates the families command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	var members bool

	cmd := &cobra.Command{
		Use:     "families",
		GroupID: "core",
		Short:   "List discovered families",
		Example: `  tablemerge families -r ./data
  tablemerge families -r ./data --members`,
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
			return render(cmd, app, result.Families, members)
		},
	}

	cmd.Flags().BoolVarP(&members, "members", "m", false, "list every member file")

	return cmd
}

// NewSearchCommand creates the search command using app context.
func NewSearchCommand(app appcontext.Interface) *cobra.Command {
	var members bool

	cmd := &cobra.Command{
		Use:     "search <pattern>",
		GroupID: "core",
		Short:   "Find families whose name contains a pattern",
		Long:    `Search lists the families whose name contains the pattern, ignoring case.`,
		Example: `  tablemerge search item`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			result, err := client.Scan(cmd.Context())
			if err != nil {
				return err
			}
			return render(cmd, app, result.Search(args[0]), members)
		},
	}

	cmd.Flags().BoolVarP(&members, "members", "m", false, "list every member file")

	return cmd
}

func render(cmd *cobra.Command, app appcontext.Interface, fams []family.Family, members bool) error {
	if fams == nil {
		fams = []family.Family{}
	}
	return cmdutil.Print(cmd, app, fams, func(wide bool) table.Data {
		return table.FamiliesToTableData(fams, members || wide)
	})
}
