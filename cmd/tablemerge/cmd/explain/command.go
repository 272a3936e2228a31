// Package explain implements the explain command.
package explain

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/tablemerge/internal/appcontext"
	"github.com/agentstation/tablemerge/internal/cmd/cmdutil"
	"github.com/agentstation/tablemerge/internal/cmd/emoji"
	"github.com/agentstation/tablemerge/internal/cmd/table"
)

// NewCommand creates the explain command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	var (
		row    int64
		column string
	)

	cmd := &cobra.Command{
		Use:     "explain <family>",
		GroupID: "core",
		Short:   "Explain which file supplied a merged cell",
		Long: `Explain merges the family while recording every value each member
supplied for the cell, then lists them in merge order. The last
non-empty contribution owns the cell and is where an edit would go.`,
		Example: `  tablemerge explain items --row 12 --col Value`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cmdutil.RequireFlag("col", column); err != nil {
				return err
			}
			client, err := app.Client()
			if err != nil {
				return err
			}
			exp, err := client.Explain(cmd.Context(), args[0], row, column)
			if err != nil {
				return err
			}

			if cmdutil.IsTable(app) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s row %d %s = %q\n", exp.Family, exp.RowID, exp.Column, exp.Value.String())
				fmt.Fprintf(cmd.OutOrStdout(), "  %s %s\n", emoji.Winner, exp.Source)
				for _, s := range exp.Sources {
					if !exp.IsWinner(s) {
						fmt.Fprintf(cmd.OutOrStdout(), "    %s\n", s)
					}
				}
			}
			return cmdutil.Print(cmd, app, exp, func(bool) table.Data {
				return table.ExplanationToTableData(exp)
			})
		},
	}

	cmd.Flags().Int64Var(&row, "row", 0, "row id (required)")
	cmd.Flags().StringVar(&column, "col", "", "column name (required)")
	_ = cmd.MarkFlagRequired("row")

	return cmd
}
