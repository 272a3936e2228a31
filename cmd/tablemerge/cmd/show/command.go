// Package show implements the show and filter commands.
package show

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/tablemerge/internal/appcontext"
	"github.com/agentstation/tablemerge/internal/cmd/cmdutil"
	"github.com/agentstation/tablemerge/internal/cmd/table"
	"github.com/agentstation/tablemerge/pkg/merge"
)

// View is the json/yaml form of a merged listing.
type View struct {
	Family    string              `json:"family" yaml:"family"`
	Columns   []string            `json:"columns" yaml:"columns"`
	Sources   []string            `json:"sources" yaml:"sources"`
	TotalRows int                 `json:"total_rows" yaml:"total_rows"`
	Rows      []merge.ResolvedRow `json:"rows" yaml:"rows"`
	Summary   []merge.SourceCount `json:"summary,omitempty" yaml:"summary,omitempty"`
}

// NewCommand creates the show command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	var (
		limit   int
		columns []string
		sources bool
	)

	cmd := &cobra.Command{
		Use:     "show <family>",
		GroupID: "core",
		Short:   "Show the merged table of a family",
		Long: `Show merges every member of a family and prints the result. Later
members override earlier ones cell by cell; empty cells never override.
Use -o wide to see which file owns each value.`,
		Example: `  tablemerge show items
  tablemerge show items --limit 20 --columns ID,Name,hp*
  tablemerge show items -o wide --sources`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := mergeFamily(cmd, app, args[0])
			if err != nil {
				return err
			}
			rows := rt.Rows
			if limit > 0 && len(rows) > limit {
				rows = rows[:limit]
			}
			return render(cmd, app, rt, rows, columns, sources)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "maximum rows to show (0 for all)")
	cmd.Flags().StringSliceVarP(&columns, "columns", "c", nil, "columns to show, glob patterns allowed")
	cmd.Flags().BoolVar(&sources, "sources", false, "also show how many cells each file owns")

	return cmd
}

// NewFilterCommand creates the filter command using app context.
func NewFilterCommand(app appcontext.Interface) *cobra.Command {
	var (
		column  string
		value   string
		columns []string
	)

	cmd := &cobra.Command{
		Use:     "filter <family>",
		GroupID: "core",
		Short:   "Show merged rows whose column equals a value",
		Example: `  tablemerge filter items --column Type --value weapon`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cmdutil.RequireFlag("column", column); err != nil {
				return err
			}
			rt, err := mergeFamily(cmd, app, args[0])
			if err != nil {
				return err
			}
			rows, err := rt.Filter(column, value)
			if err != nil {
				return err
			}
			app.Logger().Debug().Int("matches", len(rows)).Str("column", column).Msg("Filtered rows")
			return render(cmd, app, rt, rows, columns, false)
		},
	}

	cmd.Flags().StringVar(&column, "column", "", "column to match (required)")
	cmd.Flags().StringVar(&value, "value", "", "value the column must render as")
	cmd.Flags().StringSliceVarP(&columns, "columns", "c", nil, "columns to show, glob patterns allowed")

	return cmd
}

func mergeFamily(cmd *cobra.Command, app appcontext.Interface, name string) (*merge.ResolvedTable, error) {
	client, err := app.Client()
	if err != nil {
		return nil, err
	}
	return client.Merge(cmd.Context(), name)
}

func render(cmd *cobra.Command, app appcontext.Interface, rt *merge.ResolvedTable, rows []merge.ResolvedRow, columns []string, sources bool) error {
	if rows == nil {
		rows = []merge.ResolvedRow{}
	}
	view := View{
		Family:    rt.Family,
		Columns:   rt.Columns,
		Sources:   rt.Sources,
		TotalRows: rt.RowCount(),
		Rows:      rows,
	}
	if sources {
		view.Summary = rt.SourceSummary()
	}

	if err := cmdutil.Print(cmd, app, view, func(wide bool) table.Data {
		return table.ResolvedToTableData(rt, rows, columns, wide)
	}); err != nil {
		return err
	}

	if !cmdutil.IsTable(app) {
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d of %d rows, %d columns, %d files\n", rt.Family,
		len(rows), rt.RowCount(), rt.ColumnCount(), len(rt.Sources))
	if sources {
		return cmdutil.Print(cmd, app, nil, func(bool) table.Data {
			return table.SourceSummaryToTableData(rt)
		})
	}
	return nil
}
