// Package parse implements the parse command.
package parse

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/tablemerge/internal/appcontext"
	"github.com/agentstation/tablemerge/internal/cmd/cmdutil"
	"github.com/agentstation/tablemerge/internal/cmd/table"
	"github.com/agentstation/tablemerge/pkg/constants"
	"github.com/agentstation/tablemerge/pkg/records"
	rectable "github.com/agentstation/tablemerge/pkg/table"
)

// Preview is the json/yaml form of a parsed file.
type Preview struct {
	Path      string            `json:"path" yaml:"path"`
	Columns   []string          `json:"columns" yaml:"columns"`
	TotalRows int               `json:"total_rows" yaml:"total_rows"`
	Rows      []rectable.Row    `json:"rows" yaml:"rows"`
	Kinds     map[string]string `json:"kinds" yaml:"kinds"`
}

// NewCommand creates the parse command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:     "parse <file>",
		GroupID: "management",
		Short:   "Parse one record file and preview its rows",
		Long: `Parse reads a single record file the way a merge would, reporting the
header, the row count, the kind of value found in each column and the
first rows.`,
		Example: `  tablemerge parse data/items_kcc.csv
  tablemerge parse data/items.csv --limit 0 -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := records.Parse(args[0], records.WithLogger(app.Logger()))
			if err != nil {
				return err
			}

			rows := t.Rows
			if limit > 0 && len(rows) > limit {
				rows = rows[:limit]
			}
			preview := Preview{
				Path:      t.Path,
				Columns:   t.ColumnNames(),
				TotalRows: len(t.Rows),
				Rows:      rows,
				Kinds:     columnKinds(t),
			}

			if cmdutil.IsTable(app) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d columns, %d rows\n", t.Path, len(t.Columns), len(t.Rows))
			}
			return cmdutil.Print(cmd, app, preview, func(bool) table.Data {
				return table.RecordTableToTableData(t, limit)
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", constants.PreviewRows, "rows to preview (0 for all)")

	return cmd
}

// columnKinds names the value kind of each column: the single kind of its
// non-empty cells, "mixed" when they differ, "empty" when there are none.
func columnKinds(t *rectable.Table) map[string]string {
	kinds := make(map[string]string, len(t.Columns))
	for _, c := range t.Columns {
		kind := ""
		for _, r := range t.Rows {
			v := r.Cells[c.Index]
			if v.IsEmpty() {
				continue
			}
			switch {
			case kind == "":
				kind = v.Kind().String()
			case kind != v.Kind().String():
				kind = "mixed"
			}
		}
		if kind == "" {
			kind = rectable.KindEmpty.String()
		}
		kinds[c.Name] = kind
	}
	return kinds
}
