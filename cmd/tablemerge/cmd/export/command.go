// Package export implements the export command.
package export

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentstation/tablemerge"
	"github.com/agentstation/tablemerge/internal/appcontext"
	"github.com/agentstation/tablemerge/internal/cmd/output"
	"github.com/agentstation/tablemerge/pkg/errors"
	"github.com/agentstation/tablemerge/pkg/merge"
	"github.com/agentstation/tablemerge/pkg/provenance"
	"github.com/agentstation/tablemerge/pkg/records"
)

// Export types.
const (
	TypeCSV  = "csv"
	TypeJSON = "json"
	TypeYAML = "yaml"
)

// Document is the json/yaml form of an exported merged table.
type Document struct {
	Family  string   `json:"family" yaml:"family"`
	Columns []string `json:"columns" yaml:"columns"`
	Sources []string `json:"sources" yaml:"sources"`
	Rows    [][]any  `json:"rows" yaml:"rows"`
}

// NewDocument flattens a merged table, keeping native cell types.
func NewDocument(rt *merge.ResolvedTable) Document {
	doc := Document{
		Family:  rt.Family,
		Columns: rt.Columns,
		Sources: rt.Sources,
		Rows:    make([][]any, len(rt.Rows)),
	}
	for i, r := range rt.Rows {
		row := make([]any, len(r.Cells))
		for j, c := range r.Cells {
			row[j] = c.Value.Interface()
		}
		doc.Rows[i] = row
	}
	return doc
}

// NewCommand creates the export command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	var (
		kind           string
		file           string
		provenanceFile string
	)

	cmd := &cobra.Command{
		Use:     "export <family>",
		GroupID: "core",
		Short:   "Write the merged table of a family",
		Long: `Export merges a family and writes the result as csv, json or yaml, to a
file or stdout. With --provenance the contributions of every cell are
saved alongside as a yaml document.`,
		Example: `  tablemerge export items --type csv --file merged/items.csv
  tablemerge export items --type json --provenance items.provenance.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind = strings.ToLower(kind)
			switch kind {
			case TypeCSV, TypeJSON, TypeYAML:
			default:
				return errors.NewValidationError("type", kind, "must be one of: csv, json, yaml")
			}

			tracker := provenance.NewTracker(provenanceFile != "")
			client, err := app.ClientWithOptions(tablemerge.WithProvenance(tracker))
			if err != nil {
				return err
			}
			defer client.Close()

			rt, err := client.Merge(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if err := write(cmd.OutOrStdout(), file, kind, rt); err != nil {
				return err
			}
			app.Logger().Info().
				Str("family", rt.Family).
				Int("rows", rt.RowCount()).
				Str("file", file).
				Msg("Exported merged table")

			if provenanceFile != "" {
				if err := provenance.Save(provenanceFile, tracker.Map()); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&kind, "type", "t", TypeCSV, "export type: csv, json, yaml")
	cmd.Flags().StringVarP(&file, "file", "f", "", "output file (default stdout)")
	cmd.Flags().StringVar(&provenanceFile, "provenance", "", "also save per-cell provenance to this yaml file")

	return cmd
}

func write(stdout io.Writer, file, kind string, rt *merge.ResolvedTable) (err error) {
	w := stdout
	if file != "" {
		var f *os.File
		f, err = os.Create(file) //nolint:gosec // user supplied output path
		if err != nil {
			return errors.WrapIO("create", file, err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = errors.WrapIO("close", file, cerr)
			}
		}()
		w = f
	}

	switch kind {
	case TypeCSV:
		return records.WriteTable(w, rt.Table())
	case TypeJSON:
		return output.NewFormatter(output.FormatJSON).Format(w, NewDocument(rt))
	case TypeYAML:
		return output.NewFormatter(output.FormatYAML).Format(w, NewDocument(rt))
	default:
		return fmt.Errorf("unsupported export type %q", kind)
	}
}
