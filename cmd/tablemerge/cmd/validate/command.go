// Package validate implements the validate command.
package validate

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/agentstation/tablemerge/internal/appcontext"
	"github.com/agentstation/tablemerge/internal/cmd/cmdutil"
	"github.com/agentstation/tablemerge/internal/cmd/emoji"
	"github.com/agentstation/tablemerge/internal/cmd/table"
	"github.com/agentstation/tablemerge/pkg/errors"
	"github.com/agentstation/tablemerge/pkg/patch"
)

// NewCommand creates the validate command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	var patchFile string

	cmd := &cobra.Command{
		Use:     "validate",
		GroupID: "patch",
		Short:   "Check a patch against the merged table without writing",
		Long: `Validate resolves every edit of a patch against the merged family and
reports, per edit, the file it would be written to or why it cannot be
applied. Nothing is written. Exits non-zero when any edit is invalid.`,
		Example: `  tablemerge validate --patch fixes.json
  tablemerge validate --patch fixes.yaml -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cmdutil.RequireFlag("patch", patchFile); err != nil {
				return err
			}
			p, err := patch.Load(patchFile)
			if err != nil {
				return err
			}
			client, err := app.Client()
			if err != nil {
				return err
			}
			impact, err := client.Validate(cmd.Context(), p)
			if err != nil {
				return err
			}

			if cmdutil.IsTable(app) {
				if err := cmdutil.Print(cmd, app, impact, func(bool) table.Data {
					return table.ImpactToTableData(impact)
				}); err != nil {
					return err
				}
				writeMarkers(cmd.OutOrStdout(), impact)
			} else if err := cmdutil.Print(cmd, app, impact, nil); err != nil {
				return err
			}

			if !impact.Valid() {
				return errors.NewValidationError("patch", patchFile,
					fmt.Sprintf("%d of %d edits invalid", len(impact.Failed), len(p.Edits)))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&patchFile, "patch", "p", "", "patch file, json or yaml (required)")

	return cmd
}

// writeMarkers prints one colored OK or INVALID line per edit.
func writeMarkers(w io.Writer, impact *patch.Impact) {
	ok := color.New(color.FgGreen, color.Bold)
	bad := color.New(color.FgRed, color.Bold)

	for _, r := range impact.Resolved {
		ok.Fprintf(w, "%s OK      ", emoji.Success)
		fmt.Fprintf(w, "row %d %s -> %s\n", r.Edit.RowID, r.Edit.Column, table.SourceName(r.Source))
	}
	for _, f := range impact.Failed {
		bad.Fprintf(w, "%s INVALID ", emoji.Error)
		fmt.Fprintf(w, "%s\n", f.Reason)
	}
	for _, s := range impact.ModifiedSources {
		fmt.Fprintf(w, "%s: rows %v\n", s.Source, s.RowIDs)
	}
}
