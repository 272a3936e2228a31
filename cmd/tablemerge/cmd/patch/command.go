// Package patch implements the patch and batch commands.
package patch

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/tablemerge/internal/appcontext"
	"github.com/agentstation/tablemerge/internal/cmd/cmdutil"
	"github.com/agentstation/tablemerge/internal/cmd/table"
	"github.com/agentstation/tablemerge/pkg/errors"
	"github.com/agentstation/tablemerge/pkg/patch"
)

// NewCommand creates the patch command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	var (
		patchFile string
		outDir    string
	)

	cmd := &cobra.Command{
		Use:     "patch",
		GroupID: "patch",
		Short:   "Apply a patch and export the affected files",
		Long: `Patch routes every edit to the file that owns the edited cell, then
writes a copy of each affected file into the output directory with only
those cells changed. Source files are never modified in place. The
applied patch is recorded in history so it can be undone.`,
		Example: `  tablemerge patch --patch fixes.json --output out/`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cmdutil.RequireFlag("patch", patchFile); err != nil {
				return err
			}
			if err := cmdutil.RequireFlag("output", outDir); err != nil {
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
			client.OnEditRejected(func(family string, failed patch.FailedEdit) {
				app.Logger().Warn().
					Str("family", family).
					Int64("row", failed.Edit.RowID).
					Str("column", failed.Edit.Column).
					Msg(failed.Reason)
			})

			result, err := client.Apply(cmd.Context(), p, outDir)
			if err != nil {
				return err
			}
			if err := cmdutil.Print(cmd, app, result, func(bool) table.Data {
				return table.ExportToTableData(result)
			}); err != nil {
				return err
			}
			if !result.OK() {
				return errors.NewValidationError("patch", patchFile, fmt.Sprintf(
					"%d edits rejected, %d files failed", len(result.Impact.Failed), len(result.Errors)))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&patchFile, "patch", "p", "", "patch file, json or yaml (required)")
	cmd.Flags().StringVar(&outDir, "output", "", "directory the patched files are written to (required)")

	return cmd
}

// NewBatchCommand creates the batch command using app context.
func NewBatchCommand(app appcontext.Interface) *cobra.Command {
	var (
		batchFile string
		outDir    string
	)

	cmd := &cobra.Command{
		Use:     "batch",
		GroupID: "patch",
		Short:   "Apply every patch listed in a batch file",
		Long: `Batch applies the patches of a batch file one after another. A failing
patch is reported and the remaining patches still run. Roots listed in
the batch file replace the configured roots.`,
		Example: `  tablemerge batch --batch release.yaml
  tablemerge batch --batch release.json --output out/`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cmdutil.RequireFlag("batch", batchFile); err != nil {
				return err
			}
			b, err := patch.LoadBatch(batchFile)
			if err != nil {
				return err
			}
			if outDir != "" {
				b.OutputDir = outDir
			}

			client, err := app.Client()
			if err != nil {
				return err
			}
			result, err := client.Batch(cmd.Context(), b)
			if err != nil {
				return err
			}
			if err := cmdutil.Print(cmd, app, result, func(bool) table.Data {
				return table.BatchToTableData(result)
			}); err != nil {
				return err
			}
			if n := result.Failed(); n > 0 {
				return errors.NewValidationError("batch", batchFile,
					fmt.Sprintf("%d of %d patches failed", n, len(result.Items)))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&batchFile, "batch", "b", "", "batch file, json or yaml (required)")
	cmd.Flags().StringVar(&outDir, "output", "", "override the batch output directory")

	return cmd
}
