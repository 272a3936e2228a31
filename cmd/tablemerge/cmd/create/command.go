// Package create implements the create command, which writes patch and
// batch files from command-line edits or as templates.
package create

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/tablemerge/internal/appcontext"
	"github.com/agentstation/tablemerge/internal/cmd/output"
	"github.com/agentstation/tablemerge/pkg/patch"
)

// NewCommand creates the create command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "create",
		GroupID: "patch",
		Short:   "Create patch and batch files",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newPatchCommand(app))
	cmd.AddCommand(newBatchCommand(app))

	return cmd
}

func newPatchCommand(app appcontext.Interface) *cobra.Command {
	var (
		edits []string
		file  string
	)

	cmd := &cobra.Command{
		Use:   "patch <family>",
		Short: "Create a patch from row:column:value edits",
		Long: `Create a patch for a family. Each --edit is row:column:value, where
row is the integer id in the first column. Without edits a template
with one example edit is written. The format follows the file
extension (.json, .jsonc, .yaml); without --file the patch is printed.`,
		Example: `  tablemerge create patch items --edit 12:Name:Sword --edit 12:Value:999 --file fixes.json
  tablemerge create patch items > fixes.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := patch.New(args[0])
			for _, s := range edits {
				e, err := patch.ParseEdit(s)
				if err != nil {
					return err
				}
				p.Add(e.RowID, e.Column, e.Value)
			}
			if len(p.Edits) == 0 {
				p.Add(1, "Name", "New Name")
			}
			if err := p.Validate(); err != nil {
				return err
			}
			return save(cmd, app, file, p, p.Save)
		},
	}

	cmd.Flags().StringArrayVarP(&edits, "edit", "e", nil, "edit as row:column:value (repeatable)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "file to write (default stdout)")

	return cmd
}

func newBatchCommand(app appcontext.Interface) *cobra.Command {
	var (
		patches []string
		roots   []string
		outDir  string
		file    string
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Create a batch file listing patches",
		Long: `Create a batch file. Relative paths in a batch are resolved against the
directory of the batch file when it is loaded.`,
		Example: `  tablemerge create batch --patch fixes.json --patch balance.yaml --output out --file release.yaml`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b := &patch.Batch{
				Roots:     roots,
				OutputDir: outDir,
				Patches:   patches,
			}
			if b.Roots == nil {
				b.Roots = []string{}
			}
			if len(b.Patches) == 0 {
				b.Patches = []string{"patch.json"}
			}
			if b.OutputDir == "" {
				b.OutputDir = "out"
			}
			return save(cmd, app, file, b, b.Save)
		},
	}

	cmd.Flags().StringArrayVarP(&patches, "patch", "p", nil, "patch file to include (repeatable)")
	cmd.Flags().StringArrayVar(&roots, "batch-root", nil, "root directory for the batch (repeatable)")
	cmd.Flags().StringVar(&outDir, "output", "", "output directory of the batch")
	cmd.Flags().StringVarP(&file, "file", "f", "", "file to write (default stdout)")

	return cmd
}

// save writes v to file, or prints it as json (or yaml when requested).
func save(cmd *cobra.Command, app appcontext.Interface, file string, v any, saveFn func(string) error) error {
	if file == "" {
		format := output.Format(app.OutputFormat())
		if format != output.FormatYAML {
			format = output.FormatJSON
		}
		return output.NewFormatter(format).Format(cmd.OutOrStdout(), v)
	}
	if err := saveFn(file); err != nil {
		return err
	}
	app.Logger().Info().Str("file", file).Msg("Created")
	return nil
}
