// Package history implements the history and undo commands.
package history

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/tablemerge/internal/appcontext"
	"github.com/agentstation/tablemerge/internal/cmd/cmdutil"
	"github.com/agentstation/tablemerge/internal/cmd/emoji"
	"github.com/agentstation/tablemerge/internal/cmd/table"
	"github.com/agentstation/tablemerge/pkg/errors"
	"github.com/agentstation/tablemerge/pkg/history"
)

// NewCommand creates the history command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	var familyName string

	cmd := &cobra.Command{
		Use:     "history",
		GroupID: "management",
		Short:   "List applied patches",
		Example: `  tablemerge history
  tablemerge history --family items -o yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			store := client.History()
			if store == nil {
				return errors.NewConfigError("history", "history is disabled", nil)
			}

			entries, err := list(store, familyName)
			if err != nil {
				return err
			}
			return cmdutil.Print(cmd, app, entries, func(bool) table.Data {
				return table.HistoryToTableData(entries)
			})
		},
	}

	cmd.Flags().StringVarP(&familyName, "family", "f", "", "only this family")

	return cmd
}

// list returns the entries of one family, or of every family in name order.
func list(store history.Store, familyName string) ([]*history.Entry, error) {
	if familyName != "" {
		return store.List(familyName)
	}
	families, err := store.Families()
	if err != nil {
		return nil, err
	}
	entries := []*history.Entry{}
	for _, f := range families {
		es, err := store.List(f)
		if err != nil {
			return nil, err
		}
		entries = append(entries, es...)
	}
	return entries, nil
}

// NewUndoCommand creates the undo command using app context.
func NewUndoCommand(app appcontext.Interface) *cobra.Command {
	var (
		familyName string
		outDir     string
	)

	cmd := &cobra.Command{
		Use:     "undo",
		GroupID: "patch",
		Short:   "Undo the last patch applied to a family",
		Long: `Undo overwrites the files written by the family's most recent patch
with pristine copies of the matching member files and removes the patch
from history. Files edited by hand since the export are reported.`,
		Example: `  tablemerge undo --family items
  tablemerge undo --family items --output out/`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cmdutil.RequireFlag("family", familyName); err != nil {
				return err
			}
			client, err := app.Client()
			if err != nil {
				return err
			}
			result, err := client.Undo(cmd.Context(), familyName, outDir)
			if err != nil {
				return err
			}

			if cmdutil.IsTable(app) {
				for _, ch := range result.Changed {
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s since export\n", emoji.Warning, ch.Path, ch.Reason)
				}
			}
			return cmdutil.Print(cmd, app, result, func(bool) table.Data {
				return table.UndoToTableData(result)
			})
		},
	}

	cmd.Flags().StringVarP(&familyName, "family", "f", "", "family to undo (required)")
	cmd.Flags().StringVar(&outDir, "output", "", "restore into this directory (default: where the patch was exported)")

	return cmd
}
