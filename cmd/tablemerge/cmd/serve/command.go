// Package serve implements the serve command, an MCP server on stdio.
package serve

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/tablemerge/internal/appcontext"
	"github.com/agentstation/tablemerge/internal/mcpserver"
)

// NewCommand creates the serve command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:     "serve",
		GroupID: "management",
		Short:   "Serve tablemerge tools over MCP (stdio)",
		Long: `Serve runs a Model Context Protocol server on stdin/stdout exposing the
list_families, show_family, explain_cell, validate_patch and apply_patch
tools. Logs go to stderr.`,
		Example: `  tablemerge serve -r ./data`,
		Args:    cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			app.Logger().Info().Str("version", app.Version()).Msg("Serving MCP on stdio")
			return mcpserver.ServeStdio(mcpserver.New(client, app.Version()))
		},
	}
}
