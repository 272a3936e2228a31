// Package cmdutil provides helpers shared by the tablemerge commands.
package cmdutil

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/tablemerge/internal/appcontext"
	"github.com/agentstation/tablemerge/internal/cmd/output"
	"github.com/agentstation/tablemerge/internal/cmd/table"
	"github.com/agentstation/tablemerge/pkg/errors"
)

// Print writes value to the command's stdout in the app's output format.
// convert builds the table view and may be nil for structs.
func Print(cmd *cobra.Command, app appcontext.Interface, value any, convert func(wide bool) table.Data) error {
	return output.Write(cmd.OutOrStdout(), output.Format(app.OutputFormat()), value, convert)
}

// IsTable reports whether the app prints tables, so commands can add
// human-only lines around them.
func IsTable(app appcontext.Interface) bool {
	return output.Format(app.OutputFormat()).IsTable()
}

// RequireFlag returns a validation error when a required string flag is empty.
func RequireFlag(name, value string) error {
	if value == "" {
		return errors.NewValidationError(name, value, fmt.Sprintf("--%s is required", name))
	}
	return nil
}
