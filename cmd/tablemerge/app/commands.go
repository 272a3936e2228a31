package app

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/agentstation/tablemerge/cmd/tablemerge/cmd/completion"
	"github.com/agentstation/tablemerge/cmd/tablemerge/cmd/create"
	"github.com/agentstation/tablemerge/cmd/tablemerge/cmd/explain"
	"github.com/agentstation/tablemerge/cmd/tablemerge/cmd/export"
	"github.com/agentstation/tablemerge/cmd/tablemerge/cmd/families"
	"github.com/agentstation/tablemerge/cmd/tablemerge/cmd/history"
	"github.com/agentstation/tablemerge/cmd/tablemerge/cmd/parse"
	"github.com/agentstation/tablemerge/cmd/tablemerge/cmd/patch"
	"github.com/agentstation/tablemerge/cmd/tablemerge/cmd/scan"
	"github.com/agentstation/tablemerge/cmd/tablemerge/cmd/serve"
	"github.com/agentstation/tablemerge/cmd/tablemerge/cmd/show"
	"github.com/agentstation/tablemerge/cmd/tablemerge/cmd/validate"
	"github.com/agentstation/tablemerge/internal/cmd/cmdutil"
)

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Core commands
	rootCmd.AddCommand(scan.NewCommand(a))
	rootCmd.AddCommand(families.NewCommand(a))
	rootCmd.AddCommand(families.NewSearchCommand(a))
	rootCmd.AddCommand(show.NewCommand(a))
	rootCmd.AddCommand(show.NewFilterCommand(a))
	rootCmd.AddCommand(explain.NewCommand(a))
	rootCmd.AddCommand(export.NewCommand(a))

	// Patch commands
	rootCmd.AddCommand(validate.NewCommand(a))
	rootCmd.AddCommand(patch.NewCommand(a))
	rootCmd.AddCommand(patch.NewBatchCommand(a))
	rootCmd.AddCommand(create.NewCommand(a))
	rootCmd.AddCommand(history.NewUndoCommand(a))

	// Management commands
	rootCmd.AddCommand(parse.NewCommand(a))
	rootCmd.AddCommand(history.NewCommand(a))
	rootCmd.AddCommand(serve.NewCommand(a))
	rootCmd.AddCommand(completion.NewCommand())

	rootCmd.AddCommand(a.NewVersionCommand())
}

// VersionInfo is the output of the version command.
type VersionInfo struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	Date      string `json:"date" yaml:"date"`
	BuiltBy   string `json:"built_by" yaml:"built_by"`
	GoVersion string `json:"go_version" yaml:"go_version"`
	Platform  string `json:"platform" yaml:"platform"`
}

// NewVersionCommand creates the version command.
func (a *App) NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := VersionInfo{
				Version:   a.version,
				Commit:    a.commit,
				Date:      a.date,
				BuiltBy:   a.builtBy,
				GoVersion: runtime.Version(),
				Platform:  runtime.GOOS + "/" + runtime.GOARCH,
			}
			if cmdutil.IsTable(a) && !a.config.Verbose {
				fmt.Fprintf(cmd.OutOrStdout(), "tablemerge %s\n", a.version)
				return nil
			}
			return cmdutil.Print(cmd, a, info, nil)
		},
	}
}
