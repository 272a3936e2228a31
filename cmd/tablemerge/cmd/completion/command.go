// Package completion implements the completion command.
package completion

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/tablemerge/internal/cmd/completion"
	"github.com/agentstation/tablemerge/internal/cmd/constants"
)

// NewCommand creates the completion command with install/uninstall
// subcommands. It replaces cobra's generated completion command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "completion",
		GroupID: "management",
		Short:   "Manage shell completions",
		Long: `Generate completion scripts to stdout, or install and uninstall them in
the standard location for your shell.`,
		Example: `  source <(tablemerge completion bash)
  tablemerge completion install zsh
  tablemerge completion uninstall`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	for _, shell := range []string{constants.ShellBash, constants.ShellZsh, constants.ShellFish, constants.ShellPowerShell} {
		cmd.AddCommand(&cobra.Command{
			Use:                   shell,
			Short:                 "Generate " + shell + " completion script",
			Args:                  cobra.NoArgs,
			DisableFlagsInUseLine: true,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return completion.Generate(cmd.Root(), shell, cmd.OutOrStdout())
			},
		})
	}

	cmd.AddCommand(&cobra.Command{
		Use:       "install [shell]",
		Short:     "Install completions (all supported shells by default)",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: constants.InstallableShells,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, shell := range shells(args) {
				if err := completion.Install(cmd.Root(), shell, cmd.OutOrStdout()); err != nil {
					return err
				}
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:       "uninstall [shell]",
		Short:     "Remove installed completions",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: constants.InstallableShells,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, shell := range shells(args) {
				if err := completion.Uninstall(shell, cmd.OutOrStdout()); err != nil {
					return err
				}
			}
			return nil
		},
	})

	return cmd
}

func shells(args []string) []string {
	if len(args) == 1 {
		return args
	}
	return constants.InstallableShells
}
