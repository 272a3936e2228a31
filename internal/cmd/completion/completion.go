// Package completion generates, installs and removes shell completion
// scripts for tablemerge.
package completion

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/agentstation/tablemerge/internal/cmd/constants"
	"github.com/agentstation/tablemerge/internal/cmd/emoji"
	pkgconstants "github.com/agentstation/tablemerge/pkg/constants"
	"github.com/agentstation/tablemerge/pkg/errors"
)

const binary = "tablemerge"

// Generate writes the completion script for shell.
func Generate(root *cobra.Command, shell string, w io.Writer) error {
	switch shell {
	case constants.ShellBash:
		return root.GenBashCompletion(w)
	case constants.ShellZsh:
		return root.GenZshCompletion(w)
	case constants.ShellFish:
		return root.GenFishCompletion(w, true)
	case constants.ShellPowerShell:
		return root.GenPowerShellCompletionWithDesc(w)
	default:
		return errors.NewValidationError("shell", shell, "must be one of: bash, zsh, fish, powershell")
	}
}

// Path returns where Install puts the completion file for shell. A
// Homebrew prefix wins over the per-user location.
func Path(shell string) (string, error) {
	prefix := brewPrefix()
	home, err := os.UserHomeDir()
	if err != nil && prefix == "" {
		return "", errors.WrapIO("resolve", "home directory", err)
	}

	switch shell {
	case constants.ShellBash:
		if prefix != "" {
			return filepath.Join(prefix, "etc", "bash_completion.d", binary), nil
		}
		return filepath.Join(home, ".bash_completion.d", binary), nil
	case constants.ShellZsh:
		if prefix != "" {
			return filepath.Join(prefix, "share", "zsh", "site-functions", "_"+binary), nil
		}
		return filepath.Join(home, ".zsh", "completions", "_"+binary), nil
	case constants.ShellFish:
		if prefix != "" {
			return filepath.Join(prefix, "share", "fish", "vendor_completions.d", binary+".fish"), nil
		}
		return filepath.Join(home, ".config", "fish", "completions", binary+".fish"), nil
	default:
		return "", errors.NewValidationError("shell", shell, "must be one of: bash, zsh, fish")
	}
}

func brewPrefix() string {
	if p := os.Getenv("HOMEBREW_PREFIX"); p != "" {
		return p
	}
	for _, p := range []string{"/opt/homebrew", "/usr/local"} {
		if _, err := os.Stat(filepath.Join(p, "bin", "brew")); err == nil {
			return p
		}
	}
	return ""
}

// Install writes the completion script for shell to its standard location.
func Install(root *cobra.Command, shell string, w io.Writer) (err error) {
	target, err := Path(shell)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), pkgconstants.DirPermissions); err != nil {
		return errors.WrapIO("create", filepath.Dir(target), err)
	}

	f, err := os.Create(target) //nolint:gosec // path built by Path
	if err != nil {
		return errors.WrapIO("create", target, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.WrapIO("close", target, cerr)
		}
	}()

	if err := Generate(root, shell, f); err != nil {
		return err
	}
	fmt.Fprintf(w, "%s %s completions installed to: %s\n", emoji.Success, shell, target)
	return nil
}

// Uninstall removes the completion file Install would have written.
// A missing file is not an error.
func Uninstall(shell string, w io.Writer) error {
	target, err := Path(shell)
	if err != nil {
		return err
	}

	info, err := os.Stat(target)
	if err != nil || info.IsDir() {
		fmt.Fprintf(w, "No %s completions found at: %s\n", shell, target)
		return nil
	}
	if err := os.Remove(target); err != nil {
		return errors.WrapIO("remove", target, err)
	}
	fmt.Fprintf(w, "%s Removed %s completions from: %s\n", emoji.Success, shell, target)
	return nil
}
