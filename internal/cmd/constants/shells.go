// Package constants provides shared constants for CLI commands.
package constants

// Shell type constants for completion commands.
const (
	// ShellBash represents the Bash shell.
	ShellBash = "bash"

	// ShellZsh represents the Zsh shell.
	ShellZsh = "zsh"

	// ShellFish represents the Fish shell.
	ShellFish = "fish"

	// ShellPowerShell represents PowerShell.
	ShellPowerShell = "powershell"
)

// InstallableShells are the shells completion install knows a location for.
var InstallableShells = []string{ShellBash, ShellZsh, ShellFish}
