// Package emoji provides symbol constants for CLI output.
package emoji

// Symbols used for status lines.
const (
	// Success marks a passing edit or restored file.
	Success = "✓"

	// Error marks a rejected edit or failed file.
	Error = "✗"

	// Warning marks files changed since export.
	Warning = "!"

	// Winner marks the contribution that owns a merged cell.
	Winner = "→"
)
