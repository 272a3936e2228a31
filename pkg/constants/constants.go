// Package constants provides shared constants used throughout the tablemerge codebase.
// This includes file permissions, defaults for discovery and export, and
// the names of configuration and history files.
package constants

import "time"

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Discovery defaults
const (
	// DefaultExtension is the extension of record files picked up by a scan
	DefaultExtension = ".csv"

	// SuffixSeparator joins a family base name and a variant tag
	SuffixSeparator = "_"
)

// Export defaults
const (
	// DefaultExportWorkers is the number of source files rewritten concurrently
	DefaultExportWorkers = 4

	// MaxExportWorkers caps the export worker pool
	MaxExportWorkers = 32
)

// History defaults
const (
	// DefaultHistoryFile is the JSON history document used when none is configured
	DefaultHistoryFile = ".tablemerge-history.json"

	// DefaultHistoryDB is the SQLite history database used by the sqlite backend
	DefaultHistoryDB = ".tablemerge-history.db"

	// HistoryBackendJSON selects the JSON document history store
	HistoryBackendJSON = "json"

	// HistoryBackendSQLite selects the SQLite history store
	HistoryBackendSQLite = "sqlite"

	// HistoryBackendNone disables history recording
	HistoryBackendNone = "none"

	// SQLiteBusyTimeout is how long SQLite waits on a locked database
	SQLiteBusyTimeout = 5 * time.Second
)

// Display defaults
const (
	// PreviewRows is the number of rows shown by the parse preview
	PreviewRows = 10

	// MergeCacheTTL is how long the MCP server reuses a merged table
	MergeCacheTTL = 30 * time.Second

	// TimeFormatHuman is the timestamp layout used in history listings
	TimeFormatHuman = "2006-01-02 15:04:05"
)

// Config constants
const (
	// ConfigName is the config file base name searched in $HOME and the working directory
	ConfigName = ".tablemerge"

	// EnvPrefix prefixes environment variables read by the CLI
	EnvPrefix = "TABLEMERGE"

	// ShutdownTimeout bounds cleanup after a failed command
	ShutdownTimeout = 5 * time.Second
)
