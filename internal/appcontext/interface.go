// Package appcontext provides the shared application context interface
// used by all commands, so command packages depend on an interface
// instead of the concrete App.
package appcontext

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/tablemerge"
)

// Interface defines the application context interface that commands need.
// The App struct from cmd/tablemerge/app implements it; tests use Mock.
type Interface interface {
	// Client returns the shared client, creating it lazily from config and flags.
	Client() (tablemerge.Client, error)

	// ClientWithOptions creates a new client with extra options applied after
	// the configured ones. The caller owns it and must Close it.
	ClientWithOptions(...tablemerge.Option) (tablemerge.Client, error)

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (table, wide, json, yaml).
	OutputFormat() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
