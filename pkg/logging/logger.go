// Package logging wires zerolog for tablemerge.
//
// Library packages (family, merge, records, patch) take a *zerolog.Logger
// through their options and never print. The CLI builds one logger from
// its config with NewLoggerFromConfig and installs it with SetDefault.
// Before that, the default logger reads TABLEMERGE_LOG_LEVEL,
// TABLEMERGE_LOG_FORMAT and TABLEMERGE_LOG_OUTPUT (or the same names
// without the prefix).
//
//	ctx = logging.WithFamily(ctx, "abi_base")
//	logging.FromContext(ctx).Debug().Str("file", path).Msg("Parsed member")
package logging

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/agentstation/tablemerge/pkg/constants"
)

var defaultLogger = NewLoggerFromConfig(envConfig())

// envConfig overlays the logging environment variables on DefaultConfig.
func envConfig() *Config {
	cfg := DefaultConfig()
	if v := env("LOG_LEVEL"); v != "" {
		cfg.Level = v
	}
	if v := env("LOG_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := env("LOG_OUTPUT"); v != "" {
		cfg.Output = v
	}
	return cfg
}

// env reads TABLEMERGE_<name>, then <name>.
func env(name string) string {
	if v := os.Getenv(constants.EnvPrefix + "_" + name); v != "" {
		return v
	}
	return os.Getenv(name)
}

// Default returns the process-wide logger used when no logger is passed
// in options or carried by a context.
func Default() *zerolog.Logger {
	return &defaultLogger
}

// SetDefault replaces the process-wide logger, including zerolog's global one.
func SetDefault(logger zerolog.Logger) {
	defaultLogger = logger
	log.Logger = logger
}

// OrDefault returns logger, or Default when it is nil. Option structs
// use it so a zero value logs through the CLI's logger.
func OrDefault(logger *zerolog.Logger) *zerolog.Logger {
	if logger == nil {
		return Default()
	}
	return logger
}

func stderrIsTerminal() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
