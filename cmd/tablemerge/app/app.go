// Package app provides the application context and dependency management
// for the tablemerge CLI: configuration, logging and the lazily created
// client shared by every command.
package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/tablemerge"
	"github.com/agentstation/tablemerge/pkg/constants"
	"github.com/agentstation/tablemerge/pkg/errors"
	"github.com/agentstation/tablemerge/pkg/family"
	"github.com/agentstation/tablemerge/pkg/history"
	"github.com/agentstation/tablemerge/pkg/provenance"
)

// App represents the tablemerge application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger

	// client is lazily created and shared
	mu     sync.RWMutex
	client tablemerge.Client
}

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig("")
	if err != nil {
		return nil, err
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// Client returns the shared client, creating it lazily if needed.
func (a *App) Client() (tablemerge.Client, error) {
	a.mu.RLock()
	if a.client != nil {
		c := a.client
		a.mu.RUnlock()
		return c, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.client != nil {
		return a.client, nil
	}

	c, err := a.newClient()
	if err != nil {
		return nil, err
	}
	a.client = c
	return c, nil
}

// ClientWithOptions returns a new client built from the configuration with
// extra options applied last. The caller must Close it.
func (a *App) ClientWithOptions(opts ...tablemerge.Option) (tablemerge.Client, error) {
	return a.newClient(opts...)
}

func (a *App) newClient(extra ...tablemerge.Option) (tablemerge.Client, error) {
	opts, store, err := a.clientOptions()
	if err != nil {
		return nil, err
	}
	c, err := tablemerge.New(append(opts, extra...)...)
	if err != nil {
		if store != nil {
			_ = store.Close()
		}
		return nil, errors.NewConfigError("client", "invalid client configuration", err)
	}
	return c, nil
}

// clientOptions translates the configuration into client options. The
// opened history store, if any, is returned so it can be closed on failure.
func (a *App) clientOptions() ([]tablemerge.Option, history.Store, error) {
	opts := []tablemerge.Option{
		tablemerge.WithLogger(a.logger),
		tablemerge.WithProvenance(provenance.NewTracker(true)),
		tablemerge.WithExportWorkers(a.config.ExportWorkers),
	}
	if len(a.config.Roots) > 0 {
		opts = append(opts, tablemerge.WithRoots(a.config.Roots...))
	}
	if a.config.Extension != "" {
		opts = append(opts, tablemerge.WithExtension(a.config.Extension))
	}
	if len(a.config.Suffixes) > 0 {
		opts = append(opts, tablemerge.WithVocabulary(family.NewVocabulary(a.config.Suffixes...)))
	}

	if a.config.HistoryBackend == constants.HistoryBackendNone {
		return opts, nil, nil
	}
	store, err := history.Open(a.config.HistoryBackend, a.config.HistoryPath())
	if err != nil {
		return nil, nil, err
	}
	return append(opts, tablemerge.WithHistory(store)), store, nil
}

// Shutdown releases the shared client.
func (a *App) Shutdown(_ context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.client == nil {
		return nil
	}
	err := a.client.Close()
	a.client = nil
	return err
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithClient sets a custom client (useful for testing).
func WithClient(c tablemerge.Client) Option {
	return func(a *App) error {
		a.client = c
		return nil
	}
}
