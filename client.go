// Package tablemerge consolidates families of partially overlapping record
// files into one merged table with per-cell provenance, and writes edits
// made against that merged view back to the files that own each cell.
//
// A family is a base file plus variant files named "<base>_<tag>.csv".
// Later variants overlay earlier members: their non-empty cells take over
// both the value and its provenance.
//
// Example usage:
//
//	tm, err := tablemerge.New(tablemerge.WithRoots("./data"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tm.Close()
//
//	merged, err := tm.Merge(ctx, "abi_base")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	p := patch.New("abi_base").Add(1, "Name", "Renamed")
//	result, err := tm.Apply(ctx, p, "./out")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, f := range result.FilesWritten {
//	    fmt.Println("wrote", f)
//	}
package tablemerge

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agentstation/tablemerge/pkg/errors"
	"github.com/agentstation/tablemerge/pkg/family"
	"github.com/agentstation/tablemerge/pkg/history"
	"github.com/agentstation/tablemerge/pkg/merge"
	"github.com/agentstation/tablemerge/pkg/patch"
)

// Compile-time interface check to ensure proper implementation.
var _ Client = (*client)(nil)

// Discoverer finds families under the configured roots.
type Discoverer interface {
	// Scan walks the roots and groups files into families
	Scan(ctx context.Context) (*family.ScanResult, error)

	// Family scans and returns one family by name
	Family(ctx context.Context, name string) (family.Family, error)
}

// Resolver merges families and explains merged cells.
type Resolver interface {
	// Merge resolves a family into one table
	Merge(ctx context.Context, name string) (*merge.ResolvedTable, error)

	// Explain reports where one merged cell came from
	Explain(ctx context.Context, name string, rowID int64, column string) (*Explanation, error)
}

// Patcher validates and applies patches.
type Patcher interface {
	// Validate resolves every edit without writing anything
	Validate(ctx context.Context, p *patch.Patch) (*patch.Impact, error)

	// Apply exports the files owning the edited cells into outDir
	Apply(ctx context.Context, p *patch.Patch, outDir string) (*patch.ExportResult, error)

	// Batch applies several patch files sequentially
	Batch(ctx context.Context, b *patch.Batch) (*BatchResult, error)

	// Undo restores pristine copies of the files written by the last patch of a family
	Undo(ctx context.Context, name, outDir string) (*UndoResult, error)
}

// Client is the entry point to discovery, merging and patching.
type Client interface {
	Discoverer
	Resolver
	Patcher

	// Hooks provides access to event callback registration
	Hooks

	// History returns the history store, or nil when history is disabled
	History() history.Store

	// Close releases the history store
	Close() error
}

// client is the internal implementation of the Client interface.
type client struct {
	options *options
	hooks   *hooks
	logger  *zerolog.Logger
}

// New creates a new Client with the given options.
func New(opts ...Option) (Client, error) {
	o, err := defaults().apply(opts...)
	if err != nil {
		return nil, err
	}
	return &client{
		options: o,
		hooks:   newHooks(),
		logger:  o.logger,
	}, nil
}

// History returns the configured history store.
func (c *client) History() history.Store {
	return c.options.history
}

// Close closes the history store.
func (c *client) Close() error {
	if c.options.history == nil {
		return nil
	}
	return c.options.history.Close()
}

func (c *client) scanOptions() []family.Option {
	return []family.Option{
		family.WithVocabulary(c.options.vocabulary),
		family.WithExtension(c.options.extension),
		family.WithLogger(c.logger),
	}
}

func (c *client) mergeOptions() []merge.Option {
	opts := []merge.Option{merge.WithLogger(c.logger)}
	if c.options.loader != nil {
		opts = append(opts, merge.WithLoader(c.options.loader))
	}
	if c.options.tracker != nil {
		opts = append(opts, merge.WithTracker(c.options.tracker))
	}
	return opts
}

func (c *client) exportOptions() []patch.ExportOption {
	opts := []patch.ExportOption{
		patch.WithWorkers(c.options.exportWorkers),
		patch.WithLogger(c.logger),
	}
	if c.options.loader != nil {
		opts = append(opts, patch.WithLoader(c.options.loader))
	}
	return opts
}

// Scan walks the configured roots.
func (c *client) Scan(ctx context.Context) (*family.ScanResult, error) {
	if len(c.options.roots) == 0 {
		return nil, errors.NewValidationError("roots", nil, "no root directories configured")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return family.Scan(c.options.roots, c.scanOptions()...)
}

// Family scans and looks up one family.
func (c *client) Family(ctx context.Context, name string) (family.Family, error) {
	result, err := c.Scan(ctx)
	if err != nil {
		return family.Family{}, err
	}
	fam, ok := result.Find(name)
	if !ok {
		return family.Family{}, errors.NewNotFoundError("family", name)
	}
	return fam, nil
}

// Merge scans, finds and merges one family.
func (c *client) Merge(ctx context.Context, name string) (*merge.ResolvedTable, error) {
	fam, err := c.Family(ctx, name)
	if err != nil {
		return nil, err
	}
	if c.options.tracker != nil {
		c.options.tracker.ClearFamily(name)
	}
	return merge.Family(fam, c.mergeOptions()...)
}
