package tablemerge

import (
	"context"

	"github.com/agentstation/tablemerge/pkg/errors"
	"github.com/agentstation/tablemerge/pkg/history"
	"github.com/agentstation/tablemerge/pkg/logging"
	"github.com/agentstation/tablemerge/pkg/patch"
)

// Validate merges the patch's family and resolves every edit.
func (c *client) Validate(ctx context.Context, p *patch.Patch) (*patch.Impact, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	rt, err := c.Merge(ctx, p.Family)
	if err != nil {
		return nil, err
	}
	return patch.Analyze(rt, p), nil
}

// Apply merges the patch's family, exports the affected files into outDir
// and records the export in history.
func (c *client) Apply(ctx context.Context, p *patch.Patch, outDir string) (*patch.ExportResult, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if outDir == "" {
		return nil, errors.NewValidationError("output", outDir, "output directory is required")
	}

	ctx = logging.WithFamily(ctx, p.Family)
	log := logging.FromContext(ctx)

	rt, err := c.Merge(ctx, p.Family)
	if err != nil {
		return nil, err
	}

	result, err := patch.Export(ctx, rt, p, outDir, c.exportOptions()...)
	if err != nil {
		return nil, err
	}
	c.hooks.triggerExport(result)

	if c.options.history != nil && len(result.FilesWritten) > 0 {
		entry, err := history.NewEntry(p, result.FilesWritten, outDir)
		if err != nil {
			return result, err
		}
		if err := c.options.history.Append(entry); err != nil {
			return result, err
		}
	}

	log.Info().
		Int("edits", len(p.Edits)).
		Int("failed_edits", len(result.Impact.Failed)).
		Int("files", len(result.FilesWritten)).
		Msg("Patch applied")

	return result, nil
}

// BatchItem is the outcome of one patch file in a batch.
type BatchItem struct {
	Patch  string              `json:"patch" yaml:"patch"`
	Result *patch.ExportResult `json:"result,omitempty" yaml:"result,omitempty"`
	Err    error               `json:"-" yaml:"-"`
	Error  string              `json:"error,omitempty" yaml:"error,omitempty"`
}

// BatchResult collects the outcome of every patch in a batch.
type BatchResult struct {
	OutputDir string      `json:"output_dir" yaml:"output_dir"`
	Items     []BatchItem `json:"items" yaml:"items"`
}

// Failed counts patches that could not be applied.
func (r *BatchResult) Failed() int {
	n := 0
	for _, it := range r.Items {
		if it.Err != nil {
			n++
		}
	}
	return n
}

// Batch applies every patch of b in order. A failing patch is recorded
// and the rest still run. Roots listed in the batch replace the client's.
func (c *client) Batch(ctx context.Context, b *patch.Batch) (*BatchResult, error) {
	if b.OutputDir == "" {
		return nil, errors.NewValidationError("output_dir", b.OutputDir, "output directory is required")
	}

	runner := c
	if len(b.Roots) > 0 {
		o := *c.options
		o.roots = append([]string(nil), b.Roots...)
		runner = &client{options: &o, hooks: c.hooks, logger: c.logger}
	}

	result := &BatchResult{OutputDir: b.OutputDir, Items: make([]BatchItem, 0, len(b.Patches))}
	for _, path := range b.Patches {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		item := BatchItem{Patch: path}
		p, err := patch.Load(path)
		if err == nil {
			item.Result, err = runner.Apply(ctx, p, b.OutputDir)
		}
		if err != nil {
			item.Err = err
			item.Error = err.Error()
			c.logger.Warn().Err(err).Str("patch", path).Msg("Batch patch failed")
		}
		result.Items = append(result.Items, item)
	}
	return result, nil
}
