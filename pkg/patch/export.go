package patch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/agentstation/tablemerge/pkg/constants"
	"github.com/agentstation/tablemerge/pkg/errors"
	"github.com/agentstation/tablemerge/pkg/logging"
	"github.com/agentstation/tablemerge/pkg/merge"
	"github.com/agentstation/tablemerge/pkg/records"
	"github.com/agentstation/tablemerge/pkg/table"
)

// FileResult describes one rewritten file.
type FileResult struct {
	Source    string `json:"source" yaml:"source"`
	Output    string `json:"output" yaml:"output"`
	Applied   int    `json:"applied" yaml:"applied"`
	Unapplied []Edit `json:"unapplied,omitempty" yaml:"unapplied,omitempty"`
}

// FileError is a per-file export failure.
type FileError struct {
	Source  string `json:"source" yaml:"source"`
	Message string `json:"error" yaml:"error"`
	Err     error  `json:"-" yaml:"-"`
}

func newFileError(source string, err error) FileError {
	return FileError{Source: source, Message: err.Error(), Err: err}
}

// Error implements the error interface
func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

// Unwrap implements errors.Unwrap
func (e FileError) Unwrap() error { return e.Err }

// ExportResult is the outcome of an export. Per-edit and per-file
// failures are reported here rather than as an error.
type ExportResult struct {
	Family       string       `json:"family" yaml:"family"`
	OutputDir    string       `json:"output_dir" yaml:"output_dir"`
	Impact       *Impact      `json:"impact" yaml:"impact"`
	Files        []FileResult `json:"files" yaml:"files"`
	FilesWritten []string     `json:"files_written" yaml:"files_written"`
	Errors       []FileError  `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// OK reports whether every edit resolved and every file was written.
func (r *ExportResult) OK() bool {
	if len(r.Errors) > 0 || !r.Impact.Valid() {
		return false
	}
	for _, f := range r.Files {
		if len(f.Unapplied) > 0 {
			return false
		}
	}
	return true
}

// ExportOption configures an export.
type ExportOption func(*exporter)

type exporter struct {
	workers int
	loader  merge.Loader
	logger  *zerolog.Logger
}

// WithWorkers sets how many files are rewritten concurrently.
func WithWorkers(n int) ExportOption {
	return func(e *exporter) {
		e.workers = n
	}
}

// WithLoader replaces the parser used to re-read source files.
func WithLoader(l merge.Loader) ExportOption {
	return func(e *exporter) {
		e.loader = l
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zerolog.Logger) ExportOption {
	return func(e *exporter) {
		e.logger = logging.OrDefault(logger)
	}
}

type cellKey struct {
	row    int64
	column string
}

type job struct {
	source string
	output string
	edits  []Edit
}

// Export writes, for every source file owning at least one edited cell, a
// rewritten copy named after the source into outDir. Each file is re-read
// from disk and only the cells routed to it change.
func Export(ctx context.Context, rt *merge.ResolvedTable, p *Patch, outDir string, opts ...ExportOption) (*ExportResult, error) {
	e := &exporter{
		workers: constants.DefaultExportWorkers,
		logger:  logging.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.loader == nil {
		logger := e.logger
		e.loader = merge.LoaderFunc(func(path string) (*table.Table, error) {
			return records.Parse(path, records.WithLogger(logger))
		})
	}
	e.workers = max(1, min(e.workers, constants.MaxExportWorkers))

	if err := os.MkdirAll(outDir, constants.DirPermissions); err != nil {
		return nil, errors.WrapIO("create", outDir, err)
	}

	impact := Analyze(rt, p)
	result := &ExportResult{
		Family:       p.Family,
		OutputDir:    outDir,
		Impact:       impact,
		Files:        []FileResult{},
		FilesWritten: []string{},
	}

	grouped := make(map[string][]Edit)
	for _, r := range impact.Resolved {
		grouped[r.Source] = append(grouped[r.Source], r.Edit)
	}

	var jobs []job
	claimed := make(map[string]string)
	for _, s := range impact.ModifiedSources {
		output := filepath.Join(outDir, filepath.Base(s.Source))
		if prev, taken := claimed[output]; taken {
			result.Errors = append(result.Errors, newFileError(s.Source,
				fmt.Errorf("output %s already written for %s", output, prev)))
			continue
		}
		claimed[output] = s.Source
		jobs = append(jobs, job{source: s.Source, output: output, edits: grouped[s.Source]})
	}

	files := make([]FileResult, len(jobs))
	failures := make([]error, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(e.workers, len(jobs))))
	for i, j := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				failures[i] = err
				return nil
			}
			files[i], failures[i] = e.rewrite(j)
			return nil
		})
	}
	_ = g.Wait()

	for i, j := range jobs {
		if failures[i] != nil {
			e.logger.Warn().Err(failures[i]).Str("family", p.Family).Str("file", j.source).Msg("Export of file failed")
			result.Errors = append(result.Errors, newFileError(j.source, failures[i]))
			continue
		}
		result.Files = append(result.Files, files[i])
		result.FilesWritten = append(result.FilesWritten, files[i].Output)
	}

	e.logger.Debug().
		Str("family", p.Family).
		Int("files", len(result.FilesWritten)).
		Int("failed_edits", len(impact.Failed)).
		Int("file_errors", len(result.Errors)).
		Msg("Export complete")

	return result, nil
}

// rewrite re-parses one source and writes it with its edits applied.
func (e *exporter) rewrite(j job) (FileResult, error) {
	res := FileResult{Source: j.source, Output: j.output}

	t, err := e.loader.Load(j.source)
	if err != nil {
		return res, err
	}

	pending := make(map[cellKey]string, len(j.edits))
	for _, ed := range j.edits {
		pending[cellKey{ed.RowID, ed.Column}] = ed.Value
	}
	applied := make(map[cellKey]bool, len(pending))

	header := t.ColumnNames()
	out := make([][]string, len(t.Rows))
	for ri, row := range t.Rows {
		rec := make([]string, len(row.Cells))
		for ci, cell := range row.Cells {
			rec[ci] = cell.String()
			if row.ID == nil || ci >= len(header) {
				continue
			}
			key := cellKey{*row.ID, header[ci]}
			if v, ok := pending[key]; ok {
				rec[ci] = v
				applied[key] = true
			}
		}
		out[ri] = rec
	}

	for _, ed := range j.edits {
		if applied[cellKey{ed.RowID, ed.Column}] {
			res.Applied++
		} else {
			res.Unapplied = append(res.Unapplied, ed)
		}
	}

	if err := records.WriteFile(j.output, header, out); err != nil {
		return res, err
	}

	e.logger.Debug().
		Str("file", j.source).
		Str("output", j.output).
		Int("applied", res.Applied).
		Msg("Rewrote source file")

	return res, nil
}
