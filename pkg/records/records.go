// Package records reads and writes comma-delimited record files.
//
// The first record is the header. Every following record becomes a typed
// row padded with empty cells up to the header width; longer records are
// truncated and a warning is logged.
package records

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/agentstation/tablemerge/pkg/errors"
	"github.com/agentstation/tablemerge/pkg/logging"
	"github.com/agentstation/tablemerge/pkg/table"
)

const format = "csv"

// Option configures parsing.
type Option func(*options)

type options struct {
	logger *zerolog.Logger
}

// WithLogger sets the logger used for truncation warnings.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logging.OrDefault(logger)
	}
}

func applyOptions(opts []Option) *options {
	o := &options{logger: logging.Default()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Parse reads the record file at path.
func Parse(path string, opts ...Option) (*table.Table, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from discovery
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer func() { _ = f.Close() }()

	return ParseReader(f, path, opts...)
}

// ParseReader reads records from r. name becomes the table's Path.
func ParseReader(r io.Reader, name string, opts ...Option) (*table.Table, error) {
	o := applyOptions(opts)

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	// a bare quote inside an unquoted field is literal text
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, &errors.ParseError{Format: format, File: name, Message: "no header record"}
	}
	if err != nil {
		return nil, wrapCSV(name, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	t := &table.Table{
		Path:    name,
		Columns: make([]table.Column, len(header)),
	}
	for i, h := range header {
		t.Columns[i] = table.Column{Name: h, Index: i}
	}

	width := len(header)
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, wrapCSV(name, err)
		}
		line++

		if len(record) > width {
			o.logger.Warn().
				Str("file", name).
				Int("line", line).
				Int("fields", len(record)).
				Int("columns", width).
				Msg("Record longer than header, truncating")
			record = record[:width]
		}

		cells := make([]table.Value, width)
		for i, raw := range record {
			cells[i] = table.Parse(raw)
		}
		t.Rows = append(t.Rows, table.NewRow(cells))
	}

	return t, nil
}

func wrapCSV(name string, err error) error {
	pe := &errors.ParseError{Format: format, File: name, Message: err.Error(), Err: err}
	var csvErr *csv.ParseError
	if errors.As(err, &csvErr) {
		pe.Line = csvErr.Line
		pe.Column = csvErr.Column
		pe.Message = csvErr.Err.Error()
	}
	return pe
}

// Write emits header and rows as delimited text. Values containing the
// delimiter, quotes or line breaks are quoted.
func Write(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

// WriteTable emits a table with every cell rendered as text.
func WriteTable(w io.Writer, t *table.Table) error {
	return Write(w, t.ColumnNames(), t.Strings())
}

// WriteFile writes header and rows to path, replacing any existing file.
func WriteFile(path string, header []string, rows [][]string) (err error) {
	f, err := os.Create(path) //nolint:gosec // output path is caller-controlled
	if err != nil {
		return errors.WrapIO("create", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.WrapIO("close", path, cerr)
		}
	}()

	if err := Write(f, header, rows); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}
