// Package merge resolves the members of a family into one table.
//
// Columns are unioned in first-seen order. Rows with an integer id are
// overlaid in member order, where a later member's non-empty value takes
// over both the value and the authority of a cell and empty values never
// erase. Rows without an id are appended as they are encountered.
package merge

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/agentstation/tablemerge/pkg/errors"
	"github.com/agentstation/tablemerge/pkg/family"
	"github.com/agentstation/tablemerge/pkg/logging"
	"github.com/agentstation/tablemerge/pkg/provenance"
	"github.com/agentstation/tablemerge/pkg/records"
	"github.com/agentstation/tablemerge/pkg/table"
)

// Loader parses a member file into a table.
type Loader interface {
	Load(path string) (*table.Table, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(path string) (*table.Table, error)

// Load calls f(path).
func (f LoaderFunc) Load(path string) (*table.Table, error) { return f(path) }

// Option configures a merge.
type Option func(*options)

type options struct {
	loader  Loader
	tracker provenance.Tracker
	logger  *zerolog.Logger
}

// WithLoader replaces the record file parser.
func WithLoader(l Loader) Option {
	return func(o *options) {
		o.loader = l
	}
}

// WithTracker records every non-empty contribution in t.
func WithTracker(t provenance.Tracker) Option {
	return func(o *options) {
		o.tracker = t
	}
}

// WithLogger sets the logger.
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
	if o.loader == nil {
		logger := o.logger
		o.loader = LoaderFunc(func(path string) (*table.Table, error) {
			return records.Parse(path, records.WithLogger(logger))
		})
	}
	return o
}

// Family parses every member of fam and merges them. Any member that fails
// to load aborts the merge.
func Family(fam family.Family, opts ...Option) (*ResolvedTable, error) {
	o := applyOptions(opts)
	if len(fam.Members) == 0 {
		return nil, errors.NewMergeError(fam.Name, "", errors.ErrEmptyFamily)
	}

	tables := make([]*table.Table, 0, len(fam.Members))
	for _, m := range fam.Members {
		t, err := o.loader.Load(m.Path)
		if err != nil {
			return nil, errors.NewMergeError(fam.Name, m.Path, err)
		}
		if t.Path == "" {
			t.Path = m.Path
		}
		o.logger.Debug().
			Str("family", fam.Name).
			Str("file", m.Path).
			Int("rows", len(t.Rows)).
			Msg("Loaded member")
		tables = append(tables, t)
	}

	return resolve(fam.Name, tables, o), nil
}

// Tables merges already parsed tables given in member order.
func Tables(name string, tables []*table.Table, opts ...Option) (*ResolvedTable, error) {
	if len(tables) == 0 {
		return nil, errors.NewMergeError(name, "", errors.ErrEmptyFamily)
	}
	return resolve(name, tables, applyOptions(opts)), nil
}

func resolve(name string, tables []*table.Table, o *options) *ResolvedTable {
	rt := &ResolvedTable{Family: name}

	// unified column positions, first occurrence wins
	position := make(map[string]int)
	mappings := make([][]int, len(tables))
	for ti, t := range tables {
		rt.Sources = append(rt.Sources, t.Path)
		mapping := make([]int, len(t.Columns))
		for i, c := range t.Columns {
			pos, ok := position[c.Name]
			if !ok {
				pos = len(rt.Columns)
				position[c.Name] = pos
				rt.Columns = append(rt.Columns, c.Name)
			}
			mapping[i] = pos
		}
		mappings[ti] = mapping
	}
	width := len(rt.Columns)

	byID := make(map[int64]*ResolvedRow)
	var idless []ResolvedRow

	for rank, t := range tables {
		mapping := mappings[rank]
		for _, row := range t.Rows {
			cells := make([]ResolvedCell, width)
			for i := range cells {
				cells[i] = ResolvedCell{Source: t.Path}
			}
			for i, v := range row.Cells {
				if i >= len(mapping) {
					break
				}
				if pos := mapping[i]; !v.IsEmpty() || cells[pos].Value.IsEmpty() {
					cells[pos].Value = v
				}
			}

			if row.ID == nil {
				o.track(name, provenance.RowKey(nil, len(idless)), rt.Columns, nil, cells, rank)
				idless = append(idless, ResolvedRow{Cells: cells})
				continue
			}

			id := *row.ID
			existing, ok := byID[id]
			if !ok {
				o.track(name, provenance.RowKey(&id, 0), rt.Columns, nil, cells, rank)
				byID[id] = &ResolvedRow{ID: &id, Cells: cells}
				continue
			}
			o.track(name, provenance.RowKey(&id, 0), rt.Columns, existing.Cells, cells, rank)
			for i, c := range cells {
				if !c.Value.IsEmpty() {
					existing.Cells[i] = c
				}
			}
		}
	}

	ids := make([]int64, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	rt.Rows = make([]ResolvedRow, 0, len(ids)+len(idless))
	for _, id := range ids {
		rt.Rows = append(rt.Rows, *byID[id])
	}
	rt.Rows = append(rt.Rows, idless...)

	o.logger.Debug().
		Str("family", name).
		Int("members", len(tables)).
		Int("columns", width).
		Int("rows", len(rt.Rows)).
		Msg("Merged family")

	return rt
}

// track records the non-empty cells of an incoming row against the cells
// already resolved for it (nil for a new row).
func (o *options) track(fam, row string, columns []string, prev, next []ResolvedCell, rank int) {
	if o.tracker == nil {
		return
	}
	for i, c := range next {
		if c.Value.IsEmpty() {
			continue
		}
		p := provenance.Provenance{
			Source: c.Source,
			Field:  columns[i],
			Value:  c.Value.String(),
			Rank:   rank,
			Reason: provenance.ReasonInitial,
		}
		if prev != nil && !prev[i].Value.IsEmpty() {
			p.PreviousValue = prev[i].Value.String()
			p.PreviousSource = prev[i].Source
			p.Reason = provenance.ReasonOverride
			if prev[i].Value.Equal(c.Value) {
				p.Reason = provenance.ReasonUnchanged
			}
		}
		o.tracker.Track(fam, row, columns[i], p)
	}
}
