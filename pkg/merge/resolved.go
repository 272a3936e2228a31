package merge

import (
	"strconv"

	"github.com/agentstation/tablemerge/pkg/errors"
	"github.com/agentstation/tablemerge/pkg/table"
)

// ResolvedCell is a merged value and the file currently authoritative for it.
type ResolvedCell struct {
	Value  table.Value `json:"value" yaml:"value"`
	Source string      `json:"source" yaml:"source"`
}

// ResolvedRow is one merged row with exactly one cell per unified column.
type ResolvedRow struct {
	ID    *int64         `json:"id,omitempty" yaml:"id,omitempty"`
	Cells []ResolvedCell `json:"cells" yaml:"cells"`
}

// ResolvedTable is the merged view of a family.
type ResolvedTable struct {
	Family  string        `json:"family" yaml:"family"`
	Columns []string      `json:"columns" yaml:"columns"`
	Rows    []ResolvedRow `json:"rows" yaml:"rows"`
	Sources []string      `json:"sources" yaml:"sources"`
}

// ColumnCount returns the number of unified columns.
func (t *ResolvedTable) ColumnCount() int { return len(t.Columns) }

// RowCount returns the number of merged rows.
func (t *ResolvedTable) RowCount() int { return len(t.Rows) }

// FindColumn returns the position of a unified column.
func (t *ResolvedTable) FindColumn(name string) (int, bool) {
	for i, c := range t.Columns {
		if c == name {
			return i, true
		}
	}
	return -1, false
}

// FindRow returns the position of the row with the given id.
func (t *ResolvedTable) FindRow(id int64) (int, bool) {
	for i, r := range t.Rows {
		if r.ID != nil && *r.ID == id {
			return i, true
		}
	}
	return -1, false
}

// Cell returns the merged cell at (id, column).
func (t *ResolvedTable) Cell(id int64, column string) (ResolvedCell, error) {
	ri, ok := t.FindRow(id)
	if !ok {
		return ResolvedCell{}, errors.NewNotFoundError("row", strconv.FormatInt(id, 10))
	}
	ci, ok := t.FindColumn(column)
	if !ok {
		return ResolvedCell{}, errors.NewNotFoundError("column", strconv.Quote(column))
	}
	return t.Rows[ri].Cells[ci], nil
}

// Provenance returns the source path of the cell at the given positions.
func (t *ResolvedTable) Provenance(row, col int) (string, bool) {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Columns) {
		return "", false
	}
	return t.Rows[row].Cells[col].Source, true
}

// SourceCount is the number of merged cells a file is authoritative for.
type SourceCount struct {
	Source string `json:"source" yaml:"source"`
	Cells  int    `json:"cells" yaml:"cells"`
}

// SourceSummary counts owned non-empty cells per source, in source order.
func (t *ResolvedTable) SourceSummary() []SourceCount {
	counts := make(map[string]int, len(t.Sources))
	for _, r := range t.Rows {
		for _, c := range r.Cells {
			if !c.Value.IsEmpty() {
				counts[c.Source]++
			}
		}
	}
	out := make([]SourceCount, len(t.Sources))
	for i, s := range t.Sources {
		out[i] = SourceCount{Source: s, Cells: counts[s]}
	}
	return out
}

// Table flattens the merged view into a plain table without provenance.
func (t *ResolvedTable) Table() *table.Table {
	out := &table.Table{
		Path:    t.Family,
		Columns: make([]table.Column, len(t.Columns)),
		Rows:    make([]table.Row, len(t.Rows)),
	}
	for i, c := range t.Columns {
		out.Columns[i] = table.Column{Name: c, Index: i}
	}
	for i, r := range t.Rows {
		cells := make([]table.Value, len(r.Cells))
		for j, c := range r.Cells {
			cells[j] = c.Value
		}
		out.Rows[i] = table.Row{ID: r.ID, Cells: cells}
	}
	return out
}

// Filter returns the rows whose column renders exactly as value.
func (t *ResolvedTable) Filter(column, value string) ([]ResolvedRow, error) {
	ci, ok := t.FindColumn(column)
	if !ok {
		return nil, errors.NewNotFoundError("column", strconv.Quote(column))
	}
	var out []ResolvedRow
	for _, r := range t.Rows {
		if r.Cells[ci].Value.String() == value {
			out = append(out, r)
		}
	}
	return out, nil
}
