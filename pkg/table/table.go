// Package table holds the typed in-memory form of one parsed record file.
package table

// Column is a header cell and its zero-based position.
type Column struct {
	Name  string `json:"name" yaml:"name"`
	Index int    `json:"index" yaml:"index"`
}

// Row is one record. ID is set when the first cell parses as an integer.
type Row struct {
	ID    *int64  `json:"id,omitempty" yaml:"id,omitempty"`
	Cells []Value `json:"cells" yaml:"cells"`
}

// HasID reports whether the row carries an integer id.
func (r Row) HasID() bool { return r.ID != nil }

// Table is a parsed record file.
type Table struct {
	Path    string   `json:"path" yaml:"path"`
	Columns []Column `json:"columns" yaml:"columns"`
	Rows    []Row    `json:"rows" yaml:"rows"`
}

// NewRow builds a row from typed cells, deriving the id from the first cell.
func NewRow(cells []Value) Row {
	row := Row{Cells: cells}
	if len(cells) > 0 {
		if id, ok := cells[0].AsInt(); ok {
			row.ID = &id
		}
	}
	return row
}

// ColumnNames returns the header names in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// FindColumn returns the index of the first column with the given name.
func (t *Table) FindColumn(name string) (int, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c.Index, true
		}
	}
	return -1, false
}

// FindRow returns the index of the first row carrying id.
func (t *Table) FindRow(id int64) (int, bool) {
	for i, r := range t.Rows {
		if r.ID != nil && *r.ID == id {
			return i, true
		}
	}
	return -1, false
}

// Strings renders every row as text, one slice per row.
func (t *Table) Strings() [][]string {
	out := make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		rec := make([]string, len(r.Cells))
		for j, c := range r.Cells {
			rec[j] = c.String()
		}
		out[i] = rec
	}
	return out
}

// IDPtr returns a pointer to id.
func IDPtr(id int64) *int64 { return &id }
