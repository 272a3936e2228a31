// Package table converts tablemerge results into rows for the table formatter.
package table

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/agentstation/tablemerge/pkg/family"
	"github.com/agentstation/tablemerge/pkg/merge"
	rectable "github.com/agentstation/tablemerge/pkg/table"
)

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault uses the default alignment (skip).
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

// Data represents table formatting data to avoid import cycles.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align // optional
}

// FamiliesToTableData lists families with their member counts. With
// details every member gets its own row.
func FamiliesToTableData(families []family.Family, details bool) Data {
	if !details {
		rows := make([][]string, 0, len(families))
		for _, f := range families {
			rows = append(rows, []string{f.Name, strconv.Itoa(len(f.Members)), Suffixes(f)})
		}
		return Data{
			Headers:         []string{"Family", "Members", "Variants"},
			Rows:            rows,
			ColumnAlignment: []Align{AlignLeft, AlignRight, AlignLeft},
		}
	}

	var rows [][]string
	for _, f := range families {
		for i, m := range f.Members {
			name := ""
			if i == 0 {
				name = f.Name
			}
			suffix := m.Suffix
			if m.IsBase() {
				suffix = "(base)"
			}
			rows = append(rows, []string{name, suffix, m.Path})
		}
	}
	return Data{
		Headers:         []string{"Family", "Suffix", "Path"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignLeft, AlignLeft},
	}
}

// Suffixes joins the variant suffixes of a family, or "-" when it has none.
func Suffixes(f family.Family) string {
	variants := f.Variants()
	if len(variants) == 0 {
		return "-"
	}
	out := make([]string, len(variants))
	for i, m := range variants {
		out[i] = m.Suffix
	}
	return strings.Join(out, ", ")
}

// ScanToTableData summarizes a scan.
func ScanToTableData(result *family.ScanResult) Data {
	members := 0
	variants := 0
	for _, f := range result.Families {
		members += len(f.Members)
		variants += len(f.Variants())
	}
	return Data{
		Headers: []string{"Property", "Value"},
		Rows: [][]string{
			{"Roots", strings.Join(result.Roots, ", ")},
			{"Files", strconv.Itoa(result.TotalFiles)},
			{"Families", strconv.Itoa(len(result.Families))},
			{"Members", strconv.Itoa(members)},
			{"Variants", strconv.Itoa(variants)},
		},
		ColumnAlignment: []Align{AlignLeft, AlignLeft},
	}
}

// ResolvedToTableData renders merged rows restricted to columns (all when
// empty). Wide output adds the owning file after every value.
func ResolvedToTableData(rt *merge.ResolvedTable, rows []merge.ResolvedRow, columns []string, wide bool) Data {
	idx := make([]int, 0, len(rt.Columns))
	for i, c := range rt.Columns {
		if MatchColumn(c, columns) {
			idx = append(idx, i)
		}
	}

	headers := make([]string, 0, len(idx)*2)
	for _, i := range idx {
		headers = append(headers, rt.Columns[i])
		if wide {
			headers = append(headers, rt.Columns[i]+" source")
		}
	}

	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		line := make([]string, 0, len(headers))
		for _, i := range idx {
			cell := r.Cells[i]
			line = append(line, cell.Value.String())
			if wide {
				line = append(line, SourceName(cell.Source))
			}
		}
		out = append(out, line)
	}
	return Data{Headers: headers, Rows: out}
}

// RecordTableToTableData renders a parsed file, showing at most limit rows
// (all when limit <= 0).
func RecordTableToTableData(t *rectable.Table, limit int) Data {
	rows := t.Rows
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		line := make([]string, len(r.Cells))
		for i, v := range r.Cells {
			line[i] = v.String()
		}
		out = append(out, line)
	}
	return Data{Headers: t.ColumnNames(), Rows: out}
}

// SourceSummaryToTableData lists how many cells each member owns.
func SourceSummaryToTableData(rt *merge.ResolvedTable) Data {
	summary := rt.SourceSummary()
	rows := make([][]string, 0, len(summary))
	for _, s := range summary {
		rows = append(rows, []string{s.Source, strconv.Itoa(s.Cells)})
	}
	return Data{
		Headers:         []string{"Source", "Cells"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignRight},
	}
}

// SourceName shortens a member path to its file name, "-" when empty.
func SourceName(path string) string {
	if path == "" {
		return "-"
	}
	return filepath.Base(path)
}
