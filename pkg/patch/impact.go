package patch

import (
	"fmt"

	"github.com/agentstation/tablemerge/pkg/merge"
	"github.com/agentstation/tablemerge/pkg/table"
)

// FailedEdit is an edit that could not be routed to a source file.
type FailedEdit struct {
	Edit   Edit   `json:"edit" yaml:"edit"`
	Reason string `json:"reason" yaml:"reason"`
}

// ResolvedEdit is an edit routed to the file owning its cell.
type ResolvedEdit struct {
	Edit    Edit        `json:"edit" yaml:"edit"`
	Source  string      `json:"source" yaml:"source"`
	Current table.Value `json:"current" yaml:"current"`
}

// SourceRows lists the row ids an export would change in one file.
type SourceRows struct {
	Source string  `json:"source" yaml:"source"`
	RowIDs []int64 `json:"row_ids" yaml:"row_ids"`
}

// Impact is the dry-run result of a patch against a merged table.
type Impact struct {
	Family          string         `json:"family" yaml:"family"`
	Resolved        []ResolvedEdit `json:"resolved" yaml:"resolved"`
	Failed          []FailedEdit   `json:"failed,omitempty" yaml:"failed,omitempty"`
	ModifiedSources []SourceRows   `json:"modified_sources" yaml:"modified_sources"`
}

// Valid reports whether every edit resolved.
func (i *Impact) Valid() bool { return len(i.Failed) == 0 }

// Files returns the source files that would be rewritten.
func (i *Impact) Files() []string {
	out := make([]string, len(i.ModifiedSources))
	for n, s := range i.ModifiedSources {
		out[n] = s.Source
	}
	return out
}

// Analyze resolves every edit of p against rt. Lookup failures are
// collected; they never stop the remaining edits from being checked.
func Analyze(rt *merge.ResolvedTable, p *Patch) *Impact {
	impact := &Impact{Family: p.Family, Resolved: []ResolvedEdit{}}
	rows := make(map[string][]int64)
	seen := make(map[string]map[int64]bool)

	for _, e := range p.Edits {
		ri, ok := rt.FindRow(e.RowID)
		if !ok {
			impact.Failed = append(impact.Failed, FailedEdit{
				Edit:   e,
				Reason: fmt.Sprintf("row %d not found", e.RowID),
			})
			continue
		}
		ci, ok := rt.FindColumn(e.Column)
		if !ok {
			impact.Failed = append(impact.Failed, FailedEdit{
				Edit:   e,
				Reason: fmt.Sprintf("column %q not found (row %d)", e.Column, e.RowID),
			})
			continue
		}

		cell := rt.Rows[ri].Cells[ci]
		impact.Resolved = append(impact.Resolved, ResolvedEdit{Edit: e, Source: cell.Source, Current: cell.Value})

		if seen[cell.Source] == nil {
			seen[cell.Source] = make(map[int64]bool)
		}
		if !seen[cell.Source][e.RowID] {
			seen[cell.Source][e.RowID] = true
			rows[cell.Source] = append(rows[cell.Source], e.RowID)
		}
	}

	for _, src := range rt.Sources {
		if ids, ok := rows[src]; ok {
			impact.ModifiedSources = append(impact.ModifiedSources, SourceRows{Source: src, RowIDs: ids})
			delete(rows, src)
		}
	}
	return impact
}
