package tablemerge

import (
	"context"

	"github.com/agentstation/tablemerge/pkg/merge"
	"github.com/agentstation/tablemerge/pkg/provenance"
	"github.com/agentstation/tablemerge/pkg/table"
)

// Explanation describes the origin of one merged cell.
type Explanation struct {
	Family  string      `json:"family" yaml:"family"`
	RowID   int64       `json:"row_id" yaml:"row_id"`
	Column  string      `json:"column" yaml:"column"`
	Value   table.Value `json:"value" yaml:"value"`
	Source  string      `json:"source" yaml:"source"`
	Sources []string    `json:"sources" yaml:"sources"` // merge order

	// Contributions lists every non-empty value supplied for the cell in
	// merge order; the last one is the winner.
	Contributions []provenance.Provenance `json:"contributions" yaml:"contributions"`
}

// IsWinner reports whether source is the authority for the cell.
func (e *Explanation) IsWinner(source string) bool {
	return source == e.Source
}

// Explain merges the family with provenance tracking and reports the cell.
func (c *client) Explain(ctx context.Context, name string, rowID int64, column string) (*Explanation, error) {
	fam, err := c.Family(ctx, name)
	if err != nil {
		return nil, err
	}

	tracker := c.options.tracker
	if tracker == nil {
		tracker = provenance.NewTracker(true)
	} else {
		tracker.ClearFamily(name)
	}

	opts := append(c.mergeOptions(), merge.WithTracker(tracker))
	rt, err := merge.Family(fam, opts...)
	if err != nil {
		return nil, err
	}

	cell, err := rt.Cell(rowID, column)
	if err != nil {
		return nil, err
	}

	history := tracker.FindByField(name, provenance.RowKey(&rowID, 0), column)
	if history == nil {
		history = []provenance.Provenance{}
	}

	return &Explanation{
		Family:        name,
		RowID:         rowID,
		Column:        column,
		Value:         cell.Value,
		Source:        cell.Source,
		Sources:       rt.Sources,
		Contributions: history,
	}, nil
}
