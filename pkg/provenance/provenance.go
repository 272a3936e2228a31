// Package provenance records, per merged cell, which member file supplied
// each value and how later members changed it.
package provenance

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/agentstation/utc"
	"github.com/goccy/go-yaml"

	"github.com/agentstation/tablemerge/pkg/constants"
	"github.com/agentstation/tablemerge/pkg/errors"
)

// Reasons recorded for a contribution.
const (
	ReasonInitial   = "initial"   // first non-empty value for the cell
	ReasonOverride  = "override"  // replaced a different value
	ReasonUnchanged = "unchanged" // same value supplied again, authority moves
)

// Provenance is one contribution of a member file to a merged cell.
type Provenance struct {
	Source         string   `yaml:"source" json:"source"`
	Field          string   `yaml:"field" json:"field"`
	Value          string   `yaml:"value" json:"value"`
	Rank           int      `yaml:"rank" json:"rank"` // member position in merge order
	Timestamp      utc.Time `yaml:"timestamp" json:"timestamp"`
	Reason         string   `yaml:"reason" json:"reason"`
	PreviousValue  string   `yaml:"previous_value,omitempty" json:"previous_value,omitempty"`
	PreviousSource string   `yaml:"previous_source,omitempty" json:"previous_source,omitempty"`
}

// Map tracks provenance for many cells.
type Map map[string][]Provenance // key is "family:row:column"

// Tracker manages provenance tracking during a merge.
type Tracker interface {
	// Track records a contribution to a cell
	Track(family, row, column string, p Provenance)

	// FindByField returns the contributions to one cell in merge order
	FindByField(family, row, column string) []Provenance

	// FindByRow returns all contributions to a row keyed by column
	FindByRow(family, row string) map[string][]Provenance

	// Map returns a copy of the complete provenance map
	Map() Map

	// Clear removes all provenance data
	Clear()

	// ClearFamily removes the provenance of one family
	ClearFamily(family string)
}

type tracker struct {
	mu         sync.RWMutex
	provenance Map
	enabled    bool
}

// NewTracker creates a new provenance tracker. A disabled tracker records nothing.
func NewTracker(enabled bool) Tracker {
	return &tracker{
		provenance: make(Map),
		enabled:    enabled,
	}
}

// RowKey names a merged row: its id, or "#<n>" for the n-th id-less row.
func RowKey(id *int64, ordinal int) string {
	if id != nil {
		return strconv.FormatInt(*id, 10)
	}
	return "#" + strconv.Itoa(ordinal)
}

func (p *tracker) Track(family, row, column string, history Provenance) {
	if !p.enabled {
		return
	}
	if history.Timestamp.IsZero() {
		history.Timestamp = utc.Now()
	}
	if history.Field == "" {
		history.Field = column
	}

	key := makeKey(family, row, column)
	p.mu.Lock()
	p.provenance[key] = append(p.provenance[key], history)
	p.mu.Unlock()
}

func (p *tracker) FindByField(family, row, column string) []Provenance {
	if !p.enabled {
		return nil
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]Provenance(nil), p.provenance[makeKey(family, row, column)]...)
}

func (p *tracker) FindByRow(family, row string) map[string][]Provenance {
	if !p.enabled {
		return nil
	}
	p.mu.RLock()
	defer p.mu.RUnlock()

	result := make(map[string][]Provenance)
	prefix := family + ":" + row + ":"
	for key, info := range p.provenance {
		if column, found := strings.CutPrefix(key, prefix); found {
			result[column] = append([]Provenance(nil), info...)
		}
	}
	return result
}

func (p *tracker) Map() Map {
	if !p.enabled {
		return nil
	}
	p.mu.RLock()
	defer p.mu.RUnlock()

	result := make(Map, len(p.provenance))
	for k, v := range p.provenance {
		result[k] = append([]Provenance{}, v...)
	}
	return result
}

func (p *tracker) Clear() {
	p.mu.Lock()
	p.provenance = make(Map)
	p.mu.Unlock()
}

func (p *tracker) ClearFamily(family string) {
	prefix := family + ":"
	p.mu.Lock()
	defer p.mu.Unlock()
	for key := range p.provenance {
		if strings.HasPrefix(key, prefix) {
			delete(p.provenance, key)
		}
	}
}

// makeKey joins family, row and column.
func makeKey(family, row, column string) string {
	return fmt.Sprintf("%s:%s:%s", family, row, column)
}

// Winner returns the contribution currently holding authority (the last one).
func Winner(history []Provenance) (Provenance, bool) {
	if len(history) == 0 {
		return Provenance{}, false
	}
	return history[len(history)-1], true
}

// Report is a human-readable provenance summary of one or more families.
type Report struct {
	Cells map[string]Cell // key is "family:row:column"
}

// Cell contains the contribution history of a single merged cell.
type Cell struct {
	Family  string
	Row     string
	Column  string
	Current Provenance
	History []Provenance
}

// GenerateReport creates a report from a Map.
func GenerateReport(m Map) *Report {
	report := &Report{Cells: make(map[string]Cell, len(m))}
	for key, infos := range m {
		parts := strings.SplitN(key, ":", 3)
		if len(parts) != 3 || len(infos) == 0 {
			continue
		}
		report.Cells[key] = Cell{
			Family:  parts[0],
			Row:     parts[1],
			Column:  parts[2],
			Current: infos[len(infos)-1],
			History: infos,
		}
	}
	return report
}

// String renders cells grouped by row, sorted by key.
func (r *Report) String() string {
	keys := make([]string, 0, len(r.Cells))
	for k := range r.Cells {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString("Provenance Report\n")
	sb.WriteString("=================\n")

	lastRow := ""
	for _, key := range keys {
		cell := r.Cells[key]
		rowKey := cell.Family + ":" + cell.Row
		if rowKey != lastRow {
			fmt.Fprintf(&sb, "\n%s row %s\n%s\n", cell.Family, cell.Row, strings.Repeat("-", 40))
			lastRow = rowKey
		}
		fmt.Fprintf(&sb, "  %s: %s (from %s)\n", cell.Column, cell.Current.Value, cell.Current.Source)
		if len(cell.History) > 1 {
			for _, h := range cell.History[:len(cell.History)-1] {
				fmt.Fprintf(&sb, "      was %s from %s\n", h.Value, h.Source)
			}
		}
	}
	return sb.String()
}

// File is a provenance map stored on disk.
type File struct {
	Provenance Map `yaml:"provenance"`
}

// Save writes m as YAML to path.
func Save(path string, m Map) error {
	data, err := yaml.Marshal(File{Provenance: m})
	if err != nil {
		return errors.WrapParse("yaml", path, err)
	}
	return errors.WrapIO("write", path, os.WriteFile(path, data, constants.FilePermissions))
}

// Load reads provenance data from a YAML file.
// Returns nil, nil if the file doesn't exist.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // caller-supplied path
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}

	var pf File
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}
	return &pf, nil
}
