// Package patch routes cell edits made against a merged view back to the
// files that own those cells, and exports rewritten copies of them.
package patch

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/agentstation/tablemerge/pkg/errors"
)

// Edit sets one cell, addressed by row id and column name, to new text.
type Edit struct {
	RowID  int64  `json:"row_id" yaml:"row_id"`
	Column string `json:"column" yaml:"column"`
	Value  string `json:"value" yaml:"value"`
}

// Patch is an ordered list of edits for one family.
type Patch struct {
	Family string `json:"family" yaml:"family"`
	Edits  []Edit `json:"edits" yaml:"edits"`
}

// New returns an empty patch for family.
func New(family string) *Patch {
	return &Patch{Family: family, Edits: []Edit{}}
}

// Add appends an edit and returns the patch.
func (p *Patch) Add(rowID int64, column, value string) *Patch {
	p.Edits = append(p.Edits, Edit{RowID: rowID, Column: column, Value: value})
	return p
}

// ParseEdit parses a "row:column:value" edit. The value may itself contain colons.
func ParseEdit(s string) (Edit, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) != 3 {
		return Edit{}, errors.NewValidationError("edit", s, "expected row:column:value")
	}
	id, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil {
		return Edit{}, errors.NewValidationError("edit", s, "row must be an integer id")
	}
	column := strings.TrimSpace(parts[1])
	if column == "" {
		return Edit{}, errors.NewValidationError("edit", s, "column is required")
	}
	return Edit{RowID: id, Column: column, Value: parts[2]}, nil
}

// ParseEdits parses one edit per non-blank line.
func ParseEdits(text string) ([]Edit, error) {
	var edits []Edit
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		e, err := ParseEdit(strings.TrimRight(line, "\r"))
		if err != nil {
			return nil, err
		}
		edits = append(edits, e)
	}
	return edits, nil
}

// Validate checks the patch is addressed to a family.
func (p *Patch) Validate() error {
	if strings.TrimSpace(p.Family) == "" {
		return errors.NewValidationError("family", p.Family, "cannot be empty")
	}
	for i, e := range p.Edits {
		if e.Column == "" {
			return errors.NewValidationError("edits", i, "edit has no column")
		}
	}
	return nil
}

// Load reads a patch from a JSON (comments allowed) or YAML file.
func Load(path string) (*Patch, error) {
	var p Patch
	if err := readFile(path, &p); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, errors.WrapValidation(path, err)
	}
	return &p, nil
}

// Save writes the patch; the format follows the file extension.
func (p *Patch) Save(path string) error {
	return writeFile(path, p)
}

// Batch applies several patch files against one scan.
type Batch struct {
	Roots     []string `json:"roots" yaml:"roots"`
	OutputDir string   `json:"output_dir" yaml:"output_dir"`
	Patches   []string `json:"patches" yaml:"patches"`
}

// LoadBatch reads a batch file. Relative paths inside it are resolved
// against the batch file's directory.
func LoadBatch(path string) (*Batch, error) {
	var b Batch
	if err := readFile(path, &b); err != nil {
		return nil, err
	}
	if len(b.Patches) == 0 {
		return nil, errors.WrapValidation(path, errors.New("batch lists no patches"))
	}
	b.resolve(filepath.Dir(path))
	return &b, nil
}

// Save writes the batch; the format follows the file extension.
func (b *Batch) Save(path string) error {
	return writeFile(path, b)
}

func (b *Batch) resolve(dir string) {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}
	for i := range b.Roots {
		b.Roots[i] = abs(b.Roots[i])
	}
	for i := range b.Patches {
		b.Patches[i] = abs(b.Patches[i])
	}
	b.OutputDir = abs(b.OutputDir)
}
