// Package history records applied patches so their exports can be undone.
package history

import (
	"encoding/hex"
	"io"
	"os"

	"github.com/agentstation/utc"
	"github.com/zeebo/blake3"

	"github.com/agentstation/tablemerge/pkg/errors"
	"github.com/agentstation/tablemerge/pkg/patch"
)

// Entry is one applied patch.
type Entry struct {
	Timestamp   utc.Time          `json:"timestamp" yaml:"timestamp"`
	Family      string            `json:"family" yaml:"family"`
	Patch       patch.Patch       `json:"patch" yaml:"patch"`
	OutputFiles []string          `json:"output_files" yaml:"output_files"`
	OutputDir   string            `json:"output_dir" yaml:"output_dir"`
	Digests     map[string]string `json:"digests,omitempty" yaml:"digests,omitempty"`
}

// NewEntry records p as applied, with the BLAKE3 digest of every written file.
func NewEntry(p *patch.Patch, files []string, outDir string) (*Entry, error) {
	e := &Entry{
		Timestamp:   utc.Now(),
		Family:      p.Family,
		Patch:       *p,
		OutputFiles: append([]string{}, files...),
		OutputDir:   outDir,
		Digests:     make(map[string]string, len(files)),
	}
	for _, f := range files {
		sum, err := Digest(f)
		if err != nil {
			return nil, err
		}
		e.Digests[f] = sum
	}
	return e, nil
}

// Digest returns the hex BLAKE3 digest of a file.
func Digest(path string) (string, error) {
	f, err := os.Open(path) //nolint:gosec // recorded output path
	if err != nil {
		return "", errors.WrapIO("open", path, err)
	}
	defer func() { _ = f.Close() }()

	h := blake3.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", errors.WrapIO("read", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Change describes an output file that no longer matches its recorded digest.
type Change struct {
	Path   string `json:"path" yaml:"path"`
	Reason string `json:"reason" yaml:"reason"`
}

// Verify compares output files with the digests taken when they were written.
// Files without a recorded digest are skipped.
func (e *Entry) Verify() []Change {
	var changes []Change
	for _, f := range e.OutputFiles {
		want, ok := e.Digests[f]
		if !ok {
			continue
		}
		got, err := Digest(f)
		switch {
		case errors.Is(err, os.ErrNotExist):
			changes = append(changes, Change{Path: f, Reason: "missing"})
		case err != nil:
			changes = append(changes, Change{Path: f, Reason: err.Error()})
		case got != want:
			changes = append(changes, Change{Path: f, Reason: "modified"})
		}
	}
	return changes
}
