package tablemerge

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/agentstation/tablemerge/pkg/constants"
	"github.com/agentstation/tablemerge/pkg/errors"
	"github.com/agentstation/tablemerge/pkg/history"
)

// UndoResult reports an undone patch.
type UndoResult struct {
	Entry    *history.Entry   `json:"entry" yaml:"entry"`
	Restored []string         `json:"restored" yaml:"restored"`
	Skipped  []string         `json:"skipped,omitempty" yaml:"skipped,omitempty"` // outputs with no matching member
	Changed  []history.Change `json:"changed,omitempty" yaml:"changed,omitempty"`
}

// Undo overwrites the files written by the family's last patch with
// pristine copies of the matching member files, then drops the entry.
// An empty outDir restores into the directory the patch was exported to.
func (c *client) Undo(ctx context.Context, name, outDir string) (*UndoResult, error) {
	store := c.options.history
	if store == nil {
		return nil, errors.NewConfigError("history", "undo requires a history store", nil)
	}

	entry, err := store.Last(name)
	if err != nil {
		return nil, err
	}
	if outDir == "" {
		outDir = entry.OutputDir
	}

	fam, err := c.Family(ctx, name)
	if err != nil {
		return nil, err
	}

	result := &UndoResult{Entry: entry, Restored: []string{}, Changed: entry.Verify()}
	for _, ch := range result.Changed {
		c.logger.Warn().Str("file", ch.Path).Str("reason", ch.Reason).Msg("Output changed since export")
	}

	if err := os.MkdirAll(outDir, constants.DirPermissions); err != nil {
		return nil, errors.WrapIO("create", outDir, err)
	}

	for _, out := range entry.OutputFiles {
		base := filepath.Base(out)
		restored := false
		for _, m := range fam.Members {
			if filepath.Base(m.Path) != base {
				continue
			}
			dest := filepath.Join(outDir, base)
			if err := copyFile(m.Path, dest); err != nil {
				return result, err
			}
			result.Restored = append(result.Restored, dest)
			restored = true
			break
		}
		if !restored {
			result.Skipped = append(result.Skipped, out)
		}
	}

	if _, err := store.Pop(name); err != nil {
		return result, err
	}

	c.logger.Info().
		Str("family", name).
		Int("restored", len(result.Restored)).
		Msg("Patch undone")

	return result, nil
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(src) //nolint:gosec // member path from discovery
	if err != nil {
		return errors.WrapIO("open", src, err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, constants.FilePermissions) //nolint:gosec // output directory is caller-controlled
	if err != nil {
		return errors.WrapIO("create", dst, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = errors.WrapIO("close", dst, cerr)
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		return errors.WrapIO("copy", src, err)
	}
	return nil
}
