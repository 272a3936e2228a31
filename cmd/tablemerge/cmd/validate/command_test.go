package validate

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/tablemerge"
	"github.com/agentstation/tablemerge/internal/appcontext"
	"github.com/agentstation/tablemerge/pkg/errors"
	"github.com/agentstation/tablemerge/pkg/logging"
	"github.com/agentstation/tablemerge/pkg/patch"
)

func setup(t *testing.T, format string, p *patch.Patch) (*appcontext.Mock, string) {
	t.Helper()
	dir := t.TempDir()
	root := filepath.Join(dir, "data")
	require.NoError(t, os.MkdirAll(root, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "items.csv"), []byte("ID,Name,Value\n1,foo,100\n2,bar,200\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "items_kcc.csv"), []byte("ID,Name,Value\n1,FOO,999\n"), 0o600))

	patchFile := filepath.Join(dir, "fix.yaml")
	require.NoError(t, p.Save(patchFile))

	c, err := tablemerge.New(tablemerge.WithRoots(root), tablemerge.WithLogger(logging.NewNopLogger()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	return &appcontext.Mock{
		ClientFunc:       func() (tablemerge.Client, error) { return c, nil },
		OutputFormatFunc: func() string { return format },
	}, patchFile
}

func run(t *testing.T, app appcontext.Interface, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true
	cmd := NewCommand(app)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestValidateOK(t *testing.T) {
	app, patchFile := setup(t, "table", patch.New("items").Add(1, "Name", "Renamed").Add(2, "Value", "5"))

	out, err := run(t, app, "--patch", patchFile)
	require.NoError(t, err)
	assert.Contains(t, out, "OK      row 1 Name -> items_kcc.csv")
	assert.Contains(t, out, "OK      row 2 Value -> items.csv")
	assert.NotContains(t, out, "INVALID")
}

func TestValidateInvalid(t *testing.T) {
	app, patchFile := setup(t, "table", patch.New("items").Add(1, "Name", "x").Add(9, "Name", "y").Add(1, "Nope", "z"))

	out, err := run(t, app, "--patch", patchFile)
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
	assert.Contains(t, err.Error(), "2 of 3 edits invalid")
	assert.Contains(t, out, "INVALID row 9 not found")
	assert.Contains(t, out, `INVALID column "Nope" not found (row 1)`)
}

func TestValidateJSON(t *testing.T) {
	app, patchFile := setup(t, "json", patch.New("items").Add(1, "Value", "1"))

	out, err := run(t, app, "-p", patchFile)
	require.NoError(t, err)
	assert.Contains(t, out, `"modified_sources"`)
}

func TestValidateRequiresPatch(t *testing.T) {
	app, _ := setup(t, "json", patch.New("items"))
	_, err := run(t, app)
	assert.True(t, errors.IsValidationError(err))
}
