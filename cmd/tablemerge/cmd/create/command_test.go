package create

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/tablemerge/internal/appcontext"
	"github.com/agentstation/tablemerge/pkg/patch"
)

func run(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	app := &appcontext.Mock{OutputFormatFunc: func() string { return format }}
	cmd := NewCommand(app)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCreatePatchFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "fix.yaml")

	_, err := run(t, "table", "patch", "items", "-e", "12:Name:Sword, Long", "--edit", " 3 : Value :999", "--file", file)
	require.NoError(t, err)

	p, err := patch.Load(file)
	require.NoError(t, err)
	assert.Equal(t, "items", p.Family)
	assert.Equal(t, []patch.Edit{
		{RowID: 12, Column: "Name", Value: "Sword, Long"},
		{RowID: 3, Column: "Value", Value: "999"},
	}, p.Edits)
}

func TestCreatePatchTemplate(t *testing.T) {
	out, err := run(t, "table", "patch", "items")
	require.NoError(t, err)
	assert.Contains(t, out, `"family": "items"`)
	assert.Contains(t, out, `"New Name"`)
}

func TestCreatePatchBadEdit(t *testing.T) {
	_, err := run(t, "json", "patch", "items", "-e", "abc:Name:x")
	assert.Error(t, err)
}

func TestCreateBatchYAML(t *testing.T) {
	out, err := run(t, "yaml", "batch", "--patch", "a.json", "--output", "merged")
	require.NoError(t, err)
	assert.Contains(t, out, "- a.json")
	assert.Contains(t, out, "output_dir: merged")
}
