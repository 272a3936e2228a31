package export

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/tablemerge"
	"github.com/agentstation/tablemerge/internal/appcontext"
	"github.com/agentstation/tablemerge/pkg/logging"
	"github.com/agentstation/tablemerge/pkg/provenance"
)

func setup(t *testing.T) *appcontext.Mock {
	t.Helper()
	root := filepath.Join(t.TempDir(), "data")
	require.NoError(t, os.MkdirAll(root, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "items.csv"), []byte("ID,Name,Rate\n1,foo,1.5\n2,\"a, b\",2\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "items_kcc.csv"), []byte("ID,Name,Extra\n1,FOO,x\n"), 0o600))

	return &appcontext.Mock{
		ClientWithOptionsFunc: func(opts ...tablemerge.Option) (tablemerge.Client, error) {
			base := []tablemerge.Option{tablemerge.WithRoots(root), tablemerge.WithLogger(logging.NewNopLogger())}
			return tablemerge.New(append(base, opts...)...)
		},
	}
}

func run(t *testing.T, app appcontext.Interface, args ...string) (string, error) {
	t.Helper()
	cmd := NewCommand(app)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestExportCSV(t *testing.T) {
	out, err := run(t, setup(t), "items")
	require.NoError(t, err)
	assert.Equal(t, "ID,Name,Rate,Extra\n1,FOO,1.5,x\n2,\"a, b\",2,\n", out)
}

func TestExportJSONToFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "items.json")
	_, err := run(t, setup(t), "items", "--type", "JSON", "--file", file)
	require.NoError(t, err)

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	var doc Document
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, []string{"ID", "Name", "Rate", "Extra"}, doc.Columns)
	require.Len(t, doc.Rows, 2)
	assert.Equal(t, []any{float64(1), "FOO", 1.5, "x"}, doc.Rows[0])
	assert.Equal(t, []any{float64(2), "a, b", float64(2), nil}, doc.Rows[1])
}

func TestExportYAMLWithProvenance(t *testing.T) {
	dir := t.TempDir()
	provFile := filepath.Join(dir, "items.provenance.yaml")

	out, err := run(t, setup(t), "items", "-t", "yaml", "--provenance", provFile)
	require.NoError(t, err)
	assert.Contains(t, out, "family: items")

	pf, err := provenance.Load(provFile)
	require.NoError(t, err)
	require.NotNil(t, pf)
	history := pf.Provenance["items:1:Name"]
	require.Len(t, history, 2)
	assert.Equal(t, provenance.ReasonOverride, history[1].Reason)
}

func TestExportBadType(t *testing.T) {
	_, err := run(t, setup(t), "items", "--type", "xml")
	assert.Error(t, err)
}
