package app

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/tablemerge/pkg/constants"
	"github.com/agentstation/tablemerge/pkg/logging"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	a, err := New("1.0.0", "abc123", "2026-01-01", "test",
		WithConfig(&Config{
			HistoryBackend: constants.HistoryBackendJSON,
			HistoryFile:    filepath.Join(t.TempDir(), "history.json"),
			ExportWorkers:  constants.DefaultExportWorkers,
			LogFormat:      "json",
			LogOutput:      "discard",
		}),
		WithLogger(logging.NewNopLogger()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Shutdown(context.Background()) })
	return a
}

func run(t *testing.T, a *App, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := a.createRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func dataDir(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "data")
	require.NoError(t, os.MkdirAll(root, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "items.csv"), []byte("ID,Name,Value\n1,foo,100\n2,bar,200\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "items_kcc.csv"), []byte("ID,Name,Value\n1,FOO,999\n"), 0o600))
	return root
}

func TestApp_New(t *testing.T) {
	a := newTestApp(t)
	assert.Equal(t, "1.0.0", a.Version())
	assert.Equal(t, "abc123", a.Commit())
	assert.Equal(t, "2026-01-01", a.Date())
	assert.Equal(t, "test", a.BuiltBy())
	assert.NotNil(t, a.Logger())
	assert.NotNil(t, a.Config())
}

func TestApp_ClientSingleton(t *testing.T) {
	a := newTestApp(t)
	a.config.Roots = []string{dataDir(t)}

	c1, err := a.Client()
	require.NoError(t, err)
	c2, err := a.Client()
	require.NoError(t, err)
	assert.Same(t, c1, c2)
	assert.NotNil(t, c1.History())

	c3, err := a.ClientWithOptions()
	require.NoError(t, err)
	defer c3.Close()
	assert.NotSame(t, c1, c3)
}

func TestApp_ClientInvalidConfig(t *testing.T) {
	a := newTestApp(t)
	a.config.HistoryBackend = "postgres"
	_, err := a.Client()
	assert.Error(t, err)

	a.config.HistoryBackend = constants.HistoryBackendNone
	a.config.ExportWorkers = 1000
	_, err = a.Client()
	assert.Error(t, err)
}

func TestExecute_FamiliesJSON(t *testing.T) {
	a := newTestApp(t)
	root := dataDir(t)

	out, err := run(t, a, "families", "-r", root, "-o", "json")
	require.NoError(t, err)

	var fams []struct {
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &fams))
	require.Len(t, fams, 1)
	assert.Equal(t, "items", fams[0].Name)
}

func TestExecute_PatchThenUndo(t *testing.T) {
	a := newTestApp(t)
	root := dataDir(t)
	outDir := filepath.Join(t.TempDir(), "out")
	patchFile := filepath.Join(t.TempDir(), "fix.json")
	require.NoError(t, os.WriteFile(patchFile, []byte(`{
  // rename the kcc sword
  "family": "items",
  "edits": [{"row_id": 1, "column": "Name", "value": "Renamed"},],
}`), 0o600))

	_, err := run(t, a, "patch", "-r", root, "-o", "json", "--patch", patchFile, "--output", outDir)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(outDir, "items_kcc.csv"))
	require.NoError(t, err)
	assert.Equal(t, "ID,Name,Value\n1,Renamed,999\n", string(data))

	out, err := run(t, a, "history", "-r", root, "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"family": "items"`)

	_, err = run(t, a, "undo", "-r", root, "-o", "json", "--family", "items")
	require.NoError(t, err)

	data, err = os.ReadFile(filepath.Join(outDir, "items_kcc.csv"))
	require.NoError(t, err)
	assert.Equal(t, "ID,Name,Value\n1,FOO,999\n", string(data))
}

func TestExecute_InvalidFormat(t *testing.T) {
	a := newTestApp(t)
	_, err := run(t, a, "families", "-o", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestExecute_Version(t *testing.T) {
	a := newTestApp(t)

	out, err := run(t, a, "version", "-o", "table")
	require.NoError(t, err)
	assert.Equal(t, "tablemerge 1.0.0", strings.TrimSpace(out))

	out, err = run(t, a, "version", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"commit": "abc123"`)
}
