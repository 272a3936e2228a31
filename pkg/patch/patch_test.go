package patch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/tablemerge/pkg/errors"
)

func TestPatchBuilder(t *testing.T) {
	p := New("items").Add(1, "Name", "Renamed").Add(2, "Value", "5")
	assert.Equal(t, "items", p.Family)
	require.Len(t, p.Edits, 2)
	assert.Equal(t, Edit{RowID: 2, Column: "Value", Value: "5"}, p.Edits[1])
	assert.NoError(t, p.Validate())

	assert.True(t, errors.IsValidationError(New(" ").Validate()))
	assert.True(t, errors.IsValidationError(New("x").Add(1, "", "v").Validate()))
}

func TestLoadJSONWithComments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.json")
	content := `{
  // rename the first item
  "family": "items",
  "edits": [
    {"row_id": 1, "column": "Name", "value": "Renamed"}, /* trailing comma next */
  ],
}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "items", p.Family)
	assert.Equal(t, []Edit{{RowID: 1, Column: "Name", Value: "Renamed"}}, p.Edits)
}

func TestSaveLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.yaml")
	require.NoError(t, New("items").Add(3, "Desc", "a, \"quoted\" value").Save(path))

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "a, \"quoted\" value", p.Edits[0].Value)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"family": `), 0o600))
	_, err = Load(bad)
	assert.True(t, errors.IsParseError(err))

	nofam := filepath.Join(dir, "nofam.json")
	require.NoError(t, os.WriteFile(nofam, []byte(`{"edits": []}`), 0o600))
	_, err = Load(nofam)
	assert.True(t, errors.IsValidationError(err))
}

func TestBatchResolvesRelativePaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "batch.json")
	b := &Batch{Roots: []string{"data", "/abs/root"}, OutputDir: "out", Patches: []string{"p1.json"}}
	require.NoError(t, b.Save(path))

	loaded, err := LoadBatch(path)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "data"), "/abs/root"}, loaded.Roots)
	assert.Equal(t, filepath.Join(dir, "out"), loaded.OutputDir)
	assert.Equal(t, []string{filepath.Join(dir, "p1.json")}, loaded.Patches)

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, (&Batch{OutputDir: "out"}).Save(empty))
	_, err = LoadBatch(empty)
	assert.True(t, errors.IsValidationError(err))
}

func TestParseEdit(t *testing.T) {
	e, err := ParseEdit("12:Name:Sword: of Doom")
	require.NoError(t, err)
	assert.Equal(t, Edit{RowID: 12, Column: "Name", Value: "Sword: of Doom"}, e)

	e, err = ParseEdit(" 3 : Value :")
	require.NoError(t, err)
	assert.Equal(t, Edit{RowID: 3, Column: "Value", Value: ""}, e)

	for _, bad := range []string{"1:Name", "x:Name:v", "1::v"} {
		_, err := ParseEdit(bad)
		assert.True(t, errors.IsValidationError(err), bad)
	}
}

func TestParseEdits(t *testing.T) {
	edits, err := ParseEdits("1:Name:Renamed\r\n\n  \n1:Value:999\n")
	require.NoError(t, err)
	assert.Equal(t, []Edit{
		{RowID: 1, Column: "Name", Value: "Renamed"},
		{RowID: 1, Column: "Value", Value: "999"},
	}, edits)

	_, err = ParseEdits("1:Name:ok\nbroken")
	assert.Error(t, err)
}
