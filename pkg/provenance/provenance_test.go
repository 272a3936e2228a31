package provenance

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker(t *testing.T) {
	tr := NewTracker(true)
	tr.Track("abi", "1", "Name", Provenance{Source: "abi.csv", Value: "foo", Reason: ReasonInitial})
	tr.Track("abi", "1", "Name", Provenance{Source: "abi_kcc.csv", Value: "FOO", Reason: ReasonOverride, Rank: 1})
	tr.Track("abi", "1", "Value", Provenance{Source: "abi.csv", Value: "100", Reason: ReasonInitial})
	tr.Track("abi", "2", "Name", Provenance{Source: "abi.csv", Value: "bar", Reason: ReasonInitial})

	history := tr.FindByField("abi", "1", "Name")
	require.Len(t, history, 2)
	assert.Equal(t, "Name", history[0].Field)
	assert.False(t, history[0].Timestamp.IsZero())

	winner, ok := Winner(history)
	require.True(t, ok)
	assert.Equal(t, "abi_kcc.csv", winner.Source)

	row := tr.FindByRow("abi", "1")
	assert.Len(t, row, 2)
	assert.Len(t, row["Value"], 1)

	assert.Len(t, tr.Map(), 3)

	tr.ClearFamily("abi")
	assert.Empty(t, tr.Map())
}

func TestDisabledTracker(t *testing.T) {
	tr := NewTracker(false)
	tr.Track("abi", "1", "Name", Provenance{Source: "abi.csv"})
	assert.Nil(t, tr.FindByField("abi", "1", "Name"))
	assert.Nil(t, tr.FindByRow("abi", "1"))
	assert.Nil(t, tr.Map())
}

func TestMapIsCopy(t *testing.T) {
	tr := NewTracker(true)
	tr.Track("f", "1", "c", Provenance{Source: "a"})
	m := tr.Map()
	m["f:1:c"][0].Source = "mutated"
	assert.Equal(t, "a", tr.FindByField("f", "1", "c")[0].Source)
}

func TestRowKey(t *testing.T) {
	id := int64(42)
	assert.Equal(t, "42", RowKey(&id, 3))
	assert.Equal(t, "#3", RowKey(nil, 3))
}

func TestReport(t *testing.T) {
	tr := NewTracker(true)
	tr.Track("abi", "1", "Name", Provenance{Source: "abi.csv", Value: "foo"})
	tr.Track("abi", "1", "Name", Provenance{Source: "abi_kcc.csv", Value: "FOO"})

	report := GenerateReport(tr.Map())
	require.Contains(t, report.Cells, "abi:1:Name")
	assert.Equal(t, "FOO", report.Cells["abi:1:Name"].Current.Value)

	out := report.String()
	assert.Contains(t, out, "abi row 1")
	assert.Contains(t, out, "Name: FOO (from abi_kcc.csv)")
	assert.Contains(t, out, "was foo from abi.csv")
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "provenance.yaml")

	missing, err := Load(path)
	require.NoError(t, err)
	assert.Nil(t, missing)

	tr := NewTracker(true)
	tr.Track("abi", "1", "Name", Provenance{Source: "abi.csv", Value: "foo", Reason: ReasonInitial})
	require.NoError(t, Save(path, tr.Map()))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.Len(t, loaded.Provenance["abi:1:Name"], 1)
	assert.Equal(t, "abi.csv", loaded.Provenance["abi:1:Name"][0].Source)
	assert.Equal(t, ReasonInitial, loaded.Provenance["abi:1:Name"][0].Reason)
}
