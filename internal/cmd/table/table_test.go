package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/tablemerge/pkg/family"
	"github.com/agentstation/tablemerge/pkg/merge"
	"github.com/agentstation/tablemerge/pkg/patch"
	rectable "github.com/agentstation/tablemerge/pkg/table"
)

func resolvedFixture() *merge.ResolvedTable {
	one, two := int64(1), int64(2)
	return &merge.ResolvedTable{
		Family:  "items",
		Columns: []string{"ID", "Name", "Value"},
		Sources: []string{"/d/items.csv", "/d/items_kcc.csv"},
		Rows: []merge.ResolvedRow{
			{ID: &one, Cells: []merge.ResolvedCell{
				{Value: rectable.Int(1), Source: "/d/items.csv"},
				{Value: rectable.Text("Sword"), Source: "/d/items.csv"},
				{Value: rectable.Int(999), Source: "/d/items_kcc.csv"},
			}},
			{ID: &two, Cells: []merge.ResolvedCell{
				{Value: rectable.Int(2), Source: "/d/items.csv"},
				{Value: rectable.Text("Shield"), Source: "/d/items.csv"},
				{Value: rectable.Empty(), Source: "/d/items.csv"},
			}},
		},
	}
}

func TestFamiliesToTableData(t *testing.T) {
	fams := []family.Family{
		{Name: "items", Members: []family.Member{
			{Path: "/d/items.csv"},
			{Path: "/d/items_kcc.csv", Suffix: "kcc"},
			{Path: "/d/items_toe.csv", Suffix: "toe"},
		}},
		{Name: "spells", Members: []family.Member{{Path: "/d/spells.csv"}}},
	}

	t.Run("summary", func(t *testing.T) {
		data := FamiliesToTableData(fams, false)
		assert.Equal(t, []string{"Family", "Members", "Variants"}, data.Headers)
		assert.Equal(t, [][]string{
			{"items", "3", "kcc, toe"},
			{"spells", "1", "-"},
		}, data.Rows)
	})

	t.Run("details", func(t *testing.T) {
		data := FamiliesToTableData(fams, true)
		require.Len(t, data.Rows, 4)
		assert.Equal(t, []string{"items", "(base)", "/d/items.csv"}, data.Rows[0])
		assert.Equal(t, []string{"", "kcc", "/d/items_kcc.csv"}, data.Rows[1])
		assert.Equal(t, []string{"spells", "(base)", "/d/spells.csv"}, data.Rows[3])
	})
}

func TestResolvedToTableData(t *testing.T) {
	rt := resolvedFixture()

	t.Run("all columns", func(t *testing.T) {
		data := ResolvedToTableData(rt, rt.Rows, nil, false)
		assert.Equal(t, []string{"ID", "Name", "Value"}, data.Headers)
		assert.Equal(t, [][]string{{"1", "Sword", "999"}, {"2", "Shield", ""}}, data.Rows)
	})

	t.Run("selected columns", func(t *testing.T) {
		data := ResolvedToTableData(rt, rt.Rows, []string{"name"}, false)
		assert.Equal(t, []string{"Name"}, data.Headers)
		assert.Equal(t, [][]string{{"Sword"}, {"Shield"}}, data.Rows)
	})

	t.Run("wide adds sources", func(t *testing.T) {
		data := ResolvedToTableData(rt, rt.Rows[:1], []string{"Value"}, true)
		assert.Equal(t, []string{"Value", "Value source"}, data.Headers)
		assert.Equal(t, [][]string{{"999", "items_kcc.csv"}}, data.Rows)
	})
}

func TestMatchColumn(t *testing.T) {
	tests := []struct {
		column   string
		patterns []string
		want     bool
	}{
		{"Name", nil, true},
		{"Name", []string{"name"}, true},
		{"HitPoints", []string{"hit*"}, true},
		{"Value", []string{"Na?e"}, false},
		{"Name", []string{"Na?e"}, true},
		{"Name", []string{" Name "}, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MatchColumn(tt.column, tt.patterns), "%s %v", tt.column, tt.patterns)
	}
}

func TestRecordTableToTableData(t *testing.T) {
	tbl := &rectable.Table{
		Columns: []rectable.Column{{Name: "ID", Index: 0}, {Name: "Rate", Index: 1}},
		Rows: []rectable.Row{
			rectable.NewRow([]rectable.Value{rectable.Int(1), rectable.Float(2)}),
			rectable.NewRow([]rectable.Value{rectable.Int(2), rectable.Float(2.5)}),
			rectable.NewRow([]rectable.Value{rectable.Int(3), rectable.Empty()}),
		},
	}

	data := RecordTableToTableData(tbl, 2)
	assert.Equal(t, []string{"ID", "Rate"}, data.Headers)
	assert.Equal(t, [][]string{{"1", "2.0"}, {"2", "2.5"}}, data.Rows)

	assert.Len(t, RecordTableToTableData(tbl, 0).Rows, 3)
}

func TestImpactToTableData(t *testing.T) {
	rt := resolvedFixture()
	p := patch.New("items").Add(1, "Value", "5").Add(7, "Name", "x")

	data := ImpactToTableData(patch.Analyze(rt, p))
	require.Len(t, data.Rows, 2)
	assert.Equal(t, []string{"1", "Value", "999", "5", "items_kcc.csv", "ok"}, data.Rows[0])
	assert.Equal(t, "row 7 not found", data.Rows[1][5])
}

func TestSourceSummaryToTableData(t *testing.T) {
	data := SourceSummaryToTableData(resolvedFixture())
	assert.Equal(t, [][]string{
		{"/d/items.csv", "4"},
		{"/d/items_kcc.csv", "1"},
	}, data.Rows)
}
