package mcpserver

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/tablemerge"
	"github.com/agentstation/tablemerge/pkg/logging"
	"github.com/agentstation/tablemerge/pkg/patch"
)

func newTestClient(t *testing.T) (tablemerge.Client, string) {
	t.Helper()
	root := filepath.Join(t.TempDir(), "data")
	require.NoError(t, os.MkdirAll(root, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "items.csv"), []byte("ID,Name,Value\n1,foo,100\n2,bar,200\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "items_kcc.csv"), []byte("ID,Name,Value\n1,FOO,999\n"), 0o600))

	c, err := tablemerge.New(tablemerge.WithRoots(root), tablemerge.WithLogger(logging.NewNopLogger()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, root
}

func makeReq(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(r *mcp.CallToolResult) string {
	if r == nil {
		return ""
	}
	for _, c := range r.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestToolDefinitions(t *testing.T) {
	c, _ := newTestClient(t)

	want := []string{"list_families", "show_family", "explain_cell", "validate_patch", "apply_patch"}
	tools := Tools(c)
	require.Len(t, tools, len(want))
	for i, tool := range tools {
		assert.Equal(t, want[i], tool.Definition().Name)
	}

	def := NewApplyPatchTool(c).Definition()
	assert.ElementsMatch(t, []string{"family", "edits", "output_dir"}, def.InputSchema.Required)
}

func TestNewServer(t *testing.T) {
	c, _ := newTestClient(t)
	assert.NotNil(t, New(c, "test"))
}

func TestListFamilies(t *testing.T) {
	c, _ := newTestClient(t)
	tool := NewListFamiliesTool(c)

	res, err := tool.Handle(context.Background(), makeReq(map[string]any{}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	var fams []struct {
		Name    string `json:"name"`
		Members []struct {
			Suffix string `json:"suffix"`
		} `json:"members"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(res)), &fams))
	require.Len(t, fams, 1)
	assert.Equal(t, "items", fams[0].Name)
	assert.Len(t, fams[0].Members, 2)

	res, err = tool.Handle(context.Background(), makeReq(map[string]any{"pattern": "spell"}))
	require.NoError(t, err)
	assert.JSONEq(t, "[]", resultText(res))
}

func TestShowFamily(t *testing.T) {
	c, _ := newTestClient(t)
	tool := NewShowFamilyTool(c, nil)

	res, err := tool.Handle(context.Background(), makeReq(map[string]any{"family": "items", "limit": float64(1)}))
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(res))

	var view familyView
	require.NoError(t, json.Unmarshal([]byte(resultText(res)), &view))
	assert.Equal(t, []string{"ID", "Name", "Value"}, view.Columns)
	assert.Equal(t, 2, view.TotalRows)
	require.Len(t, view.Rows, 1)
	assert.Equal(t, "FOO", view.Rows[0].Cells[1].Value.String())

	res, err = tool.Handle(context.Background(), makeReq(map[string]any{"family": "nope"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = tool.Handle(context.Background(), makeReq(map[string]any{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestShowFamilyCached(t *testing.T) {
	c, root := newTestClient(t)
	cache := NewTableCache(time.Minute)
	tool := NewShowFamilyTool(c, cache)

	show := func() familyView {
		t.Helper()
		res, err := tool.Handle(context.Background(), makeReq(map[string]any{"family": "items"}))
		require.NoError(t, err)
		require.False(t, res.IsError, resultText(res))
		var view familyView
		require.NoError(t, json.Unmarshal([]byte(resultText(res)), &view))
		return view
	}

	assert.Equal(t, "FOO", show().Rows[0].Cells[1].Value.String())
	assert.Equal(t, 1, cache.Len())

	require.NoError(t, os.WriteFile(filepath.Join(root, "items_kcc.csv"), []byte("ID,Name,Value\n1,BAZ,999\n"), 0o600))
	assert.Equal(t, "FOO", show().Rows[0].Cells[1].Value.String())

	cache.Clear()
	assert.Equal(t, "BAZ", show().Rows[0].Cells[1].Value.String())
}

func TestExplainCell(t *testing.T) {
	c, root := newTestClient(t)
	tool := NewExplainCellTool(c)

	res, err := tool.Handle(context.Background(), makeReq(map[string]any{
		"family": "items", "row": float64(1), "column": "Value",
	}))
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(res))

	var exp tablemerge.Explanation
	require.NoError(t, json.Unmarshal([]byte(resultText(res)), &exp))
	assert.Equal(t, filepath.Join(root, "items_kcc.csv"), exp.Source)
	assert.Equal(t, "999", exp.Value.String())
	assert.Len(t, exp.Contributions, 2)

	res, err = tool.Handle(context.Background(), makeReq(map[string]any{"family": "items", "column": "Value"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestValidatePatch(t *testing.T) {
	c, _ := newTestClient(t)
	tool := NewValidatePatchTool(c)

	res, err := tool.Handle(context.Background(), makeReq(map[string]any{
		"family": "items", "edits": "1:Name:Renamed\n9:Name:x\n",
	}))
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(res))

	var impact patch.Impact
	require.NoError(t, json.Unmarshal([]byte(resultText(res)), &impact))
	assert.Len(t, impact.Resolved, 1)
	require.Len(t, impact.Failed, 1)
	assert.Equal(t, "row 9 not found", impact.Failed[0].Reason)

	res, err = tool.Handle(context.Background(), makeReq(map[string]any{"family": "items", "edits": "garbage"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestApplyPatch(t *testing.T) {
	c, _ := newTestClient(t)
	tool := NewApplyPatchTool(c)
	out := filepath.Join(t.TempDir(), "out")

	res, err := tool.Handle(context.Background(), makeReq(map[string]any{
		"family": "items", "edits": "1:Name:Renamed\n2:Value:5", "output_dir": out,
	}))
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(res))

	data, err := os.ReadFile(filepath.Join(out, "items_kcc.csv"))
	require.NoError(t, err)
	assert.Equal(t, "ID,Name,Value\n1,Renamed,999\n", string(data))

	data, err = os.ReadFile(filepath.Join(out, "items.csv"))
	require.NoError(t, err)
	assert.Equal(t, "ID,Name,Value\n1,foo,100\n2,bar,5\n", string(data))

	res, err = tool.Handle(context.Background(), makeReq(map[string]any{"family": "items", "edits": "1:Name:x"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
