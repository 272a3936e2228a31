package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/agentstation/tablemerge"
	"github.com/agentstation/tablemerge/pkg/family"
	"github.com/agentstation/tablemerge/pkg/merge"
	"github.com/agentstation/tablemerge/pkg/patch"
)

// ListFamiliesTool handles the list_families tool.
type ListFamiliesTool struct {
	client tablemerge.Client
}

// NewListFamiliesTool creates a ListFamiliesTool.
func NewListFamiliesTool(client tablemerge.Client) *ListFamiliesTool {
	return &ListFamiliesTool{client: client}
}

// Definition returns the MCP tool definition for list_families.
func (t *ListFamiliesTool) Definition() mcp.Tool {
	return mcp.NewTool("list_families",
		mcp.WithDescription("List the table families found under the configured roots, with their member files."),
		mcp.WithString("pattern",
			mcp.Description("Only families whose name contains this text (case-insensitive)"),
		),
	)
}

// Handle processes the list_families tool call.
func (t *ListFamiliesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := t.client.Scan(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("scan failed: %v", err)), nil
	}
	fams := result.Families
	if pattern := req.GetString("pattern", ""); pattern != "" {
		fams = result.Search(pattern)
	}
	if fams == nil {
		fams = []family.Family{}
	}
	return jsonResult(fams)
}

// ShowFamilyTool handles the show_family tool.
type ShowFamilyTool struct {
	client tablemerge.Client
	cache  *TableCache
}

// NewShowFamilyTool creates a ShowFamilyTool. A nil cache merges on every call.
func NewShowFamilyTool(client tablemerge.Client, cache *TableCache) *ShowFamilyTool {
	return &ShowFamilyTool{client: client, cache: cache}
}

// Definition returns the MCP tool definition for show_family.
func (t *ShowFamilyTool) Definition() mcp.Tool {
	return mcp.NewTool("show_family",
		mcp.WithDescription("Merge a family and return its columns and rows; every cell carries the file that supplied it."),
		mcp.WithString("family",
			mcp.Required(),
			mcp.Description("Family name, e.g. items"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum rows to return (default: 50, 0 for all)"),
		),
	)
}

type familyView struct {
	Family    string              `json:"family"`
	Columns   []string            `json:"columns"`
	Sources   []string            `json:"sources"`
	TotalRows int                 `json:"total_rows"`
	Rows      []merge.ResolvedRow `json:"rows"`
}

// Handle processes the show_family tool call.
func (t *ShowFamilyTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := req.GetString("family", "")
	if name == "" {
		return mcp.NewToolResultError("'family' is required"), nil
	}
	rt, ok := t.cache.Get(name)
	if !ok {
		var err error
		rt, err = t.client.Merge(ctx, name)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("merge failed: %v", err)), nil
		}
		t.cache.Set(rt)
	}

	rows := rt.Rows
	if limit := intArg(req, "limit", 50); limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return jsonResult(familyView{
		Family:    rt.Family,
		Columns:   rt.Columns,
		Sources:   rt.Sources,
		TotalRows: rt.RowCount(),
		Rows:      rows,
	})
}

// ExplainCellTool handles the explain_cell tool.
type ExplainCellTool struct {
	client tablemerge.Client
}

// NewExplainCellTool creates an ExplainCellTool.
func NewExplainCellTool(client tablemerge.Client) *ExplainCellTool {
	return &ExplainCellTool{client: client}
}

// Definition returns the MCP tool definition for explain_cell.
func (t *ExplainCellTool) Definition() mcp.Tool {
	return mcp.NewTool("explain_cell",
		mcp.WithDescription("Report which member file owns a merged cell and every value each file supplied for it, in merge order."),
		mcp.WithString("family",
			mcp.Required(),
			mcp.Description("Family name"),
		),
		mcp.WithNumber("row",
			mcp.Required(),
			mcp.Description("Row id (integer in the first column)"),
		),
		mcp.WithString("column",
			mcp.Required(),
			mcp.Description("Column name"),
		),
	)
}

// Handle processes the explain_cell tool call.
func (t *ExplainCellTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := req.GetString("family", "")
	column := req.GetString("column", "")
	if name == "" || column == "" {
		return mcp.NewToolResultError("'family' and 'column' are required"), nil
	}
	if _, ok := req.GetArguments()["row"].(float64); !ok {
		return mcp.NewToolResultError("'row' is required"), nil
	}
	row := int64(req.GetFloat("row", 0))

	exp, err := t.client.Explain(ctx, name, row, column)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("explain failed: %v", err)), nil
	}
	return jsonResult(exp)
}

// ValidatePatchTool handles the validate_patch tool.
type ValidatePatchTool struct {
	client tablemerge.Client
}

// NewValidatePatchTool creates a ValidatePatchTool.
func NewValidatePatchTool(client tablemerge.Client) *ValidatePatchTool {
	return &ValidatePatchTool{client: client}
}

// Definition returns the MCP tool definition for validate_patch.
func (t *ValidatePatchTool) Definition() mcp.Tool {
	return mcp.NewTool("validate_patch",
		mcp.WithDescription("Resolve edits against a merged family without writing anything. Reports the file each edit would change and every edit that cannot be applied."),
		mcp.WithString("family",
			mcp.Required(),
			mcp.Description("Family name"),
		),
		mcp.WithString("edits",
			mcp.Required(),
			mcp.Description("One edit per line as row:column:value"),
		),
	)
}

// Handle processes the validate_patch tool call.
func (t *ValidatePatchTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, errResult := patchArg(req)
	if errResult != nil {
		return errResult, nil
	}
	impact, err := t.client.Validate(ctx, p)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("validate failed: %v", err)), nil
	}
	return jsonResult(impact)
}

// ApplyPatchTool handles the apply_patch tool.
type ApplyPatchTool struct {
	client tablemerge.Client
}

// NewApplyPatchTool creates an ApplyPatchTool.
func NewApplyPatchTool(client tablemerge.Client) *ApplyPatchTool {
	return &ApplyPatchTool{client: client}
}

// Definition returns the MCP tool definition for apply_patch.
func (t *ApplyPatchTool) Definition() mcp.Tool {
	return mcp.NewTool("apply_patch",
		mcp.WithDescription("Apply edits to a family: each edited cell is routed to the file that owns it and the affected files are written to output_dir. Sources are not modified."),
		mcp.WithString("family",
			mcp.Required(),
			mcp.Description("Family name"),
		),
		mcp.WithString("edits",
			mcp.Required(),
			mcp.Description("One edit per line as row:column:value"),
		),
		mcp.WithString("output_dir",
			mcp.Required(),
			mcp.Description("Directory the patched files are written to"),
		),
	)
}

// Handle processes the apply_patch tool call.
func (t *ApplyPatchTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, errResult := patchArg(req)
	if errResult != nil {
		return errResult, nil
	}
	outDir := req.GetString("output_dir", "")
	if outDir == "" {
		return mcp.NewToolResultError("'output_dir' is required"), nil
	}
	result, err := t.client.Apply(ctx, p, outDir)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("apply failed: %v", err)), nil
	}
	return jsonResult(result)
}

// patchArg builds a patch from the family and edits arguments.
func patchArg(req mcp.CallToolRequest) (*patch.Patch, *mcp.CallToolResult) {
	name := req.GetString("family", "")
	if name == "" {
		return nil, mcp.NewToolResultError("'family' is required")
	}
	edits, err := patch.ParseEdits(req.GetString("edits", ""))
	if err != nil {
		return nil, mcp.NewToolResultError(err.Error())
	}
	if len(edits) == 0 {
		return nil, mcp.NewToolResultError("'edits' must contain at least one row:column:value line")
	}
	p := patch.New(name)
	p.Edits = edits
	return p, nil
}
