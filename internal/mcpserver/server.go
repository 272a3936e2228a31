// Package mcpserver exposes family discovery, merging and patching as MCP
// tools served over stdio.
package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/agentstation/tablemerge"
	"github.com/agentstation/tablemerge/pkg/constants"
)

// Name is the server name announced to MCP clients.
const Name = "tablemerge"

// Tool is an MCP tool definition with its handler.
type Tool interface {
	Definition() mcp.Tool
	Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// Tools returns every tool backed by client.
func Tools(client tablemerge.Client) []Tool {
	return []Tool{
		NewListFamiliesTool(client),
		NewShowFamilyTool(client, NewTableCache(constants.MergeCacheTTL)),
		NewExplainCellTool(client),
		NewValidatePatchTool(client),
		NewApplyPatchTool(client),
	}
}

// New creates the MCP server with all tools registered.
func New(client tablemerge.Client, version string) *server.MCPServer {
	s := server.NewMCPServer(
		Name,
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)
	for _, t := range Tools(client) {
		s.AddTool(t.Definition(), t.Handle)
	}
	return s
}

// ServeStdio serves s on stdin/stdout until the client disconnects.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

const instructions = `tablemerge merges families of overlapping record files (a base file
plus suffixed variants) into one table that remembers which file supplied
each cell. Use list_families to discover families, show_family to read a
merged table, explain_cell to see which file owns a cell, validate_patch
to check edits and apply_patch to export the files owning edited cells.
Edits are written one per line as row:column:value.`

// jsonResult renders v as indented JSON text.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError("encoding result: " + err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// intArg extracts an integer argument, returning defaultVal when the key
// is missing or not a number (JSON numbers are float64).
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}
