package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/skillkit/internal/workspace"
)

// StateTool handles the pm_state MCP tool.
// It returns the compact product summary an assistant reads before working.
type StateTool struct {
	ws *workspace.Workspace
}

// NewStateTool creates a StateTool.
func NewStateTool(ws *workspace.Workspace) *StateTool {
	return &StateTool{ws: ws}
}

// Definition returns the MCP tool definition for pm_state.
func (t *StateTool) Definition() mcp.Tool {
	return mcp.NewTool("pm_state",
		mcp.WithDescription(
			"Show the product title, vision, requirements and unresolved questions. "+
				"Call this first in a session to load product context.",
		),
		mcp.WithBoolean("full",
			mcp.Description("Include requirement descriptions and open questions"),
		),
	)
}

// Handle processes the pm_state tool call.
func (t *StateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, err := t.ws.State(ctx, boolArg(req, "full", false))
	if err != nil {
		return storeError("load state", err), nil
	}
	return mcp.NewToolResultText(out), nil
}

// ─── CompileViewsTool ────────────────────────────────────────────────────────

// CompileViewsTool handles the pm_compile_views MCP tool.
type CompileViewsTool struct {
	ws *workspace.Workspace
}

// NewCompileViewsTool creates a CompileViewsTool.
func NewCompileViewsTool(ws *workspace.Workspace) *CompileViewsTool {
	return &CompileViewsTool{ws: ws}
}

// Definition returns the MCP tool definition for pm_compile_views.
func (t *CompileViewsTool) Definition() mcp.Tool {
	return mcp.NewTool("pm_compile_views",
		mcp.WithDescription(
			"Regenerate PRODUCT.md, BACKLOG.md and OPEN_QUESTIONS.md from the database. "+
				"Views are rebuilt automatically after every change; use this after editing the database by hand.",
		),
	)
}

// Handle processes the pm_compile_views tool call.
func (t *CompileViewsTool) Handle(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	paths, err := t.ws.CompileViews(ctx)
	if err != nil {
		return storeError("compile views", err), nil
	}

	var b strings.Builder
	b.WriteString("Compiled views:\n")
	for _, p := range paths {
		fmt.Fprintf(&b, "- %s\n", p)
	}
	return mcp.NewToolResultText(b.String()), nil
}
