package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/skillkit/internal/workspace"
)

// InitTool handles the pm_init MCP tool.
// It creates the product database and the compiled views.
type InitTool struct {
	ws *workspace.Workspace
}

// NewInitTool creates an InitTool.
func NewInitTool(ws *workspace.Workspace) *InitTool {
	return &InitTool{ws: ws}
}

// Definition returns the MCP tool definition for registration.
func (t *InitTool) Definition() mcp.Tool {
	return mcp.NewTool("pm_init",
		mcp.WithDescription(
			"Initialize repo-scoped product memory. "+
				"Creates the SQLite database and the PRODUCT, BACKLOG and OPEN_QUESTIONS views. "+
				"Safe to call again: existing requirements are kept and the title/vision are updated.",
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Product name"),
		),
		mcp.WithString("vision",
			mcp.Description("Optional one-paragraph product vision"),
		),
	)
}

// Handle processes the pm_init tool call.
func (t *InitTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title := req.GetString("title", "")
	if title == "" {
		return mcp.NewToolResultError("'title' is required"), nil
	}
	vision := req.GetString("vision", "")

	if err := t.ws.Init(ctx, title, vision); err != nil {
		return nil, fmt.Errorf("initializing product: %w", err)
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"# Product Initialized\n\n"+
			"**Title:** %s\n"+
			"**Location:** `%s`\n"+
			"**Search engine:** %s\n\n"+
			"## Next Step\n\n"+
			"Capture the first idea with `pm_add_requirement`.",
		title, t.ws.Product().Dir, t.ws.Engine(),
	)), nil
}
