package tools

import (
	"context"
	"errors"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/skillkit/internal/search"
	"github.com/HendryAvila/skillkit/internal/workspace"
)

// SearchTool handles the pm_search MCP tool.
type SearchTool struct {
	ws *workspace.Workspace
}

// NewSearchTool creates a SearchTool.
func NewSearchTool(ws *workspace.Workspace) *SearchTool {
	return &SearchTool{ws: ws}
}

// Definition returns the MCP tool definition for pm_search.
func (t *SearchTool) Definition() mcp.Tool {
	return mcp.NewTool("pm_search",
		mcp.WithDescription(
			"Search requirements, decisions and open questions. "+
				"Uses SQLite FTS5 when available and falls back to substring matching otherwise.",
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search terms. Words are prefix-matched; quoted phrases and AND/OR/NOT pass through."),
		),
		mcp.WithString("scope",
			mcp.Description("What to search"),
			mcp.DefaultString("all"),
			mcp.Enum("requirement", "decision", "question", "all"),
		),
		mcp.WithString("mode",
			mcp.Description("Backend preference (IDEATE_PM_SEARCH_MODE overrides it)"),
			mcp.Enum("auto", "fts", "like"),
		),
	)
}

// Handle processes the pm_search tool call.
func (t *SearchTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := strings.TrimSpace(req.GetString("query", ""))
	if query == "" {
		return mcp.NewToolResultError("'query' is required"), nil
	}
	scope, err := search.ParseScope(req.GetString("scope", "all"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var mode search.Mode
	if raw := req.GetString("mode", ""); raw != "" {
		if mode, err = search.ParseMode(raw); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	res, err := t.ws.Search(ctx, search.Request{Query: query, Scope: scope, Mode: mode})
	if errors.Is(err, search.ErrEmptyQuery) {
		return mcp.NewToolResultError("'query' is required"), nil
	}
	if err != nil {
		return storeError("search", err), nil
	}

	var b strings.Builder
	for _, n := range res.Notices {
		b.WriteString(n.String())
		b.WriteString("\n")
	}
	if len(res.Notices) > 0 {
		b.WriteString("\n")
	}
	b.WriteString(res.Markdown())
	return mcp.NewToolResultText(b.String()), nil
}
