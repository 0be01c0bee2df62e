package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/skillkit/internal/product"
	"github.com/HendryAvila/skillkit/internal/workspace"
)

// AddOpenQuestionTool handles the pm_add_open_question MCP tool.
type AddOpenQuestionTool struct {
	ws *workspace.Workspace
}

// NewAddOpenQuestionTool creates an AddOpenQuestionTool.
func NewAddOpenQuestionTool(ws *workspace.Workspace) *AddOpenQuestionTool {
	return &AddOpenQuestionTool{ws: ws}
}

// Definition returns the MCP tool definition for pm_add_open_question.
func (t *AddOpenQuestionTool) Definition() mcp.Tool {
	return mcp.NewTool("pm_add_open_question",
		mcp.WithDescription(
			"Park an unresolved question so it is not lost. "+
				"Resolve it later by recording a decision with 'resolves'.",
		),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("The open question"),
		),
		mcp.WithString("scope",
			mcp.Description("What the question is about"),
			mcp.DefaultString("product"),
			mcp.Enum("product", "requirement"),
		),
		mcp.WithString("ref",
			mcp.Description("Scope reference, e.g. a requirement ID (defaults to 'product')"),
		),
		mcp.WithString("severity",
			mcp.Description("How much the question blocks progress"),
			mcp.DefaultString("medium"),
			mcp.Enum("low", "medium", "high"),
		),
	)
}

// Handle processes the pm_add_open_question tool call.
func (t *AddOpenQuestionTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question := strings.TrimSpace(req.GetString("question", ""))
	if question == "" {
		return mcp.NewToolResultError("'question' is required"), nil
	}

	var q *product.OpenQuestion
	err := t.ws.Update(ctx, func(s *product.Store) error {
		var err error
		q, err = s.AddOpenQuestion(ctx, product.AddOpenQuestionParams{
			Scope:    product.ScopeType(req.GetString("scope", "product")),
			Ref:      req.GetString("ref", ""),
			Question: question,
			Severity: product.Severity(req.GetString("severity", "medium")),
		})
		return err
	})
	if err != nil {
		return storeError("add open question", err), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"Added open question %d (%s, severity=%s)\n%s",
		q.ID, product.ScopeLabel(q.ScopeType, q.ScopeRef), q.Severity, q.Question,
	)), nil
}
