package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/skillkit/internal/product"
	"github.com/HendryAvila/skillkit/internal/workspace"
)

// RecordDecisionTool handles the pm_record_decision MCP tool.
type RecordDecisionTool struct {
	ws *workspace.Workspace
}

// NewRecordDecisionTool creates a RecordDecisionTool.
func NewRecordDecisionTool(ws *workspace.Workspace) *RecordDecisionTool {
	return &RecordDecisionTool{ws: ws}
}

// Definition returns the MCP tool definition for pm_record_decision.
func (t *RecordDecisionTool) Definition() mcp.Tool {
	return mcp.NewTool("pm_record_decision",
		mcp.WithDescription(
			"Record a product decision with its rationale. "+
				"Pass 'resolves' with an open question ID to close that question in the same step.",
		),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("The question that was decided"),
		),
		mcp.WithString("choice",
			mcp.Required(),
			mcp.Description("The chosen answer"),
		),
		mcp.WithString("rationale",
			mcp.Description("Why this choice was made"),
		),
		mcp.WithString("scope",
			mcp.Description("What the decision applies to"),
			mcp.DefaultString("product"),
			mcp.Enum("product", "requirement"),
		),
		mcp.WithString("ref",
			mcp.Description("Scope reference, e.g. a requirement ID (defaults to 'product')"),
		),
		mcp.WithNumber("confidence",
			mcp.Description("Confidence between 0 and 1 (default 0.7)"),
		),
		mcp.WithNumber("resolves",
			mcp.Description("Open question ID this decision resolves"),
		),
	)
}

// Handle processes the pm_record_decision tool call.
func (t *RecordDecisionTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question := strings.TrimSpace(req.GetString("question", ""))
	choice := strings.TrimSpace(req.GetString("choice", ""))
	if question == "" || choice == "" {
		return mcp.NewToolResultError("'question' and 'choice' are required"), nil
	}

	params := product.RecordDecisionParams{
		Scope:      product.ScopeType(req.GetString("scope", "product")),
		Ref:        req.GetString("ref", ""),
		Question:   question,
		Choice:     choice,
		Rationale:  req.GetString("rationale", ""),
		Confidence: numberArg(req, "confidence", product.DefaultConfidence),
		Resolves:   int64(numberArg(req, "resolves", 0)),
	}

	var d *product.Decision
	err := t.ws.Update(ctx, func(s *product.Store) error {
		var err error
		d, err = s.RecordDecision(ctx, params)
		return err
	})
	if errors.Is(err, product.ErrQuestionNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf(
			"open question %d not found; the decision was not recorded", params.Resolves)), nil
	}
	if err != nil {
		return storeError("record decision", err), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Recorded decision %d (%s, confidence=%.2f)\nQ: %s\nChoice: %s",
		d.ID, product.ScopeLabel(d.ScopeType, d.ScopeRef), d.Confidence, d.Question, d.Choice)
	if params.Resolves > 0 {
		fmt.Fprintf(&b, "\nResolved open question %d", params.Resolves)
	}
	return mcp.NewToolResultText(b.String()), nil
}
