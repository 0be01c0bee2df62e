package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/skillkit/internal/product"
	"github.com/HendryAvila/skillkit/internal/workspace"
)

// AddRequirementTool handles the pm_add_requirement MCP tool.
type AddRequirementTool struct {
	ws *workspace.Workspace
}

// NewAddRequirementTool creates an AddRequirementTool.
func NewAddRequirementTool(ws *workspace.Workspace) *AddRequirementTool {
	return &AddRequirementTool{ws: ws}
}

// Definition returns the MCP tool definition for pm_add_requirement.
func (t *AddRequirementTool) Definition() mcp.Tool {
	return mcp.NewTool("pm_add_requirement",
		mcp.WithDescription(
			"Add a requirement to the backlog as PROPOSED. Capture ideas as soon as the user states them; "+
				"refine them later with pm_refine_requirement.",
		),
		mcp.WithString("description",
			mcp.Required(),
			mcp.Description("The requirement idea in the user's words"),
		),
		mcp.WithString("title",
			mcp.Description("Optional short title (defaults to the first 60 characters of the description)"),
		),
		mcp.WithString("priority",
			mcp.Description("Initial priority"),
			mcp.DefaultString("P2"),
			mcp.Enum("P0", "P1", "P2"),
		),
	)
}

// Handle processes the pm_add_requirement tool call.
func (t *AddRequirementTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	description := req.GetString("description", "")
	if strings.TrimSpace(description) == "" {
		return mcp.NewToolResultError("'description' is required"), nil
	}

	var added *product.Requirement
	err := t.ws.Update(ctx, func(s *product.Store) error {
		var err error
		added, err = s.AddRequirement(ctx, product.AddRequirementParams{
			Description: description,
			Title:       req.GetString("title", ""),
			Priority:    product.Priority(req.GetString("priority", "P2")),
		})
		return err
	})
	if err != nil {
		return storeError("add requirement", err), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"Added requirement %s (status=%s, priority=%s)\nTitle: %s",
		added.ReqID, added.Status, added.Priority, added.Title,
	)), nil
}

// ─── RefineRequirementTool ───────────────────────────────────────────────────

// RefineRequirementTool handles the pm_refine_requirement MCP tool.
type RefineRequirementTool struct {
	ws *workspace.Workspace
}

// NewRefineRequirementTool creates a RefineRequirementTool.
func NewRefineRequirementTool(ws *workspace.Workspace) *RefineRequirementTool {
	return &RefineRequirementTool{ws: ws}
}

// Definition returns the MCP tool definition for pm_refine_requirement.
func (t *RefineRequirementTool) Definition() mcp.Tool {
	return mcp.NewTool("pm_refine_requirement",
		mcp.WithDescription(
			"Persist the outcome of clarifying a requirement: updated fields and new acceptance criteria. "+
				"Only the fields you pass are changed.",
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Requirement ID, e.g. R-001"),
		),
		mcp.WithString("title", mcp.Description("New title")),
		mcp.WithString("description", mcp.Description("New description")),
		mcp.WithString("priority",
			mcp.Description("New priority"),
			mcp.Enum("P0", "P1", "P2"),
		),
		mcp.WithString("status",
			mcp.Description("New status"),
			mcp.Enum("PROPOSED", "READY", "DONE"),
		),
		mcp.WithArray("add_acceptance",
			mcp.Description("Acceptance criteria to append"),
			mcp.WithStringItems(),
		),
		mcp.WithString("accept_type",
			mcp.Description("Format of the new acceptance criteria"),
			mcp.DefaultString("CHECKLIST"),
			mcp.Enum("CHECKLIST", "GWT"),
		),
	)
}

// Handle processes the pm_refine_requirement tool call.
func (t *RefineRequirementTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := strings.TrimSpace(req.GetString("id", ""))
	if id == "" {
		return mcp.NewToolResultError("'id' is required"), nil
	}

	params := product.RefineParams{
		Title:          req.GetString("title", ""),
		Description:    req.GetString("description", ""),
		Priority:       product.Priority(req.GetString("priority", "")),
		Status:         product.Status(req.GetString("status", "")),
		AddAcceptance:  req.GetStringSlice("add_acceptance", nil),
		AcceptanceType: product.AcceptanceType(req.GetString("accept_type", "CHECKLIST")),
	}

	var (
		updated *product.Requirement
		added   int
	)
	err := t.ws.Update(ctx, func(s *product.Store) error {
		var err error
		updated, added, err = s.RefineRequirement(ctx, id, params)
		return err
	})
	if err != nil {
		return storeError("refine requirement", err), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"Updated %s [%s, %s] %s\nAdded acceptance items: %d",
		updated.ReqID, updated.Status, updated.Priority, updated.Title, added,
	)), nil
}
