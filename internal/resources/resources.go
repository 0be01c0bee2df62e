// Package resources implements MCP resource handlers for ideate-pm.
//
// Resources provide read-only data that the host can consume for context.
// They use URI-based addressing (ideate://...) and serve the compiled views.
package resources

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/skillkit/internal/views"
	"github.com/HendryAvila/skillkit/internal/workspace"
)

// Resource URIs.
const (
	BacklogURI       = "ideate://views/backlog"
	OpenQuestionsURI = "ideate://views/open-questions"
)

// Handler serves the compiled Markdown views.
type Handler struct {
	ws *workspace.Workspace
}

// NewHandler creates a resource Handler with its dependencies.
func NewHandler(ws *workspace.Workspace) *Handler {
	return &Handler{ws: ws}
}

// BacklogResource returns the MCP resource definition for BACKLOG.md.
func (h *Handler) BacklogResource() mcp.Resource {
	return mcp.NewResource(
		BacklogURI,
		"Product Backlog",
		mcp.WithResourceDescription("Compiled backlog: requirements with status, priority and acceptance criteria"),
		mcp.WithMIMEType("text/markdown"),
	)
}

// OpenQuestionsResource returns the MCP resource definition for OPEN_QUESTIONS.md.
func (h *Handler) OpenQuestionsResource() mcp.Resource {
	return mcp.NewResource(
		OpenQuestionsURI,
		"Open Questions",
		mcp.WithResourceDescription("Unresolved product questions grouped by scope"),
		mcp.WithMIMEType("text/markdown"),
	)
}

// HandleBacklog returns the compiled backlog.
func (h *Handler) HandleBacklog(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return h.view(ctx, req.Params.URI, views.BacklogFile)
}

// HandleOpenQuestions returns the compiled open questions.
func (h *Handler) HandleOpenQuestions(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return h.view(ctx, req.Params.URI, views.OpenQuestionsFile)
}
