// Package server wires all MCP components and creates the server instance.
//
// This is the composition root: it takes the resolved workspace and injects
// it into the tools, prompts and resources that depend on it. No business
// logic lives here, only wiring.
package server

import (
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/HendryAvila/skillkit/internal/prompts"
	"github.com/HendryAvila/skillkit/internal/resources"
	"github.com/HendryAvila/skillkit/internal/tools"
	"github.com/HendryAvila/skillkit/internal/workspace"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates the MCP server with every ideate-pm tool, prompt and resource
// registered against ws.
func New(ws *workspace.Workspace, logger *zap.Logger) *server.MCPServer {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := server.NewMCPServer(
		"ideate-pm",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Register tools ---

	initTool := tools.NewInitTool(ws)
	s.AddTool(initTool.Definition(), initTool.Handle)

	addReq := tools.NewAddRequirementTool(ws)
	s.AddTool(addReq.Definition(), addReq.Handle)

	refineReq := tools.NewRefineRequirementTool(ws)
	s.AddTool(refineReq.Definition(), refineReq.Handle)

	decision := tools.NewRecordDecisionTool(ws)
	s.AddTool(decision.Definition(), decision.Handle)

	question := tools.NewAddOpenQuestionTool(ws)
	s.AddTool(question.Definition(), question.Handle)

	state := tools.NewStateTool(ws)
	s.AddTool(state.Definition(), state.Handle)

	searchTool := tools.NewSearchTool(ws)
	s.AddTool(searchTool.Definition(), searchTool.Handle)

	compile := tools.NewCompileViewsTool(ws)
	s.AddTool(compile.Definition(), compile.Handle)

	// --- Register prompts ---

	capture := prompts.NewCapturePrompt()
	s.AddPrompt(capture.Definition(), capture.Handle)

	// --- Register resources ---

	views := resources.NewHandler(ws)
	s.AddResource(views.BacklogResource(), views.HandleBacklog)
	s.AddResource(views.OpenQuestionsResource(), views.HandleOpenQuestions)

	logger.Debug("mcp server ready",
		zap.String("version", Version), zap.String("workspace", ws.Describe()))
	return s
}

// serverInstructions returns the system instructions that tell the AI
// how to use ideate-pm effectively.
func serverInstructions() string {
	return `You have access to ideate-pm, repo-scoped product memory backed by SQLite.

## WHEN TO USE ideate-pm

Use these tools whenever the user talks about WHAT to build:
- They describe a feature idea or a user need
- They make a product decision ("let's use Stripe", "no SSO for now")
- They raise a question nobody can answer yet

## HOW TO USE IT

1. Call pm_state first to load the product context.
2. Capture ideas immediately with pm_add_requirement. Do not wait for them to be perfect.
3. Clarify with the user, then persist the outcome with pm_refine_requirement
   (acceptance criteria, priority, status).
4. Record decisions with pm_record_decision, including the rationale.
   When a decision answers a parked question, pass its id as 'resolves'.
5. Park anything unresolved with pm_add_open_question.
6. Use pm_search before adding something that may already exist.

The database is the source of truth. PRODUCT.md, BACKLOG.md and OPEN_QUESTIONS.md
are compiled from it after every change; never edit them by hand.

If a tool reports that the product is not initialized, ask the user for a product
title and call pm_init.`
}
