// Package prompts implements MCP prompt handlers for ideate-pm.
//
// MCP prompts are user-triggered workflows (like slash commands) that
// instruct the AI to execute a specific sequence. Unlike tools (which
// the AI calls), prompts are initiated by the user.
package prompts

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// CapturePrompt handles the pm-capture MCP prompt.
// It walks the AI through turning a raw idea into stored product memory.
type CapturePrompt struct{}

// NewCapturePrompt creates a CapturePrompt.
func NewCapturePrompt() *CapturePrompt {
	return &CapturePrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *CapturePrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("pm-capture",
		mcp.WithPromptDescription(
			"Capture a product idea: store it as a requirement, clarify it, "+
				"and record the decisions and open questions it raises.",
		),
		mcp.WithArgument("idea",
			mcp.ArgumentDescription("The idea, feature request or user need to capture"),
		),
	)
}

// Handle processes the pm-capture prompt request.
func (p *CapturePrompt) Handle(_ context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	idea := ""
	if args := req.Params.Arguments; args != nil {
		idea = strings.TrimSpace(args["idea"])
	}

	var opening string
	if idea == "" {
		opening = "I have a product idea I want to capture. Ask me to describe it first.\n\n"
	} else {
		opening = fmt.Sprintf("I have a product idea I want to capture:\n\n> %s\n\n", idea)
	}

	return &mcp.GetPromptResult{
		Description: "Capture a product idea into ideate-pm",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(opening +
					"Please:\n" +
					"1. Run `pm_state` to load the current product (run `pm_init` if it is not initialized)\n" +
					"2. Run `pm_search` to check whether the idea already exists\n" +
					"3. Store it with `pm_add_requirement` using my words as the description\n" +
					"4. Ask me at most three clarifying questions, then save the answers with " +
					"`pm_refine_requirement` as acceptance criteria\n" +
					"5. Record any choice we make with `pm_record_decision`\n" +
					"6. Park anything still unclear with `pm_add_open_question`\n\n" +
					"Finish with a one-paragraph summary of what changed.",
				),
			},
		},
	}, nil
}
