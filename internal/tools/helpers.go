// Package tools implements the ideate-pm MCP tool handlers.
//
// Each tool follows the same shape:
//   - a struct holding its dependencies, injected via constructor
//   - Definition() returns the mcp.Tool schema
//   - Handle() processes the request and returns a result
//
// Tools are storage tools: the assistant does the product thinking and the
// tools persist it, recompiling the Markdown views after every change.
package tools

import (
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/skillkit/internal/product"
	"github.com/HendryAvila/skillkit/internal/workspace"
)

// storeError converts a store failure into a tool result the assistant can
// act on.
func storeError(action string, err error) *mcp.CallToolResult {
	if errors.Is(err, product.ErrNotInitialized) {
		return mcp.NewToolResultError(workspace.NotInitializedMessage + " (or call pm_init)")
	}
	return mcp.NewToolResultError(fmt.Sprintf("failed to %s: %v", action, err))
}

// numberArg extracts a numeric argument (JSON numbers are float64).
func numberArg(req mcp.CallToolRequest, key string, defaultVal float64) float64 {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return v
}

// boolArg extracts a boolean argument from a tool request.
func boolArg(req mcp.CallToolRequest, key string, defaultVal bool) bool {
	v, ok := req.GetArguments()[key].(bool)
	if !ok {
		return defaultVal
	}
	return v
}
