package resources

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/skillkit/internal/workspace"
)

// view reads a compiled view, compiling the views first when the file is
// missing. An uninitialized product yields an error resource, not an error.
func (h *Handler) view(ctx context.Context, uri, name string) ([]mcp.ResourceContents, error) {
	if !h.ws.Initialized() {
		return errorResource(uri, workspace.NotInitializedMessage), nil
	}

	path := h.ws.ViewPath(name)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		if _, err := h.ws.CompileViews(ctx); err != nil {
			return nil, fmt.Errorf("compiling views: %w", err)
		}
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/markdown",
			Text:     string(data),
		},
	}, nil
}

// errorResource returns a resource with an error message.
func errorResource(uri, message string) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     fmt.Sprintf("Error: %s", message),
		},
	}
}
