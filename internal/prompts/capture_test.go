package prompts

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

func promptText(t *testing.T, r *mcp.GetPromptResult) string {
	t.Helper()
	if r == nil || len(r.Messages) == 0 {
		t.Fatal("expected at least one prompt message")
	}
	tc, ok := r.Messages[0].Content.(mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", r.Messages[0].Content)
	}
	return tc.Text
}

func TestCapturePrompt_Definition(t *testing.T) {
	def := NewCapturePrompt().Definition()
	if def.Name != "pm-capture" {
		t.Errorf("name = %q, want pm-capture", def.Name)
	}
	if len(def.Arguments) != 1 || def.Arguments[0].Name != "idea" {
		t.Errorf("expected a single 'idea' argument, got %+v", def.Arguments)
	}
}

func TestCapturePrompt_Handle_WithIdea(t *testing.T) {
	req := mcp.GetPromptRequest{}
	req.Params.Arguments = map[string]string{"idea": "Let users pay with cards"}

	result, err := NewCapturePrompt().Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	text := promptText(t, result)
	if !strings.Contains(text, "> Let users pay with cards") {
		t.Errorf("prompt should quote the idea, got: %s", text)
	}
	if !strings.Contains(text, "pm_add_requirement") {
		t.Errorf("prompt should direct the AI to pm_add_requirement, got: %s", text)
	}
}

func TestCapturePrompt_Handle_NoIdea(t *testing.T) {
	result, err := NewCapturePrompt().Handle(context.Background(), mcp.GetPromptRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if text := promptText(t, result); !strings.Contains(text, "Ask me to describe it first") {
		t.Errorf("prompt should ask for the idea, got: %s", text)
	}
}
