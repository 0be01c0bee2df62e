package templates

import (
	"strings"
	"testing"
)

// --- NewRenderer ---

func TestNewRenderer_Succeeds(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer() failed: %v", err)
	}
	if r == nil {
		t.Fatal("NewRenderer() returned nil")
	}
}

func TestRender_UnknownTemplate(t *testing.T) {
	r := mustRenderer(t)
	if _, err := r.Render("nope.md.tmpl", nil); err == nil {
		t.Fatal("expected error for unknown template")
	}
}

func mustRenderer(t *testing.T) *EmbedRenderer {
	t.Helper()
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	return r
}

// --- Render: Product ---

func TestRender_Product(t *testing.T) {
	got, err := mustRenderer(t).Render(Product, ProductData{Title: "Acme", Vision: "Ship faster"})
	if err != nil {
		t.Fatalf("Render(Product) failed: %v", err)
	}

	want := "# Acme\n\n**Vision**: Ship faster\n\n## Where to edit\n\n" +
		"- Add or refine requirements with the ideate-pm commands or MCP tools.\n" +
		"- This file is compiled from the SQLite database.\n"
	if got != want {
		t.Errorf("unexpected output:\n%q\nwant:\n%q", got, want)
	}
}

func TestRender_ProductConstraints(t *testing.T) {
	got, err := mustRenderer(t).Render(Product, ProductData{Title: "Acme", Vision: "V", Constraints: "No PII"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "**Vision**: V\n\n## Constraints\n\nNo PII\n\n## Where to edit") {
		t.Errorf("constraints section malformed:\n%s", got)
	}
}

// --- Render: Backlog ---

func TestRender_BacklogEmpty(t *testing.T) {
	got, err := mustRenderer(t).Render(Backlog, BacklogData{})
	if err != nil {
		t.Fatal(err)
	}
	if got != "# Backlog\n\nSummary list:\n\n(No requirements yet)\n" {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestRender_Backlog(t *testing.T) {
	data := BacklogData{Items: []BacklogItem{
		{ReqID: "R-001", Title: "Pay", Status: "READY", Priority: "P0", Summary: "Card payments", Description: "Card payments", Acceptance: []string{"Visa works"}},
		{ReqID: "R-002", Title: "Dark", Status: "PROPOSED", Priority: "P2", Summary: "", Description: "(No description)"},
	}}

	got, err := mustRenderer(t).Render(Backlog, data)
	if err != nil {
		t.Fatal(err)
	}

	want := "# Backlog\n\nSummary list:\n\n" +
		"- `R-001` [READY, P0] Pay — Card payments\n" +
		"- `R-002` [PROPOSED, P2] Dark — \n" +
		"\n## Details\n" +
		"\n### R-001: Pay\n\nCard payments\n\n**Acceptance Criteria**:\n\n- Visa works\n\n**Status**: READY\n\n**Priority**: P0\n" +
		"\n### R-002: Dark\n\n(No description)\n\n**Acceptance Criteria**:\n\n- (None yet)\n\n**Status**: PROPOSED\n\n**Priority**: P2\n"
	if got != want {
		t.Errorf("unexpected output:\n%s\nwant:\n%s", got, want)
	}
}

// --- Render: Open questions ---

func TestRender_OpenQuestionsEmpty(t *testing.T) {
	got, err := mustRenderer(t).Render(OpenQuestions, OpenQuestionsData{})
	if err != nil {
		t.Fatal(err)
	}
	if got != "# Open Questions\n\n(No open questions)\n" {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestRender_OpenQuestionsGrouped(t *testing.T) {
	data := OpenQuestionsData{
		Product: []string{"Who is the buyer?"},
		Requirements: []QuestionGroup{
			{Ref: "R-001", Questions: []string{"Refunds?", "Currencies?"}},
			{Ref: "R-002", Questions: []string{"Contrast?"}},
		},
	}

	got, err := mustRenderer(t).Render(OpenQuestions, data)
	if err != nil {
		t.Fatal(err)
	}

	want := "# Open Questions\n\n" +
		"## Product\n\n- Who is the buyer?\n\n" +
		"## Requirements\n\n" +
		"### R-001\n\n- Refunds?\n- Currencies?\n\n" +
		"### R-002\n\n- Contrast?\n\n"
	if got != want {
		t.Errorf("unexpected output:\n%q\nwant:\n%q", got, want)
	}
}

// --- Render: State ---

func TestRender_State(t *testing.T) {
	data := StateData{
		Title:        "Acme",
		Vision:       "TBD",
		Requirements: []StateRequirement{{ReqID: "R-001", Title: "Pay", Status: "PROPOSED", Priority: "P2"}},
	}

	got, err := mustRenderer(t).Render(State, data)
	if err != nil {
		t.Fatal(err)
	}
	want := "# Acme\nVision: TBD\n\n## Requirements\n- R-001: Pay (PROPOSED, P2)\n"
	if got != want {
		t.Errorf("unexpected output:\n%q\nwant:\n%q", got, want)
	}
}

func TestRender_StateFull(t *testing.T) {
	data := StateData{Title: "Acme", Vision: "TBD", Full: true}

	got, err := mustRenderer(t).Render(State, data)
	if err != nil {
		t.Fatal(err)
	}
	checks := []string{
		"No requirements recorded.\n",
		"\n## Open questions\n",
		"No open questions.\n",
	}
	for _, c := range checks {
		if !strings.Contains(got, c) {
			t.Errorf("state output missing %q:\n%s", c, got)
		}
	}
}
