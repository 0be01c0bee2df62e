package views

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HendryAvila/skillkit/internal/product"
	"github.com/HendryAvila/skillkit/internal/sqlitecap"
	"github.com/HendryAvila/skillkit/internal/templates"
)

func newCompiler(t *testing.T, width int) *Compiler {
	t.Helper()
	r, err := templates.NewRenderer()
	require.NoError(t, err)
	return NewCompiler(r, width)
}

func newStore(t *testing.T, title, vision string) *product.Store {
	t.Helper()
	engine := sqlitecap.NewCapability(sqlitecap.Modernc, true, "modernc")
	s, err := product.Init(context.Background(), engine, product.Config{Dir: filepath.Join(t.TempDir(), "product")}, title, vision)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func readView(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	return string(data)
}

func TestCompile_EmptyProductDefaults(t *testing.T) {
	s := newStore(t, "", "")
	dir := s.Config().ViewsPath()

	paths, err := newCompiler(t, 0).Compile(context.Background(), s, dir)
	require.NoError(t, err)
	assert.Len(t, paths, 3)

	assert.Contains(t, readView(t, dir, ProductFile), "# (Untitled Product)\n\n**Vision**: TBD\n")
	assert.Contains(t, readView(t, dir, BacklogFile), "(No requirements yet)")
	assert.Contains(t, readView(t, dir, OpenQuestionsFile), "(No open questions)")
}

func TestCompile_Backlog(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, "Acme", "Ship")
	long := strings.Repeat("a", 130)
	_, err := s.AddRequirement(ctx, product.AddRequirementParams{Title: "Long one", Description: long})
	require.NoError(t, err)
	_, _, err = s.RefineRequirement(ctx, "R-001", product.RefineParams{AddAcceptance: []string{"Works"}})
	require.NoError(t, err)
	dir := t.TempDir()

	_, err = newCompiler(t, 120).Compile(ctx, s, dir)
	require.NoError(t, err)

	backlog := readView(t, dir, BacklogFile)
	assert.Contains(t, backlog, "- `R-001` [PROPOSED, P2] Long one — "+strings.Repeat("a", 120)+"…\n")
	assert.Contains(t, backlog, "### R-001: Long one\n\n"+long+"\n")
	assert.Contains(t, backlog, "**Acceptance Criteria**:\n\n- Works\n")
}

func TestCompile_OpenQuestionsSkipResolvedAndGroupByRef(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, "Acme", "")
	add := func(scope product.ScopeType, ref, q string) *product.OpenQuestion {
		oq, err := s.AddOpenQuestion(ctx, product.AddOpenQuestionParams{Scope: scope, Ref: ref, Question: q})
		require.NoError(t, err)
		return oq
	}
	add(product.ScopeRequirement, "R-002", "Contrast?")
	add(product.ScopeProduct, "", "Who buys?")
	add(product.ScopeRequirement, "R-001", "Refunds?")
	resolved := add(product.ScopeProduct, "", "Pricing?")
	_, err := s.RecordDecision(ctx, product.RecordDecisionParams{Question: "Pricing?", Choice: "Free", Resolves: resolved.ID})
	require.NoError(t, err)
	dir := t.TempDir()

	_, err = newCompiler(t, 0).Compile(ctx, s, dir)
	require.NoError(t, err)

	got := readView(t, dir, OpenQuestionsFile)
	assert.NotContains(t, got, "Pricing?")
	assert.Contains(t, got, "## Product\n\n- Who buys?\n")
	assert.Less(t, strings.Index(got, "### R-001"), strings.Index(got, "### R-002"), "refs must be sorted")
}

func TestCompile_Deterministic(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, "Acme", "Ship")
	_, err := s.AddRequirement(ctx, product.AddRequirementParams{Description: "Pay"})
	require.NoError(t, err)
	c := newCompiler(t, 0)
	dir := t.TempDir()

	_, err = c.Compile(ctx, s, dir)
	require.NoError(t, err)
	first := readView(t, dir, BacklogFile)
	_, err = c.Compile(ctx, s, dir)
	require.NoError(t, err)

	assert.Equal(t, first, readView(t, dir, BacklogFile))
}

func TestState(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, "Acme", "Ship")
	_, err := s.AddRequirement(ctx, product.AddRequirementParams{Description: "Pay", Priority: product.PriorityP1})
	require.NoError(t, err)
	_, err = s.AddOpenQuestion(ctx, product.AddOpenQuestionParams{Scope: product.ScopeRequirement, Ref: "R-001", Question: "Refunds?", Severity: product.SeverityHigh})
	require.NoError(t, err)
	c := newCompiler(t, 0)

	compact, err := c.State(ctx, s, false)
	require.NoError(t, err)
	assert.Equal(t, "# Acme\nVision: Ship\n\n## Requirements\n- R-001: Pay (PROPOSED, P1)\n", compact)

	full, err := c.State(ctx, s, true)
	require.NoError(t, err)
	assert.Contains(t, full, "## Open questions\n- [high] requirement:R-001: Refunds?\n")
}
