package main

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/HendryAvila/skillkit/internal/product"
	"github.com/HendryAvila/skillkit/internal/search"
)

// setupProject points the CLI at a fresh temp root and returns it.
func setupProject(t *testing.T) string {
	t.Helper()
	logger = zap.NewNop()
	root := t.TempDir()
	rootDir = root
	productDir = ""
	t.Cleanup(func() {
		rootDir = ""
		productDir = ""
	})
	return root
}

// run invokes fn with a bare command and captures its output.
func run(t *testing.T, fn func(*cobra.Command, []string) error, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	err := fn(cmd, args)
	return out.String(), err
}

func initProduct(t *testing.T) {
	t.Helper()
	initTitle, initVision = "Acme", "Ship faster"
	_, err := run(t, runInit)
	require.NoError(t, err)
}

func addRequirement(t *testing.T, description string) {
	t.Helper()
	reqDescription, reqTitle, reqPriority = description, "", "P2"
	_, err := run(t, runAddRequirement)
	require.NoError(t, err)
}

func TestInitCmd(t *testing.T) {
	root := setupProject(t)

	initTitle, initVision = "Acme", "Ship faster"
	out, err := run(t, runInit)
	require.NoError(t, err)

	assert.Contains(t, out, "Initialized repo-scoped product storage")
	assert.FileExists(t, filepath.Join(root, "product", product.DBFile))
	assert.FileExists(t, filepath.Join(root, "product", "views", "PRODUCT.md"))

	// Running it again keeps the product.
	_, err = run(t, runInit)
	assert.NoError(t, err)
}

func TestInitCmd_DirOverride(t *testing.T) {
	root := setupProject(t)
	productDir = "docs/pm"

	initTitle, initVision = "Acme", ""
	_, err := run(t, runInit)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(root, "docs", "pm", product.DBFile))
}

func TestCommands_NotInitialized(t *testing.T) {
	setupProject(t)

	reqDescription, reqPriority = "Add payment gateway", "P2"
	_, err := run(t, runAddRequirement)
	assert.True(t, errors.Is(err, product.ErrNotInitialized))

	_, err = run(t, runState)
	assert.True(t, errors.Is(err, product.ErrNotInitialized))

	_, err = run(t, runShow, "backlog")
	assert.True(t, errors.Is(err, product.ErrNotInitialized))
}

func TestAddRequirementAndRefine(t *testing.T) {
	root := setupProject(t)
	initProduct(t)

	reqDescription, reqTitle, reqPriority = "Add payment gateway", "", "P1"
	out, err := run(t, runAddRequirement)
	require.NoError(t, err)
	assert.Equal(t, "Added requirement R-001 (status=PROPOSED, priority=P1)\n", out)

	refineID, refineStatus = "R-001", "READY"
	refineAccept, refineAcceptType = []string{"Cards are charged", "Refunds work"}, "CHECKLIST"
	t.Cleanup(func() { refineID, refineStatus, refineAccept = "", "", nil })

	out, err = run(t, runRefine)
	require.NoError(t, err)
	assert.Equal(t, "Updated R-001. Added acceptance items: 2\n", out)

	backlog, err := os.ReadFile(filepath.Join(root, "product", "views", "BACKLOG.md"))
	require.NoError(t, err)
	assert.Contains(t, string(backlog), "[READY, P1]")
	assert.Contains(t, string(backlog), "- Refunds work")
}

func TestRefine_UnknownID(t *testing.T) {
	setupProject(t)
	initProduct(t)

	refineID, refineStatus, refineAcceptType = "R-999", "DONE", "CHECKLIST"
	t.Cleanup(func() { refineID, refineStatus = "", "" })

	_, err := run(t, runRefine)
	assert.True(t, errors.Is(err, product.ErrRequirementNotFound))
}

func TestDecideResolvesQuestion(t *testing.T) {
	root := setupProject(t)
	initProduct(t)

	askScope, askRef, askQuestion, askSeverity = "product", "", "Which payment provider?", "high"
	out, err := run(t, runAsk)
	require.NoError(t, err)
	assert.Equal(t, "Recorded open question 1.\n", out)

	questions, err := os.ReadFile(filepath.Join(root, "product", "views", "OPEN_QUESTIONS.md"))
	require.NoError(t, err)
	assert.Contains(t, string(questions), "Which payment provider?")

	decideScope, decideRef = "product", ""
	decideQuestion, decideChoice, decideRationale = "Which payment provider?", "Stripe", "Best API"
	decideConfidence, decideResolves = product.DefaultConfidence, 1
	t.Cleanup(func() { decideResolves = 0 })

	out, err = run(t, runDecide)
	require.NoError(t, err)
	assert.Equal(t, "Recorded decision 1.\n", out)

	questions, err = os.ReadFile(filepath.Join(root, "product", "views", "OPEN_QUESTIONS.md"))
	require.NoError(t, err)
	assert.Contains(t, string(questions), "(No open questions)")
}

func TestDecide_UnknownQuestion(t *testing.T) {
	setupProject(t)
	initProduct(t)

	decideScope, decideRef = "product", ""
	decideQuestion, decideChoice = "Which?", "This"
	decideConfidence, decideResolves = product.DefaultConfidence, 7
	t.Cleanup(func() { decideResolves = 0 })

	_, err := run(t, runDecide)
	assert.True(t, errors.Is(err, product.ErrQuestionNotFound))
}

func TestStateCmd(t *testing.T) {
	setupProject(t)
	initProduct(t)
	addRequirement(t, "Add payment gateway")

	askScope, askRef, askQuestion, askSeverity = "requirement", "R-001", "Refund window?", "low"
	_, err := run(t, runAsk)
	require.NoError(t, err)

	stateFull = false
	out, err := run(t, runState)
	require.NoError(t, err)
	assert.Contains(t, out, "# Acme\nVision: Ship faster\n")
	assert.Contains(t, out, "- R-001: Add payment gateway (PROPOSED, P2)")
	assert.NotContains(t, out, "Open questions")

	stateFull = true
	t.Cleanup(func() { stateFull = false })
	out, err = run(t, runState)
	require.NoError(t, err)
	assert.Contains(t, out, "- [low] requirement:R-001: Refund window?")
}

func TestCompileViewsCmd(t *testing.T) {
	root := setupProject(t)
	initProduct(t)
	require.NoError(t, os.RemoveAll(filepath.Join(root, "product", "views")))

	out, err := run(t, runCompileViews)
	require.NoError(t, err)

	assert.Equal(t, 3, strings.Count(out, "Wrote "))
	assert.FileExists(t, filepath.Join(root, "product", "views", "BACKLOG.md"))
}

func TestSearchCmd(t *testing.T) {
	setupProject(t)
	initProduct(t)
	addRequirement(t, "Add payment gateway")

	searchQuery, searchScope, searchMode = "payment", "all", ""
	out, err := run(t, runSearch)
	require.NoError(t, err)
	assert.Contains(t, out, "## Requirements")
	assert.Contains(t, out, "**R-001** [PROPOSED] Add payment gateway")
}

func TestSearchCmd_ForcedLikeAndEnvOverride(t *testing.T) {
	setupProject(t)
	initProduct(t)
	addRequirement(t, "Add payment gateway")

	searchQuery, searchScope, searchMode = "ment gate", "requirement", "like"
	t.Cleanup(func() { searchMode = "" })
	out, err := run(t, runSearch)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "[i] Search mode forced to LIKE; using fuzzy fallback.\n\n"), out)
	assert.Contains(t, out, "**R-001**")

	t.Setenv(search.EnvMode, "bogus")
	out, err = run(t, runSearch)
	require.NoError(t, err)
	assert.Contains(t, out, "[!] IDEATE_PM_SEARCH_MODE value 'bogus' is invalid; falling back to mode 'like'.")
}

func TestSearchCmd_InvalidFlags(t *testing.T) {
	setupProject(t)

	searchQuery, searchScope, searchMode = "x", "everything", ""
	_, err := run(t, runSearch)
	assert.Error(t, err)

	searchScope, searchMode = "all", "regex"
	t.Cleanup(func() { searchMode = "" })
	_, err = run(t, runSearch)
	assert.Error(t, err)
}

func TestShowCmd(t *testing.T) {
	setupProject(t)
	initProduct(t)
	addRequirement(t, "Add payment gateway")

	showRaw = true
	out, err := run(t, runShow, "backlog")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "# Backlog\n"), out)

	showRaw = false
	out, err = run(t, runShow, "product")
	require.NoError(t, err)
	assert.Contains(t, out, "Acme")
}

func TestRootCmd_RegistersCommands(t *testing.T) {
	want := []string{"init", "add-requirement", "refine", "decide", "ask", "state",
		"compile-views", "search", "show", "serve", "version"}
	for _, name := range want {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}

func TestVersionCmd(t *testing.T) {
	logger = zap.NewNop()

	checkUpdate = false
	out, err := run(t, runVersion)
	require.NoError(t, err)
	assert.Equal(t, "ideate-pm vdev\n", out)
}

func TestVersionCmd_Check(t *testing.T) {
	logger = zap.NewNop()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"tag_name":"v0.3.0","html_url":"https://example.com"}`))
	}))
	defer srv.Close()

	prev := releaseEndpoint
	releaseEndpoint, checkUpdate = srv.URL, true
	t.Cleanup(func() { releaseEndpoint, checkUpdate = prev, false })

	out, err := run(t, runVersion)
	require.NoError(t, err)
	assert.Contains(t, out, "Development build; latest release is v0.3.0")

	srv.Close()
	out, err = run(t, runVersion)
	require.NoError(t, err)
	assert.Contains(t, out, "Could not check for updates.")
}
