package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/HendryAvila/skillkit/internal/contextdocs"
)

func run(t *testing.T, fn func(*cobra.Command, []string) error, args ...string) (string, error) {
	t.Helper()
	logger = zap.NewNop()
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	err := fn(cmd, args)
	return buf.String(), err
}

func goProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "go.mod"), []byte("module x\n"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "internal"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "internal", "a.go"), []byte("package internal\n"), 0o644))
	return root
}

func TestScan_DryRun(t *testing.T) {
	root := goProject(t)
	scanDryRun = true
	t.Cleanup(func() { scanDryRun = false })

	out, err := run(t, runScan, root)
	require.NoError(t, err)

	assert.Contains(t, out, "Tech stack: go")
	assert.Contains(t, out, "[DRY-RUN] Would create: "+filepath.Join(root, "USERAGENTS.md"))
	assert.NotContains(t, out, "Done!")
	assert.NoFileExists(t, filepath.Join(root, "USERAGENTS.md"))
}

func TestScan_Writes(t *testing.T) {
	root := goProject(t)

	out, err := run(t, runScan, root)
	require.NoError(t, err)

	assert.Contains(t, out, "Created: "+filepath.Join(root, "USERAGENTS.md"))
	assert.Contains(t, out, "Done! Project context documentation generated.")
	assert.FileExists(t, filepath.Join(root, "internal", "TECH_INFO.md"))
	assert.FileExists(t, filepath.Join(root, "AGENTS.md"))
}

func TestScan_EmptyProject(t *testing.T) {
	out, err := run(t, runScan, t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "Tech stack: None detected")
}

func TestScan_MissingPath(t *testing.T) {
	_, err := run(t, runScan, filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "project path does not exist")
}

func TestScan_FilePath(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(f, nil, 0o644))

	_, err := run(t, runScan, f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestActionLine(t *testing.T) {
	tests := []struct {
		name   string
		kind   string
		dryRun bool
		want   string
	}{
		{"created", "created", false, "Created: /p/a.md"},
		{"updated", "updated", false, "Updated: /p/a.md"},
		{"dry run", "created", true, "[DRY-RUN] Would create: /p/a.md"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := contextdocs.Action{Kind: contextdocs.ActionKind(tt.kind), Path: "/p/a.md"}
			assert.Equal(t, tt.want, actionLine(a, tt.dryRun))
		})
	}
}

func TestCheck_OutsideRepository(t *testing.T) {
	// A temp dir is normally outside any git work tree; the check is skipped.
	out, err := run(t, runCheck, t.TempDir())
	if err != nil {
		t.Skipf("temp dir is inside a git work tree: %v", err)
	}
	assert.Contains(t, out, "context-keeper:")
}

func TestExitError(t *testing.T) {
	var exit *exitError
	err := error(&exitError{code: 2})
	require.True(t, errors.As(err, &exit))
	assert.Equal(t, 2, exit.code)
	assert.Equal(t, "exit status 2", err.Error())
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["scan"])
	assert.True(t, names["check"])
	assert.NotNil(t, scanCmd.Flags().Lookup("dry-run"))
	assert.NotNil(t, checkCmd.Flags().Lookup("strict"))
	assert.NotNil(t, rootCmd.PersistentFlags().ShorthandLookup("v"))
}
