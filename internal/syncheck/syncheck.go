// Package syncheck reports whether the context-keeper documents were updated
// together with the code changes in a git working tree. It only reads; it
// never writes files.
package syncheck

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// ExitOutOfSync is the exit status for out-of-sync docs in strict mode.
const ExitOutOfSync = 2

const (
	techInfoFile   = "TECH_INFO.md"
	userAgentsFile = "USERAGENTS.md"
)

// codeExtensions mark the files whose directories need TECH_INFO.md updates.
var codeExtensions = map[string]bool{
	".ts": true, ".tsx": true, ".js": true, ".jsx": true,
	".py": true, ".go": true, ".rs": true,
	".java": true, ".kt": true,
	".c": true, ".cc": true, ".cpp": true, ".h": true, ".hpp": true,
	".cs": true,
}

// Git runs git subcommands in a directory.
type Git interface {
	Run(ctx context.Context, dir string, args ...string) (string, error)
}

// ExecGit runs the git binary.
type ExecGit struct{}

// Run executes git -C dir args... and returns its trimmed stdout.
func (ExecGit) Run(ctx context.Context, dir string, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, "git", append([]string{"-C", dir}, args...)...).Output()
	if err != nil {
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return strings.TrimRight(string(out), "\r\n"), nil
}

// Entry is one line of git status --porcelain.
type Entry struct {
	Status string
	Path   string
}

// ParseStatus parses porcelain output. Renames report their new path and
// C-quoted paths are decoded.
func ParseStatus(output string) []Entry {
	var entries []Entry
	for _, line := range strings.Split(output, "\n") {
		if len(line) < 4 {
			continue
		}
		p := line[3:]
		if _, to, ok := strings.Cut(p, " -> "); ok {
			p = to
		}
		entries = append(entries, Entry{Status: line[:2], Path: unquotePath(p)})
	}
	return entries
}

// unquotePath decodes a path git wrapped in double quotes because it holds
// non-ASCII bytes, quotes or control characters.
func unquotePath(p string) string {
	if len(p) < 2 || p[0] != '"' || p[len(p)-1] != '"' {
		return p
	}
	if s, err := strconv.Unquote(p); err == nil {
		return s
	}
	return p[1 : len(p)-1]
}

// structural reports whether the status adds, deletes, renames or introduces
// an untracked file.
func (e Entry) structural() bool {
	return strings.ContainsAny(e.Status, "ADR?")
}

// Outcome classifies a check.
type Outcome int

const (
	Skipped Outcome = iota
	NoChanges
	InSync
	OutOfSync
)

// Report is the result of a check.
type Report struct {
	Outcome Outcome
	// Reason explains a skipped check.
	Reason string
	// StaleTechInfo lists directories with code changes but no TECH_INFO.md change.
	StaleTechInfo []string
	// StaleUserAgents is set when files were added, removed or renamed
	// without a USERAGENTS.md change.
	StaleUserAgents bool
}

// ExitCode returns the process status: ExitOutOfSync only in strict mode.
func (r *Report) ExitCode(strict bool) int {
	if strict && r.Outcome == OutOfSync {
		return ExitOutOfSync
	}
	return 0
}

// Lines renders the report as context-keeper console output.
func (r *Report) Lines() []string {
	switch r.Outcome {
	case Skipped:
		return []string{"context-keeper: " + r.Reason + "; skip check."}
	case NoChanges:
		return []string{"context-keeper: no working tree changes detected."}
	case InSync:
		return []string{"context-keeper: documentation appears to be in sync."}
	}
	lines := []string{"context-keeper: documentation may be out of sync."}
	if len(r.StaleTechInfo) > 0 {
		lines = append(lines, "- TECH_INFO.md not updated in: "+strings.Join(r.StaleTechInfo, ", "))
	}
	if r.StaleUserAgents {
		lines = append(lines, "- USERAGENTS.md not updated after structural changes")
	}
	return append(lines, "Tip: update the docs, then re-run this check.")
}

// Checker compares code changes with doc changes.
type Checker struct {
	git    Git
	logger *zap.Logger
}

// NewChecker creates a Checker. A nil git uses ExecGit.
func NewChecker(git Git, logger *zap.Logger) *Checker {
	if git == nil {
		git = ExecGit{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Checker{git: git, logger: logger}
}

// Check inspects the repository containing projectPath. Not being inside a
// git repository is a skipped check, not an error.
func (c *Checker) Check(ctx context.Context, projectPath string) (*Report, error) {
	top, err := c.git.Run(ctx, projectPath, "rev-parse", "--show-toplevel")
	if err != nil || top == "" {
		c.logger.Debug("not a git repository", zap.String("path", projectPath), zap.Error(err))
		return &Report{Outcome: Skipped, Reason: "not a git repository"}, nil
	}

	status, err := c.git.Run(ctx, top, "status", "--porcelain")
	if err != nil {
		c.logger.Warn("git status failed", zap.Error(err))
		return &Report{Outcome: Skipped, Reason: "unable to read git status"}, nil
	}

	entries := ParseStatus(status)
	if len(entries) == 0 {
		return &Report{Outcome: NoChanges}, nil
	}
	return evaluate(top, entries), nil
}

func evaluate(top string, entries []Entry) *Report {
	changed := make(map[string]bool, len(entries))
	structural := false
	for _, e := range entries {
		changed[e.Path] = true
		if e.structural() {
			structural = true
		}
	}

	stale := make(map[string]bool)
	for _, e := range entries {
		base := path.Base(e.Path)
		if base == techInfoFile || base == userAgentsFile || !codeExtensions[path.Ext(e.Path)] {
			continue
		}
		dir := path.Dir(e.Path)
		docPath := path.Join(dir, techInfoFile)
		if _, err := os.Stat(filepath.Join(top, filepath.FromSlash(docPath))); err != nil {
			continue
		}
		if !changed[docPath] {
			stale[dir] = true
		}
	}

	r := &Report{StaleUserAgents: structural && !changed[userAgentsFile]}
	for dir := range stale {
		r.StaleTechInfo = append(r.StaleTechInfo, dir)
	}
	sort.Strings(r.StaleTechInfo)

	if len(r.StaleTechInfo) == 0 && !r.StaleUserAgents {
		r.Outcome = InSync
	} else {
		r.Outcome = OutOfSync
	}
	return r
}
