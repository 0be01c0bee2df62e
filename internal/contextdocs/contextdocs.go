// Package contextdocs generates the context-keeper documents for a project:
// USERAGENTS.md at the root, a TECH_INFO.md per directory, and the
// instruction block that makes AGENTS.md or CLAUDE.md point at them.
package contextdocs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/HendryAvila/skillkit/internal/scanner"
	"github.com/HendryAvila/skillkit/internal/templates"
)

// Generated file names.
const (
	UserAgentsFile = "USERAGENTS.md"
	TechInfoFile   = "TECH_INFO.md"
	AgentsFile     = "AGENTS.md"
	ClaudeFile     = "CLAUDE.md"
	GitignoreFile  = ".gitignore"
)

// Marker identifies the instruction block in AGENTS.md or CLAUDE.md.
const Marker = "## Mandatory: Context Maintenance (context-keeper)"

// codeExtensions are listed in TECH_INFO.md file tables.
var codeExtensions = []string{".ts", ".tsx", ".js", ".jsx", ".py", ".go", ".rs"}

// ActionKind describes what happened to a file.
type ActionKind string

const (
	Created ActionKind = "created"
	Updated ActionKind = "updated"
	Skipped ActionKind = "skipped"
)

// Action is one file the generator touched (or would touch in a dry run).
type Action struct {
	Kind ActionKind
	Path string
	Note string
}

// Report summarizes a Generate run.
type Report struct {
	Root        string
	Stacks      []string
	Conventions []string
	DryRun      bool
	Actions     []Action
}

func (r *Report) add(kind ActionKind, path, note string) {
	r.Actions = append(r.Actions, Action{Kind: kind, Path: path, Note: note})
}

// Options configures a Generator.
type Options struct {
	DryRun   bool
	MaxDepth int
	// Now stamps the generated documents; defaults to time.Now.
	Now func() time.Time
}

// Generator writes the context documents.
type Generator struct {
	renderer templates.Renderer
	logger   *zap.Logger
	opts     Options
}

// NewGenerator creates a Generator.
func NewGenerator(renderer templates.Renderer, logger *zap.Logger, opts Options) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = scanner.DefaultMaxDepth
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Generator{renderer: renderer, logger: logger, opts: opts}
}

// Generate scans root and writes every document. In a dry run nothing is
// written and the report lists what would change.
func (g *Generator) Generate(root string) (*Report, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("contextdocs: %w", err)
	}

	rep := &Report{Root: abs, DryRun: g.opts.DryRun}
	rep.Stacks = scanner.DetectStack(abs)
	rep.Conventions = scanner.Conventions(rep.Stacks)
	g.logger.Debug("tech stack detected", zap.Strings("stacks", rep.Stacks))

	ignore, err := scanner.IgnoreDirs(abs)
	if err != nil {
		return nil, err
	}
	tree, err := scanner.Walk(abs, ignore, g.opts.MaxDepth)
	if err != nil {
		return nil, err
	}

	now := g.opts.Now()
	if err := g.writeUserAgents(rep, tree, now); err != nil {
		return nil, err
	}
	if err := g.writeTechInfo(rep, tree, now); err != nil {
		return nil, err
	}
	if err := g.patchAgents(rep); err != nil {
		return nil, err
	}
	if err := g.updateGitignore(rep); err != nil {
		return nil, err
	}
	return rep, nil
}

func (g *Generator) writeUserAgents(rep *Report, tree *scanner.Dir, now time.Time) error {
	data := templates.UserAgentsData{
		ProjectName: tree.Name,
		Timestamp:   now.Format("2006-01-02 15:04"),
		Stacks:      rep.Stacks,
		Conventions: rep.Conventions,
	}
	collect(tree, 0, &data)

	content, err := g.renderer.Render(templates.UserAgents, data)
	if err != nil {
		return err
	}
	return g.write(rep, filepath.Join(rep.Root, UserAgentsFile), content, Created)
}

// collect flattens the tree below d into structure lines and doc links.
func collect(d *scanner.Dir, depth int, data *templates.UserAgentsData) {
	for _, sub := range d.Subdirs {
		purpose := scanner.Purpose(sub.Name)
		data.Tree = append(data.Tree, templates.TreeLine{
			Indent:  strings.Repeat("  ", depth+1),
			Name:    sub.Name,
			Purpose: purpose,
		})
		data.Links = append(data.Links, templates.DocLink{
			Name:    sub.Name,
			Path:    sub.Path,
			Purpose: purpose,
		})
		collect(sub, depth+1, data)
	}
}

func (g *Generator) writeTechInfo(rep *Report, tree *scanner.Dir, now time.Time) error {
	var firstErr error
	tree.Each(func(d *scanner.Dir) {
		if firstErr != nil || d.Path == "." {
			return
		}
		content, err := g.renderer.Render(templates.TechInfo, templates.TechInfoData{
			DirName:   d.Name,
			Purpose:   scanner.Purpose(d.Name),
			Date:      now.Format("2006-01-02"),
			CodeFiles: codeFiles(d.Files),
		})
		if err != nil {
			firstErr = err
			return
		}
		path := filepath.Join(rep.Root, filepath.FromSlash(d.Path), TechInfoFile)
		firstErr = g.write(rep, path, content, Created)
	})
	return firstErr
}

func codeFiles(files []string) []string {
	var out []string
	for _, f := range files {
		for _, ext := range codeExtensions {
			if strings.HasSuffix(f, ext) {
				out = append(out, f)
				break
			}
		}
	}
	return out
}

// patchAgents inserts the instruction block into the first of AGENTS.md and
// CLAUDE.md that lacks it. When neither exists AGENTS.md is created.
func (g *Generator) patchAgents(rep *Report) error {
	patch, err := g.renderer.Render(templates.AgentsPatch, templates.AgentsPatchData{Marker: Marker})
	if err != nil {
		return err
	}

	for _, name := range []string{AgentsFile, ClaudeFile} {
		path := filepath.Join(rep.Root, name)
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("contextdocs: read %s: %w", name, err)
		}
		if strings.Contains(string(data), Marker) {
			rep.add(Skipped, path, "already contains context-keeper instructions")
			continue
		}
		return g.write(rep, path, InsertAfterFrontMatter(string(data), patch), Updated)
	}

	if hasAgentsFile(rep.Root) {
		return nil
	}
	return g.write(rep, filepath.Join(rep.Root, AgentsFile), "# Agent Instructions\n\n"+patch, Created)
}

func hasAgentsFile(root string) bool {
	for _, name := range []string{AgentsFile, ClaudeFile} {
		if _, err := os.Stat(filepath.Join(root, name)); err == nil {
			return true
		}
	}
	return false
}

// InsertAfterFrontMatter inserts patch after a leading YAML front matter
// block, or at the top of content when there is none.
func InsertAfterFrontMatter(content, patch string) string {
	lines := strings.Split(content, "\n")
	at := 0
	if len(lines) > 0 && strings.TrimSpace(lines[0]) == "---" {
		for i := 1; i < len(lines); i++ {
			if strings.TrimSpace(lines[i]) == "---" {
				at = i + 1
				break
			}
		}
	}
	return strings.Join(lines[:at], "\n") + "\n" + patch + strings.Join(lines[at:], "\n")
}

// updateGitignore appends TECH_INFO.md to an existing .gitignore.
func (g *Generator) updateGitignore(rep *Report) error {
	path := filepath.Join(rep.Root, GitignoreFile)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("contextdocs: read %s: %w", GitignoreFile, err)
	}
	if strings.Contains(string(data), TechInfoFile) {
		return nil
	}
	if rep.DryRun {
		rep.add(Updated, path, "add "+TechInfoFile)
		return nil
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("contextdocs: open %s: %w", GitignoreFile, err)
	}
	defer f.Close()
	if _, err := f.WriteString("\n# context-keeper\n" + TechInfoFile + "\n"); err != nil {
		return fmt.Errorf("contextdocs: append %s: %w", GitignoreFile, err)
	}
	rep.add(Updated, path, "add "+TechInfoFile)
	return nil
}

func (g *Generator) write(rep *Report, path, content string, kind ActionKind) error {
	rep.add(kind, path, "")
	if rep.DryRun {
		return nil
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("contextdocs: write %s: %w", path, err)
	}
	g.logger.Debug("wrote document", zap.String("path", path), zap.String("action", string(kind)))
	return nil
}
