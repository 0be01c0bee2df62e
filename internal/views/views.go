// Package views compiles the human-readable Markdown views of a product.
//
// The database is the source of truth; views are derived, deterministic and
// safe to regenerate after every mutation.
package views

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/HendryAvila/skillkit/internal/product"
	"github.com/HendryAvila/skillkit/internal/templates"
)

// View file names.
const (
	ProductFile       = "PRODUCT.md"
	BacklogFile       = "BACKLOG.md"
	OpenQuestionsFile = "OPEN_QUESTIONS.md"
)

// DefaultSummaryWidth is the rune width of backlog summary lines.
const DefaultSummaryWidth = 120

// Source is the read side of the product store that views need.
type Source interface {
	Meta(ctx context.Context) (map[string]string, error)
	Requirements(ctx context.Context) ([]product.Requirement, error)
	RequirementsByReqID(ctx context.Context) ([]product.Requirement, error)
	Acceptance(ctx context.Context) (map[string][]product.Acceptance, error)
	OpenQuestions(ctx context.Context, unresolvedOnly bool) ([]product.OpenQuestion, error)
}

// Compiler writes views with a template renderer.
type Compiler struct {
	renderer     templates.Renderer
	summaryWidth int
}

// NewCompiler creates a Compiler. A non-positive summaryWidth uses the default.
func NewCompiler(renderer templates.Renderer, summaryWidth int) *Compiler {
	if summaryWidth <= 0 {
		summaryWidth = DefaultSummaryWidth
	}
	return &Compiler{renderer: renderer, summaryWidth: summaryWidth}
}

// Compile renders PRODUCT.md, BACKLOG.md and OPEN_QUESTIONS.md into dir and
// returns the written paths.
func (c *Compiler) Compile(ctx context.Context, src Source, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("views: create %s: %w", dir, err)
	}

	meta, err := src.Meta(ctx)
	if err != nil {
		return nil, err
	}
	reqs, err := src.Requirements(ctx)
	if err != nil {
		return nil, err
	}
	acc, err := src.Acceptance(ctx)
	if err != nil {
		return nil, err
	}
	questions, err := src.OpenQuestions(ctx, true)
	if err != nil {
		return nil, err
	}

	outputs := []struct {
		file     string
		template string
		data     any
	}{
		{ProductFile, templates.Product, productData(meta)},
		{BacklogFile, templates.Backlog, c.backlogData(reqs, acc)},
		{OpenQuestionsFile, templates.OpenQuestions, openQuestionsData(questions)},
	}

	var written []string
	for _, out := range outputs {
		content, err := c.renderer.Render(out.template, out.data)
		if err != nil {
			return nil, err
		}
		path := filepath.Join(dir, out.file)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return nil, fmt.Errorf("views: write %s: %w", out.file, err)
		}
		written = append(written, path)
	}
	return written, nil
}

// State renders the compact state summary. With full, unresolved open
// questions are listed too.
func (c *Compiler) State(ctx context.Context, src Source, full bool) (string, error) {
	meta, err := src.Meta(ctx)
	if err != nil {
		return "", err
	}
	reqs, err := src.RequirementsByReqID(ctx)
	if err != nil {
		return "", err
	}

	p := productData(meta)
	data := templates.StateData{Title: p.Title, Vision: p.Vision, Full: full}
	for _, r := range reqs {
		data.Requirements = append(data.Requirements, templates.StateRequirement{
			ReqID:    r.ReqID,
			Title:    r.Title,
			Status:   string(r.Status),
			Priority: string(r.Priority),
		})
	}
	if full {
		questions, err := src.OpenQuestions(ctx, true)
		if err != nil {
			return "", err
		}
		for _, q := range questions {
			data.Questions = append(data.Questions, templates.StateQuestion{
				Severity: string(q.Severity),
				Scope:    product.ScopeLabel(q.ScopeType, q.ScopeRef),
				Question: q.Question,
			})
		}
	}
	return c.renderer.Render(templates.State, data)
}

func productData(meta map[string]string) templates.ProductData {
	d := templates.ProductData{
		Title:       strings.TrimSpace(meta["title"]),
		Vision:      strings.TrimSpace(meta["vision"]),
		Constraints: strings.TrimSpace(meta["constraints"]),
	}
	if d.Title == "" {
		d.Title = "(Untitled Product)"
	}
	if d.Vision == "" {
		d.Vision = "TBD"
	}
	return d
}

func (c *Compiler) backlogData(reqs []product.Requirement, acc map[string][]product.Acceptance) templates.BacklogData {
	var data templates.BacklogData
	for _, r := range reqs {
		desc := strings.TrimSpace(r.Description)
		if desc == "" {
			desc = "(No description)"
		}
		item := templates.BacklogItem{
			ReqID:       r.ReqID,
			Title:       r.Title,
			Status:      string(r.Status),
			Priority:    string(r.Priority),
			Summary:     product.Summarize(r.Description, c.summaryWidth),
			Description: desc,
		}
		for _, a := range acc[r.ReqID] {
			item.Acceptance = append(item.Acceptance, a.Text)
		}
		data.Items = append(data.Items, item)
	}
	return data
}

func openQuestionsData(questions []product.OpenQuestion) templates.OpenQuestionsData {
	var data templates.OpenQuestionsData
	grouped := make(map[string][]string)
	for _, q := range questions {
		switch q.ScopeType {
		case product.ScopeProduct:
			data.Product = append(data.Product, q.Question)
		case product.ScopeRequirement:
			ref := q.ScopeRef
			if ref == "" {
				ref = "(unknown)"
			}
			grouped[ref] = append(grouped[ref], q.Question)
		}
	}

	refs := make([]string, 0, len(grouped))
	for ref := range grouped {
		refs = append(refs, ref)
	}
	sort.Strings(refs)
	for _, ref := range refs {
		data.Requirements = append(data.Requirements, templates.QuestionGroup{Ref: ref, Questions: grouped[ref]})
	}
	return data
}
