// Package templates renders the Markdown views, state summaries and
// context-keeper documents from embedded text templates.
package templates

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed *.md.tmpl
var files embed.FS

// Template names.
const (
	Product       = "product.md.tmpl"
	Backlog       = "backlog.md.tmpl"
	OpenQuestions = "open_questions.md.tmpl"
	State         = "state.md.tmpl"

	UserAgents  = "user_agents.md.tmpl"
	TechInfo    = "tech_info.md.tmpl"
	AgentsPatch = "agents_patch.md.tmpl"
)

var funcs = template.FuncMap{
	"join": strings.Join,
	"inc":  func(i int) int { return i + 1 },
}

// Renderer renders a named template with data.
type Renderer interface {
	Render(name string, data any) (string, error)
}

// EmbedRenderer renders the templates embedded in the binary.
type EmbedRenderer struct {
	tmpl *template.Template
}

// NewRenderer parses every embedded template.
func NewRenderer() (*EmbedRenderer, error) {
	tmpl, err := template.New("views").Option("missingkey=error").Funcs(funcs).ParseFS(files, "*.md.tmpl")
	if err != nil {
		return nil, fmt.Errorf("templates: parse: %w", err)
	}
	return &EmbedRenderer{tmpl: tmpl}, nil
}

// Render executes the template called name.
func (r *EmbedRenderer) Render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("templates: render %s: %w", name, err)
	}
	return buf.String(), nil
}

// ─── Data ────────────────────────────────────────────────────────────────────

// ProductData feeds PRODUCT.md.
type ProductData struct {
	Title       string
	Vision      string
	Constraints string
}

// BacklogItem is one requirement in BACKLOG.md.
type BacklogItem struct {
	ReqID       string
	Title       string
	Status      string
	Priority    string
	Summary     string
	Description string
	Acceptance  []string
}

// BacklogData feeds BACKLOG.md.
type BacklogData struct {
	Items []BacklogItem
}

// QuestionGroup lists the open questions attached to one requirement.
type QuestionGroup struct {
	Ref       string
	Questions []string
}

// OpenQuestionsData feeds OPEN_QUESTIONS.md.
type OpenQuestionsData struct {
	Product      []string
	Requirements []QuestionGroup
}

// StateRequirement is one line of the state summary.
type StateRequirement struct {
	ReqID    string
	Title    string
	Status   string
	Priority string
}

// StateQuestion is one open question in the full state summary.
type StateQuestion struct {
	Severity string
	Scope    string
	Question string
}

// StateData feeds the state summary.
type StateData struct {
	Title        string
	Vision       string
	Requirements []StateRequirement
	Full         bool
	Questions    []StateQuestion
}

// ─── context-keeper ──────────────────────────────────────────────────────────

// TreeLine is one directory in the USERAGENTS.md structure block.
type TreeLine struct {
	Indent  string
	Name    string
	Purpose string
}

// DocLink points at a directory's TECH_INFO.md.
type DocLink struct {
	Name    string
	Path    string
	Purpose string
}

// UserAgentsData feeds USERAGENTS.md.
type UserAgentsData struct {
	ProjectName string
	Timestamp   string
	Stacks      []string
	Tree        []TreeLine
	Conventions []string
	Links       []DocLink
}

// TechInfoData feeds a directory's TECH_INFO.md.
type TechInfoData struct {
	DirName   string
	Purpose   string
	Date      string
	CodeFiles []string
}

// AgentsPatchData feeds the block inserted into AGENTS.md or CLAUDE.md.
type AgentsPatchData struct {
	Marker string
}
