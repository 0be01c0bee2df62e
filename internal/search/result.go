package search

import (
	"fmt"
	"strings"

	"github.com/HendryAvila/skillkit/internal/product"
)

const (
	// DefaultSnippetWidth is the number of description runes rendered per requirement.
	DefaultSnippetWidth = 200
	rationaleWidth      = 150
)

// Group holds the rows one scope produced. Exactly one of the slices is
// populated, matching Scope.
type Group struct {
	Scope        Scope                  `json:"scope"`
	Backend      Backend                `json:"backend"`
	Requirements []product.Requirement  `json:"requirements,omitempty"`
	Decisions    []product.Decision     `json:"decisions,omitempty"`
	Questions    []product.OpenQuestion `json:"questions,omitempty"`
}

// Len returns the number of rows in the group.
func (g Group) Len() int {
	return len(g.Requirements) + len(g.Decisions) + len(g.Questions)
}

// Result is the outcome of a search: one group per searched scope, in
// requirement, decision, question order.
type Result struct {
	Query        string   `json:"query"`
	Mode         Mode     `json:"mode"`
	FullText     bool     `json:"full_text"`
	Notices      []Notice `json:"notices,omitempty"`
	Groups       []Group  `json:"groups"`
	SnippetWidth int      `json:"-"`
}

// Group returns the group for s, if it was searched.
func (r *Result) Group(s Scope) (Group, bool) {
	for _, g := range r.Groups {
		if g.Scope == s {
			return g, true
		}
	}
	return Group{}, false
}

// Total returns the number of rows across all groups.
func (r *Result) Total() int {
	n := 0
	for _, g := range r.Groups {
		n += g.Len()
	}
	return n
}

// Markdown renders the non-empty groups, or a "no results" line.
func (r *Result) Markdown() string {
	if r.Total() == 0 {
		return fmt.Sprintf("No results found for query: %s\n", r.Query)
	}
	width := r.SnippetWidth
	if width <= 0 {
		width = DefaultSnippetWidth
	}

	var b strings.Builder
	for _, g := range r.Groups {
		if g.Len() == 0 {
			continue
		}
		switch g.Scope {
		case ScopeRequirement:
			b.WriteString("## Requirements\n\n")
			for _, req := range g.Requirements {
				fmt.Fprintf(&b, "**%s** [%s] %s\n", req.ReqID, req.Status, req.Title)
				if req.Description != "" {
					fmt.Fprintf(&b, "   %s...\n", snippet(req.Description, width))
				}
				b.WriteString("\n")
			}
		case ScopeDecision:
			b.WriteString("## Decisions\n\n")
			for _, d := range g.Decisions {
				fmt.Fprintf(&b, "**[%s]** Q: %s\n", product.ScopeLabel(d.ScopeType, d.ScopeRef), d.Question)
				fmt.Fprintf(&b, "   → Choice: %s\n", d.Choice)
				if d.Rationale != "" {
					fmt.Fprintf(&b, "   → Rationale: %s...\n", snippet(d.Rationale, rationaleWidth))
				}
				b.WriteString("\n")
			}
		case ScopeQuestion:
			b.WriteString("## Open Questions\n\n")
			for _, q := range g.Questions {
				fmt.Fprintf(&b, "**[%s]** [%s] %s\n\n", product.ScopeLabel(q.ScopeType, q.ScopeRef), q.Severity, q.Question)
			}
		}
	}
	return b.String()
}

func snippet(s string, width int) string {
	return product.TruncateRunes(strings.ReplaceAll(s, "\n", " "), width)
}
