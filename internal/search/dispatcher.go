package search

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/HendryAvila/skillkit/internal/product"
	"github.com/HendryAvila/skillkit/internal/sqlitecap"
)

// ErrEmptyQuery is returned for a blank query.
var ErrEmptyQuery = errors.New("search: query is required")

// Index is the subset of the product store the dispatcher queries.
type Index interface {
	MatchRequirements(ctx context.Context, match string) ([]product.Requirement, error)
	LikeRequirements(ctx context.Context, text string) ([]product.Requirement, error)
	MatchDecisions(ctx context.Context, match string) ([]product.Decision, error)
	LikeDecisions(ctx context.Context, text string) ([]product.Decision, error)
	MatchQuestions(ctx context.Context, match string) ([]product.OpenQuestion, error)
	LikeQuestions(ctx context.Context, text string) ([]product.OpenQuestion, error)
}

// Backend names the query strategy that produced a group.
type Backend string

const (
	BackendFTS  Backend = "fts"
	BackendLike Backend = "like"
)

// Request is one search invocation.
type Request struct {
	Query string
	Scope Scope
	Mode  Mode
	// EnvMode is the raw value of IDEATE_PM_SEARCH_MODE, if any.
	EnvMode string
}

// Dispatcher runs searches against an Index using the negotiated capability.
type Dispatcher struct {
	index      Index
	capability sqlitecap.Capability
	logger     *zap.Logger
	snippet    int
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger used for fallback diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithSnippetWidth sets how many runes of a description are rendered.
func WithSnippetWidth(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.snippet = n
		}
	}
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(index Index, c sqlitecap.Capability, opts ...Option) *Dispatcher {
	d := &Dispatcher{index: index, capability: c, logger: zap.NewNop(), snippet: DefaultSnippetWidth}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Search resolves the effective mode and runs the query for each scope.
func (d *Dispatcher) Search(ctx context.Context, req Request) (*Result, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	scope := req.Scope
	if scope == "" {
		scope = ScopeAll
	}
	if _, err := ParseScope(string(scope)); err != nil {
		return nil, err
	}
	pref := req.Mode
	if pref == "" {
		pref = ModeAuto
	}
	if _, err := ParseMode(string(pref)); err != nil {
		return nil, err
	}

	mode, notices := ResolveMode(pref, req.EnvMode)
	fullText, more := d.selectBackend(mode)
	notices = append(notices, more...)

	res := &Result{
		Query:        query,
		Mode:         mode,
		FullText:     fullText,
		Notices:      notices,
		SnippetWidth: d.snippet,
	}
	match := NormalizeQuery(query)
	for _, s := range scope.expand() {
		g, err := d.searchScope(ctx, s, query, match, fullText)
		if err != nil {
			return nil, err
		}
		res.Groups = append(res.Groups, g)
	}
	return res, nil
}

// selectBackend decides whether full text is used for mode.
func (d *Dispatcher) selectBackend(mode Mode) (bool, []Notice) {
	switch {
	case mode == ModeLike:
		return false, []Notice{info("Search mode forced to LIKE; using fuzzy fallback.")}
	case mode == ModeFTS && !d.capability.FullText():
		return false, []Notice{warning("--mode fts requested but FTS5 is unavailable; falling back to LIKE.")}
	case d.capability.FullText():
		return true, nil
	default:
		return false, []Notice{info("FTS5 unavailable (%s); using fuzzy LIKE fallback.", d.capability.Source())}
	}
}

func (d *Dispatcher) searchScope(ctx context.Context, s Scope, query, match string, fullText bool) (Group, error) {
	g := Group{Scope: s, Backend: BackendLike}
	var err error

	if fullText {
		switch s {
		case ScopeRequirement:
			g.Requirements, err = d.index.MatchRequirements(ctx, match)
		case ScopeDecision:
			g.Decisions, err = d.index.MatchDecisions(ctx, match)
		case ScopeQuestion:
			g.Questions, err = d.index.MatchQuestions(ctx, match)
		}
		if err == nil && g.Len() > 0 {
			g.Backend = BackendFTS
			return g, nil
		}
		if err != nil {
			// Malformed MATCH syntax and missing indexes read as "no rows".
			d.logger.Debug("fts query failed, using like",
				zap.String("scope", string(s)), zap.String("match", match), zap.Error(err))
		} else {
			d.logger.Debug("fts returned no rows, using like", zap.String("scope", string(s)))
		}
		g = Group{Scope: s, Backend: BackendLike}
	}

	switch s {
	case ScopeRequirement:
		g.Requirements, err = d.index.LikeRequirements(ctx, query)
	case ScopeDecision:
		g.Decisions, err = d.index.LikeDecisions(ctx, query)
	case ScopeQuestion:
		g.Questions, err = d.index.LikeQuestions(ctx, query)
	}
	if err != nil {
		return Group{}, err
	}
	return g, nil
}
