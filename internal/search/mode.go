// Package search dispatches free-text queries over the product store.
//
// A query runs against requirements, decisions and open questions. Each scope
// first tries its FTS5 index (when the negotiated engine has one and the
// caller did not force substring mode) and falls back to a case-insensitive
// LIKE match when full text is unavailable or finds nothing.
package search

import (
	"fmt"
	"strings"
)

// EnvMode is the environment variable that overrides the search mode.
const EnvMode = "IDEATE_PM_SEARCH_MODE"

// Mode is the caller's backend preference.
type Mode string

const (
	ModeAuto Mode = "auto"
	ModeFTS  Mode = "fts"
	ModeLike Mode = "like"
)

// Modes lists the valid modes in display order.
var Modes = []Mode{ModeAuto, ModeFTS, ModeLike}

// ParseMode parses a mode name, case-insensitively. Empty means auto.
func ParseMode(s string) (Mode, error) {
	v := Mode(strings.ToLower(strings.TrimSpace(s)))
	switch v {
	case "":
		return ModeAuto, nil
	case ModeAuto, ModeFTS, ModeLike:
		return v, nil
	}
	return "", fmt.Errorf("invalid search mode %q: must be one of: auto, fts, like", s)
}

// Scope selects which entity kinds a query covers.
type Scope string

const (
	ScopeRequirement Scope = "requirement"
	ScopeDecision    Scope = "decision"
	ScopeQuestion    Scope = "question"
	ScopeAll         Scope = "all"
)

// ParseScope parses a scope name. Empty means all.
func ParseScope(s string) (Scope, error) {
	v := Scope(strings.ToLower(strings.TrimSpace(s)))
	switch v {
	case "":
		return ScopeAll, nil
	case ScopeRequirement, ScopeDecision, ScopeQuestion, ScopeAll:
		return v, nil
	}
	return "", fmt.Errorf("invalid scope %q: must be one of: requirement, decision, question, all", s)
}

// expand returns the concrete scopes in search order.
func (s Scope) expand() []Scope {
	if s == ScopeAll || s == "" {
		return []Scope{ScopeRequirement, ScopeDecision, ScopeQuestion}
	}
	return []Scope{s}
}

// Level grades a notice.
type Level int

const (
	LevelInfo Level = iota
	LevelWarning
)

// Notice is a user-facing message produced while resolving a search.
type Notice struct {
	Level Level  `json:"level"`
	Text  string `json:"text"`
}

// String renders the notice with its CLI marker.
func (n Notice) String() string {
	if n.Level == LevelWarning {
		return "[!] " + n.Text
	}
	return "[i] " + n.Text
}

func info(format string, args ...any) Notice {
	return Notice{Level: LevelInfo, Text: fmt.Sprintf(format, args...)}
}

func warning(format string, args ...any) Notice {
	return Notice{Level: LevelWarning, Text: fmt.Sprintf(format, args...)}
}

// ResolveMode applies the environment override to pref. A valid override
// replaces pref; an invalid one is reported and ignored.
func ResolveMode(pref Mode, envValue string) (Mode, []Notice) {
	if pref == "" {
		pref = ModeAuto
	}
	raw := strings.ToLower(strings.TrimSpace(envValue))
	if raw == "" {
		return pref, nil
	}
	override, err := ParseMode(raw)
	if err != nil {
		return pref, []Notice{warning("%s value '%s' is invalid; falling back to mode '%s'.", EnvMode, raw, pref)}
	}
	if override == pref {
		return pref, nil
	}
	return override, []Notice{info("%s forcing search mode '%s'.", EnvMode, override)}
}

// NormalizeQuery rewrites a raw query for FTS5 prefix matching. Quoted
// tokens, AND/OR/NOT and tokens already ending in * pass through; every other
// token gets a trailing *.
func NormalizeQuery(q string) string {
	tokens := strings.Fields(q)
	for i, tok := range tokens {
		if strings.HasPrefix(tok, `"`) || isOperator(tok) || strings.HasSuffix(tok, "*") {
			continue
		}
		tokens[i] = tok + "*"
	}
	return strings.Join(tokens, " ")
}

func isOperator(tok string) bool {
	return tok == "AND" || tok == "OR" || tok == "NOT"
}
