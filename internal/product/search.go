package product

import (
	"context"
	"fmt"
	"strings"
)

// ─── Full-text primitives ────────────────────────────────────────────────────

// MatchRequirements runs an FTS5 MATCH expression against requirement_fts.
// Rows come back in index order.
func (s *Store) MatchRequirements(ctx context.Context, match string) ([]Requirement, error) {
	if !s.fullText {
		return nil, ErrNoFullTextIndex
	}
	reqs, err := s.queryRequirements(ctx, `
		SELECT `+requirementColumns+`
		FROM requirement_fts
		JOIN requirement r ON r.id = requirement_fts.rowid
		WHERE requirement_fts MATCH ?`, match)
	if err != nil {
		return nil, fmt.Errorf("product: match requirements: %w", err)
	}
	return reqs, nil
}

// MatchDecisions runs an FTS5 MATCH expression against decision_fts.
func (s *Store) MatchDecisions(ctx context.Context, match string) ([]Decision, error) {
	if !s.fullText {
		return nil, ErrNoFullTextIndex
	}
	ds, err := s.queryDecisions(ctx, `
		SELECT `+decisionColumns+`
		FROM decision_fts
		JOIN decision d ON d.id = decision_fts.rowid
		WHERE decision_fts MATCH ?`, match)
	if err != nil {
		return nil, fmt.Errorf("product: match decisions: %w", err)
	}
	return ds, nil
}

// MatchQuestions runs an FTS5 MATCH expression against open_question_fts.
func (s *Store) MatchQuestions(ctx context.Context, match string) ([]OpenQuestion, error) {
	if !s.fullText {
		return nil, ErrNoFullTextIndex
	}
	qs, err := s.queryQuestions(ctx, `
		SELECT `+questionColumns+`
		FROM open_question_fts
		JOIN open_question q ON q.id = open_question_fts.rowid
		WHERE open_question_fts MATCH ?`, match)
	if err != nil {
		return nil, fmt.Errorf("product: match questions: %w", err)
	}
	return qs, nil
}

// ─── Substring primitives ────────────────────────────────────────────────────

// LikePattern wraps the trimmed text in % wildcards. LIKE metacharacters in
// the text are escaped so the whole text matches literally.
func LikePattern(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "%"
	}
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(trimmed) + "%"
}

// LikeRequirements matches text against title and description, ordered by
// primary key.
func (s *Store) LikeRequirements(ctx context.Context, text string) ([]Requirement, error) {
	p := LikePattern(text)
	reqs, err := s.queryRequirements(ctx, `
		SELECT `+requirementColumns+`
		FROM requirement r
		WHERE LOWER(r.title) LIKE LOWER(?) ESCAPE '\'
		   OR LOWER(r.description) LIKE LOWER(?) ESCAPE '\'
		ORDER BY r.id ASC`, p, p)
	if err != nil {
		return nil, fmt.Errorf("product: like requirements: %w", err)
	}
	return reqs, nil
}

// LikeDecisions matches text against question, choice and rationale, newest first.
func (s *Store) LikeDecisions(ctx context.Context, text string) ([]Decision, error) {
	p := LikePattern(text)
	ds, err := s.queryDecisions(ctx, `
		SELECT `+decisionColumns+`
		FROM decision d
		WHERE LOWER(d.question) LIKE LOWER(?) ESCAPE '\'
		   OR LOWER(d.choice) LIKE LOWER(?) ESCAPE '\'
		   OR LOWER(d.rationale) LIKE LOWER(?) ESCAPE '\'
		ORDER BY d.created_at DESC, d.id DESC`, p, p, p)
	if err != nil {
		return nil, fmt.Errorf("product: like decisions: %w", err)
	}
	return ds, nil
}

// LikeQuestions matches text against the question text, newest first.
func (s *Store) LikeQuestions(ctx context.Context, text string) ([]OpenQuestion, error) {
	p := LikePattern(text)
	qs, err := s.queryQuestions(ctx, `
		SELECT `+questionColumns+`
		FROM open_question q
		WHERE LOWER(q.question) LIKE LOWER(?) ESCAPE '\'
		ORDER BY q.created_at DESC, q.id DESC`, p)
	if err != nil {
		return nil, fmt.Errorf("product: like questions: %w", err)
	}
	return qs, nil
}
