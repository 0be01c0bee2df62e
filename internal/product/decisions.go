package product

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// DefaultConfidence is used when a decision is recorded without one.
const DefaultConfidence = 0.7

const decisionColumns = `d.id, COALESCE(d.scope_type, ''), COALESCE(d.scope_ref, ''), COALESCE(d.question, ''),
	COALESCE(d.choice, ''), COALESCE(d.rationale, ''), COALESCE(d.confidence, 0), d.created_at`

// normalizeScope defaults the scope to product and the ref to "product" for
// product-scoped records.
func normalizeScope(scope ScopeType, ref string) (ScopeType, string, error) {
	if scope == "" {
		scope = ScopeProduct
	}
	if err := ValidateScopeType(scope); err != nil {
		return "", "", err
	}
	ref = strings.TrimSpace(ref)
	if ref == "" && scope == ScopeProduct {
		ref = "product"
	}
	return scope, ref, nil
}

// ClampConfidence bounds c to [0, 1].
func ClampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// RecordDecision stores a decision. When p.Resolves is set, that open
// question is marked resolved in the same transaction.
func (s *Store) RecordDecision(ctx context.Context, p RecordDecisionParams) (*Decision, error) {
	scope, ref, err := normalizeScope(p.Scope, p.Ref)
	if err != nil {
		return nil, err
	}
	question := strings.TrimSpace(p.Question)
	choice := strings.TrimSpace(p.Choice)
	if question == "" || choice == "" {
		return nil, errors.New("product: decision needs a question and a choice")
	}
	confidence := ClampConfidence(p.Confidence)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("product: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO decision (scope_type, scope_ref, question, choice, rationale, confidence) VALUES (?, ?, ?, ?, ?, ?)",
		scope, ref, question, choice, strings.TrimSpace(p.Rationale), confidence,
	)
	if err != nil {
		return nil, fmt.Errorf("product: record decision: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	if p.Resolves != 0 {
		if err := resolveQuestion(ctx, tx, p.Resolves, id); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("product: commit: %w", err)
	}

	decisions, err := s.queryDecisions(ctx, "SELECT "+decisionColumns+" FROM decision d WHERE d.id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(decisions) == 0 {
		return nil, fmt.Errorf("product: decision %d vanished after insert", id)
	}
	return &decisions[0], nil
}

// Decisions returns every decision, newest first.
func (s *Store) Decisions(ctx context.Context) ([]Decision, error) {
	return s.queryDecisions(ctx, "SELECT "+decisionColumns+" FROM decision d ORDER BY d.created_at DESC, d.id DESC")
}

func (s *Store) queryDecisions(ctx context.Context, query string, args ...any) ([]Decision, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []Decision
	for rows.Next() {
		var d Decision
		if err := rows.Scan(
			&d.ID, &d.ScopeType, &d.ScopeRef, &d.Question,
			&d.Choice, &d.Rationale, &d.Confidence, &d.CreatedAt,
		); err != nil {
			return nil, err
		}
		results = append(results, d)
	}
	return results, rows.Err()
}
