package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

const questionColumns = `q.id, COALESCE(q.scope_type, ''), COALESCE(q.scope_ref, ''), COALESCE(q.question, ''),
	q.severity, q.created_at, q.resolved_by_decision_id`

// AddOpenQuestion records an unresolved question.
func (s *Store) AddOpenQuestion(ctx context.Context, p AddOpenQuestionParams) (*OpenQuestion, error) {
	scope, ref, err := normalizeScope(p.Scope, p.Ref)
	if err != nil {
		return nil, err
	}
	question := strings.TrimSpace(p.Question)
	if question == "" {
		return nil, errors.New("product: question cannot be empty")
	}
	severity := p.Severity
	if severity == "" {
		severity = SeverityMedium
	}
	if err := ValidateSeverity(severity); err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO open_question (scope_type, scope_ref, question, severity) VALUES (?, ?, ?, ?)",
		scope, ref, question, severity,
	)
	if err != nil {
		return nil, fmt.Errorf("product: add open question: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	qs, err := s.queryQuestions(ctx, "SELECT "+questionColumns+" FROM open_question q WHERE q.id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(qs) == 0 {
		return nil, fmt.Errorf("%w: %d", ErrQuestionNotFound, id)
	}
	return &qs[0], nil
}

// ResolveQuestion marks an open question as resolved by a decision.
func (s *Store) ResolveQuestion(ctx context.Context, questionID, decisionID int64) error {
	return resolveQuestion(ctx, s.db, questionID, decisionID)
}

type execContexter interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func resolveQuestion(ctx context.Context, db execContexter, questionID, decisionID int64) error {
	res, err := db.ExecContext(ctx,
		"UPDATE open_question SET resolved_by_decision_id = ? WHERE id = ?", decisionID, questionID,
	)
	if err != nil {
		return fmt.Errorf("product: resolve question %d: %w", questionID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", ErrQuestionNotFound, questionID)
	}
	return nil
}

// OpenQuestions returns questions ordered by creation time. With
// unresolvedOnly, resolved questions are skipped.
func (s *Store) OpenQuestions(ctx context.Context, unresolvedOnly bool) ([]OpenQuestion, error) {
	query := "SELECT " + questionColumns + " FROM open_question q"
	if unresolvedOnly {
		query += " WHERE q.resolved_by_decision_id IS NULL"
	}
	query += " ORDER BY q.created_at ASC, q.id ASC"
	return s.queryQuestions(ctx, query)
}

func (s *Store) queryQuestions(ctx context.Context, query string, args ...any) ([]OpenQuestion, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []OpenQuestion
	for rows.Next() {
		var q OpenQuestion
		var resolved sql.NullInt64
		if err := rows.Scan(
			&q.ID, &q.ScopeType, &q.ScopeRef, &q.Question,
			&q.Severity, &q.CreatedAt, &resolved,
		); err != nil {
			return nil, err
		}
		if resolved.Valid {
			v := resolved.Int64
			q.ResolvedByDecisionID = &v
		}
		results = append(results, q)
	}
	return results, rows.Err()
}
