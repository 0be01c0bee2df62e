package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const maxTitleRunes = 60

const requirementColumns = `r.id, COALESCE(r.req_id, ''), COALESCE(r.title, ''), COALESCE(r.description, ''),
	r.status, r.priority, r.created_at, r.updated_at`

// AddRequirement inserts a PROPOSED requirement and returns it with its
// allocated R-### id.
func (s *Store) AddRequirement(ctx context.Context, p AddRequirementParams) (*Requirement, error) {
	description := strings.TrimSpace(p.Description)
	if description == "" {
		return nil, errors.New("product: description is required")
	}
	priority := p.Priority
	if priority == "" {
		priority = PriorityP2
	}
	if err := ValidatePriority(priority); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(p.Title)
	if title == "" {
		title = description
	}
	title = TruncateRunes(strings.ReplaceAll(title, "\n", " "), maxTitleRunes)

	var id int64
	err := s.immediate(ctx, func(conn *sql.Conn) error {
		reqID, err := nextReqID(ctx, conn)
		if err != nil {
			return err
		}
		res, err := conn.ExecContext(ctx,
			"INSERT INTO requirement (req_id, title, description, status, priority) VALUES (?, ?, ?, ?, ?)",
			reqID, title, description, StatusProposed, priority,
		)
		if err != nil {
			return fmt.Errorf("product: add requirement: %w", err)
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.requirementByRowID(ctx, id)
}

// nextReqID allocates the id after the last inserted requirement, so deleted
// rows never cause a collision. Callers hold the write lock.
func nextReqID(ctx context.Context, conn *sql.Conn) (string, error) {
	var last sql.NullString
	err := conn.QueryRowContext(ctx, "SELECT req_id FROM requirement ORDER BY id DESC LIMIT 1").Scan(&last)
	if errors.Is(err, sql.ErrNoRows) {
		return "R-001", nil
	}
	if err != nil {
		return "", fmt.Errorf("product: next requirement id: %w", err)
	}
	if !last.Valid || last.String == "" {
		return "R-001", nil
	}
	return fmt.Sprintf("R-%03d", parseReqNumber(last.String)+1), nil
}

// parseReqNumber extracts N from "R-N"; anything unparsable counts as 0.
func parseReqNumber(reqID string) int {
	tail := reqID
	if i := strings.LastIndex(reqID, "-"); i >= 0 {
		tail = reqID[i+1:]
	}
	n, err := strconv.Atoi(tail)
	if err != nil {
		return 0
	}
	return n
}

// RefineRequirement applies the non-empty fields of p and appends acceptance
// criteria. It returns the updated requirement and the number of criteria added.
func (s *Store) RefineRequirement(ctx context.Context, reqID string, p RefineParams) (*Requirement, int, error) {
	current, err := s.GetRequirement(ctx, reqID)
	if err != nil {
		return nil, 0, err
	}
	if p.Priority != "" {
		if err := ValidatePriority(p.Priority); err != nil {
			return nil, 0, err
		}
	}
	if p.Status != "" {
		if err := ValidateStatus(p.Status); err != nil {
			return nil, 0, err
		}
	}
	accType := p.AcceptanceType
	if accType == "" {
		accType = AcceptanceChecklist
	}
	if err := ValidateAcceptanceType(accType); err != nil {
		return nil, 0, err
	}

	var sets []string
	var args []any
	if v := strings.TrimSpace(p.Title); v != "" {
		sets = append(sets, "title = ?")
		args = append(args, v)
	}
	if v := strings.TrimSpace(p.Description); v != "" {
		sets = append(sets, "description = ?")
		args = append(args, v)
	}
	if p.Priority != "" {
		sets = append(sets, "priority = ?")
		args = append(args, p.Priority)
	}
	if p.Status != "" {
		sets = append(sets, "status = ?")
		args = append(args, p.Status)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("product: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if len(sets) > 0 {
		sets = append(sets, "updated_at = datetime('now')")
		args = append(args, current.ID)
		query := "UPDATE requirement SET " + strings.Join(sets, ", ") + " WHERE id = ?"
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return nil, 0, fmt.Errorf("product: refine %s: %w", reqID, err)
		}
	}

	added := 0
	for _, item := range p.AddAcceptance {
		text := strings.TrimSpace(item)
		if text == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO acceptance (requirement_id, text, type) VALUES (?, ?, ?)",
			current.ID, text, accType,
		); err != nil {
			return nil, 0, fmt.Errorf("product: add acceptance: %w", err)
		}
		added++
	}

	if err := tx.Commit(); err != nil {
		return nil, 0, fmt.Errorf("product: commit: %w", err)
	}
	updated, err := s.requirementByRowID(ctx, current.ID)
	if err != nil {
		return nil, 0, err
	}
	return updated, added, nil
}

// GetRequirement looks a requirement up by its R-### id.
func (s *Store) GetRequirement(ctx context.Context, reqID string) (*Requirement, error) {
	reqs, err := s.queryRequirements(ctx,
		"SELECT "+requirementColumns+" FROM requirement r WHERE r.req_id = ?", strings.TrimSpace(reqID))
	if err != nil {
		return nil, err
	}
	if len(reqs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrRequirementNotFound, reqID)
	}
	return &reqs[0], nil
}

func (s *Store) requirementByRowID(ctx context.Context, id int64) (*Requirement, error) {
	reqs, err := s.queryRequirements(ctx, "SELECT "+requirementColumns+" FROM requirement r WHERE r.id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(reqs) == 0 {
		return nil, fmt.Errorf("%w: row %d", ErrRequirementNotFound, id)
	}
	return &reqs[0], nil
}

// Requirements returns every requirement in insertion order.
func (s *Store) Requirements(ctx context.Context) ([]Requirement, error) {
	return s.queryRequirements(ctx, "SELECT "+requirementColumns+" FROM requirement r ORDER BY r.id ASC")
}

// RequirementsByReqID returns every requirement ordered by its R-### id.
func (s *Store) RequirementsByReqID(ctx context.Context) ([]Requirement, error) {
	return s.queryRequirements(ctx, "SELECT "+requirementColumns+" FROM requirement r ORDER BY r.req_id ASC")
}

// Acceptance returns acceptance criteria keyed by requirement R-### id, each
// list in insertion order.
func (s *Store) Acceptance(ctx context.Context) (map[string][]Acceptance, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.req_id, a.id, a.requirement_id, COALESCE(a.text, ''), a.type
		FROM acceptance a
		JOIN requirement r ON r.id = a.requirement_id
		ORDER BY r.id ASC, a.id ASC`)
	if err != nil {
		return nil, fmt.Errorf("product: load acceptance: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[string][]Acceptance)
	for rows.Next() {
		var reqID string
		var a Acceptance
		if err := rows.Scan(&reqID, &a.ID, &a.RequirementID, &a.Text, &a.Type); err != nil {
			return nil, err
		}
		out[reqID] = append(out[reqID], a)
	}
	return out, rows.Err()
}

func (s *Store) queryRequirements(ctx context.Context, query string, args ...any) ([]Requirement, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []Requirement
	for rows.Next() {
		var r Requirement
		if err := rows.Scan(
			&r.ID, &r.ReqID, &r.Title, &r.Description,
			&r.Status, &r.Priority, &r.CreatedAt, &r.UpdatedAt,
		); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// TruncateRunes shortens s to at most max runes.
func TruncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

// Summarize flattens newlines and shortens s to max runes, marking the cut with "…".
func Summarize(s string, max int) string {
	flat := strings.ReplaceAll(strings.TrimSpace(s), "\n", " ")
	r := []rune(flat)
	if len(r) <= max {
		return flat
	}
	return string(r[:max]) + "…"
}
