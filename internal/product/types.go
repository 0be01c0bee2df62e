package product

import (
	"errors"
	"fmt"
)

// ─── Errors ──────────────────────────────────────────────────────────────────

var (
	// ErrNotInitialized means the product database does not exist yet.
	ErrNotInitialized = errors.New("repo product is not initialized")
	// ErrRequirementNotFound is returned for an unknown requirement id (R-###).
	ErrRequirementNotFound = errors.New("requirement not found")
	// ErrQuestionNotFound is returned for an unknown open question id.
	ErrQuestionNotFound = errors.New("open question not found")
	// ErrNoFullTextIndex is returned by Match* when the FTS5 tables are unavailable.
	ErrNoFullTextIndex = errors.New("full-text index unavailable")
)

// ─── Enums ───────────────────────────────────────────────────────────────────

// Status is the lifecycle state of a requirement.
type Status string

const (
	StatusProposed Status = "PROPOSED"
	StatusReady    Status = "READY"
	StatusDone     Status = "DONE"
)

var validStatuses = map[Status]bool{StatusProposed: true, StatusReady: true, StatusDone: true}

// ValidateStatus returns an error if s is not a known status.
func ValidateStatus(s Status) error {
	if !validStatuses[s] {
		return fmt.Errorf("invalid status %q: must be one of: PROPOSED, READY, DONE", s)
	}
	return nil
}

// Priority ranks requirements; P0 is the most urgent.
type Priority string

const (
	PriorityP0 Priority = "P0"
	PriorityP1 Priority = "P1"
	PriorityP2 Priority = "P2"
)

var validPriorities = map[Priority]bool{PriorityP0: true, PriorityP1: true, PriorityP2: true}

// ValidatePriority returns an error if p is not a known priority.
func ValidatePriority(p Priority) error {
	if !validPriorities[p] {
		return fmt.Errorf("invalid priority %q: must be one of: P0, P1, P2", p)
	}
	return nil
}

// AcceptanceType is the format of an acceptance criterion.
type AcceptanceType string

const (
	AcceptanceChecklist AcceptanceType = "CHECKLIST"
	// AcceptanceGWT is Given/When/Then.
	AcceptanceGWT AcceptanceType = "GWT"
)

// ValidateAcceptanceType returns an error if t is not a known acceptance type.
func ValidateAcceptanceType(t AcceptanceType) error {
	if t != AcceptanceChecklist && t != AcceptanceGWT {
		return fmt.Errorf("invalid acceptance type %q: must be CHECKLIST or GWT", t)
	}
	return nil
}

// Severity grades how much an open question blocks progress.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

var validSeverities = map[Severity]bool{SeverityLow: true, SeverityMedium: true, SeverityHigh: true}

// ValidateSeverity returns an error if s is not a known severity.
func ValidateSeverity(s Severity) error {
	if !validSeverities[s] {
		return fmt.Errorf("invalid severity %q: must be one of: low, medium, high", s)
	}
	return nil
}

// ScopeType says what a decision or open question is attached to.
type ScopeType string

const (
	ScopeProduct     ScopeType = "product"
	ScopeRequirement ScopeType = "requirement"
)

// ValidateScopeType returns an error if s is not product or requirement.
func ValidateScopeType(s ScopeType) error {
	if s != ScopeProduct && s != ScopeRequirement {
		return fmt.Errorf("invalid scope %q: must be product or requirement", s)
	}
	return nil
}

// ─── Records ─────────────────────────────────────────────────────────────────

// Requirement is one backlog item.
type Requirement struct {
	ID          int64    `json:"id"`
	ReqID       string   `json:"req_id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Status      Status   `json:"status"`
	Priority    Priority `json:"priority"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

// Acceptance is an acceptance criterion attached to a requirement.
type Acceptance struct {
	ID            int64          `json:"id"`
	RequirementID int64          `json:"requirement_id"`
	Text          string         `json:"text"`
	Type          AcceptanceType `json:"type"`
}

// Decision is a durable record of a resolved ambiguity or trade-off.
type Decision struct {
	ID         int64     `json:"id"`
	ScopeType  ScopeType `json:"scope_type"`
	ScopeRef   string    `json:"scope_ref"`
	Question   string    `json:"question"`
	Choice     string    `json:"choice"`
	Rationale  string    `json:"rationale"`
	Confidence float64   `json:"confidence"`
	CreatedAt  string    `json:"created_at"`
}

// OpenQuestion is an unresolved uncertainty.
type OpenQuestion struct {
	ID                   int64     `json:"id"`
	ScopeType            ScopeType `json:"scope_type"`
	ScopeRef             string    `json:"scope_ref"`
	Question             string    `json:"question"`
	Severity             Severity  `json:"severity"`
	CreatedAt            string    `json:"created_at"`
	ResolvedByDecisionID *int64    `json:"resolved_by_decision_id,omitempty"`
}

// ScopeLabel renders "type" or "type:ref".
func ScopeLabel(scopeType ScopeType, ref string) string {
	if ref == "" {
		return string(scopeType)
	}
	return string(scopeType) + ":" + ref
}

// ─── Params ──────────────────────────────────────────────────────────────────

// AddRequirementParams holds input for a new requirement.
type AddRequirementParams struct {
	Description string
	Title       string
	Priority    Priority
}

// RefineParams holds partial updates for a requirement. Empty fields are left as-is.
type RefineParams struct {
	Title          string
	Description    string
	Priority       Priority
	Status         Status
	AddAcceptance  []string
	AcceptanceType AcceptanceType
}

// RecordDecisionParams holds input for a new decision.
type RecordDecisionParams struct {
	Scope      ScopeType
	Ref        string
	Question   string
	Choice     string
	Rationale  string
	Confidence float64
	// Resolves, when non-zero, marks that open question as resolved by this decision.
	Resolves int64
}

// AddOpenQuestionParams holds input for a new open question.
type AddOpenQuestionParams struct {
	Scope    ScopeType
	Ref      string
	Question string
	Severity Severity
}
