package sqlitecap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// ProbeStage names the step of the FTS5 probe that failed.
type ProbeStage string

const (
	StageOpen   ProbeStage = "open"
	StageCreate ProbeStage = "create_fts_table"
	StageDrop   ProbeStage = "drop_fts_table"
)

// ProbeFailure means a candidate driver cannot serve full-text search.
// It is the only failure the Negotiator absorbs.
type ProbeFailure struct {
	Driver string
	Stage  ProbeStage
	Err    error
}

func (e *ProbeFailure) Error() string {
	return fmt.Sprintf("sqlitecap: %s: %s: %v", e.Driver, e.Stage, e.Err)
}

func (e *ProbeFailure) Unwrap() error { return e.Err }

// Unsupported reports whether the failure is the expected "this engine has no
// FTS5" outcome, as opposed to an engine that could not be used at all.
func (e *ProbeFailure) Unsupported() bool {
	if errors.Is(e.Err, ErrDriverUnavailable) {
		return true
	}
	return e.Stage == StageCreate && strings.Contains(e.Err.Error(), "no such module")
}

// probeFullText checks a single driver for FTS5 support. The compile options
// are consulted first; when they do not mention FTS5 a throwaway virtual table
// settles it.
func probeFullText(ctx context.Context, d Driver) *ProbeFailure {
	fail := func(stage ProbeStage, err error) *ProbeFailure {
		return &ProbeFailure{Driver: d.Label(), Stage: stage, Err: err}
	}

	db, err := d.Open(":memory:")
	if err != nil {
		return fail(StageOpen, err)
	}
	defer func() { _ = db.Close() }()

	// Each pooled connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		return fail(StageOpen, err)
	}

	if compiledWithFTS5(ctx, db) {
		return nil
	}

	if _, err := db.ExecContext(ctx, "CREATE VIRTUAL TABLE temp_fts_probe USING fts5(x)"); err != nil {
		return fail(StageCreate, err)
	}
	if _, err := db.ExecContext(ctx, "DROP TABLE temp_fts_probe"); err != nil {
		return fail(StageDrop, err)
	}
	return nil
}

// compiledWithFTS5 reports whether PRAGMA compile_options lists FTS5.
// Any error reading the pragma is inconclusive and reported as false.
func compiledWithFTS5(ctx context.Context, db *sql.DB) bool {
	rows, err := db.QueryContext(ctx, "PRAGMA compile_options")
	if err != nil {
		return false
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var opt string
		if err := rows.Scan(&opt); err != nil {
			return false
		}
		if strings.Contains(opt, "FTS5") {
			return true
		}
	}
	return false
}
