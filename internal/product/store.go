// Package product implements the repo-scoped product memory for ideate-pm.
//
// Requirements, acceptance criteria, decisions and open questions live in a
// single SQLite database under the product directory. When the negotiated
// engine supports FTS5, each searchable table gets an external-content index
// kept in sync by triggers; otherwise the store runs without those indexes and
// search falls back to substring matching.
package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/HendryAvila/skillkit/internal/sqlitecap"
)

const (
	// DBFile is the database file name inside the product directory.
	DBFile = "memory.sqlite"
	// ViewsDir is the compiled views directory inside the product directory.
	ViewsDir = "views"
)

// ─── Config ──────────────────────────────────────────────────────────────────

// Config locates the product directory.
type Config struct {
	Dir string
}

// DBPath returns the database file path.
func (c Config) DBPath() string { return filepath.Join(c.Dir, DBFile) }

// ViewsPath returns the compiled views directory.
func (c Config) ViewsPath() string { return filepath.Join(c.Dir, ViewsDir) }

// Initialized reports whether the database file exists.
func (c Config) Initialized() bool {
	_, err := os.Stat(c.DBPath())
	return err == nil
}

// ─── Store ───────────────────────────────────────────────────────────────────

// Store is the product database.
type Store struct {
	db       *sql.DB
	cfg      Config
	fullText bool
}

// Init creates the product directory and database if needed and records the
// product title and vision. Calling it on an existing product keeps its data.
func Init(ctx context.Context, engine sqlitecap.Capability, cfg Config, title, vision string) (*Store, error) {
	if err := os.MkdirAll(cfg.ViewsPath(), 0o755); err != nil {
		return nil, fmt.Errorf("product: create views dir: %w", err)
	}
	s, err := open(ctx, engine, cfg)
	if err != nil {
		return nil, err
	}
	if err := s.SetMeta(ctx, "title", title); err != nil {
		_ = s.Close()
		return nil, err
	}
	if err := s.SetMeta(ctx, "vision", vision); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// Open opens an existing product database. It returns ErrNotInitialized when
// the database file is missing.
func Open(ctx context.Context, engine sqlitecap.Capability, cfg Config) (*Store, error) {
	if !cfg.Initialized() {
		return nil, ErrNotInitialized
	}
	return open(ctx, engine, cfg)
}

func open(ctx context.Context, engine sqlitecap.Capability, cfg Config) (*Store, error) {
	db, err := engine.Open(cfg.DBPath())
	if err != nil {
		return nil, fmt.Errorf("product: open database: %w", err)
	}
	// Connection-scoped pragmas only hold for a single connection.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("product: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, cfg: cfg}
	if err := s.migrate(ctx, engine.FullText()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("product: migration: %w", err)
	}
	return s, nil
}

// immediate runs fn inside BEGIN IMMEDIATE on a dedicated connection, so a
// read followed by a dependent write cannot interleave with another writer,
// including one in a different process.
func (s *Store) immediate(ctx context.Context, fn func(*sql.Conn) error) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("product: acquire connection: %w", err)
	}
	defer func() { _ = conn.Close() }()

	if _, err := conn.ExecContext(ctx, "BEGIN IMMEDIATE"); err != nil {
		return fmt.Errorf("product: begin immediate: %w", err)
	}
	if err := fn(conn); err != nil {
		_, _ = conn.ExecContext(context.WithoutCancel(ctx), "ROLLBACK")
		return err
	}
	if _, err := conn.ExecContext(ctx, "COMMIT"); err != nil {
		_, _ = conn.ExecContext(context.WithoutCancel(ctx), "ROLLBACK")
		return fmt.Errorf("product: commit: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Config returns the store configuration.
func (s *Store) Config() Config { return s.cfg }

// FullText reports whether the FTS5 indexes are present and maintained.
func (s *Store) FullText() bool { return s.fullText }

func (s *Store) migrate(ctx context.Context, fullText bool) error {
	schema := `
		CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT
		);

		CREATE TABLE IF NOT EXISTS requirement (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			req_id      TEXT UNIQUE,
			title       TEXT,
			description TEXT,
			status      TEXT NOT NULL DEFAULT 'PROPOSED',
			priority    TEXT NOT NULL DEFAULT 'P2',
			created_at  TEXT NOT NULL DEFAULT (datetime('now')),
			updated_at  TEXT NOT NULL DEFAULT (datetime('now'))
		);

		CREATE TABLE IF NOT EXISTS acceptance (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			requirement_id INTEGER NOT NULL,
			text           TEXT,
			type           TEXT NOT NULL DEFAULT 'CHECKLIST',
			created_at     TEXT NOT NULL DEFAULT (datetime('now')),
			FOREIGN KEY (requirement_id) REFERENCES requirement(id) ON DELETE CASCADE
		);

		CREATE TABLE IF NOT EXISTS decision (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			scope_type TEXT,
			scope_ref  TEXT,
			question   TEXT,
			choice     TEXT,
			rationale  TEXT,
			confidence REAL,
			created_at TEXT NOT NULL DEFAULT (datetime('now'))
		);

		CREATE TABLE IF NOT EXISTS open_question (
			id                      INTEGER PRIMARY KEY AUTOINCREMENT,
			scope_type              TEXT,
			scope_ref               TEXT,
			question                TEXT,
			severity                TEXT NOT NULL DEFAULT 'medium',
			created_at              TEXT NOT NULL DEFAULT (datetime('now')),
			resolved_by_decision_id INTEGER REFERENCES decision(id)
		);

		CREATE TABLE IF NOT EXISTS entity (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			type         TEXT,
			name         TEXT,
			payload_json TEXT
		);

		CREATE TABLE IF NOT EXISTS edge (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			src_entity_id INTEGER,
			rel           TEXT,
			dst_entity_id INTEGER,
			evidence_ref  TEXT,
			created_at    TEXT NOT NULL DEFAULT (datetime('now'))
		);

		CREATE INDEX IF NOT EXISTS idx_acc_req       ON acceptance(requirement_id);
		CREATE INDEX IF NOT EXISTS idx_dec_created   ON decision(created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_oq_created    ON open_question(created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_oq_unresolved ON open_question(resolved_by_decision_id);
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return err
	}

	if !fullText {
		// An engine without FTS5 cannot fire triggers that write to fts5
		// tables, so detach them. The next full-text session rebuilds.
		return s.dropFTSTriggers(ctx)
	}
	if err := s.ensureFTS(ctx); err != nil {
		return err
	}
	s.fullText = true
	return nil
}

// ftsIndex describes one external-content FTS5 table.
type ftsIndex struct {
	table   string
	content string
	columns []string
}

var ftsIndexes = []ftsIndex{
	{table: "requirement_fts", content: "requirement", columns: []string{"req_id", "title", "description"}},
	{table: "decision_fts", content: "decision", columns: []string{"question", "choice", "rationale"}},
	{table: "open_question_fts", content: "open_question", columns: []string{"question"}},
}

func (ix ftsIndex) triggerNames() []string {
	return []string{ix.table + "_insert", ix.table + "_delete", ix.table + "_update"}
}

func (ix ftsIndex) schema() string {
	cols := joinCols(ix.columns, "")
	newCols := joinCols(ix.columns, "new.")
	oldCols := joinCols(ix.columns, "old.")
	return fmt.Sprintf(`
		CREATE VIRTUAL TABLE IF NOT EXISTS %[1]s USING fts5(
			%[3]s,
			content='%[2]s',
			content_rowid='id'
		);

		CREATE TRIGGER IF NOT EXISTS %[1]s_insert AFTER INSERT ON %[2]s BEGIN
			INSERT INTO %[1]s(rowid, %[3]s) VALUES (new.id, %[4]s);
		END;

		CREATE TRIGGER IF NOT EXISTS %[1]s_delete AFTER DELETE ON %[2]s BEGIN
			INSERT INTO %[1]s(%[1]s, rowid, %[3]s) VALUES ('delete', old.id, %[5]s);
		END;

		CREATE TRIGGER IF NOT EXISTS %[1]s_update AFTER UPDATE ON %[2]s BEGIN
			INSERT INTO %[1]s(%[1]s, rowid, %[3]s) VALUES ('delete', old.id, %[5]s);
			INSERT INTO %[1]s(rowid, %[3]s) VALUES (new.id, %[4]s);
		END;
	`, ix.table, ix.content, cols, newCols, oldCols)
}

func joinCols(cols []string, prefix string) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = prefix + c
	}
	return strings.Join(parts, ", ")
}

// ensureFTS creates the FTS5 tables and triggers. An index whose insert trigger
// was missing may be stale, so it is rebuilt from its content table.
func (s *Store) ensureFTS(ctx context.Context) error {
	for _, ix := range ftsIndexes {
		present, err := s.triggerExists(ctx, ix.table+"_insert")
		if err != nil {
			return err
		}
		if _, err := s.db.ExecContext(ctx, ix.schema()); err != nil {
			return fmt.Errorf("create %s: %w", ix.table, err)
		}
		if present {
			continue
		}
		rebuild := fmt.Sprintf("INSERT INTO %[1]s(%[1]s) VALUES ('rebuild')", ix.table)
		if _, err := s.db.ExecContext(ctx, rebuild); err != nil {
			return fmt.Errorf("rebuild %s: %w", ix.table, err)
		}
	}
	return nil
}

func (s *Store) dropFTSTriggers(ctx context.Context) error {
	for _, ix := range ftsIndexes {
		for _, name := range ix.triggerNames() {
			if _, err := s.db.ExecContext(ctx, "DROP TRIGGER IF EXISTS "+name); err != nil {
				return fmt.Errorf("drop trigger %s: %w", name, err)
			}
		}
	}
	return nil
}

func (s *Store) triggerExists(ctx context.Context, name string) (bool, error) {
	var found string
	err := s.db.QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type = 'trigger' AND name = ?", name,
	).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ─── Meta ────────────────────────────────────────────────────────────────────

// SetMeta upserts a product metadata key.
func (s *Store) SetMeta(ctx context.Context, key, value string) error {
	if _, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO meta(key, value) VALUES (?, ?)", key, value,
	); err != nil {
		return fmt.Errorf("product: set meta %q: %w", key, err)
	}
	return nil
}

// Meta returns all product metadata (title, vision, constraints).
func (s *Store) Meta(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key, COALESCE(value, '') FROM meta")
	if err != nil {
		return nil, fmt.Errorf("product: load meta: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}
