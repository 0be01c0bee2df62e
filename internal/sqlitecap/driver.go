// Package sqlitecap negotiates which embedded SQLite engine the toolkit runs on
// and whether that engine supports FTS5 full-text search.
//
// Several drivers may be linked into the binary. The Negotiator probes them in
// priority order and settles on one Capability for the lifetime of the process.
// Probing never fails: an engine without FTS5 still yields a usable Capability,
// and callers switch to substring (LIKE) matching.
package sqlitecap

import (
	"database/sql"
	"errors"
	"fmt"
	"slices"

	_ "modernc.org/sqlite"
)

// ErrDriverUnavailable is returned when a candidate's database/sql driver is not
// registered in this binary (for example the cgo driver in a CGO_ENABLED=0 build).
var ErrDriverUnavailable = errors.New("sqlite driver not registered")

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// Driver is one candidate embedded SQLite engine. The connect/execute/close
// surface is the *sql.DB returned by Open.
type Driver interface {
	// Label identifies the driver in diagnostics.
	Label() string
	// Open returns a handle for dsn (a file path or ":memory:").
	Open(dsn string) (*sql.DB, error)
}

// SQLDriver is a Driver backed by a database/sql registered driver name.
type SQLDriver struct {
	Name   string
	Source string
}

// Modernc is the pure-Go engine. It is always linked and is the default.
var Modernc = SQLDriver{Name: "sqlite", Source: "modernc"}

// Mattn is the cgo engine. It is only registered in cgo builds, and only has
// FTS5 when built with the sqlite_fts5 tag.
var Mattn = SQLDriver{Name: "sqlite3", Source: "mattn"}

// DefaultDrivers returns the candidates in probe order: default engine first.
func DefaultDrivers() []Driver {
	return []Driver{Modernc, Mattn}
}

// Label implements Driver.
func (d SQLDriver) Label() string { return d.Source }

// Open implements Driver.
func (d SQLDriver) Open(dsn string) (*sql.DB, error) {
	if !Registered(d.Name) {
		return nil, fmt.Errorf("%w: %q", ErrDriverUnavailable, d.Name)
	}
	return openDB(d.Name, dsn)
}

// Registered reports whether a database/sql driver with the given name is linked.
func Registered(name string) bool {
	return slices.Contains(sql.Drivers(), name)
}
