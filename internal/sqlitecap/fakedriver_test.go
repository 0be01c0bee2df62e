package sqlitecap

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"strings"
)

// fakeEngine is a database/sql driver that imitates SQLite builds with and
// without FTS5, without needing those builds on the test machine.
type fakeEngine struct {
	compileOptions []string
	fts5Module     bool
	openErr        error
}

var (
	fakeNoFTS = SQLDriver{Name: "fake-nofts", Source: "fake-nofts"}
	// compile options do not mention FTS5 but the module loads.
	fakeFTSModule = SQLDriver{Name: "fake-fts-module", Source: "fake-fts-module"}
	// compile options advertise FTS5; table creation would fail.
	fakeFTSPragma = SQLDriver{Name: "fake-fts-pragma", Source: "fake-fts-pragma"}
	fakeBroken    = SQLDriver{Name: "fake-broken", Source: "fake-broken"}
	fakeAbsent    = SQLDriver{Name: "fake-not-linked", Source: "fake-absent"}
)

func init() {
	sql.Register(fakeNoFTS.Name, &fakeEngine{compileOptions: []string{"THREADSAFE=1"}})
	sql.Register(fakeFTSModule.Name, &fakeEngine{compileOptions: []string{"THREADSAFE=1"}, fts5Module: true})
	sql.Register(fakeFTSPragma.Name, &fakeEngine{compileOptions: []string{"ENABLE_FTS5", "THREADSAFE=1"}})
	sql.Register(fakeBroken.Name, &fakeEngine{openErr: errors.New("unable to open database file")})
}

func (e *fakeEngine) Open(string) (driver.Conn, error) {
	if e.openErr != nil {
		return nil, e.openErr
	}
	return &fakeConn{engine: e}, nil
}

type fakeConn struct {
	engine *fakeEngine
}

func (c *fakeConn) Prepare(query string) (driver.Stmt, error) {
	return nil, fmt.Errorf("fake: prepare not supported: %q", query)
}

func (c *fakeConn) Close() error { return nil }

func (c *fakeConn) Begin() (driver.Tx, error) {
	return nil, errors.New("fake: transactions not supported")
}

func (c *fakeConn) ExecContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Result, error) {
	if strings.Contains(query, "USING fts5") && !c.engine.fts5Module {
		return nil, errors.New("no such module: fts5")
	}
	return driver.RowsAffected(0), nil
}

func (c *fakeConn) QueryContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Rows, error) {
	if strings.HasPrefix(query, "PRAGMA compile_options") {
		return &fakeRows{values: c.engine.compileOptions}, nil
	}
	return nil, fmt.Errorf("fake: unsupported query %q", query)
}

type fakeRows struct {
	values []string
	pos    int
}

func (r *fakeRows) Columns() []string { return []string{"compile_options"} }
func (r *fakeRows) Close() error      { return nil }

func (r *fakeRows) Next(dest []driver.Value) error {
	if r.pos >= len(r.values) {
		return io.EOF
	}
	dest[0] = r.values[r.pos]
	r.pos++
	return nil
}
