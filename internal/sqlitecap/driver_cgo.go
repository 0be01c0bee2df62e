//go:build cgo

package sqlitecap

import (
	// Registers the "sqlite3" driver. FTS5 is only compiled in with -tags sqlite_fts5;
	// the probe finds out at runtime.
	_ "github.com/mattn/go-sqlite3"
)
