package engine

import (
	"database/sql"
	"fmt"
	"net/url"

	_ "modernc.org/sqlite" // register pure-Go SQLite driver
)

// Open opens a SQLite database using the modernc.org/sqlite driver.
//
// For file-based databases, pass a path like "./archive.db". For in-memory
// databases, pass ":memory:". Every connection gets a 5s busy timeout and
// foreign keys enabled; the maintenance tools assume a single active writer
// and the busy timeout covers readers (the Electron archive app) holding
// short locks.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", withPragmas(dsn))
	if err != nil {
		return nil, err
	}
	// One connection: the tools are strictly sequential and SQLite
	// write transactions do not benefit from a pool.
	db.SetMaxOpenConns(1)
	return db, nil
}

// withPragmas appends the per-connection pragmas to the DSN so every
// connection opened from the pool carries them.
func withPragmas(dsn string) string {
	pragmas := url.Values{}
	pragmas.Add("_pragma", "busy_timeout(5000)")
	pragmas.Add("_pragma", "foreign_keys(1)")
	sep := "?"
	if u, err := url.Parse(dsn); err == nil && u.RawQuery != "" {
		sep = "&"
	}
	return fmt.Sprintf("%s%s%s", dsn, sep, pragmas.Encode())
}
