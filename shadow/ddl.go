package shadow

import "fmt"

// DDL returns CREATE TABLE statements that mirror the shadow layout the
// vec0 module provisions for this index. The statements are what the prune
// tests use to stand up a realistic store, and what an operator can run to
// pre-provision an index on a database the archive app has not migrated
// yet. Production mutation paths never create shadow tables implicitly.
func (ts TableSet) DDL() []string {
	var stmts []string
	for _, table := range ts.Tables {
		stmts = append(stmts, ts.tableDDL(table))
	}
	return stmts
}

func (ts TableSet) tableDDL(table string) string {
	switch table {
	case ts.Index + "_rowids":
		return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    rowid INTEGER PRIMARY KEY AUTOINCREMENT,
    id BLOB,
    chunk_id INTEGER,
    chunk_offset INTEGER
);`, table)
	case ts.Index + "_chunks":
		return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    chunk_id INTEGER PRIMARY KEY AUTOINCREMENT,
    size INTEGER NOT NULL,
    validity BLOB NOT NULL,
    rowids BLOB NOT NULL
);`, table)
	case ts.Index + "_vector_chunks00":
		return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    rowid INTEGER PRIMARY KEY,
    vectors BLOB NOT NULL
);`, table)
	default:
		// Metadata chunk and text tables share a rowid + data shape; the
		// text variant stores TEXT, the chunked variant BLOB.
		if ts.isMetadataText(table) {
			return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    rowid INTEGER PRIMARY KEY,
    %s TEXT
);`, table, KeyColumn)
		}
		return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    rowid INTEGER PRIMARY KEY,
    %s BLOB
);`, table, KeyColumn)
	}
}

func (ts TableSet) isMetadataText(table string) bool {
	prefix := ts.Index + "_metadatatext"
	return len(table) > len(prefix) && table[:len(prefix)] == prefix
}
