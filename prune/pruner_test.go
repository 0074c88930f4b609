package prune

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tembra/archive-vec/engine"
	"github.com/tembra/archive-vec/shadow"
)

func newShadowDB(t *testing.T) (*sql.DB, shadow.TableSet) {
	t.Helper()
	db, err := engine.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	set := shadow.Messages()
	for _, stmt := range set.DDL() {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
	return db, set
}

// seedEntry writes one index entry at the given row address into every
// shadow table, with the record id in the key table.
func seedEntry(t *testing.T, db *sql.DB, set shadow.TableSet, rowid int64, recordID string) {
	t.Helper()
	for _, table := range set.Tables {
		var err error
		switch table {
		case set.Registry:
			_, err = db.Exec(
				fmt.Sprintf(`INSERT INTO %s(rowid, id, chunk_id, chunk_offset) VALUES(?, ?, 1, ?)`, table),
				rowid, []byte(recordID), rowid)
		case set.Index + "_chunks":
			_, err = db.Exec(
				fmt.Sprintf(`INSERT INTO %s(chunk_id, size, validity, rowids) VALUES(?, 8, X'FF', X'00')`, table),
				rowid)
		case set.Index + "_vector_chunks00":
			_, err = db.Exec(
				fmt.Sprintf(`INSERT INTO %s(rowid, vectors) VALUES(?, X'00000000')`, table),
				rowid)
		case set.KeyTable:
			_, err = db.Exec(
				fmt.Sprintf(`INSERT INTO %s(rowid, data) VALUES(?, ?)`, table),
				rowid, recordID)
		default:
			_, err = db.Exec(
				fmt.Sprintf(`INSERT INTO %s(rowid, data) VALUES(?, ?)`, table),
				rowid, "aux-"+recordID)
		}
		require.NoError(t, err, "seeding %s", table)
	}
}

func TestRun_DryRunIsDefault(t *testing.T) {
	db, set := newShadowDB(t)
	seedEntry(t, db, set, 7, "b")

	p := New(db, set, nil)
	res, err := p.Run(context.Background(), []string{"b"}, Options{})
	require.NoError(t, err)

	assert.False(t, res.Executed)
	assert.Equal(t, 1, res.Resolved)
	assert.Equal(t, int64(1), res.TotalBefore)
	assert.Equal(t, int64(1), res.TotalAfter)
	assert.Zero(t, res.Removed())

	// Nothing changed anywhere.
	for _, table := range set.Tables {
		var n int
		require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM `+table).Scan(&n))
		assert.Equal(t, 1, n, table)
	}
}

func TestRun_ExecuteRemovesFromEveryTable(t *testing.T) {
	db, set := newShadowDB(t)
	seedEntry(t, db, set, 3, "a")
	seedEntry(t, db, set, 7, "b")

	p := New(db, set, nil)
	res, err := p.Run(context.Background(), []string{"b"}, Options{Execute: true})
	require.NoError(t, err)

	assert.True(t, res.Executed)
	assert.Equal(t, 1, res.Resolved)
	assert.Equal(t, int64(2), res.TotalBefore)
	assert.Equal(t, int64(1), res.TotalAfter)
	assert.Equal(t, int64(1), res.Removed())

	require.Len(t, res.Deleted, len(set.Tables))
	for _, tc := range res.Deleted {
		assert.Equal(t, int64(1), tc.Deleted, tc.Table)
	}

	// Row address 7 is absent from all nine tables; address 3 survives.
	for _, table := range set.Tables {
		var n int
		require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM `+table+` WHERE rowid = 7`).Scan(&n))
		assert.Zero(t, n, table)
		require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM `+table+` WHERE rowid = 3`).Scan(&n))
		assert.Equal(t, 1, n, table)
	}
}

func TestRun_EmptyInputIsNotAnError(t *testing.T) {
	db, set := newShadowDB(t)
	seedEntry(t, db, set, 1, "a")

	p := New(db, set, nil)
	res, err := p.Run(context.Background(), nil, Options{Execute: true})
	require.NoError(t, err)
	assert.Zero(t, res.Resolved)
	assert.False(t, res.Executed)
	assert.Equal(t, int64(1), res.TotalAfter)
}

func TestRun_UnindexedIDsResolveToNothing(t *testing.T) {
	db, set := newShadowDB(t)
	seedEntry(t, db, set, 1, "a")

	p := New(db, set, nil)
	res, err := p.Run(context.Background(), []string{"never-embedded"}, Options{Execute: true})
	require.NoError(t, err)
	assert.Zero(t, res.Resolved)
	assert.Equal(t, int64(1), res.TotalBefore)
	assert.Equal(t, int64(1), res.TotalAfter)
}

func TestRun_BatchingIsLossless(t *testing.T) {
	db, set := newShadowDB(t)
	var ids []string
	for i := 1; i <= 7; i++ {
		id := fmt.Sprintf("msg-%d", i)
		seedEntry(t, db, set, int64(i*10), id)
		ids = append(ids, id)
	}

	// Batch size 2 forces four lookup batches; the union must equal one
	// unbounded lookup.
	p := New(db, set, nil)
	res, err := p.Run(context.Background(), ids, Options{Execute: true, BatchSize: 2})
	require.NoError(t, err)

	assert.Equal(t, 7, res.Resolved)
	assert.Equal(t, int64(7), res.TotalBefore)
	assert.Zero(t, res.TotalAfter)
}

func TestRun_DuplicateResolutionsCollapse(t *testing.T) {
	db, set := newShadowDB(t)
	seedEntry(t, db, set, 5, "dup")

	p := New(db, set, nil)
	// The same id supplied twice must not double-count.
	res, err := p.Run(context.Background(), []string{"dup", "dup"}, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Resolved)
}
