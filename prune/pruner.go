package prune

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/tembra/archive-vec/shadow"
)

// DefaultBatchSize bounds the number of identifiers per IN clause so
// lookups and deletes stay under SQLite's bound-parameter limit.
const DefaultBatchSize = 500

// Options controls a pruning pass.
type Options struct {
	// Execute performs the deletions. When false (the default) the pass
	// runs the read portions only and reports what it would remove.
	Execute bool

	// BatchSize is the maximum identifiers per IN clause. Zero means
	// DefaultBatchSize.
	BatchSize int
}

// TableCount reports rows deleted from one shadow table.
type TableCount struct {
	Table   string
	Deleted int64
}

// Result summarizes a pruning pass.
type Result struct {
	// TotalBefore and TotalAfter are live counts from the rowid registry.
	// In dry-run mode TotalAfter equals TotalBefore.
	TotalBefore int64
	TotalAfter  int64

	// Resolved is the number of row addresses matching the input ids.
	Resolved int

	// Deleted has one entry per shadow table when Execute was set.
	Deleted []TableCount

	// Executed records whether deletions were performed.
	Executed bool
}

// Removed returns the registry delta (zero for a dry run).
func (r *Result) Removed() int64 { return r.TotalBefore - r.TotalAfter }

// Pruner deletes resolved row addresses from every table in a shadow set.
type Pruner struct {
	db  *sql.DB
	set shadow.TableSet
	log *zap.Logger
}

// New builds a Pruner over db for the given shadow set.
func New(db *sql.DB, set shadow.TableSet, log *zap.Logger) *Pruner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pruner{db: db, set: set, log: log}
}

// Run prunes the entries whose record identifiers appear in ids. The pass
// either completes across all shadow tables or fails with nothing
// committed; a failure after some tables were touched rolls the
// transaction back so partial presence never becomes durable.
func (p *Pruner) Run(ctx context.Context, ids []string, opts Options) (*Result, error) {
	batch := opts.BatchSize
	if batch <= 0 {
		batch = DefaultBatchSize
	}
	res := &Result{}

	before, err := p.liveCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("prune: counting registry before: %w", err)
	}
	res.TotalBefore = before
	res.TotalAfter = before

	rowids, err := p.resolve(ctx, ids, batch)
	if err != nil {
		return nil, err
	}
	res.Resolved = len(rowids)
	p.log.Info("resolved row addresses",
		zap.Int("ids", len(ids)),
		zap.Int("rowids", len(rowids)))

	if !opts.Execute || len(rowids) == 0 {
		return res, nil
	}

	deleted, err := p.deleteAll(ctx, rowids, batch)
	if err != nil {
		return nil, err
	}
	res.Deleted = deleted
	res.Executed = true

	after, err := p.liveCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("prune: counting registry after: %w", err)
	}
	res.TotalAfter = after

	if err := p.verifyAbsent(ctx, rowids, batch); err != nil {
		return res, err
	}
	return res, nil
}

// resolve maps record identifiers to shadow row addresses via the key
// table, in batches. Batching is lossless: the union over batches equals
// one unbounded lookup. Identifiers with no index entry simply resolve to
// nothing, which is not an error.
func (p *Pruner) resolve(ctx context.Context, ids []string, batch int) ([]int64, error) {
	seen := make(map[int64]struct{})
	for _, chunk := range chunkStrings(ids, batch) {
		query := fmt.Sprintf(`SELECT rowid FROM %s WHERE %s IN (%s)`,
			p.set.KeyTable, shadow.KeyColumn, placeholders(len(chunk)))
		rows, err := p.db.QueryContext(ctx, query, asArgs(chunk)...)
		if err != nil {
			return nil, fmt.Errorf("prune: resolving ids in %s: %w", p.set.KeyTable, err)
		}
		for rows.Next() {
			var rowid int64
			if err := rows.Scan(&rowid); err != nil {
				rows.Close()
				return nil, err
			}
			seen[rowid] = struct{}{}
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}

	rowids := make([]int64, 0, len(seen))
	for rowid := range seen {
		rowids = append(rowids, rowid)
	}
	sort.Slice(rowids, func(i, j int) bool { return rowids[i] < rowids[j] })
	return rowids, nil
}

// deleteAll removes the row addresses from every shadow table inside one
// transaction and reports per-table counts.
func (p *Pruner) deleteAll(ctx context.Context, rowids []int64, batch int) ([]TableCount, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("prune: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var counts []TableCount
	for _, table := range p.set.Tables {
		var deleted int64
		for _, chunk := range chunkInt64s(rowids, batch) {
			query := fmt.Sprintf(`DELETE FROM %s WHERE rowid IN (%s)`,
				table, placeholders(len(chunk)))
			result, err := tx.ExecContext(ctx, query, asInt64Args(chunk)...)
			if err != nil {
				return nil, fmt.Errorf("prune: deleting from %s: %w", table, err)
			}
			n, err := result.RowsAffected()
			if err != nil {
				return nil, err
			}
			deleted += n
		}
		counts = append(counts, TableCount{Table: table, Deleted: deleted})
		p.log.Info("shadow table pruned",
			zap.String("table", table),
			zap.Int64("deleted", deleted))
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("prune: commit: %w", err)
	}
	return counts, nil
}

// verifyAbsent re-checks that none of the pruned row addresses survive in
// any shadow table. Registry counts alone cannot catch a partial delete,
// since the chunked tables hold different cardinalities.
func (p *Pruner) verifyAbsent(ctx context.Context, rowids []int64, batch int) error {
	for _, table := range p.set.Tables {
		for _, chunk := range chunkInt64s(rowids, batch) {
			query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE rowid IN (%s)`,
				table, placeholders(len(chunk)))
			var n int64
			if err := p.db.QueryRowContext(ctx, query, asInt64Args(chunk)...).Scan(&n); err != nil {
				return fmt.Errorf("prune: verifying %s: %w", table, err)
			}
			if n != 0 {
				return fmt.Errorf("prune: %d pruned row addresses still present in %s", n, table)
			}
		}
	}
	return nil
}

func (p *Pruner) liveCount(ctx context.Context) (int64, error) {
	var n int64
	err := p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+p.set.Registry).Scan(&n)
	return n, err
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func chunkStrings(in []string, size int) [][]string {
	var out [][]string
	for i := 0; i < len(in); i += size {
		end := i + size
		if end > len(in) {
			end = len(in)
		}
		out = append(out, in[i:end])
	}
	return out
}

func chunkInt64s(in []int64, size int) [][]int64 {
	var out [][]int64
	for i := 0; i < len(in); i += size {
		end := i + size
		if end > len(in) {
			end = len(in)
		}
		out = append(out, in[i:end])
	}
	return out
}

func asArgs(in []string) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

func asInt64Args(in []int64) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
