package populate

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/tembra/archive-vec/vector"
)

// DefaultIndexTable is the vec0 virtual table mirroring description
// embeddings for similarity search.
const DefaultIndexTable = "vec_image_descriptions"

// Embedder turns text into a vector. *ollama.Client satisfies it.
type Embedder interface {
	Embed(ctx context.Context, model, input string) ([]float32, error)
}

// Options configures one backfill run.
type Options struct {
	// Model is recorded as provenance on every stored embedding.
	Model string

	// Dimensions is the expected vector length; a response with any other
	// length fails that item.
	Dimensions int

	// BatchSize bounds how many candidates one run processes. Zero means
	// all pending.
	BatchSize int

	// Delay is the pause between items, bounding the request rate against
	// the embedding service. Zero means 50ms.
	Delay time.Duration

	// IndexTable overrides DefaultIndexTable (used by tests).
	IndexTable string
}

func (o Options) withDefaults() Options {
	if o.Delay <= 0 {
		o.Delay = 50 * time.Millisecond
	}
	if o.IndexTable == "" {
		o.IndexTable = DefaultIndexTable
	}
	return o
}

// Summary reports the outcome of a run.
type Summary struct {
	// Candidates is the pending count the selection query returned.
	Candidates int

	// Processed and Errors partition the candidates that were attempted.
	Processed int
	Errors    int

	// Total is the embedding count in the store after the run.
	Total int64

	// IndexAvailable records whether the vec0 table existed; when false
	// the run was relational-only.
	IndexAvailable bool
}

// Populator backfills embeddings for image descriptions.
type Populator struct {
	db       *sql.DB
	embedder Embedder
	log      *zap.Logger
}

// New builds a Populator. The caller is expected to have run the service
// probe already; Run does not re-check the model.
func New(db *sql.DB, embedder Embedder, log *zap.Logger) *Populator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Populator{db: db, embedder: embedder, log: log}
}

// Run processes pending descriptions sequentially. A failure on one
// candidate is logged, counted, and skipped; only run-level failures
// (selection query, schema) abort.
func (p *Populator) Run(ctx context.Context, opts Options) (*Summary, error) {
	opts = opts.withDefaults()

	if err := vector.EnsureEmbeddingSchema(p.db); err != nil {
		return nil, fmt.Errorf("populate: ensuring embedding schema: %w", err)
	}

	indexAvailable, err := p.indexAvailable(ctx, opts.IndexTable)
	if err != nil {
		return nil, err
	}
	if !indexAvailable {
		p.log.Warn("vec0 index table not found; embeddings will not be searchable until the archive app provisions it",
			zap.String("table", opts.IndexTable))
	}

	pending, err := p.pending(ctx, opts.BatchSize)
	if err != nil {
		return nil, fmt.Errorf("populate: selecting pending descriptions: %w", err)
	}

	summary := &Summary{
		Candidates:     len(pending),
		IndexAvailable: indexAvailable,
	}
	p.log.Info("backfill starting",
		zap.Int("pending", len(pending)),
		zap.String("model", opts.Model),
		zap.Int("dimensions", opts.Dimensions))

	limiter := rate.NewLimiter(rate.Every(opts.Delay), 1)
	for i, desc := range pending {
		if i > 0 {
			if err := limiter.Wait(ctx); err != nil {
				return summary, err
			}
		}
		if err := p.processOne(ctx, desc, opts, indexAvailable); err != nil {
			summary.Errors++
			p.log.Error("candidate failed",
				zap.String("analysis_id", desc.AnalysisID),
				zap.Error(err))
			continue
		}
		summary.Processed++
	}

	if err := p.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM image_description_embeddings`).Scan(&summary.Total); err != nil {
		return summary, fmt.Errorf("populate: counting embeddings: %w", err)
	}
	p.log.Info("backfill finished",
		zap.Int("processed", summary.Processed),
		zap.Int("errors", summary.Errors),
		zap.Int64("total", summary.Total))
	return summary, nil
}

// pending selects descriptions with non-empty text and no embedding. The
// left join filtered on the NULL embedding id is the resume point: already
// embedded rows never reappear.
func (p *Populator) pending(ctx context.Context, limit int) ([]vector.Description, error) {
	query := `
        SELECT ia.id, ia.description, ia.source
        FROM image_analysis ia
        LEFT JOIN image_description_embeddings ide ON ide.image_analysis_id = ia.id
        WHERE ia.description IS NOT NULL
          AND ia.description != ''
          AND ide.id IS NULL
        ORDER BY ia.id`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []vector.Description
	for rows.Next() {
		var d vector.Description
		if err := rows.Scan(&d.AnalysisID, &d.Text, &d.Source); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// processOne embeds a single description and commits it before returning,
// mirroring into the vec0 table when available. Any failure rolls the
// whole item back.
func (p *Populator) processOne(ctx context.Context, desc vector.Description, opts Options, indexAvailable bool) error {
	vec, err := p.embedder.Embed(ctx, opts.Model, desc.Text)
	if err != nil {
		return err
	}
	if len(vec) != opts.Dimensions {
		return fmt.Errorf("expected %d-dim embedding, got %d", opts.Dimensions, len(vec))
	}

	blob, err := vector.EncodeEmbedding(vec)
	if err != nil {
		return err
	}
	embedID := uuid.NewString()
	createdAt := float64(time.Now().UnixNano()) / float64(time.Second)

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
        INSERT INTO image_description_embeddings
        (id, image_analysis_id, text, embedding, model, dimensions, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)`,
		embedID, desc.AnalysisID, desc.Text, blob, opts.Model, opts.Dimensions, createdAt)
	if err != nil {
		return fmt.Errorf("inserting embedding row: %w", err)
	}

	if indexAvailable {
		_, err = tx.ExecContext(ctx, fmt.Sprintf(`
            INSERT INTO %s (id, image_analysis_id, source, embedding)
            VALUES (?, ?, ?, ?)`, opts.IndexTable),
			embedID, desc.AnalysisID, desc.Source, blob)
		if err != nil {
			return fmt.Errorf("mirroring into %s: %w", opts.IndexTable, err)
		}
	}

	return tx.Commit()
}

// indexAvailable probes sqlite_master once per run instead of matching
// "no such table" errors on every insert.
func (p *Populator) indexAvailable(ctx context.Context, table string) (bool, error) {
	var n int
	err := p.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type IN ('table','view') AND name = ?`,
		table).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("populate: probing for index table: %w", err)
	}
	return n > 0, nil
}
