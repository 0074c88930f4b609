package vision

import (
	"context"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/tembra/archive-vec/ollama"
)

// analysisConfidence is the fixed confidence recorded for model output;
// the models give no calibrated score of their own.
const analysisConfidence = 0.75

// analysisSchema holds image-analysis records keyed by file path.
const analysisSchema = `
CREATE TABLE IF NOT EXISTS image_analysis (
    id TEXT PRIMARY KEY,
    file_path TEXT NOT NULL UNIQUE,
    source TEXT NOT NULL,
    description TEXT,
    categories TEXT,
    objects TEXT,
    scene TEXT,
    mood TEXT,
    model_used TEXT,
    confidence REAL,
    processing_time_ms INTEGER,
    analyzed_at REAL NOT NULL,
    updated_at REAL NOT NULL
);
`

// Generator is the vision-model seam. *ollama.Client satisfies it.
type Generator interface {
	Generate(ctx context.Context, req ollama.GenerateRequest) (string, error)
}

// Options configures one analysis run.
type Options struct {
	// Root is the archive directory to scan for images.
	Root string

	// Model is the resolved (vetted, installed) vision model; callers run
	// the service probe first.
	Model string

	// MaxImages bounds the run; zero means all unanalyzed images.
	MaxImages int

	// Delay is the pause between images. Zero means 500ms.
	Delay time.Duration

	// Temperature for the generate call. Zero means 0.3.
	Temperature float64
}

func (o Options) withDefaults() Options {
	if o.Delay <= 0 {
		o.Delay = 500 * time.Millisecond
	}
	if o.Temperature <= 0 {
		o.Temperature = 0.3
	}
	return o
}

// Summary reports an analysis run.
type Summary struct {
	Unanalyzed int
	Processed  int
	Errors     int

	// Total is the image_analysis row count after the run.
	Total int64
}

// Analyzer runs the vision model over unanalyzed archive images.
type Analyzer struct {
	db     *sql.DB
	client Generator
	log    *zap.Logger
}

// New builds an Analyzer.
func New(db *sql.DB, client Generator, log *zap.Logger) *Analyzer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Analyzer{db: db, client: client, log: log}
}

// Run scans for unanalyzed images and processes them sequentially. A
// failure on one image is logged, counted, and skipped.
func (a *Analyzer) Run(ctx context.Context, opts Options) (*Summary, error) {
	opts = opts.withDefaults()

	if _, err := a.db.ExecContext(ctx, analysisSchema); err != nil {
		return nil, fmt.Errorf("vision: ensuring analysis schema: %w", err)
	}

	analyzed, err := a.analyzedPaths(ctx)
	if err != nil {
		return nil, fmt.Errorf("vision: loading analyzed paths: %w", err)
	}
	a.log.Info("scanning for unanalyzed images",
		zap.String("root", opts.Root),
		zap.Int("already_analyzed", len(analyzed)))

	candidates, err := FindUnanalyzed(opts.Root, analyzed, opts.MaxImages)
	if err != nil {
		return nil, fmt.Errorf("vision: scanning %s: %w", opts.Root, err)
	}

	summary := &Summary{Unanalyzed: len(candidates)}
	limiter := rate.NewLimiter(rate.Every(opts.Delay), 1)
	for i, path := range candidates {
		if i > 0 {
			if err := limiter.Wait(ctx); err != nil {
				return summary, err
			}
		}
		if err := a.processOne(ctx, path, opts); err != nil {
			summary.Errors++
			a.log.Error("image failed",
				zap.String("path", path),
				zap.Error(err))
			continue
		}
		summary.Processed++
	}

	if err := a.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM image_analysis`).Scan(&summary.Total); err != nil {
		return summary, fmt.Errorf("vision: counting analyses: %w", err)
	}
	a.log.Info("analysis finished",
		zap.Int("processed", summary.Processed),
		zap.Int("errors", summary.Errors),
		zap.Int64("total", summary.Total))
	return summary, nil
}

func (a *Analyzer) processOne(ctx context.Context, path string, opts Options) error {
	img, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	start := time.Now()
	raw, err := a.client.Generate(ctx, ollama.GenerateRequest{
		Model:       opts.Model,
		Prompt:      AnalysisPrompt,
		Images:      []string{base64.StdEncoding.EncodeToString(img)},
		Temperature: opts.Temperature,
	})
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	analysis := ParseAnalysis(raw)
	a.log.Debug("image analyzed",
		zap.String("path", path),
		zap.String("scene", analysis.Scene),
		zap.String("mood", analysis.Mood),
		zap.Duration("elapsed", elapsed))

	return a.save(ctx, path, analysis, opts.Model, elapsed)
}

// save upserts the analysis keyed by file path. Re-analyzing a path
// replaces the previous record rather than duplicating it.
func (a *Analyzer) save(ctx context.Context, path string, analysis Analysis, model string, elapsed time.Duration) error {
	categories, err := json.Marshal(analysis.Categories)
	if err != nil {
		return err
	}
	objects, err := json.Marshal(analysis.Objects)
	if err != nil {
		return err
	}
	now := float64(time.Now().UnixNano()) / float64(time.Second)

	_, err = a.db.ExecContext(ctx, `
        INSERT OR REPLACE INTO image_analysis
        (id, file_path, source, description, categories, objects, scene, mood,
         model_used, confidence, processing_time_ms, analyzed_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), path, sourceForPath(path), analysis.Description,
		string(categories), string(objects), analysis.Scene, analysis.Mood,
		model, analysisConfidence, elapsed.Milliseconds(), now, now)
	return err
}

func (a *Analyzer) analyzedPaths(ctx context.Context) (map[string]struct{}, error) {
	rows, err := a.db.QueryContext(ctx, `SELECT file_path FROM image_analysis`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	paths := make(map[string]struct{})
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths[p] = struct{}{}
	}
	return paths, rows.Err()
}

// sourceForPath tags the record's origin from its location in the archive.
func sourceForPath(path string) string {
	if strings.Contains(strings.ToLower(path), "facebook") {
		return "facebook"
	}
	return "chatgpt"
}
