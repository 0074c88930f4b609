// Package vision backfills image-analysis records by running a vetted
// vision model over archive images that have not been analyzed yet. The
// model is asked for a strict JSON object; real models wrap it in fenced
// code blocks or return prose, so parsing degrades to a fallback record
// rather than failing the image. Results are upserted keyed by file path,
// which makes the scan naturally resumable.
package vision
