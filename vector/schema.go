package vector

import "database/sql"

// embeddingSchema is the relational half of the description-embedding
// store. The vec0 index table (vec_image_descriptions) is provisioned by
// the archive app's migration and is deliberately not created here; the
// populate package degrades to relational-only writes when it is absent.
const embeddingSchema = `
CREATE TABLE IF NOT EXISTS image_description_embeddings (
    id TEXT PRIMARY KEY,
    image_analysis_id TEXT NOT NULL,
    text TEXT NOT NULL,
    embedding BLOB NOT NULL,
    model TEXT NOT NULL DEFAULT 'nomic-embed-text',
    dimensions INTEGER NOT NULL DEFAULT 768,
    created_at REAL NOT NULL,
    FOREIGN KEY (image_analysis_id) REFERENCES image_analysis(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_image_desc_embeddings_analysis
    ON image_description_embeddings(image_analysis_id);
`

// EnsureEmbeddingSchema creates the image_description_embeddings table and
// its lookup index if they do not already exist.
func EnsureEmbeddingSchema(db *sql.DB) error {
	_, err := db.Exec(embeddingSchema)
	return err
}
