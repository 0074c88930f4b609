package vector

import "time"

// Description is one image-analysis record eligible for embedding: the
// textual description produced by the vision pipeline plus the source tag
// carried into the vec0 index metadata. Rows are created by the analysis
// collaborator (or the vision package) and are read-only here.
type Description struct {
	// AnalysisID is the owning image_analysis row id.
	AnalysisID string

	// Text is the description to embed. The pending-selection query
	// guarantees it is non-empty.
	Text string

	// Source tags the record's origin (e.g. "chatgpt", "facebook").
	Source string
}

// Embedding is one stored vector with its provenance. At most one current
// Embedding exists per Description; the populate package enforces this via
// its pending-selection query, not a uniqueness constraint, so writers must
// not bypass that check.
type Embedding struct {
	ID         string
	AnalysisID string
	Text       string
	Vector     []float32
	Model      string
	Dimensions int
	CreatedAt  time.Time
}
