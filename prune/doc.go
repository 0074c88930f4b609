// Package prune removes entries from a vec0 index's shadow tables by
// operating on them directly, which works without the vec extension loaded
// and is how junk embeddings are cleaned out of the archive.
//
// A pruning pass resolves record identifiers to internal row addresses via
// the index's metadata text key table, deletes those addresses from every
// shadow table inside one explicit transaction, and verifies the registry's
// live count afterwards. Dry-run is the default; only Options.Execute
// causes deletion.
package prune
