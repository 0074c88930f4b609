// Package populate backfills description embeddings for image-analysis
// records that do not have one yet. The pending set is computed with a
// left join filtered on the missing embedding row, which doubles as the
// idempotency and resume mechanism: a rerun, or a run interrupted at any
// point, simply picks up the remaining records. Each candidate commits in
// its own transaction before the next one starts, so an external kill
// loses at most the in-flight item.
package populate
