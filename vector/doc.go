// Package vector holds the persistence primitives shared by the
// maintenance tools: the float32 BLOB codec used by both the relational
// embedding table and the vec0 index, the relational schema for description
// embeddings, and the row models read and written by the populate package.
package vector
