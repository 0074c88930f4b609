// Package shadow describes the derived ("shadow") tables that jointly
// implement one vec0 virtual index in SQLite. The descriptor is the single
// declarative source of truth for which tables make up an index, which of
// them is the live-row registry, and which metadata text column carries the
// foreign key back to the primary record; the prune and populate packages
// iterate the descriptor instead of hard-coding table names.
//
// The invariant the descriptor exists to protect: a row address is present
// in all of an index's shadow tables or in none of them. Partial presence
// is corruption.
package shadow
