// Package engine provides helpers for opening the archive's SQLite
// database with the modernc.org/sqlite driver. It keeps a thin surface so
// the maintenance packages (noise, prune, populate, vision) share one
// driver configuration: a busy timeout that cooperates with the
// single-writer policy, and foreign keys enabled.
package engine
