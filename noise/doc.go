// Package noise classifies archive messages that are unfit for semantic
// search: tool output, placeholders, error traces, content too short to
// carry meaning. The rule list is declarative; each rule is evaluated
// independently over the full message set and the classifier reports the
// union of matches together with per-rule counts for operator visibility.
// Classification is read-only; acting on the result is the prune package's
// job.
package noise
