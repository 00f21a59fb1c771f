// Package diag defines the diagnostic model shared by checks, the aggregator,
// the fix engine and the renderers.
//
// # Purpose
//
//   - Provide deterministic, serialisable records for findings produced by
//     checks: Diagnostic, Message and Edit.
//   - Offer Bag, a concurrency-safe collection with the report ordering
//     (path, offset, text) and end-of-run deduplication.
//
// # Scope
//
// Package diag performs no filtering, IO or formatting beyond the short
// one-line form used by golden tests. Filtering lives in internal/aggregate.
// Conflict resolution and application of edits live in internal/fix.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Check – name of the producing check; the name filter matches it.
//   - Severity – Warning or Error.
//   - Message – primary text plus an optional location (path, byte offset).
//   - Notes – secondary messages in emission order.
//   - Edits – byte-range replacements against the canonical file text.
//
// A Message carries a plain path and offset and never a handle into the
// producing session, so diagnostics outlive the FileSet that created them.
//
// # Edits
//
// Edit is a value type. Equality of all four fields is identity: the fix
// engine folds identical edits proposed by independent units into one before
// looking for overlaps.
package diag
