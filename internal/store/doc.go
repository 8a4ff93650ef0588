// Package store persists catalog sessions and file records in SQLite.
//
// A Store opened with Open holds an exclusive flock beside the database and
// is the single writer for a run: session row first, then file rows buffered
// in memory and flushed in transactional batches. OpenRead serves the
// read-only paths (merging a prior catalog, exporting, listing sessions).
//
// All callers are expected to drive a Store from one goroutine; the batching
// buffer is deliberately unsynchronized.
package store
