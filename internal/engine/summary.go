package engine

import (
	"time"

	"docket/internal/identity"
	"docket/internal/walker"
)

// Summary aggregates what one run did. Skip counts are the only place
// per-file failures surface; nothing is silently discarded.
type Summary struct {
	SessionID string

	// Existing counts records admitted from prior catalogs; New counts
	// records the walk discovered. AlreadyKnown counts candidates that
	// matched an admitted record and were not re-admitted.
	Existing     int
	New          int
	AlreadyKnown int

	// Duplicates is the number of records marked by duplicate detection.
	// Rehashed counts prior records whose checksums were recomputed under
	// the rehash mismatch policy.
	Duplicates int
	Rehashed   int

	Skips identity.SkipStats
	Walk  walker.Stats

	// Persisted is the store's total row count after the final flush.
	Persisted int

	// Exported holds the workbook path when an export was written.
	Exported string

	Elapsed time.Duration
}

// Total returns the size of the admitted record sequence.
func (s *Summary) Total() int {
	return s.Existing + s.New
}
