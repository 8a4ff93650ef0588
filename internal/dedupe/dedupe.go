// Package dedupe flags records whose content was seen earlier in the catalog.
package dedupe

import "docket/internal/record"

// Mark walks records in the order given (existing-origin entries first, then
// newly discovered ones in traversal order) and sets Duplicate on every record
// whose checksum appeared on an earlier record. The first holder of each
// checksum stays non-duplicate. Records without a checksum never match and
// are never marked.
//
// Ordering is the caller's contract: pass a differently ordered slice and the
// canonical holder changes with it.
func Mark(records []*record.Record) int {
	seen := make(map[string]struct{}, len(records))
	marked := 0
	for _, rec := range records {
		if rec.Checksum == "" {
			rec.Duplicate = false
			continue
		}
		if _, dup := seen[rec.Checksum]; dup {
			rec.Duplicate = true
			marked++
			continue
		}
		rec.Duplicate = false
		seen[rec.Checksum] = struct{}{}
	}
	return marked
}
