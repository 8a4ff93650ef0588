// Package engine orchestrates one cataloging run as a small state machine:
// open the store and persist the session, load prior records, walk the search
// directories, detect duplicates, flush, export.
//
// The engine owns the admitted record sequence for the duration of a run.
// Existing-origin records always precede New-origin ones, and New-origin
// records keep the walker's traversal order regardless of how many hashing
// workers are configured, so duplicate detection is reproducible. Per-file
// I/O failures never abort a run; they surface as aggregate skip counts in
// the final Summary.
package engine
