package engine

import "errors"

var (
	// ErrConfig rejects a run before any work happens: missing search
	// directories, a declared import that does not exist, or an export
	// destination that cannot be written.
	ErrConfig = errors.New("invalid run configuration")

	// ErrHashMismatch aborts a load when prior records carry checksums from
	// a different algorithm than the run is configured with.
	ErrHashMismatch = errors.New("checksum algorithm mismatch")
)
