// Package identity computes file sizes and content checksums with bounded
// memory, and classifies per-file I/O failures so callers can skip rather
// than abort.
package identity

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"io/fs"
	"os"
	"strings"
)

// SkipReason classifies why a single file could not be identified.
type SkipReason string

const (
	ReasonPermission SkipReason = "permission"
	ReasonNotFound   SkipReason = "not_found"
	ReasonIO         SkipReason = "io"
)

// SkipError reports a per-file failure that excludes the file from identity
// resolution but never aborts the run.
type SkipError struct {
	Path   string
	Reason SkipReason
	Err    error
}

func (e *SkipError) Error() string {
	return fmt.Sprintf("skip %s (%s): %v", e.Path, e.Reason, e.Err)
}

func (e *SkipError) Unwrap() error { return e.Err }

// Classify maps an I/O error onto a skip reason.
func Classify(err error) SkipReason {
	switch {
	case errors.Is(err, fs.ErrPermission):
		return ReasonPermission
	case errors.Is(err, fs.ErrNotExist):
		return ReasonNotFound
	default:
		return ReasonIO
	}
}

func newSkip(path string, err error) *SkipError {
	return &SkipError{Path: path, Reason: Classify(err), Err: err}
}

// SkipStats aggregates skip counts by reason.
type SkipStats struct {
	Permission int
	NotFound   int
	IO         int
}

// Add increments the count for one reason.
func (s *SkipStats) Add(reason SkipReason) {
	switch reason {
	case ReasonPermission:
		s.Permission++
	case ReasonNotFound:
		s.NotFound++
	default:
		s.IO++
	}
}

// Merge folds other into s.
func (s *SkipStats) Merge(other SkipStats) {
	s.Permission += other.Permission
	s.NotFound += other.NotFound
	s.IO += other.IO
}

// Total returns the combined skip count.
func (s SkipStats) Total() int {
	return s.Permission + s.NotFound + s.IO
}

// Identity is the resolved (size, checksum) pair for one file.
type Identity struct {
	Size      int64
	Checksum  string
	Algorithm string
}

// Algorithms returns the supported hash algorithm names.
func Algorithms() []string {
	return []string{"sha1", "sha256", "sha512", "md5"}
}

func newHasher(algorithm string) (func() hash.Hash, error) {
	switch strings.ToLower(strings.TrimSpace(algorithm)) {
	case "sha1", "":
		return sha1.New, nil
	case "sha256":
		return sha256.New, nil
	case "sha512":
		return sha512.New, nil
	case "md5":
		return md5.New, nil
	default:
		return nil, fmt.Errorf("unsupported hash algorithm %q (supported: %s)", algorithm, strings.Join(Algorithms(), ", "))
	}
}

// Resolver streams files through a named hash in fixed-size chunks.
type Resolver struct {
	algorithm  string
	bufferSize int
	newHash    func() hash.Hash
}

// NewResolver validates the algorithm name and chunk size.
func NewResolver(algorithm string, bufferSize int) (*Resolver, error) {
	if bufferSize <= 0 {
		return nil, fmt.Errorf("hash buffer size must be positive, got %d", bufferSize)
	}
	name := strings.ToLower(strings.TrimSpace(algorithm))
	if name == "" {
		name = "sha1"
	}
	factory, err := newHasher(name)
	if err != nil {
		return nil, err
	}
	return &Resolver{algorithm: name, bufferSize: bufferSize, newHash: factory}, nil
}

// Algorithm returns the configured hash algorithm name.
func (r *Resolver) Algorithm() string { return r.algorithm }

// Resolve reads the file chunk by chunk and returns its size and checksum.
// Failures come back as *SkipError; the caller decides whether the file stays
// in the catalog without a checksum or is dropped.
func (r *Resolver) Resolve(path string) (Identity, error) {
	f, err := os.Open(path)
	if err != nil {
		return Identity{}, newSkip(path, err)
	}
	defer f.Close()

	// Explicit read loop rather than io.Copy: os.File implements WriterTo,
	// which would silently ignore the configured buffer size.
	h := r.newHash()
	buf := make([]byte, r.bufferSize)
	var size int64
	for {
		n, readErr := f.Read(buf)
		if n > 0 {
			size += int64(n)
			h.Write(buf[:n])
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return Identity{}, newSkip(path, readErr)
		}
	}
	return Identity{
		Size:      size,
		Checksum:  hex.EncodeToString(h.Sum(nil)),
		Algorithm: r.algorithm,
	}, nil
}

// Stat returns the file size without reading its contents. Used when content
// checking is disabled and no checksum is wanted.
func (r *Resolver) Stat(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, newSkip(path, err)
	}
	if info.IsDir() {
		return 0, &SkipError{Path: path, Reason: ReasonIO, Err: errors.New("is a directory")}
	}
	return info.Size(), nil
}
