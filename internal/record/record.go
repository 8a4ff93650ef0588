// Package record defines the catalog's file record value type shared by the
// walker, store, tabular import/export, and the engine.
package record

import (
	"crypto/sha1"
	"encoding/hex"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
)

// Origin marks where a record entered the catalog.
type Origin string

const (
	// OriginExisting tags records loaded from a prior catalog (spreadsheet
	// import or a persisted store).
	OriginExisting Origin = "existing"
	// OriginNew tags records discovered by the current walk.
	OriginNew Origin = "new"
)

// Extra is one opaque attribute carried through from an imported source.
// Extras are never interpreted; they survive merge and export verbatim, in
// the order the source presented them.
type Extra struct {
	Name  string
	Value string
}

// Record describes one cataloged file. A single value type covers all three
// construction paths (walk, spreadsheet row, store row); Origin distinguishes
// prior state from fresh discoveries.
type Record struct {
	Path          string // absolute path
	RelPath       string // relative to the session base directory
	Name          string
	Extension     string
	Size          int64
	SizeKnown     bool
	Checksum      string // lowercase hex; empty means unknown
	HashAlgorithm string // algorithm that produced Checksum; empty when unknown
	Duplicate     bool
	Origin        Origin
	Extras        []Extra
}

// FromWalk builds a New-origin record for a path discovered during the walk.
// Size and checksum are filled in later by identity resolution.
func FromWalk(path, baseDir string) *Record {
	name := filepath.Base(path)
	return &Record{
		Path:      path,
		RelPath:   relativeTo(path, baseDir),
		Name:      name,
		Extension: filepath.Ext(name),
		Origin:    OriginNew,
	}
}

// FromImportRow builds an Existing-origin record from a spreadsheet row.
// relPath may be empty, in which case it is computed against baseDir. The
// imported checksum is trusted without recomputation.
func FromImportRow(path, relPath, baseDir string, extras []Extra) *Record {
	if strings.TrimSpace(relPath) == "" {
		relPath = relativeTo(path, baseDir)
	}
	name := filepath.Base(path)
	return &Record{
		Path:      path,
		RelPath:   relPath,
		Name:      name,
		Extension: filepath.Ext(name),
		Origin:    OriginExisting,
		Extras:    extras,
	}
}

// FromStoreRow builds an Existing-origin record from a persisted store row.
// The absolute path is reconstructed from the owning session's base directory
// and the stored relative path; the stored checksum is trusted as-is.
func FromStoreRow(baseDir, relPath, name, extension string) *Record {
	return &Record{
		Path:      filepath.Join(baseDir, relPath),
		RelPath:   relPath,
		Name:      name,
		Extension: extension,
		Origin:    OriginExisting,
	}
}

// SetIdentity records the resolved size and checksum.
func (r *Record) SetIdentity(size int64, checksum, algorithm string) {
	r.Size = size
	r.SizeKnown = true
	r.Checksum = checksum
	r.HashAlgorithm = algorithm
}

// SetSize records the size of a file whose contents were never hashed.
func (r *Record) SetSize(size int64) {
	r.Size = size
	r.SizeKnown = true
}

// Key derives the record's stable identity: hex(SHA-1(path + checksum)).
// The same path with different content yields a different key, and the same
// content at a different path yields a different key. An unknown checksum
// participates as the empty string, so an unidentified file still has a key
// that is stable for its path.
func (r *Record) Key() string {
	h := sha1.New()
	h.Write([]byte(r.Path))
	h.Write([]byte(r.Checksum))
	return hex.EncodeToString(h.Sum(nil))
}

// HumanSize renders the size for presentation ("4.2 MiB"). Unknown sizes
// render as the empty string.
func (r *Record) HumanSize() string {
	if !r.SizeKnown {
		return ""
	}
	if r.Size < 0 {
		return ""
	}
	return humanize.IBytes(uint64(r.Size))
}

// Subdirs splits the relative path into its directory components, excluding
// the filename itself. A file directly under the base directory has none.
func (r *Record) Subdirs() []string {
	cleaned := filepath.Clean(r.RelPath)
	if cleaned == "." || cleaned == "" {
		return nil
	}
	parts := strings.Split(cleaned, string(filepath.Separator))
	if len(parts) <= 1 {
		return nil
	}
	return parts[:len(parts)-1]
}

// IdentityUnder returns the admission-index key for the configured equality
// mode: the derived key when content checking is on, the relative path when
// it is off.
func (r *Record) IdentityUnder(contentCheck bool) string {
	if contentCheck {
		return r.Key()
	}
	return r.RelPath
}

func relativeTo(path, baseDir string) string {
	if strings.TrimSpace(baseDir) == "" {
		return path
	}
	rel, err := filepath.Rel(baseDir, path)
	if err != nil {
		return path
	}
	return rel
}
