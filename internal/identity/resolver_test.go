package identity_test

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"hash"
	"path/filepath"
	"testing"

	"docket/internal/identity"
	"docket/internal/testsupport"
)

func TestResolveComputesSizeAndChecksum(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.txt")
	contents := "hello catalog"
	testsupport.WriteFile(t, path, contents)

	r, err := identity.NewResolver("sha1", 65536)
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	id, err := r.Resolve(path)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if id.Size != int64(len(contents)) {
		t.Errorf("size = %d, want %d", id.Size, len(contents))
	}
	sum := sha1.Sum([]byte(contents))
	if id.Checksum != hex.EncodeToString(sum[:]) {
		t.Errorf("checksum = %q", id.Checksum)
	}
	if id.Algorithm != "sha1" {
		t.Errorf("algorithm = %q, want sha1", id.Algorithm)
	}
}

func TestResolveSupportsAllAlgorithms(t *testing.T) {
	contents := "algorithm matrix"
	path := filepath.Join(t.TempDir(), "file.bin")
	testsupport.WriteFile(t, path, contents)

	cases := []struct {
		name   string
		hasher hash.Hash
	}{
		{"sha1", sha1.New()},
		{"sha256", sha256.New()},
		{"sha512", sha512.New()},
		{"md5", md5.New()},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, err := identity.NewResolver(tc.name, 8)
			if err != nil {
				t.Fatalf("NewResolver: %v", err)
			}
			id, err := r.Resolve(path)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			tc.hasher.Write([]byte(contents))
			if want := hex.EncodeToString(tc.hasher.Sum(nil)); id.Checksum != want {
				t.Errorf("checksum = %q, want %q", id.Checksum, want)
			}
		})
	}
}

func TestResolveSmallBufferStreamsWholeFile(t *testing.T) {
	contents := "a file noticeably longer than the four byte read buffer"
	path := filepath.Join(t.TempDir(), "long.txt")
	testsupport.WriteFile(t, path, contents)

	r, err := identity.NewResolver("sha1", 4)
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	id, err := r.Resolve(path)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	sum := sha1.Sum([]byte(contents))
	if id.Checksum != hex.EncodeToString(sum[:]) {
		t.Error("chunked read produced a different checksum")
	}
	if id.Size != int64(len(contents)) {
		t.Errorf("size = %d, want %d", id.Size, len(contents))
	}
}

func TestResolveMissingFileIsSkip(t *testing.T) {
	r, err := identity.NewResolver("sha1", 1024)
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	_, err = r.Resolve(filepath.Join(t.TempDir(), "absent.txt"))

	var skip *identity.SkipError
	if !errors.As(err, &skip) {
		t.Fatalf("err = %v, want SkipError", err)
	}
	if skip.Reason != identity.ReasonNotFound {
		t.Errorf("reason = %q, want not_found", skip.Reason)
	}
}

func TestNewResolverValidation(t *testing.T) {
	if _, err := identity.NewResolver("crc32", 1024); err == nil {
		t.Error("expected unsupported algorithm error")
	}
	if _, err := identity.NewResolver("sha1", 0); err == nil {
		t.Error("expected buffer size error")
	}

	r, err := identity.NewResolver("", 1024)
	if err != nil {
		t.Fatalf("empty algorithm: %v", err)
	}
	if r.Algorithm() != "sha1" {
		t.Errorf("default algorithm = %q, want sha1", r.Algorithm())
	}

	upper, err := identity.NewResolver("SHA256", 1024)
	if err != nil {
		t.Fatalf("uppercase algorithm: %v", err)
	}
	if upper.Algorithm() != "sha256" {
		t.Errorf("algorithm = %q, want sha256", upper.Algorithm())
	}
}

func TestStatRejectsDirectories(t *testing.T) {
	r, err := identity.NewResolver("sha1", 1024)
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}

	dir := t.TempDir()
	_, err = r.Stat(dir)
	var skip *identity.SkipError
	if !errors.As(err, &skip) {
		t.Fatalf("err = %v, want SkipError", err)
	}

	path := filepath.Join(dir, "sized.txt")
	testsupport.WriteFile(t, path, "12345")
	size, err := r.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if size != 5 {
		t.Errorf("size = %d, want 5", size)
	}
}

func TestSkipStatsAggregation(t *testing.T) {
	var stats identity.SkipStats
	stats.Add(identity.ReasonPermission)
	stats.Add(identity.ReasonNotFound)
	stats.Add(identity.ReasonNotFound)
	stats.Add(identity.ReasonIO)

	if stats.Permission != 1 || stats.NotFound != 2 || stats.IO != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.Total() != 4 {
		t.Errorf("total = %d, want 4", stats.Total())
	}

	var other identity.SkipStats
	other.Add(identity.ReasonIO)
	stats.Merge(other)
	if stats.Total() != 5 || stats.IO != 2 {
		t.Errorf("merged = %+v", stats)
	}
}
