package record_test

import (
	"path/filepath"
	"testing"

	"docket/internal/record"
)

func TestFromWalkDerivesFields(t *testing.T) {
	rec := record.FromWalk("/data/docs/reports/q1.pdf", "/data/docs")

	if rec.RelPath != filepath.Join("reports", "q1.pdf") {
		t.Errorf("relative path = %q", rec.RelPath)
	}
	if rec.Name != "q1.pdf" {
		t.Errorf("name = %q", rec.Name)
	}
	if rec.Extension != ".pdf" {
		t.Errorf("extension = %q", rec.Extension)
	}
	if rec.Origin != record.OriginNew {
		t.Errorf("origin = %q, want new", rec.Origin)
	}
	if rec.SizeKnown || rec.Checksum != "" {
		t.Error("identity should start unresolved")
	}
}

func TestKeyDependsOnPathAndChecksum(t *testing.T) {
	a := record.FromWalk("/data/a.txt", "/data")
	a.SetIdentity(3, "abc", "sha1")

	same := record.FromWalk("/data/a.txt", "/data")
	same.SetIdentity(3, "abc", "sha1")
	if a.Key() != same.Key() {
		t.Error("identical path and checksum must share a key")
	}

	changed := record.FromWalk("/data/a.txt", "/data")
	changed.SetIdentity(3, "def", "sha1")
	if a.Key() == changed.Key() {
		t.Error("changed content at the same path must change the key")
	}

	moved := record.FromWalk("/data/b.txt", "/data")
	moved.SetIdentity(3, "abc", "sha1")
	if a.Key() == moved.Key() {
		t.Error("same content at a different path must change the key")
	}

	unknown := record.FromWalk("/data/a.txt", "/data")
	if unknown.Key() == "" || unknown.Key() != record.FromWalk("/data/a.txt", "/data").Key() {
		t.Error("unknown checksum still yields a stable key for the path")
	}
}

func TestHumanSize(t *testing.T) {
	rec := record.FromWalk("/data/a.bin", "/data")
	if got := rec.HumanSize(); got != "" {
		t.Errorf("unknown size rendered %q", got)
	}

	rec.SetSize(4)
	if got := rec.HumanSize(); got != "4 B" {
		t.Errorf("4 bytes rendered %q", got)
	}

	rec.SetSize(2048)
	if got := rec.HumanSize(); got != "2.0 KiB" {
		t.Errorf("2048 bytes rendered %q", got)
	}
}

func TestSubdirs(t *testing.T) {
	deep := record.FromWalk("/data/reports/2024/q1.pdf", "/data")
	got := deep.Subdirs()
	if len(got) != 2 || got[0] != "reports" || got[1] != "2024" {
		t.Errorf("subdirs = %v, want [reports 2024]", got)
	}

	flat := record.FromWalk("/data/top.txt", "/data")
	if subdirs := flat.Subdirs(); subdirs != nil {
		t.Errorf("flat file subdirs = %v, want none", subdirs)
	}
}

func TestIdentityUnderSwitchesWithMode(t *testing.T) {
	rec := record.FromWalk("/data/a.txt", "/data")
	rec.SetIdentity(1, "abc", "sha1")

	if rec.IdentityUnder(true) != rec.Key() {
		t.Error("content mode should use the derived key")
	}
	if rec.IdentityUnder(false) != rec.RelPath {
		t.Error("path mode should use the relative path")
	}
}

func TestFromImportRow(t *testing.T) {
	extras := []record.Extra{{Name: "Notes", Value: "keep"}}
	rec := record.FromImportRow("/data/docs/a.txt", "", "/data/docs", extras)

	if rec.RelPath != "a.txt" {
		t.Errorf("computed relative path = %q", rec.RelPath)
	}
	if rec.Origin != record.OriginExisting {
		t.Errorf("origin = %q, want existing", rec.Origin)
	}
	if len(rec.Extras) != 1 || rec.Extras[0].Name != "Notes" {
		t.Errorf("extras = %v", rec.Extras)
	}

	given := record.FromImportRow("/data/docs/b.txt", "custom/b.txt", "/data/docs", nil)
	if given.RelPath != "custom/b.txt" {
		t.Errorf("declared relative path overwritten to %q", given.RelPath)
	}
}

func TestFromStoreRowRebuildsPath(t *testing.T) {
	rec := record.FromStoreRow("/data/docs", filepath.Join("sub", "c.txt"), "c.txt", ".txt")
	if rec.Path != filepath.Join("/data/docs", "sub", "c.txt") {
		t.Errorf("path = %q", rec.Path)
	}
	if rec.Origin != record.OriginExisting {
		t.Errorf("origin = %q, want existing", rec.Origin)
	}
}
