package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"docket/internal/config"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantStore := filepath.Join(tempHome, ".local", "share", "docket", "catalog.db")
	if cfg.Store.Path != wantStore {
		t.Fatalf("unexpected store path: got %q want %q", cfg.Store.Path, wantStore)
	}
	if cfg.Store.Policy != "error" {
		t.Fatalf("unexpected store policy: %q", cfg.Store.Policy)
	}
	if cfg.Store.FlushThreshold != 100 {
		t.Fatalf("unexpected flush threshold: %d", cfg.Store.FlushThreshold)
	}
	if cfg.Store.OnHashMismatch != "error" {
		t.Fatalf("unexpected mismatch policy: %q", cfg.Store.OnHashMismatch)
	}
	if !cfg.Scan.ContentCheck {
		t.Fatal("expected content check enabled by default")
	}
	if cfg.Hash.Algorithm != "sha1" {
		t.Fatalf("unexpected hash algorithm: %q", cfg.Hash.Algorithm)
	}
	if cfg.Hash.BufferSize != 65536 {
		t.Fatalf("unexpected buffer size: %d", cfg.Hash.BufferSize)
	}
	if cfg.Hash.Workers != 1 {
		t.Fatalf("unexpected worker count: %d", cfg.Hash.Workers)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestLoadFileOverridesAndExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	contents := `
[scan]
search_dirs = ["~/docs", "~/photos"]
exclude = ["tmp", " tmp ", "", ".git"]
content_check = false

[hash]
algorithm = "SHA256"
workers = 4

[store]
path = "~/catalog/files.db"
policy = "APPEND"

[export]
path = "~/out/catalog.xlsx"
`
	path := filepath.Join(t.TempDir(), "docket.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("unexpected resolution: exists=%v path=%q", exists, resolved)
	}

	wantDocs := filepath.Join(tempHome, "docs")
	if len(cfg.Scan.SearchDirs) != 2 || cfg.Scan.SearchDirs[0] != wantDocs {
		t.Fatalf("unexpected search dirs: %v", cfg.Scan.SearchDirs)
	}
	if cfg.Scan.BaseDir != wantDocs {
		t.Fatalf("expected base dir defaulted to first search dir, got %q", cfg.Scan.BaseDir)
	}
	if got := cfg.Scan.Exclude; len(got) != 2 || got[0] != "tmp" || got[1] != ".git" {
		t.Fatalf("expected trimmed deduplicated excludes, got %v", got)
	}
	if cfg.Scan.ContentCheck {
		t.Fatal("expected content check disabled")
	}
	if cfg.Hash.Algorithm != "sha256" {
		t.Fatalf("expected lowercased algorithm, got %q", cfg.Hash.Algorithm)
	}
	if cfg.Hash.Workers != 4 {
		t.Fatalf("unexpected worker count: %d", cfg.Hash.Workers)
	}
	if cfg.Hash.BufferSize != 65536 {
		t.Fatalf("expected default buffer size, got %d", cfg.Hash.BufferSize)
	}
	if cfg.Store.Path != filepath.Join(tempHome, "catalog", "files.db") {
		t.Fatalf("unexpected store path: %q", cfg.Store.Path)
	}
	if cfg.Store.Policy != "append" {
		t.Fatalf("expected lowercased policy, got %q", cfg.Store.Policy)
	}
	if cfg.Export.Path != filepath.Join(tempHome, "out", "catalog.xlsx") {
		t.Fatalf("unexpected export path: %q", cfg.Export.Path)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name     string
		contents string
		want     string
	}{
		{
			name:     "unknown algorithm",
			contents: "[hash]\nalgorithm = \"crc32\"\n",
			want:     "hash.algorithm",
		},
		{
			name:     "negative workers",
			contents: "[hash]\nworkers = -2\n",
			want:     "hash.workers",
		},
		{
			name:     "unknown policy",
			contents: "[store]\npolicy = \"merge\"\n",
			want:     "store.policy",
		},
		{
			name:     "unknown mismatch policy",
			contents: "[store]\non_hash_mismatch = \"ignore\"\n",
			want:     "store.on_hash_mismatch",
		},
		{
			name:     "negative flush threshold",
			contents: "[store]\nflush_threshold = -1\n",
			want:     "store.flush_threshold",
		},
		{
			name:     "session without store",
			contents: "[import]\nsession = \"abc\"\n",
			want:     "import.session",
		},
		{
			name:     "export extension",
			contents: "[export]\npath = \"/tmp/out.csv\"\n",
			want:     ".xlsx",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "docket.toml")
			if err := os.WriteFile(path, []byte(tc.contents), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			_, _, _, err := config.Load(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestExpandPathHandlesTilde(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	got, err := config.ExpandPath("~/data/catalog.db")
	if err != nil {
		t.Fatalf("ExpandPath returned error: %v", err)
	}
	if got != filepath.Join(tempHome, "data", "catalog.db") {
		t.Fatalf("unexpected expansion: %q", got)
	}
}

func TestCreateSampleWritesParseableConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("sample not written: %v", err)
	}
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample config does not load: %v", err)
	}
}
