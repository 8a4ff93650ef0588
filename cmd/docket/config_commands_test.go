package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigInitCreatesSample(t *testing.T) {
	tmp := t.TempDir()
	target := filepath.Join(tmp, "config.toml")

	stdout, _, err := runCLI(t, "", "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, stdout, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, "", "config", "init", "--path", target); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected already-exists error, got %v", err)
	}
	if _, _, err := runCLI(t, "", "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestConfigValidateReportsPath(t *testing.T) {
	base := t.TempDir()
	configPath := writeCLIConfig(t, base, filepath.Join(base, "tree"), filepath.Join(base, "catalog.db"), "")

	stdout, _, err := runCLI(t, configPath, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, stdout, "Config path: "+configPath)
	requireContains(t, stdout, "Configuration valid")

	stdout, _, err = runCLI(t, filepath.Join(base, "absent.toml"), "config", "validate")
	if err != nil {
		t.Fatalf("config validate with absent file: %v", err)
	}
	requireContains(t, stdout, "defaults were used")
}

func TestConfigValidateRejectsBadValues(t *testing.T) {
	base := t.TempDir()
	configPath := filepath.Join(base, "config.toml")
	writeFile(t, configPath, "[hash]\nalgorithm = \"crc32\"\n")

	_, _, err := runCLI(t, configPath, "config", "validate")
	if err == nil || !strings.Contains(err.Error(), "crc32") {
		t.Fatalf("expected algorithm error, got %v", err)
	}
}

func TestConfigShowPrintsResolvedConfig(t *testing.T) {
	base := t.TempDir()
	tree := filepath.Join(base, "tree")
	storePath := filepath.Join(base, "catalog.db")
	configPath := writeCLIConfig(t, base, tree, storePath, "")

	stdout, _, err := runCLI(t, configPath, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, stdout, "[store]")
	requireContains(t, stdout, storePath)
	requireContains(t, stdout, "sha1")
}
