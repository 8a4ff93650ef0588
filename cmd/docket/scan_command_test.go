package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"docket/internal/store"
)

func TestScanCommandCatalogsTree(t *testing.T) {
	base := t.TempDir()
	tree := filepath.Join(base, "tree")
	writeFile(t, filepath.Join(tree, "a.txt"), "alpha")
	writeFile(t, filepath.Join(tree, "b.txt"), "alpha")
	writeFile(t, filepath.Join(tree, "c.txt"), "gamma")

	storePath := filepath.Join(base, "catalog.db")
	output := filepath.Join(base, "catalog.xlsx")
	configPath := writeCLIConfig(t, base, tree, storePath, "")

	stdout, _, err := runCLI(t, configPath, "scan", "--output", output)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	requireContains(t, stdout, "Catalogued: 3 files (0 existing, 3 new)")
	requireContains(t, stdout, "Duplicates: 1")
	requireContains(t, stdout, "Workbook:")
	if _, err := os.Stat(output); err != nil {
		t.Fatalf("expected workbook at %s: %v", output, err)
	}
	if _, err := os.Stat(storePath); err != nil {
		t.Fatalf("expected store at %s: %v", storePath, err)
	}
}

func TestScanFlagsOverrideConfig(t *testing.T) {
	base := t.TempDir()
	tree := filepath.Join(base, "tree")
	writeFile(t, filepath.Join(tree, "a.txt"), "alpha")

	configPath := writeCLIConfig(t, base, tree, filepath.Join(base, "unused.db"), "")
	storePath := filepath.Join(base, "flagged.db")

	stdout, _, err := runCLI(t, configPath, "scan", "--store", storePath, "--no-content-check")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if strings.Contains(stdout, "Duplicates:") {
		t.Error("path-only scans should not report duplicates")
	}
	if _, err := os.Stat(storePath); err != nil {
		t.Fatalf("expected store at %s: %v", storePath, err)
	}
	if _, err := os.Stat(filepath.Join(base, "unused.db")); !os.IsNotExist(err) {
		t.Fatalf("config store should stay untouched, stat err = %v", err)
	}
}

func TestScanRefusesExistingStoreNonInteractive(t *testing.T) {
	base := t.TempDir()
	tree := filepath.Join(base, "tree")
	writeFile(t, filepath.Join(tree, "a.txt"), "alpha")

	storePath := filepath.Join(base, "catalog.db")
	writeFile(t, storePath, "stale")
	configPath := writeCLIConfig(t, base, tree, storePath, "")

	_, _, err := runCLI(t, configPath, "scan")
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected store conflict, got %v", err)
	}
}

func TestScanStorePolicyFlagAppends(t *testing.T) {
	base := t.TempDir()
	tree := filepath.Join(base, "tree")
	writeFile(t, filepath.Join(tree, "a.txt"), "alpha")

	storePath := filepath.Join(base, "catalog.db")
	configPath := writeCLIConfig(t, base, tree, storePath, "")

	if _, _, err := runCLI(t, configPath, "scan"); err != nil {
		t.Fatalf("first scan: %v", err)
	}
	stdout, _, err := runCLI(t, configPath, "scan", "--store-policy", "append")
	if err != nil {
		t.Fatalf("second scan: %v", err)
	}
	requireContains(t, stdout, "(1 existing, 0 new)")
	requireContains(t, stdout, "(1 records)")
}
