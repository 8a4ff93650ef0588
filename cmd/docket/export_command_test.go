package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"docket/internal/tabular"
)

func TestExportCommandWritesWorkbook(t *testing.T) {
	base := t.TempDir()
	tree := filepath.Join(base, "tree")
	writeFile(t, filepath.Join(tree, "a.txt"), "alpha")
	writeFile(t, filepath.Join(tree, "b.txt"), "alpha")

	storePath := filepath.Join(base, "catalog.db")
	configPath := writeCLIConfig(t, base, tree, storePath, "")

	if _, _, err := runCLI(t, configPath, "scan"); err != nil {
		t.Fatalf("scan: %v", err)
	}

	dest := filepath.Join(base, "out.xlsx")
	stdout, _, err := runCLI(t, configPath, "export", "--store", storePath, "--output", dest)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	requireContains(t, stdout, "Exported 2 records")
	requireContains(t, stdout, "1 session(s)")
	if _, err := os.Stat(dest); err != nil {
		t.Fatalf("expected workbook at %s: %v", dest, err)
	}
}

func TestExportCommandRequiresOutput(t *testing.T) {
	base := t.TempDir()
	configPath := writeCLIConfig(t, base, filepath.Join(base, "tree"), filepath.Join(base, "catalog.db"), "")

	_, _, err := runCLI(t, configPath, "export")
	if err == nil || !strings.Contains(err.Error(), "workbook destination") {
		t.Fatalf("expected missing destination error, got %v", err)
	}
}

func TestExportRefusesExistingWorkbookNonInteractive(t *testing.T) {
	base := t.TempDir()
	tree := filepath.Join(base, "tree")
	writeFile(t, filepath.Join(tree, "a.txt"), "alpha")

	storePath := filepath.Join(base, "catalog.db")
	configPath := writeCLIConfig(t, base, tree, storePath, "")
	if _, _, err := runCLI(t, configPath, "scan"); err != nil {
		t.Fatalf("scan: %v", err)
	}

	dest := filepath.Join(base, "out.xlsx")
	writeFile(t, dest, "occupied")

	_, _, err := runCLI(t, configPath, "export", "--store", storePath, "--output", dest)
	if !errors.Is(err, tabular.ErrExists) {
		t.Fatalf("expected existing-workbook error, got %v", err)
	}

	stdout, _, err := runCLI(t, configPath, "export", "--store", storePath, "--output", dest, "--overwrite")
	if err != nil {
		t.Fatalf("export --overwrite: %v", err)
	}
	requireContains(t, stdout, "Exported 1 records")
}
