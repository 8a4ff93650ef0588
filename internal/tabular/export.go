package tabular

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"docket/internal/record"
)

// Properties describes the run that produced an exported catalog. It lands on
// the workbook's Properties sheet so a catalog carries its own provenance.
type Properties struct {
	SearchDirs    []string
	BaseDir       string
	ExcludeDirs   []string
	ImportSource  string
	BufferSize    int
	HashAlgorithm string
	SessionID     string
	CreatedAt     time.Time
}

// Export writes records to an .xlsx workbook: the Catalog sheet in canonical
// column order plus a Properties sheet. An existing destination is refused
// with ErrExists unless overwrite is set.
func Export(path string, records []*record.Record, props Properties, overwrite bool) error {
	if !strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return fmt.Errorf("export path %s: extension must be .xlsx", path)
	}
	if _, err := os.Stat(path); err == nil {
		if !overwrite {
			return fmt.Errorf("%w: %s", ErrExists, path)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat export path %s: %w", path, err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetCatalog); err != nil {
		return fmt.Errorf("name sheet %q: %w", SheetCatalog, err)
	}
	if err := writeProperties(f, props); err != nil {
		return err
	}
	if err := writeCatalog(f, records, props.BaseDir); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}

// writeCatalog streams the header row and one row per record. The stream
// writer owns the sheet from here on, so the Properties sheet is filled first.
func writeCatalog(f *excelize.File, records []*record.Record, baseDir string) error {
	sw, err := f.NewStreamWriter(SheetCatalog)
	if err != nil {
		return fmt.Errorf("stream sheet %q: %w", SheetCatalog, err)
	}

	headers := orderedHeaders(records, baseDir)
	if err := writeRow(sw, 1, headerCells(headers)); err != nil {
		return err
	}

	for i, rec := range records {
		row := make([]any, len(headers))
		extras := extraValues(rec)
		for col, header := range headers {
			row[col] = cellValue(rec, header, baseDir, extras)
		}
		if err := writeRow(sw, i+2, row); err != nil {
			return err
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet %q: %w", SheetCatalog, err)
	}
	return nil
}

func cellValue(rec *record.Record, header, baseDir string, extras map[string]string) any {
	switch header {
	case ColFilePath:
		return rec.Path
	case ColBaseDir:
		return baseDir
	case ColRelPath:
		return rec.RelPath
	case ColFilename:
		return rec.Name
	case ColExtension:
		return rec.Extension
	case ColFileSize:
		if !rec.SizeKnown {
			return nil
		}
		return rec.Size
	case ColReadableSize:
		return rec.HumanSize()
	case ColChecksum:
		return rec.Checksum
	case ColDuplicate:
		return rec.Duplicate
	}
	if level, ok := parseSubdirColumn(header); ok {
		subdirs := rec.Subdirs()
		if level >= 1 && level <= len(subdirs) {
			return subdirs[level-1]
		}
		return nil
	}
	if value, ok := extras[header]; ok {
		return value
	}
	return nil
}

func extraValues(rec *record.Record) map[string]string {
	if len(rec.Extras) == 0 {
		return nil
	}
	values := make(map[string]string, len(rec.Extras))
	for _, extra := range rec.Extras {
		values[extra.Name] = extra.Value
	}
	return values
}

func headerCells(headers []string) []any {
	cells := make([]any, len(headers))
	for i, header := range headers {
		cells[i] = header
	}
	return cells
}

func writeRow(sw *excelize.StreamWriter, rowNum int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return fmt.Errorf("row %d: %w", rowNum, err)
	}
	if err := sw.SetRow(cell, values); err != nil {
		return fmt.Errorf("write row %d: %w", rowNum, err)
	}
	return nil
}

// writeProperties lays the run description out as label rows. List values
// take one row each under a single label, the way the original catalogs
// shipped them.
func writeProperties(f *excelize.File, props Properties) error {
	if _, err := f.NewSheet(SheetProperties); err != nil {
		return fmt.Errorf("create sheet %q: %w", SheetProperties, err)
	}

	w := propertyWriter{f: f, row: 1}
	w.cell(1, "Document Catalog Properties")
	w.row += 2
	w.list("Search Directories:", props.SearchDirs)
	w.list("Exclude Directories:", props.ExcludeDirs)
	if props.BaseDir != "" {
		w.pair("Base Directory:", props.BaseDir)
	}
	if props.ImportSource != "" {
		w.pair("Existing Catalog:", props.ImportSource)
	}
	w.pair("Buffer Size:", props.BufferSize)
	w.pair("Hash Function:", props.HashAlgorithm)
	if props.SessionID != "" {
		w.pair("Session:", props.SessionID)
	}
	if !props.CreatedAt.IsZero() {
		w.pair("Created:", props.CreatedAt.UTC().Format(time.RFC3339))
	}
	return w.err
}

type propertyWriter struct {
	f   *excelize.File
	row int
	err error
}

func (w *propertyWriter) cell(col int, value any) {
	if w.err != nil {
		return
	}
	name, err := excelize.CoordinatesToCellName(col, w.row)
	if err != nil {
		w.err = err
		return
	}
	if err := w.f.SetCellValue(SheetProperties, name, value); err != nil {
		w.err = fmt.Errorf("write properties cell %s: %w", name, err)
	}
}

func (w *propertyWriter) pair(label string, value any) {
	w.cell(1, label)
	w.cell(2, value)
	w.row++
}

func (w *propertyWriter) list(label string, values []string) {
	w.cell(1, label)
	if len(values) == 0 {
		w.row++
		return
	}
	for _, value := range values {
		w.cell(2, value)
		w.row++
	}
}
