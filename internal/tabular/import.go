package tabular

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"docket/internal/record"
)

// ImportResult carries the records of an imported workbook plus whatever run
// properties the workbook declared about itself.
type ImportResult struct {
	Records []*record.Record

	// HashAlgorithm is the "Hash Function" value from the Properties sheet,
	// empty when the workbook does not declare one.
	HashAlgorithm string
}

// Import reads the Catalog sheet into Existing-origin records, in sheet
// order. Recognized columns fill record fields; unrecognized columns become
// extras in column order. Rows with an empty File Path cell are skipped.
func Import(path, baseDir string) (*ImportResult, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	if !sheetExists(f, SheetCatalog) {
		return nil, fmt.Errorf("%w: %s has no %q sheet", ErrSchema, path, SheetCatalog)
	}

	rows, err := f.GetRows(SheetCatalog)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", SheetCatalog, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s sheet %q is empty", ErrSchema, path, SheetCatalog)
	}

	headers := make([]string, len(rows[0]))
	for i, header := range rows[0] {
		headers[i] = strings.TrimSpace(header)
	}

	pathIdx := -1
	for i, header := range headers {
		if header == ColFilePath {
			pathIdx = i
			break
		}
	}
	if pathIdx == -1 {
		return nil, fmt.Errorf("%w: %s sheet %q has no %q column", ErrSchema, path, SheetCatalog, ColFilePath)
	}

	result := &ImportResult{HashAlgorithm: readHashAlgorithm(f)}

	for _, row := range rows[1:] {
		// Pad short rows so every header has a cell.
		for len(row) < len(headers) {
			row = append(row, "")
		}

		filePath := strings.TrimSpace(row[pathIdx])
		if filePath == "" {
			continue
		}

		var (
			relPath   string
			size      int64
			sizeKnown bool
			checksum  string
			duplicate bool
			extras    []record.Extra
		)
		for i, header := range headers {
			if i >= len(row) || header == "" {
				continue
			}
			cell := row[i]
			switch header {
			case ColFilePath:
			case ColRelPath:
				relPath = strings.TrimSpace(cell)
			case ColFileSize:
				size, sizeKnown = parseSize(cell)
			case ColChecksum:
				checksum = strings.ToLower(strings.TrimSpace(cell))
			case ColDuplicate:
				duplicate = parseDuplicate(cell)
			default:
				if isConsumed(header) {
					continue
				}
				extras = append(extras, record.Extra{Name: header, Value: cell})
			}
		}

		rec := record.FromImportRow(filePath, relPath, baseDir, extras)
		if sizeKnown {
			rec.SetSize(size)
		}
		if checksum != "" {
			rec.Checksum = checksum
		}
		rec.Duplicate = duplicate
		result.Records = append(result.Records, rec)
	}

	return result, nil
}

func sheetExists(f *excelize.File, name string) bool {
	for _, sheet := range f.GetSheetList() {
		if sheet == name {
			return true
		}
	}
	return false
}

// readHashAlgorithm scans the Properties sheet for the "Hash Function" row.
// Absent sheet or row yields the empty string; import never fails on it.
func readHashAlgorithm(f *excelize.File) string {
	if !sheetExists(f, SheetProperties) {
		return ""
	}
	rows, err := f.GetRows(SheetProperties)
	if err != nil {
		return ""
	}
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		label := strings.TrimSuffix(strings.TrimSpace(row[0]), ":")
		if strings.EqualFold(label, "Hash Function") {
			return strings.ToLower(strings.TrimSpace(row[1]))
		}
	}
	return ""
}
