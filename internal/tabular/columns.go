package tabular

import (
	"strconv"
	"strings"

	"docket/internal/record"
)

// Sheet names.
const (
	SheetCatalog    = "Catalog"
	SheetProperties = "Properties"
)

// Canonical column names.
const (
	ColFilePath     = "File Path"
	ColBaseDir      = "Base Directory"
	ColRelPath      = "Relative Path"
	ColFilename     = "Filename"
	ColExtension    = "Extension"
	ColFileSize     = "File Size"
	ColReadableSize = "Readable Size"
	ColChecksum     = "Checksum"
	ColDuplicate    = "Duplicate"
)

const subdirPrefix = "Subdirectory "

var canonicalColumns = map[string]struct{}{
	ColFilePath:     {},
	ColBaseDir:      {},
	ColRelPath:      {},
	ColFilename:     {},
	ColExtension:    {},
	ColFileSize:     {},
	ColReadableSize: {},
	ColChecksum:     {},
	ColDuplicate:    {},
}

// isConsumed reports whether a header names a column the importer maps onto
// record fields (or recomputes) instead of carrying as an extra.
func isConsumed(header string) bool {
	if _, ok := canonicalColumns[header]; ok {
		return true
	}
	_, ok := parseSubdirColumn(header)
	return ok
}

func subdirColumn(level int) string {
	return subdirPrefix + strconv.Itoa(level)
}

func parseSubdirColumn(header string) (int, bool) {
	rest, ok := strings.CutPrefix(header, subdirPrefix)
	if !ok {
		return 0, false
	}
	level, err := strconv.Atoi(strings.TrimSpace(rest))
	if err != nil || level < 1 {
		return 0, false
	}
	return level, true
}

// orderedHeaders derives the export column order from the records: File Path
// first, the derived path columns when a base directory is known, subdirectory
// columns ascending by depth, the fixed tail, then extras in first-encountered
// order.
func orderedHeaders(records []*record.Record, baseDir string) []string {
	maxDepth := 0
	for _, rec := range records {
		if depth := len(rec.Subdirs()); depth > maxDepth {
			maxDepth = depth
		}
	}

	headers := []string{ColFilePath}
	if baseDir != "" {
		headers = append(headers, ColBaseDir, ColRelPath)
	}
	for level := 1; level <= maxDepth; level++ {
		headers = append(headers, subdirColumn(level))
	}
	headers = append(headers, ColFilename, ColExtension, ColFileSize, ColReadableSize, ColChecksum, ColDuplicate)

	seen := make(map[string]struct{}, len(headers))
	for _, header := range headers {
		seen[header] = struct{}{}
	}
	for _, rec := range records {
		for _, extra := range rec.Extras {
			if extra.Name == "" {
				continue
			}
			if _, dup := seen[extra.Name]; dup {
				continue
			}
			seen[extra.Name] = struct{}{}
			headers = append(headers, extra.Name)
		}
	}
	return headers
}

func parseSize(value string) (int64, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, false
	}
	if size, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return size, true
	}
	// Spreadsheet tools sometimes render integers as floats.
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return int64(f), true
	}
	return 0, false
}

func parseDuplicate(value string) bool {
	parsed, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return false
	}
	return parsed
}
