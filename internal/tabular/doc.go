// Package tabular reads and writes catalog workbooks (.xlsx).
//
// The record sheet is named "Catalog". Its mandatory column is "File Path";
// recognized columns map onto record fields, derived columns (Base Directory,
// Relative Path, Subdirectory N, Filename, Extension, Readable Size) are
// recomputed rather than trusted, and every other column survives as an
// opaque extra attribute in source order. A second sheet, "Properties",
// carries the run settings that produced the workbook.
package tabular
