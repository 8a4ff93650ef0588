package tabular

import "errors"

var (
	// ErrSchema indicates the workbook is missing the Catalog sheet or its
	// mandatory File Path column.
	ErrSchema = errors.New("workbook schema error")

	// ErrExists indicates the export destination already exists and
	// overwriting was not allowed.
	ErrExists = errors.New("export destination already exists")
)
