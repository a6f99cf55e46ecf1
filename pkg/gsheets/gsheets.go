// Package gsheets wraps the Google Sheets v4 API behind narrow interfaces so
// the sync engine can be exercised against fakes. A Document is one spreadsheet
// opened for the duration of a single top-level operation; the engine never
// creates or deletes worksheets through it.
package gsheets

import "context"

// WorksheetInfo is the enumeration record for one tab.
type WorksheetInfo struct {
	Title       string
	SheetID     int64
	ColumnCount int64
}

// Color is an RGB color with components in [0, 1].
type Color struct {
	Red   float64
	Green float64
	Blue  float64
}

// TextStyle is the formatting applied together with a cell value or to a row
// range. Zero-valued fields are left untouched in the remote cell.
type TextStyle struct {
	FontSize   int64
	LinkURI    string
	Foreground *Color
}

// Request is one cell-range mutation inside a batched update. Coordinates are
// zero-based with exclusive ends, matching the remote API. Value, Note and
// Style are applied atomically to every cell in the range; nil parts are not
// touched.
type Request struct {
	SheetID  int64
	StartRow int64
	EndRow   int64
	StartCol int64
	EndCol   int64

	Value *string
	Note  *string
	Style *TextStyle
}

// Document is one open spreadsheet.
type Document interface {
	// ListWorksheets enumerates tabs and refreshes the advisory title cache.
	ListWorksheets(ctx context.Context) ([]WorksheetInfo, error)
	// Worksheet returns a handle for the named tab.
	Worksheet(ctx context.Context, title string) (Worksheet, error)
	// BatchApply submits all requests as one remote call. It fails
	// all-or-nothing; callers degrade to per-cell writes on error.
	BatchApply(ctx context.Context, requests []Request) error
}

// Worksheet is one tab. Rows and columns are 1-based on this interface.
type Worksheet interface {
	Title() string
	SheetID() int64
	ColumnCount() int64
	// ReadAllValues reads header and data rows in a single call.
	ReadAllValues(ctx context.Context) ([][]string, error)
	ReadRow(ctx context.Context, row int) ([]string, error)
	ReadColumn(ctx context.Context, col int) ([]string, error)
	ReadCell(ctx context.Context, row, col int) (string, error)
	WriteCell(ctx context.Context, row, col int, value string) error
	AppendRow(ctx context.Context, values []string) error
	ApplyNote(ctx context.Context, row, col int, note string) error
	ApplyFormat(ctx context.Context, startRow, endRow, startCol, endCol int, style TextStyle) error
}

// Opener opens a spreadsheet by its document locator. Implemented by the
// Google client; tests substitute fakes.
type Opener interface {
	Open(ctx context.Context, spreadsheetID string) (Document, error)
}
