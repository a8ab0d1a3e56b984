package df

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// SaveXLSX writes df to sheet of a new workbook fileName. The first row holds the column names.
// Missing elements are left as empty cells.
func SaveXLSX(fileName, sheet string, df DF) error {
	if sheet == "" {
		sheet = "Sheet1"
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if e := f.SetSheetName("Sheet1", sheet); e != nil {
		return e
	}

	names := df.ColumnNames()
	hdr := make([]any, len(names))
	for ind, nm := range names {
		hdr[ind] = nm
	}

	if e := f.SetSheetRow(sheet, "A1", &hdr); e != nil {
		return e
	}

	rowNum := 2
	for row, e := df.Iter(true); e == nil; row, e = df.Iter(false) {
		var (
			cell string
			ex   error
		)
		if cell, ex = excelize.CoordinatesToCellName(1, rowNum); ex != nil {
			return ex
		}

		if ex = f.SetSheetRow(sheet, cell, &row); ex != nil {
			return fmt.Errorf("row %d: %w", rowNum-1, ex)
		}

		rowNum++
	}

	return f.SaveAs(fileName)
}
