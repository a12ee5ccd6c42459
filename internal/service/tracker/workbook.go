package tracker

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

var errNoDetailSheet = errors.New(`no "Detail" sheet`)

// readDetailSheet returns the Detail sheet as a grid of cell strings. Rows
// may be ragged; trailing empty cells are not guaranteed to be present.
func readDetailSheet(filename string, data []byte) ([][]string, error) {
	if strings.EqualFold(filepath.Ext(filename), ".xls") {
		return readLegacySheet(data)
	}
	return readOpenXMLSheet(data)
}

// readOpenXMLSheet handles .xlsx and .xlsm. Raw values are requested so date
// cells arrive as serial numbers instead of locale-formatted text.
func readOpenXMLSheet(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	if !slices.Contains(f.GetSheetList(), DetailSheet) {
		return nil, errNoDetailSheet
	}

	rows, err := f.GetRows(DetailSheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read %s sheet: %w", DetailSheet, err)
	}

	return rows, nil
}

func readLegacySheet(data []byte) ([][]string, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, err
	}

	for i := 0; i < wb.NumSheets(); i++ {
		sheet := wb.GetSheet(i)
		if sheet == nil || sheet.Name != DetailSheet {
			continue
		}

		rows := make([][]string, 0, int(sheet.MaxRow)+1)
		for r := 0; r <= int(sheet.MaxRow); r++ {
			row := legacyRow(sheet, r)
			if row == nil {
				rows = append(rows, nil)
				continue
			}

			cells := make([]string, row.LastCol())
			for c := range cells {
				cells[c] = row.Col(c)
			}
			rows = append(rows, cells)
		}

		return rows, nil
	}

	return nil, errNoDetailSheet
}

// legacyRow returns nil for rows the sheet does not define; the reader
// dereferences missing rows instead of reporting them.
func legacyRow(sheet *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return sheet.Row(i)
}
