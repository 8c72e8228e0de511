package ingest

import (
	"bytes"
	"errors"
	"io"

	"SalesPulse/api/constants"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// SheetData is one workbook tab flattened to header-keyed string rows.
type SheetData struct {
	Headers []string
	Rows    []map[string]string
}

// Workbook holds everything read from one uploaded file. CostRows is the
// fixed fuel/lec block from the dashboard tab (rows 110-120, columns A-C);
// it has no header row so it stays positional.
type Workbook struct {
	Sheets   map[string]*SheetData
	CostRows [][]string
}

// Header rows differ per tab: the projection sheet carries a banner row
// above its real headers.
var sheetHeaderRows = map[string]int{
	constants.SheetWorkingDays:      1,
	constants.SheetBudgetProjection: 2,
	constants.SheetSales:            1,
	constants.SheetProduction:       1,
	constants.SheetSalesByChannel:   1,
}

const (
	costFirstRow = 110
	costLastRow  = 120
	costCols     = 3
)

var errUnsupportedFileType = errors.New("unsupported file type")

// ReadWorkbook reads the whole upload in one pass. Tabs that are missing
// from the file are skipped, not errors; the orchestrator reports which
// sheets it actually processed.
func ReadWorkbook(r io.Reader, ext string) (*Workbook, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	switch ext {
	case ".xlsx":
		return readXLSX(data)
	case ".xls":
		return readXLS(data)
	}
	return nil, errUnsupportedFileType
}

func rowsToSheetData(rows [][]string, headerRow int) *SheetData {
	if len(rows) < headerRow {
		return nil
	}
	headers := rows[headerRow-1]
	sd := &SheetData{Headers: headers}
	for _, row := range rows[headerRow:] {
		m := make(map[string]string, len(headers))
		for i, h := range headers {
			if h == "" {
				continue
			}
			if i < len(row) {
				m[h] = row[i]
			} else {
				m[h] = ""
			}
		}
		sd.Rows = append(sd.Rows, m)
	}
	return sd
}

func readXLSX(data []byte) (*Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	wb := &Workbook{Sheets: make(map[string]*SheetData)}
	for name, headerRow := range sheetHeaderRows {
		idx, err := f.GetSheetIndex(name)
		if err != nil || idx < 0 {
			continue
		}
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, err
		}
		if sd := rowsToSheetData(rows, headerRow); sd != nil {
			wb.Sheets[name] = sd
		}
	}

	if idx, err := f.GetSheetIndex(constants.SheetDashboard); err == nil && idx >= 0 {
		for r := costFirstRow; r <= costLastRow; r++ {
			row := make([]string, costCols)
			for c := 0; c < costCols; c++ {
				cell, err := excelize.CoordinatesToCellName(c+1, r)
				if err != nil {
					continue
				}
				row[c], _ = f.GetCellValue(constants.SheetDashboard, cell)
			}
			wb.CostRows = append(wb.CostRows, row)
		}
	}
	return wb, nil
}

func readXLS(data []byte) (*Workbook, error) {
	book, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, err
	}

	wb := &Workbook{Sheets: make(map[string]*SheetData)}
	for i := 0; i < book.NumSheets(); i++ {
		sheet := book.GetSheet(i)
		if sheet == nil {
			continue
		}
		if headerRow, ok := sheetHeaderRows[sheet.Name]; ok {
			if sd := rowsToSheetData(xlsRows(sheet, 0, int(sheet.MaxRow)), headerRow); sd != nil {
				wb.Sheets[sheet.Name] = sd
			}
			continue
		}
		if sheet.Name == constants.SheetDashboard {
			for r := costFirstRow - 1; r <= costLastRow-1; r++ {
				row := make([]string, costCols)
				if xr := sheet.Row(r); xr != nil {
					for c := 0; c < costCols; c++ {
						row[c] = xr.Col(c)
					}
				}
				wb.CostRows = append(wb.CostRows, row)
			}
		}
	}
	return wb, nil
}

func xlsRows(sheet *xls.WorkSheet, first, last int) [][]string {
	var out [][]string
	width := 0
	for r := first; r <= last; r++ {
		row := sheet.Row(r)
		if row == nil {
			out = append(out, nil)
			continue
		}
		if row.LastCol()+1 > width {
			width = row.LastCol() + 1
		}
		cells := make([]string, width)
		for c := 0; c < width; c++ {
			cells[c] = row.Col(c)
		}
		out = append(out, cells)
	}
	return out
}
