package export

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/dataforge/dataforge-cli/internal/model"
)

// WriteBusinessXLSX writes merged business records to an XLSX workbook with
// the same column order as the CSV export.
func WriteBusinessXLSX(records []model.BusinessRecord, path string) error {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, businessRow(r))
	}
	return writeSheet("Businesses", businessColumns, rows, path)
}

// WriteRFPXLSX writes merged RFP records to an XLSX workbook.
func WriteRFPXLSX(records []model.RFPRecord, path string) error {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, rfpRow(r))
	}
	return writeSheet("RFPs", rfpColumns, rows, path)
}

func writeSheet(name string, header []string, rows [][]string, path string) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(name)
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	hr := sheet.AddRow()
	for _, col := range header {
		hr.AddCell().SetString(col)
	}
	for _, row := range rows {
		xr := sheet.AddRow()
		for _, cell := range row {
			xr.AddCell().SetString(cell)
		}
	}

	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "export: save xlsx")
	}
	return nil
}
