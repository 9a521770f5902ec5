package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// SampleHeader is the header row of the sample workbook.
var SampleHeader = []interface{}{"Company", "Fiscal Year", "Revenue", "Cost of Sales", "SG&A", "Operating Income"}

// SampleRows returns three supermarkets for FY2023 and Walmart for FY2022.
// walmartRevenue is Walmart's FY2023 revenue, so callers can produce a
// changed workbook.
func SampleRows(walmartRevenue float64) [][]interface{} {
	return [][]interface{}{
		SampleHeader,
		{"Walmart", 2023, walmartRevenue, 490142000000.0, 127140000000.0, 20428000000.0},
		{"Target", 2023, 107412000000.0, 77736000000.0, 21808000000.0, 3848000000.0},
		{"Costco", 2023, 242290000000.0, 212586000000.0, 21590000000.0, 8114000000.0},
		{"Walmart", 2022, 572754000000.0, 429000000000.0, 117812000000.0, 25942000000.0},
	}
}

// WriteWorkbook saves rows to the first sheet of a new workbook at path,
// creating parent directories.
func WriteWorkbook(t *testing.T, path string, rows [][]interface{}) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, v))
		}
	}
	require.NoError(t, f.SaveAs(path))
}

// WriteSampleWorkbook writes the sample rows to data/financial_data_us.xlsx
// under baseDir and returns the file path.
func WriteSampleWorkbook(t *testing.T, baseDir string, walmartRevenue float64) string {
	t.Helper()
	path := filepath.Join(baseDir, "data", "financial_data_us.xlsx")
	WriteWorkbook(t, path, SampleRows(walmartRevenue))
	return path
}
