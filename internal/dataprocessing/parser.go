package dataprocessing

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/xuri/excelize/v2"

	apierrors "findash/internal/errors"
	"findash/pkg/contracts/domain"
)

// headerAliases maps normalized header text to a column. The workbook is
// published with Japanese headers; English labels are accepted as well.
var headerAliases = map[string]domain.Column{}

func init() {
	aliases := map[domain.Column][]string{
		domain.ColCompany:                    {"企業名", "company", "company name"},
		domain.ColFiscalYear:                 {"決算年度", "fiscal year", "fy", "year"},
		domain.ColRevenue:                    {"売上高", "revenue", "sales"},
		domain.ColCostOfSales:                {"売上原価", "cost of goods sold", "cogs", "cost of sales"},
		domain.ColSGA:                        {"販管費", "sg&a", "sga"},
		domain.ColOperatingIncome:            {"営業利益", "operating income"},
		domain.ColGrossMarginPct:             {"売上総利益率", "gross margin %", "gross margin (%)"},
		domain.ColOperatingMarginPct:         {"営業利益率", "operating margin %", "operating margin (%)"},
		domain.ColSGARatioPct:                {"販管費率", "sg&a ratio %", "sg&a ratio (%)"},
		domain.ColTotalAssets:                {"総資産", "total assets"},
		domain.ColCurrentAssets:              {"流動資産", "current assets"},
		domain.ColInventory:                  {"棚卸資産", "inventory"},
		domain.ColNetAssets:                  {"純資産", "net assets"},
		domain.ColInterestBearingDebt:        {"有利子負債", "interest-bearing debt", "interest bearing debt"},
		domain.ColEquityRatioPct:             {"自己資本比率", "equity ratio %", "equity ratio (%)"},
		domain.ColInventoryTurnover:          {"棚卸資産回転率", "inventory turnover"},
		domain.ColAssetTurnover:              {"総資産回転率", "asset turnover"},
		domain.ColOperatingCF:                {"営業cf", "operating cf", "operating cash flow"},
		domain.ColInvestingCF:                {"投資cf", "investing cf", "investing cash flow"},
		domain.ColFreeCF:                     {"フリーcf", "free cf", "free cash flow"},
		domain.ColEmployees:                  {"従業員数", "employees", "employee count"},
		domain.ColRevenuePerEmployee:         {"全従業員1人当り売上高", "revenue per employee"},
		domain.ColOperatingIncomePerEmployee: {"全従業員1人当り営業利益", "operating income per employee"},
	}
	for col, names := range aliases {
		for _, n := range names {
			headerAliases[normalizeHeader(n)] = col
		}
	}
}

// headerSearchRows bounds how far down a sheet the header row may be.
const headerSearchRows = 20

// normalizeHeader lowercases and strips all whitespace, including
// full-width spaces, so "Fiscal Year" and "fiscalyear" compare equal.
func normalizeHeader(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ColumnForHeader resolves a header label to a column.
func ColumnForHeader(header string) (domain.Column, bool) {
	col, ok := headerAliases[normalizeHeader(header)]
	return col, ok
}

// ParseFile reads the financial dataset from an xlsx workbook. When sheet
// is empty every sheet is tried in order and the first one with a valid
// header row wins.
func ParseFile(filePath, sheet string) (*domain.Table, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, apierrors.NewStorageError("failed to open workbook", err).WithContext("path", filePath)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if sheet != "" {
		sheets = []string{sheet}
	}

	var lastErr error
	for _, name := range sheets {
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			lastErr = apierrors.NewParsingError(fmt.Sprintf("failed to read sheet %q", name), err)
			continue
		}
		table, err := ParseRows(rows)
		if err != nil {
			lastErr = err
			continue
		}
		slog.Debug("Parsed financial workbook",
			slog.String("path", filePath),
			slog.String("sheet_name", name),
			slog.Int("records", table.Len()))
		return table, nil
	}

	if lastErr == nil {
		lastErr = apierrors.NewParsingError("workbook has no sheets", nil)
	}
	return nil, lastErr
}

// ParseRows builds a table from raw cell text. The first row among the
// leading rows that names both the company and fiscal-year columns is the
// header; rows without a company name are skipped.
func ParseRows(rows [][]string) (*domain.Table, error) {
	headerRow, columnMap := findHeader(rows)
	if headerRow < 0 {
		return nil, apierrors.NewParsingError("could not find header row with company and fiscal year columns", nil)
	}

	for _, col := range domain.RequiredColumns {
		if _, ok := columnMap[col]; !ok {
			return nil, apierrors.NewParsingError(fmt.Sprintf("could not find required column: %s", col), nil).
				WithContext("column", string(col))
		}
	}

	numeric := make([]domain.Column, 0, len(columnMap))
	for _, info := range domain.NumericColumns {
		if _, ok := columnMap[info.Column]; ok {
			numeric = append(numeric, info.Column)
		}
	}

	records := make([]domain.FinancialRecord, 0, len(rows)-headerRow-1)
	for i := headerRow + 1; i < len(rows); i++ {
		row := rows[i]
		company := cell(row, columnMap[domain.ColCompany])
		if company == "" {
			continue
		}

		year, err := parseYear(cell(row, columnMap[domain.ColFiscalYear]))
		if err != nil {
			return nil, apierrors.NewParsingError(fmt.Sprintf("row %d: invalid fiscal year", i+1), err).
				WithContext("row", i+1)
		}

		rec := domain.NewRecord(company, year)
		for _, col := range numeric {
			v, err := parseNumber(cell(row, columnMap[col]))
			if err != nil {
				return nil, apierrors.NewParsingError(fmt.Sprintf("row %d: invalid %s", i+1, col), err).
					WithContext("row", i+1).
					WithContext("column", string(col))
			}
			_ = rec.Set(col, v)
		}
		records = append(records, rec)
	}

	table, err := domain.NewTable(records, numeric)
	if err != nil {
		return nil, apierrors.NewParsingError("invalid dataset", err)
	}
	return table, nil
}

func findHeader(rows [][]string) (int, map[domain.Column]int) {
	limit := len(rows)
	if limit > headerSearchRows {
		limit = headerSearchRows
	}
	for i := 0; i < limit; i++ {
		columnMap := make(map[domain.Column]int)
		for j, header := range rows[i] {
			col, ok := ColumnForHeader(header)
			if !ok {
				continue
			}
			if _, dup := columnMap[col]; !dup {
				columnMap[col] = j
			}
		}
		_, hasCompany := columnMap[domain.ColCompany]
		_, hasYear := columnMap[domain.ColFiscalYear]
		if hasCompany && hasYear {
			return i, columnMap
		}
	}
	return -1, nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseYear accepts "2023", "2023.0" and "FY2023".
func parseYear(s string) (int, error) {
	s = strings.TrimPrefix(strings.ToUpper(s), "FY")
	if s == "" {
		return 0, fmt.Errorf("empty fiscal year")
	}
	if y, err := strconv.Atoi(s); err == nil {
		return y, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("not a year: %q", s)
	}
	return int(f), nil
}

// parseNumber reads a numeric cell. Blank and placeholder cells are NaN.
func parseNumber(s string) (float64, error) {
	switch strings.ToUpper(s) {
	case "", "-", "—", "N/A", "NA", "NAN":
		return math.NaN(), nil
	}
	cleaned := strings.NewReplacer(",", "", "$", "", "%", "", " ", "").Replace(s)
	negative := false
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		negative = true
		cleaned = cleaned[1 : len(cleaned)-1]
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	if negative {
		v = -v
	}
	return v, nil
}
