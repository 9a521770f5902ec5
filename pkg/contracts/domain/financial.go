package domain

import (
	"fmt"
	"math"
)

// Column identifies one field of a financial record.
type Column string

const (
	ColCompany                    Column = "company"
	ColFiscalYear                 Column = "fiscal_year"
	ColRevenue                    Column = "revenue"
	ColCostOfSales                Column = "cost_of_sales"
	ColSGA                        Column = "sga"
	ColOperatingIncome            Column = "operating_income"
	ColGrossMarginPct             Column = "gross_margin_pct"
	ColOperatingMarginPct         Column = "operating_margin_pct"
	ColSGARatioPct                Column = "sga_ratio_pct"
	ColTotalAssets                Column = "total_assets"
	ColCurrentAssets              Column = "current_assets"
	ColInventory                  Column = "inventory"
	ColNetAssets                  Column = "net_assets"
	ColInterestBearingDebt        Column = "interest_bearing_debt"
	ColEquityRatioPct             Column = "equity_ratio_pct"
	ColInventoryTurnover          Column = "inventory_turnover"
	ColAssetTurnover              Column = "asset_turnover"
	ColOperatingCF                Column = "operating_cf"
	ColInvestingCF                Column = "investing_cf"
	ColFreeCF                     Column = "free_cf"
	ColEmployees                  Column = "employees"
	ColRevenuePerEmployee         Column = "revenue_per_employee"
	ColOperatingIncomePerEmployee Column = "operating_income_per_employee"
)

// ColumnKind describes how a numeric column is displayed.
type ColumnKind string

const (
	KindAmount      ColumnKind = "amount"       // currency, scaled by the display unit
	KindPercent     ColumnKind = "percent"      // already a percentage
	KindRatio       ColumnKind = "ratio"        // turnover multiples
	KindCount       ColumnKind = "count"        // headcount
	KindPerEmployee ColumnKind = "per_employee" // thousands of dollars per employee
)

// ColumnInfo is the static metadata of a numeric column.
type ColumnInfo struct {
	Column Column     `json:"column"`
	Label  string     `json:"label"`
	Kind   ColumnKind `json:"kind"`
}

// NumericColumns lists every numeric column in canonical order.
var NumericColumns = []ColumnInfo{
	{ColRevenue, "Revenue", KindAmount},
	{ColCostOfSales, "Cost of Sales", KindAmount},
	{ColSGA, "SG&A", KindAmount},
	{ColOperatingIncome, "Operating Income", KindAmount},
	{ColGrossMarginPct, "Gross Margin (%)", KindPercent},
	{ColOperatingMarginPct, "Operating Margin (%)", KindPercent},
	{ColSGARatioPct, "SG&A Ratio (%)", KindPercent},
	{ColTotalAssets, "Total Assets", KindAmount},
	{ColCurrentAssets, "Current Assets", KindAmount},
	{ColInventory, "Inventory", KindAmount},
	{ColNetAssets, "Net Assets", KindAmount},
	{ColInterestBearingDebt, "Interest-Bearing Debt", KindAmount},
	{ColEquityRatioPct, "Equity Ratio (%)", KindPercent},
	{ColInventoryTurnover, "Inventory Turnover", KindRatio},
	{ColAssetTurnover, "Asset Turnover", KindRatio},
	{ColOperatingCF, "Operating CF", KindAmount},
	{ColInvestingCF, "Investing CF", KindAmount},
	{ColFreeCF, "Free CF", KindAmount},
	{ColEmployees, "Employees", KindCount},
	{ColRevenuePerEmployee, "Revenue per Employee", KindPerEmployee},
	{ColOperatingIncomePerEmployee, "Operating Income per Employee", KindPerEmployee},
}

// RequiredColumns must be present in every dataset.
var RequiredColumns = []Column{
	ColCompany,
	ColFiscalYear,
	ColRevenue,
	ColCostOfSales,
	ColSGA,
	ColOperatingIncome,
}

var columnIndex = func() map[Column]ColumnInfo {
	m := make(map[Column]ColumnInfo, len(NumericColumns))
	for _, info := range NumericColumns {
		m[info.Column] = info
	}
	return m
}()

// Info returns the metadata for a numeric column.
func Info(col Column) (ColumnInfo, bool) {
	info, ok := columnIndex[col]
	return info, ok
}

// Label returns the display label of a column, falling back to its key.
func (c Column) Label() string {
	if info, ok := columnIndex[c]; ok {
		return info.Label
	}
	switch c {
	case ColCompany:
		return "Company"
	case ColFiscalYear:
		return "Fiscal Year"
	}
	return string(c)
}

// FinancialRecord is one company's figures for one fiscal year.
// Empty cells are stored as NaN.
type FinancialRecord struct {
	Company                    string  `json:"company" validate:"required"`
	FiscalYear                 int     `json:"fiscal_year" validate:"required,gt=0"`
	Revenue                    float64 `json:"revenue"`
	CostOfSales                float64 `json:"cost_of_sales"`
	SGA                        float64 `json:"sga"`
	OperatingIncome            float64 `json:"operating_income"`
	GrossMarginPct             float64 `json:"gross_margin_pct"`
	OperatingMarginPct         float64 `json:"operating_margin_pct"`
	SGARatioPct                float64 `json:"sga_ratio_pct"`
	TotalAssets                float64 `json:"total_assets"`
	CurrentAssets              float64 `json:"current_assets"`
	Inventory                  float64 `json:"inventory"`
	NetAssets                  float64 `json:"net_assets"`
	InterestBearingDebt        float64 `json:"interest_bearing_debt"`
	EquityRatioPct             float64 `json:"equity_ratio_pct"`
	InventoryTurnover          float64 `json:"inventory_turnover"`
	AssetTurnover              float64 `json:"asset_turnover"`
	OperatingCF                float64 `json:"operating_cf"`
	InvestingCF                float64 `json:"investing_cf"`
	FreeCF                     float64 `json:"free_cf"`
	Employees                  float64 `json:"employees"`
	RevenuePerEmployee         float64 `json:"revenue_per_employee"`
	OperatingIncomePerEmployee float64 `json:"operating_income_per_employee"`
}

// NewRecord returns a record whose numeric fields are all NaN.
func NewRecord(company string, year int) FinancialRecord {
	r := FinancialRecord{Company: company, FiscalYear: year}
	for _, info := range NumericColumns {
		*r.field(info.Column) = math.NaN()
	}
	return r
}

// Get returns the value of a numeric column.
func (r FinancialRecord) Get(col Column) float64 {
	p := r.field(col)
	if p == nil {
		return math.NaN()
	}
	return *p
}

// Set assigns a numeric column.
func (r *FinancialRecord) Set(col Column, v float64) error {
	p := r.field(col)
	if p == nil {
		return fmt.Errorf("column %q is not numeric", col)
	}
	*p = v
	return nil
}

// Key identifies the record within a table.
func (r FinancialRecord) Key() RecordKey {
	return RecordKey{Company: r.Company, FiscalYear: r.FiscalYear}
}

func (r *FinancialRecord) field(col Column) *float64 {
	switch col {
	case ColRevenue:
		return &r.Revenue
	case ColCostOfSales:
		return &r.CostOfSales
	case ColSGA:
		return &r.SGA
	case ColOperatingIncome:
		return &r.OperatingIncome
	case ColGrossMarginPct:
		return &r.GrossMarginPct
	case ColOperatingMarginPct:
		return &r.OperatingMarginPct
	case ColSGARatioPct:
		return &r.SGARatioPct
	case ColTotalAssets:
		return &r.TotalAssets
	case ColCurrentAssets:
		return &r.CurrentAssets
	case ColInventory:
		return &r.Inventory
	case ColNetAssets:
		return &r.NetAssets
	case ColInterestBearingDebt:
		return &r.InterestBearingDebt
	case ColEquityRatioPct:
		return &r.EquityRatioPct
	case ColInventoryTurnover:
		return &r.InventoryTurnover
	case ColAssetTurnover:
		return &r.AssetTurnover
	case ColOperatingCF:
		return &r.OperatingCF
	case ColInvestingCF:
		return &r.InvestingCF
	case ColFreeCF:
		return &r.FreeCF
	case ColEmployees:
		return &r.Employees
	case ColRevenuePerEmployee:
		return &r.RevenuePerEmployee
	case ColOperatingIncomePerEmployee:
		return &r.OperatingIncomePerEmployee
	}
	return nil
}

// RecordKey is the (company, fiscal year) identity of a record.
type RecordKey struct {
	Company    string
	FiscalYear int
}

func (k RecordKey) String() string {
	return fmt.Sprintf("%s/%s", k.Company, FormatFY(k.FiscalYear))
}

// FormatFY renders a fiscal year label such as "FY2023".
func FormatFY(year int) string {
	return fmt.Sprintf("FY%d", year)
}
