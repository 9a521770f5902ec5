package dashboard

import (
	"fmt"
	"math"

	"findash/internal/charts"
	"findash/internal/dataprocessing"
	"findash/internal/palette"
	"findash/pkg/contracts/domain"
)

const (
	// Footer closes every page and report.
	Footer = "U.S. Retail Financial Analysis Dashboard"

	// NoCompanyMessage replaces the views when nothing is selected.
	NoCompanyMessage = "Select at least one company."

	// ProductivityCaption explains the per-employee unit.
	ProductivityCaption = "Per-employee figures are in thousands of dollars."
)

// Options tunes a render pass. DivideDefault is the per-employee value
// for a zero headcount.
type Options struct {
	Lookback      int
	ChartWidth    int
	ChartHeight   int
	DivideDefault float64
}

// DefaultOptions returns the standard trend window and chart size.
func DefaultOptions() Options {
	return Options{
		Lookback:      dataprocessing.DefaultLookback,
		ChartWidth:    800,
		ChartHeight:   420,
		DivideDefault: dataprocessing.DefaultDivideFallback,
	}
}

// NoDataMessage is shown by each view when the reference year has no rows
// for the selected companies.
func NoDataMessage(year int) string {
	return fmt.Sprintf("No data for %s.", domain.FormatFY(year))
}

type builder struct {
	sel     domain.Selection
	colors  map[string]string
	cfg     charts.Config
	compare *domain.Table
	fy      string
	err     error
}

// Build runs one render pass. table is the loaded dataset and is not
// modified; categoryLabel is shown in the header.
func Build(sel domain.Selection, table *domain.Table, categoryLabel string, opts Options) (*Dashboard, error) {
	d := &Dashboard{
		Selection: sel,
		Header: Header{
			Category: categoryLabel,
			Year:     domain.FormatFY(sel.Year),
			Unit:     UnitName(sel.Unit),
		},
		Footer: Footer,
	}
	if sel.NoCompanies() {
		d.Notices = append(d.Notices, Notice{Level: LevelWarning, Message: NoCompanyMessage})
		return d, nil
	}
	d.Colors = palette.AssignColors(sel.Companies)

	// per-employee figures derive from raw amounts, so scale afterwards
	compare, _, err := dataprocessing.EnsureProductivity(
		dataprocessing.ComparisonSubset(table, sel.Companies, sel.Year), opts.DivideDefault)
	if err != nil {
		return nil, fmt.Errorf("derive productivity: %w", err)
	}
	compare, err = dataprocessing.ScaleAmounts(compare, sel.Unit)
	if err != nil {
		return nil, fmt.Errorf("scale amounts: %w", err)
	}

	b := &builder{
		sel:     sel,
		colors:  d.Colors,
		cfg:     charts.DefaultConfig().WithSize(opts.ChartWidth, opts.ChartHeight),
		compare: compare,
		fy:      domain.FormatFY(sel.Year),
	}
	for _, id := range Views {
		d.Views = append(d.Views, b.view(id))
	}

	if sel.ShowTrend {
		if d.Trend, err = b.trend(table, opts.Lookback); err != nil {
			return nil, err
		}
	}
	if b.err != nil {
		return nil, fmt.Errorf("render charts: %w", b.err)
	}
	return d, nil
}

func (b *builder) view(id ViewID) View {
	v := View{
		ID:      id,
		Name:    id.Name(),
		Heading: fmt.Sprintf("%s Comparison - %s", id.Name(), b.fy),
	}
	if b.compare.Empty() {
		v.Notice = &Notice{Level: LevelWarning, Message: NoDataMessage(b.sel.Year)}
		return v
	}
	v.ReportTitle = v.Heading

	switch id {
	case ViewPL:
		b.incomeStatement(&v)
	case ViewBS:
		b.balanceSheet(&v)
	case ViewMetrics:
		b.metrics(&v)
	case ViewCF:
		b.cashFlow(&v)
	case ViewProductivity:
		b.productivity(&v)
	}
	return v
}

func (b *builder) unavailable(v *View, what string) {
	v.Notice = &Notice{Level: LevelInfo, Message: what + " data is not available."}
	v.ReportTitle = ""
}

func (b *builder) amountTitle(label string) string {
	return fmt.Sprintf("%s (%s)", label, b.sel.Unit.Label())
}

// chart renders plot for the page. The first render failure is kept and
// returned by Build.
func (b *builder) chart(id string, plot *charts.Chart) Chart {
	svg, err := plot.SVG()
	if err != nil && b.err == nil {
		b.err = fmt.Errorf("chart %s: %w", id, err)
	}
	return Chart{ID: id, Title: plot.Title, SVG: svg, plot: plot}
}

func (b *builder) incomeStatement(v *View) {
	t := b.compare.SortedDesc(domain.ColRevenue)
	names := recordOrder(t)

	composition := charts.StackedBarChart(names, []charts.Series{
		{Name: "Cost of Sales", Color: palette.CostOfSales, Values: t.Values(domain.ColCostOfSales)},
		{Name: "SG&A", Color: palette.SGA, Values: t.Values(domain.ColSGA)},
		{Name: "Operating Income", Color: palette.OperatingIncome, Values: t.Values(domain.ColOperatingIncome)},
	}, charts.Options{YTitle: b.amountTitle("Amount")}, b.cfg.WithTitle(b.fy+" Revenue Composition"))
	v.Charts = append(v.Charts, b.chart("composition", composition))

	if t.Has(domain.ColOperatingMarginPct) {
		margin := charts.HorizontalBarChart(b.companyBars(t, domain.ColOperatingMarginPct, "%.1f%%"),
			charts.Options{XTitle: "Operating margin (%)"}, b.cfg.WithTitle("Operating Margin"))
		v.Charts = append(v.Charts, b.chart("operating-margin", margin))
	}

	v.Table = b.table(t, t.Present(
		domain.ColRevenue, domain.ColCostOfSales, domain.ColSGA, domain.ColOperatingIncome,
		domain.ColGrossMarginPct, domain.ColOperatingMarginPct, domain.ColSGARatioPct,
	))
	v.ReportChart = "composition"
}

func (b *builder) balanceSheet(v *View) {
	cols := b.compare.Present(
		domain.ColTotalAssets, domain.ColCurrentAssets, domain.ColInventory,
		domain.ColNetAssets, domain.ColInterestBearingDebt, domain.ColEquityRatioPct,
	)
	if len(cols) == 0 {
		b.unavailable(v, "Balance sheet")
		return
	}

	t := b.compare
	if t.Has(domain.ColTotalAssets) {
		t = t.SortedDesc(domain.ColTotalAssets)
		assets := charts.BarChart(b.companyBars(t, domain.ColTotalAssets, ""),
			charts.Options{YTitle: b.amountTitle("Total assets")}, b.cfg.WithTitle("Total Assets"))
		v.Charts = append(v.Charts, b.chart("total-assets", assets))
	}
	if t.Has(domain.ColEquityRatioPct) {
		equity := charts.BarChart(b.companyBars(t, domain.ColEquityRatioPct, ""), charts.Options{
			YTitle:   "Equity ratio (%)",
			RefLines: []charts.RefLine{{Value: 50, Color: palette.ReferenceLine, Label: "50% reference"}},
		}, b.cfg.WithTitle("Equity Ratio"))
		v.Charts = append(v.Charts, b.chart("equity-ratio", equity))
	}

	v.Table = b.table(t, cols)
	v.ReportChart = "total-assets"
}

func (b *builder) metrics(v *View) {
	cols := b.compare.Present(
		domain.ColOperatingMarginPct, domain.ColGrossMarginPct, domain.ColSGARatioPct,
		domain.ColInventoryTurnover, domain.ColAssetTurnover, domain.ColEquityRatioPct,
	)
	if len(cols) == 0 {
		b.unavailable(v, "Financial metric")
		return
	}

	t := b.compare
	if t.Has(domain.ColInventoryTurnover) && t.Has(domain.ColOperatingMarginPct) {
		var points []charts.Point
		for _, r := range t.Records() {
			points = append(points, charts.Point{
				Label: r.Company,
				X:     r.InventoryTurnover,
				Y:     r.OperatingMarginPct,
				Color: palette.ColorFor(b.colors, r.Company),
			})
		}
		efficiency := charts.ScatterChart(points, charts.Options{
			XTitle: "Inventory turnover (x)",
			YTitle: "Operating margin (%)",
		}, b.cfg.WithTitle("Inventory Efficiency vs Profitability"))
		v.Charts = append(v.Charts, b.chart("efficiency", efficiency))
	}
	if t.Has(domain.ColAssetTurnover) {
		turnover := charts.HorizontalBarChart(b.companyBars(t, domain.ColAssetTurnover, "%.2f"),
			charts.Options{XTitle: "Asset turnover (x)"}, b.cfg.WithTitle("Asset Turnover"))
		v.Charts = append(v.Charts, b.chart("asset-turnover", turnover))
	}

	v.Table = b.table(t, cols)
	v.ReportChart = "efficiency"
}

var cashFlowColors = map[domain.Column]string{
	domain.ColOperatingCF: palette.Positive,
	domain.ColInvestingCF: palette.Accent,
	domain.ColFreeCF:      palette.PositiveFreeCF,
}

func (b *builder) cashFlow(v *View) {
	cols := b.compare.Present(domain.ColOperatingCF, domain.ColInvestingCF, domain.ColFreeCF)
	if len(cols) == 0 {
		b.unavailable(v, "Cash flow")
		return
	}

	t := b.compare
	names := recordOrder(t)
	if t.Has(domain.ColOperatingCF) {
		operating := charts.BarChart(signBars(t, domain.ColOperatingCF, palette.Positive),
			charts.Options{YTitle: b.amountTitle("Operating CF")}, b.cfg.WithTitle("Operating Cash Flow"))
		v.Charts = append(v.Charts, b.chart("operating-cf", operating))
	}
	if t.Has(domain.ColFreeCF) {
		free := charts.BarChart(signBars(t, domain.ColFreeCF, palette.PositiveFreeCF),
			charts.Options{YTitle: b.amountTitle("Free CF")}, b.cfg.WithTitle("Free Cash Flow"))
		v.Charts = append(v.Charts, b.chart("free-cf", free))
	}

	series := make([]charts.Series, 0, len(cols))
	for _, col := range cols {
		series = append(series, charts.Series{Name: col.Label(), Color: cashFlowColors[col], Values: t.Values(col)})
	}
	comparison := charts.GroupedBarChart(names, series,
		charts.Options{YTitle: b.amountTitle("Amount")},
		b.cfg.WithSize(b.cfg.Width*3/2, 0).WithTitle("Cash Flow Comparison"))
	v.Charts = append(v.Charts, b.chart("cf-comparison", comparison))

	v.Table = b.table(t, cols)
	v.ReportChart = "cf-comparison"
}

func (b *builder) productivity(v *View) {
	t := b.compare
	if !t.HasAny(domain.ColRevenuePerEmployee, domain.ColOperatingIncomePerEmployee) {
		b.unavailable(v, "Productivity")
		return
	}

	if t.Has(domain.ColRevenuePerEmployee) {
		revenue := charts.BarChart(b.companyBars(t, domain.ColRevenuePerEmployee, ""),
			charts.Options{YTitle: "Revenue ($K / employee)"}, b.cfg.WithTitle("Revenue per Employee"))
		v.Charts = append(v.Charts, b.chart("revenue-per-employee", revenue))
	}
	if t.Has(domain.ColOperatingIncomePerEmployee) {
		bars := b.companyBars(t, domain.ColOperatingIncomePerEmployee, "")
		for i := range bars {
			bars[i].Color = palette.Accent
		}
		income := charts.BarChart(bars, charts.Options{YTitle: "Operating income ($K / employee)"},
			b.cfg.WithTitle("Operating Income per Employee"))
		v.Charts = append(v.Charts, b.chart("operating-income-per-employee", income))
	}

	v.Table = b.table(t, t.Present(
		domain.ColEmployees, domain.ColRevenuePerEmployee, domain.ColOperatingIncomePerEmployee,
	))
	v.Caption = ProductivityCaption
	v.ReportChart = "revenue-per-employee"
}

func (b *builder) trend(table *domain.Table, lookback int) (*Trend, error) {
	sub, years := dataprocessing.TrendSubset(table, b.sel.Companies, b.sel.Year, lookback)
	if sub.Empty() {
		return nil, nil
	}
	scaled, err := dataprocessing.ScaleAmounts(sub, b.sel.Unit)
	if err != nil {
		return nil, fmt.Errorf("scale trend: %w", err)
	}

	labels := make([]string, len(years))
	for i, y := range years {
		labels[i] = domain.FormatFY(y)
	}

	trend := &Trend{
		Title: fmt.Sprintf("Historical Trend (%s-%s)", labels[0], labels[len(labels)-1]),
		Years: years,
	}
	revenue := charts.LineChart(labels, b.trendSeries(scaled, domain.ColRevenue, years, charts.MarkerCircle),
		charts.Options{YTitle: b.amountTitle("Revenue")}, b.cfg.WithTitle("Revenue Trend"))
	trend.Charts = append(trend.Charts, b.chart("revenue-trend", revenue))
	if scaled.Has(domain.ColOperatingMarginPct) {
		margin := charts.LineChart(labels, b.trendSeries(scaled, domain.ColOperatingMarginPct, years, charts.MarkerSquare),
			charts.Options{YTitle: "Operating margin (%)"}, b.cfg.WithTitle("Operating Margin Trend"))
		trend.Charts = append(trend.Charts, b.chart("operating-margin-trend", margin))
	}
	return trend, nil
}

// trendSeries builds one series per selected company with rows in the
// window, in selection order. Years without a row are gaps.
func (b *builder) trendSeries(t *domain.Table, col domain.Column, years []int, m charts.Marker) []charts.Series {
	byCompany := dataprocessing.SeriesByCompany(t, col)
	var out []charts.Series
	for _, c := range b.sel.Companies {
		byYear, ok := byCompany[c]
		if !ok {
			continue
		}
		values := make([]float64, len(years))
		for i, y := range years {
			v, ok := byYear[y]
			if !ok {
				v = math.NaN()
			}
			values[i] = v
		}
		out = append(out, charts.Series{
			Name:   c,
			Color:  palette.ColorFor(b.colors, c),
			Values: values,
			Marker: m,
		})
	}
	return out
}

// companyBars makes one bar per record in company colors. textFormat,
// when set, labels each bar with its value.
func (b *builder) companyBars(t *domain.Table, col domain.Column, textFormat string) []charts.Bar {
	recs := t.Records()
	bars := make([]charts.Bar, len(recs))
	for i, r := range recs {
		v := r.Get(col)
		bars[i] = charts.Bar{Label: r.Company, Value: v, Color: palette.ColorFor(b.colors, r.Company)}
		if textFormat != "" && !math.IsNaN(v) {
			bars[i].Text = fmt.Sprintf(textFormat, v)
		}
	}
	return bars
}

// signBars colors non-negative values positive and negative ones red.
func signBars(t *domain.Table, col domain.Column, positive string) []charts.Bar {
	recs := t.Records()
	bars := make([]charts.Bar, len(recs))
	for i, r := range recs {
		v := r.Get(col)
		color := positive
		if v < 0 {
			color = palette.Negative
		}
		bars[i] = charts.Bar{Label: r.Company, Value: v, Color: color}
	}
	return bars
}

func (b *builder) table(t *domain.Table, cols []domain.Column) *Table {
	out := &Table{
		Columns: make([]string, 0, len(cols)+1),
		Keys:    cols,
	}
	out.Columns = append(out.Columns, domain.ColCompany.Label())
	for _, col := range cols {
		out.Columns = append(out.Columns, ColumnHeader(col, b.sel.Unit))
	}
	for _, r := range t.Records() {
		row := make([]string, 0, len(cols)+1)
		values := make([]float64, 0, len(cols))
		row = append(row, r.Company)
		for _, col := range cols {
			v := r.Get(col)
			row = append(row, FormatValue(col, v))
			values = append(values, v)
		}
		out.Rows = append(out.Rows, row)
		out.Companies = append(out.Companies, r.Company)
		out.Values = append(out.Values, values)
	}
	return out
}

// recordOrder lists company names in record order.
func recordOrder(t *domain.Table) []string {
	recs := t.Records()
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Company
	}
	return out
}
