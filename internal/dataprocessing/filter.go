package dataprocessing

import "findash/pkg/contracts/domain"

// DefaultLookback is the number of years before the reference year that
// the trend window covers.
const DefaultLookback = 4

func companySet(companies []string) map[string]struct{} {
	set := make(map[string]struct{}, len(companies))
	for _, c := range companies {
		set[c] = struct{}{}
	}
	return set
}

// ComparisonSubset keeps the rows of the selected companies for one year.
func ComparisonSubset(t *domain.Table, companies []string, year int) *domain.Table {
	set := companySet(companies)
	return t.Filter(func(r domain.FinancialRecord) bool {
		_, ok := set[r.Company]
		return ok && r.FiscalYear == year
	})
}

// TrendSubset keeps the rows of the selected companies whose fiscal year
// lies in [referenceYear-lookback, referenceYear] and is present in the
// table. It also returns the window years actually present, ascending.
// A negative lookback is treated as zero.
func TrendSubset(t *domain.Table, companies []string, referenceYear, lookback int) (*domain.Table, []int) {
	if lookback < 0 {
		lookback = 0
	}
	low := referenceYear - lookback

	var window []int
	inWindow := make(map[int]struct{})
	for _, y := range t.Years() {
		if y >= low && y <= referenceYear {
			window = append(window, y)
			inWindow[y] = struct{}{}
		}
	}

	set := companySet(companies)
	sub := t.Filter(func(r domain.FinancialRecord) bool {
		if _, ok := set[r.Company]; !ok {
			return false
		}
		_, ok := inWindow[r.FiscalYear]
		return ok
	})
	return sub, window
}

// SeriesByCompany groups one column of a trend table by company, keyed by
// fiscal year. Missing years are absent from the inner map.
func SeriesByCompany(t *domain.Table, col domain.Column) map[string]map[int]float64 {
	out := make(map[string]map[int]float64)
	for _, r := range t.Records() {
		m, ok := out[r.Company]
		if !ok {
			m = make(map[int]float64)
			out[r.Company] = m
		}
		m[r.FiscalYear] = r.Get(col)
	}
	return out
}
