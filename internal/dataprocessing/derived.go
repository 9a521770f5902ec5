package dataprocessing

import (
	"fmt"

	"findash/pkg/contracts/domain"
)

// DefaultDivideFallback is the per-employee value for a zero headcount
// unless dashboard.divide_default overrides it.
const DefaultDivideFallback = 0.0

// SafeDivide returns n/d, or def when d is zero.
func SafeDivide(n, d, def float64) float64 {
	if d == 0 {
		return def
	}
	return n / d
}

// SafeDivideVec divides element-wise with SafeDivide semantics.
func SafeDivideVec(n, d []float64, def float64) ([]float64, error) {
	if len(n) != len(d) {
		return nil, fmt.Errorf("safe divide: length mismatch %d != %d", len(n), len(d))
	}
	out := make([]float64, len(n))
	for i := range n {
		out[i] = SafeDivide(n[i], d[i], def)
	}
	return out, nil
}

// PerEmployee returns revenue and operating income per employee in
// thousands of dollars. A zero headcount yields fallback.
func PerEmployee(revenue, operatingIncome, employees []float64, fallback float64) (revPer, opPer []float64, err error) {
	if revPer, err = SafeDivideVec(thousands(revenue), employees, fallback); err != nil {
		return nil, nil, err
	}
	if opPer, err = SafeDivideVec(thousands(operatingIncome), employees, fallback); err != nil {
		return nil, nil, err
	}
	return revPer, opPer, nil
}

func thousands(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = v / 1000
	}
	return out
}

// EnsureProductivity fills in absent per-employee columns from headcount.
// Columns the source already provides are left untouched. The returned
// flag reports whether revenue per employee is available afterwards. A
// zero headcount yields fallback.
func EnsureProductivity(t *domain.Table, fallback float64) (*domain.Table, bool, error) {
	derivations := []struct {
		target domain.Column
		source domain.Column
	}{
		{domain.ColRevenuePerEmployee, domain.ColRevenue},
		{domain.ColOperatingIncomePerEmployee, domain.ColOperatingIncome},
	}

	out := t
	for _, d := range derivations {
		if out.Has(d.target) || !out.Has(d.source) || !out.Has(domain.ColEmployees) {
			continue
		}
		values, err := SafeDivideVec(thousands(out.Values(d.source)), out.Values(domain.ColEmployees), fallback)
		if err != nil {
			return nil, false, err
		}
		if out, err = out.WithColumn(d.target, values); err != nil {
			return nil, false, err
		}
	}
	return out, out.Has(domain.ColRevenuePerEmployee), nil
}
