package dataprocessing

import "findash/pkg/contracts/domain"

// ScaleAmounts returns a copy of the table with every present currency
// column divided by the unit. Ratios, percentages, headcount and
// per-employee figures are unchanged. The result is for display only.
func ScaleAmounts(t *domain.Table, unit domain.Unit) (*domain.Table, error) {
	out := t
	for _, col := range t.Columns() {
		info, _ := domain.Info(col)
		if info.Kind != domain.KindAmount {
			continue
		}
		values := out.Values(col)
		for i := range values {
			values[i] = unit.Scale(values[i])
		}
		var err error
		if out, err = out.WithColumn(col, values); err != nil {
			return nil, err
		}
	}
	return out, nil
}
