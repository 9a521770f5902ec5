package domain

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrDuplicateRecord is returned when two records share a company and fiscal year.
var ErrDuplicateRecord = errors.New("duplicate record for company and fiscal year")

// Table is an immutable set of financial records together with the
// numeric columns the source actually provided.
type Table struct {
	records []FinancialRecord
	columns map[Column]struct{}
}

// NewTable validates uniqueness of (company, fiscal year) and returns a table.
// The records slice is copied.
func NewTable(records []FinancialRecord, columns []Column) (*Table, error) {
	seen := make(map[RecordKey]struct{}, len(records))
	for _, r := range records {
		k := r.Key()
		if _, dup := seen[k]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateRecord, k)
		}
		seen[k] = struct{}{}
	}

	t := &Table{
		records: append([]FinancialRecord(nil), records...),
		columns: make(map[Column]struct{}, len(columns)),
	}
	for _, c := range columns {
		t.columns[c] = struct{}{}
	}
	return t, nil
}

// Len returns the number of records.
func (t *Table) Len() int { return len(t.records) }

// Empty reports whether the table has no records.
func (t *Table) Empty() bool { return len(t.records) == 0 }

// Records returns a copy of the records.
func (t *Table) Records() []FinancialRecord {
	return append([]FinancialRecord(nil), t.records...)
}

// Has reports whether the source provided the column.
func (t *Table) Has(col Column) bool {
	_, ok := t.columns[col]
	return ok
}

// HasAny reports whether any of the columns is present.
func (t *Table) HasAny(cols ...Column) bool {
	for _, c := range cols {
		if t.Has(c) {
			return true
		}
	}
	return false
}

// Columns returns the present numeric columns in canonical order.
func (t *Table) Columns() []Column {
	out := make([]Column, 0, len(t.columns))
	for _, info := range NumericColumns {
		if t.Has(info.Column) {
			out = append(out, info.Column)
		}
	}
	return out
}

// Present filters cols to those present, preserving order.
func (t *Table) Present(cols ...Column) []Column {
	out := make([]Column, 0, len(cols))
	for _, c := range cols {
		if t.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// Companies returns the distinct company names, sorted.
func (t *Table) Companies() []string {
	set := make(map[string]struct{})
	for _, r := range t.records {
		set[r.Company] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Years returns the distinct fiscal years, ascending.
func (t *Table) Years() []int {
	set := make(map[int]struct{})
	for _, r := range t.records {
		set[r.FiscalYear] = struct{}{}
	}
	out := make([]int, 0, len(set))
	for y := range set {
		out = append(out, y)
	}
	sort.Ints(out)
	return out
}

// LatestYear returns the most recent fiscal year, or false when empty.
func (t *Table) LatestYear() (int, bool) {
	years := t.Years()
	if len(years) == 0 {
		return 0, false
	}
	return years[len(years)-1], true
}

// Values returns the column as a vector in record order.
func (t *Table) Values(col Column) []float64 {
	out := make([]float64, len(t.records))
	for i, r := range t.records {
		out[i] = r.Get(col)
	}
	return out
}

// Filter returns a new table with the records for which keep returns true.
// The column set is unchanged.
func (t *Table) Filter(keep func(FinancialRecord) bool) *Table {
	out := &Table{columns: t.columns}
	for _, r := range t.records {
		if keep(r) {
			out.records = append(out.records, r)
		}
	}
	return out
}

// Sorted returns a new table ordered by less. The sort is stable.
func (t *Table) Sorted(less func(a, b FinancialRecord) bool) *Table {
	recs := t.Records()
	sort.SliceStable(recs, func(i, j int) bool { return less(recs[i], recs[j]) })
	return &Table{records: recs, columns: t.columns}
}

// SortedDesc orders records by a column, highest first. NaN sorts last.
func (t *Table) SortedDesc(col Column) *Table {
	return t.Sorted(func(a, b FinancialRecord) bool {
		va, vb := a.Get(col), b.Get(col)
		if math.IsNaN(va) {
			return false
		}
		if math.IsNaN(vb) {
			return true
		}
		return va > vb
	})
}

// WithColumn returns a copy of the table with col computed for every record.
// values must have one entry per record, in record order.
func (t *Table) WithColumn(col Column, values []float64) (*Table, error) {
	if len(values) != len(t.records) {
		return nil, fmt.Errorf("column %s: got %d values for %d records", col, len(values), len(t.records))
	}
	recs := t.Records()
	for i := range recs {
		if err := recs[i].Set(col, values[i]); err != nil {
			return nil, err
		}
	}
	cols := make(map[Column]struct{}, len(t.columns)+1)
	for c := range t.columns {
		cols[c] = struct{}{}
	}
	cols[col] = struct{}{}
	return &Table{records: recs, columns: cols}, nil
}
