// Package dataprocessing turns spreadsheet rows into financial tables and
// derives the comparison subsets the dashboard renders.
//
// # Components
//
//  1. Parser: maps a header row (Japanese or English labels) to columns and
//     reads records, from an xlsx file via excelize or from raw rows.
//  2. Derived metrics: zero-safe division and per-employee productivity.
//  3. Filters: single-year comparison subsets and multi-year trend windows.
//  4. Units: display-only scaling of currency amounts.
//
// Every function returns a new table. Inputs are never modified.
//
// # Data Flow
//
//	xlsx / sheet rows → ParseRows → Table → ComparisonSubset → EnsureProductivity → ScaleAmounts → views
package dataprocessing
