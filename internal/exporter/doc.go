// Package exporter writes a single dashboard view as a downloadable report.
//
// Three formats are supported:
//
// HTML: a standalone page with the view's report chart embedded as a data
// URI (PNG, or the page SVG when PNG rendering fails), the data table and a
// generation timestamp.
//
// CSV: the unit-converted table behind the view, UTF-8 with a BOM so Excel
// detects the encoding.
//
// PDF: the same table laid out with fpdf, with the PNG chart above it.
//
// Example usage:
//
//	exp := exporter.New(logger)
//	err := exp.Export(ctx, w, dash, dashboard.ViewPL, exporter.FormatHTML)
package exporter
