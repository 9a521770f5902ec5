// Package shared holds helpers used across packages that belong to no
// single layer.
//
// testutil provides captured slog loggers and excelize workbook fixtures
// for tests. It must only be imported from _test.go files.
package shared
