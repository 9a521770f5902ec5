package validation

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrNotWorkbook is returned for a path that cannot be an xlsx workbook.
var ErrNotWorkbook = errors.New("not an Excel workbook")

var workbookExtensions = map[string]bool{".xlsx": true, ".xlsm": true}

// IsTempWorkbook reports whether path is an Excel lock file such as
// ~$financial_data_us.xlsx.
func IsTempWorkbook(path string) bool {
	return strings.HasPrefix(filepath.Base(path), "~$")
}

// WorkbookFile checks that path names a readable workbook type.
// Existence is left to the caller.
func WorkbookFile(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if !workbookExtensions[ext] {
		return fmt.Errorf("%w: %s (extension %q)", ErrNotWorkbook, path, ext)
	}
	if IsTempWorkbook(path) {
		return fmt.Errorf("%w: %s is a temporary Excel file", ErrNotWorkbook, path)
	}
	return nil
}
