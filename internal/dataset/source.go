// Package dataset owns the loaded financial table: where it comes from,
// when it is (re)loaded and which immutable snapshot requests read.
package dataset

import (
	"context"
	"errors"
	"fmt"
	"os"

	"findash/internal/config"
	"findash/internal/dataprocessing"
	apierrors "findash/internal/errors"
	"findash/internal/validation"
	"findash/pkg/contracts/domain"
)

// ErrSourceNotFound reports that the configured dataset does not exist.
var ErrSourceNotFound = errors.New("dataset source not found")

// MissingWorkbookHint tells the operator how to provide the workbook.
const MissingWorkbookHint = "Create a data/ folder and place financial_data_us.xlsx in it."

// Source produces a fresh table on every Load.
type Source interface {
	Name() string
	Load(ctx context.Context) (*domain.Table, error)
}

// WorkbookSource reads an xlsx file from disk.
type WorkbookSource struct {
	Path  string
	Sheet string
}

// NewWorkbookSource returns a source for the workbook at path. An empty
// sheet means every sheet is tried in order.
func NewWorkbookSource(path, sheet string) *WorkbookSource {
	return &WorkbookSource{Path: path, Sheet: sheet}
}

func (s *WorkbookSource) Name() string { return "workbook" }

func (s *WorkbookSource) Load(ctx context.Context) (*domain.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(s.Path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apierrors.NewStorageError(MissingWorkbookHint,
				fmt.Errorf("%w: %s", ErrSourceNotFound, s.Path)).WithContext("path", s.Path)
		}
		return nil, apierrors.NewStorageError("failed to stat workbook", err).WithContext("path", s.Path)
	}
	if err := validation.WorkbookFile(s.Path); err != nil {
		return nil, apierrors.NewConfigError("workbook path is not an xlsx file", err).WithContext("path", s.Path)
	}
	return dataprocessing.ParseFile(s.Path, s.Sheet)
}

// NewSource builds the source selected by the data config.
func NewSource(ctx context.Context, cfg config.DataConfig, paths *config.Paths) (Source, error) {
	switch cfg.Source {
	case config.SourceSheets:
		src, err := NewSheetsSource(ctx, cfg.Sheets)
		if err != nil {
			return nil, err
		}
		return src, nil
	case config.SourceWorkbook, "":
		return NewWorkbookSource(paths.WorkbookFile, cfg.Sheet), nil
	default:
		return nil, apierrors.NewConfigError(fmt.Sprintf("unknown data source %q", cfg.Source), nil)
	}
}
