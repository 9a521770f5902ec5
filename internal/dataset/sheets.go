package dataset

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"findash/internal/config"
	"findash/internal/dataprocessing"
	apierrors "findash/internal/errors"
	"findash/pkg/contracts/domain"
)

// SheetsSource reads the dataset from a Google Sheets range laid out like
// the workbook: a header row followed by one row per company and year.
type SheetsSource struct {
	cfg     config.SheetsConfig
	service *sheets.Service
}

// NewSheetsSource builds the Sheets client. Credentials come from the
// config unless opts supply their own.
func NewSheetsSource(ctx context.Context, cfg config.SheetsConfig, opts ...option.ClientOption) (*SheetsSource, error) {
	if cfg.SpreadsheetID == "" {
		return nil, apierrors.NewConfigError("spreadsheet id is required", nil)
	}
	if len(opts) == 0 {
		switch {
		case cfg.CredentialsFile != "":
			opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
		case cfg.APIKey != "":
			opts = append(opts, option.WithAPIKey(cfg.APIKey))
		}
	}

	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, apierrors.NewConfigError("failed to create sheets service", err)
	}
	return &SheetsSource{cfg: cfg, service: service}, nil
}

func (s *SheetsSource) Name() string { return "sheets" }

func (s *SheetsSource) Load(ctx context.Context) (*domain.Table, error) {
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	resp, err := s.service.Spreadsheets.Values.Get(s.cfg.SpreadsheetID, s.cfg.Range).
		ValueRenderOption("UNFORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == http.StatusNotFound {
			return nil, apierrors.NewStorageError("spreadsheet not found",
				fmt.Errorf("%w: %s", ErrSourceNotFound, s.cfg.SpreadsheetID))
		}
		return nil, apierrors.NewNetworkError("failed to fetch spreadsheet values", err).
			WithContext("spreadsheet_id", s.cfg.SpreadsheetID)
	}

	rows := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		rows[i] = make([]string, len(row))
		for j, v := range row {
			rows[i][j] = cellString(v)
		}
	}
	return dataprocessing.ParseRows(rows)
}

// cellString renders an unformatted Sheets value as plain text.
func cellString(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}
