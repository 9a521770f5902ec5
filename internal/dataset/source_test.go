package dataset

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"google.golang.org/api/option"

	"findash/internal/config"
	apierrors "findash/internal/errors"
	"findash/internal/validation"
	"findash/pkg/contracts/domain"
)

const (
	timeout = 5 * time.Second
	tick    = 20 * time.Millisecond
)

func writeWorkbook(t *testing.T, path string, revenue float64) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"Company", "Fiscal Year", "Revenue", "Cost of Sales", "SG&A", "Operating Income"},
		{"Costco", 2023, revenue, 212586000000.0, 21590000000.0, 8114000000.0},
	}
	for r, row := range rows {
		for c, v := range row {
			cellName, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cellName, v))
		}
	}
	require.NoError(t, f.SaveAs(path))
}

func TestWorkbookSource_Missing(t *testing.T) {
	src := NewWorkbookSource(filepath.Join(t.TempDir(), "data", "financial_data_us.xlsx"), "")

	_, err := src.Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSourceNotFound))

	var appErr *apierrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apierrors.ErrTypeStorage, appErr.Type)
	assert.Equal(t, MissingWorkbookHint, appErr.Message)
}

func TestWorkbookSource_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "financial_data_us.xlsx")
	writeWorkbook(t, path, 242290000000)

	tbl, err := NewWorkbookSource(path, "").Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, tbl.Len())
	assert.Equal(t, []string{"Costco"}, tbl.Companies())
	assert.InDelta(t, 242290000000, tbl.Records()[0].Revenue, 1)
}

func TestWorkbookSource_NotAWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "financial_data_us.csv")
	require.NoError(t, os.WriteFile(path, []byte("Company,Fiscal Year\n"), 0o644))

	_, err := NewWorkbookSource(path, "").Load(context.Background())
	assert.ErrorIs(t, err, validation.ErrNotWorkbook)

	var appErr *apierrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apierrors.ErrTypeConfig, appErr.Type)
}

func TestWorkbookSource_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewWorkbookSource("whatever.xlsx", "").Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewSource(t *testing.T) {
	paths := &config.Paths{WorkbookFile: "/srv/data/financial_data_us.xlsx"}

	src, err := NewSource(context.Background(), config.DataConfig{Source: config.SourceWorkbook, Sheet: "FY"}, paths)
	require.NoError(t, err)
	wb, ok := src.(*WorkbookSource)
	require.True(t, ok)
	assert.Equal(t, paths.WorkbookFile, wb.Path)
	assert.Equal(t, "FY", wb.Sheet)

	_, err = NewSource(context.Background(), config.DataConfig{Source: "ftp"}, paths)
	assert.Error(t, err)

	_, err = NewSource(context.Background(), config.DataConfig{Source: config.SourceSheets}, paths)
	assert.Error(t, err, "sheets source without spreadsheet id")
}

func sheetsServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/v4/spreadsheets/sheet-1/values/") {
			http.NotFound(w, r)
			return
		}
		assert.Equal(t, "UNFORMATTED_VALUE", r.URL.Query().Get("valueRenderOption"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestSheetsSource(t *testing.T, srv *httptest.Server) *SheetsSource {
	t.Helper()
	src, err := NewSheetsSource(context.Background(),
		config.SheetsConfig{SpreadsheetID: "sheet-1", Range: "A1:Z1000", Timeout: timeout},
		option.WithEndpoint(srv.URL+"/"),
		option.WithoutAuthentication(),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return src
}

func TestSheetsSource_Load(t *testing.T) {
	srv := sheetsServer(t, http.StatusOK, `{
		"range": "Sheet1!A1:Z1000",
		"majorDimension": "ROWS",
		"values": [
			["Company", "Fiscal Year", "Revenue", "Cost of Sales", "SG&A", "Operating Income", "Employees"],
			["Walmart", 2023, 648125000000, 490142000000, 130971000000, 27012000000, 2100000],
			["Target", "FY2023", 107412000000, 77736000000, 21713000000, 5707000000, ""]
		]
	}`)

	tbl, err := newTestSheetsSource(t, srv).Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, tbl.Len())
	assert.True(t, tbl.Has(domain.ColEmployees))
	recs := tbl.Records()
	assert.Equal(t, 2023, recs[1].FiscalYear)
	assert.InDelta(t, 2100000, recs[0].Employees, 0.5)
}

func TestSheetsSource_NotFound(t *testing.T) {
	srv := sheetsServer(t, http.StatusNotFound,
		`{"error": {"code": 404, "message": "Requested entity was not found.", "status": "NOT_FOUND"}}`)

	_, err := newTestSheetsSource(t, srv).Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSourceNotFound)
}

func TestSheetsSource_RequestError(t *testing.T) {
	srv := sheetsServer(t, http.StatusBadRequest,
		`{"error": {"code": 400, "message": "Unable to parse range"}}`)

	_, err := newTestSheetsSource(t, srv).Load(context.Background())
	require.Error(t, err)
	var appErr *apierrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apierrors.ErrTypeNetwork, appErr.Type)
}

func TestCellString(t *testing.T) {
	assert.Equal(t, "", cellString(nil))
	assert.Equal(t, "648125000000", cellString(648125000000.0))
	assert.Equal(t, "4.25", cellString(4.25))
	assert.Equal(t, "true", cellString(true))
	assert.Equal(t, "N/A", cellString("N/A"))
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "financial_data_us.xlsx")
	writeWorkbook(t, path, 1000)

	repo := NewRepository(NewWorkbookSource(path, ""), nil, nil)
	first, err := repo.Get(context.Background())
	require.NoError(t, err)

	reloaded := make(chan *Snapshot, 1)
	repo.OnReload(func(_ context.Context, snap *Snapshot) {
		select {
		case reloaded <- snap:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w := NewWatcher(repo, path, 50*time.Millisecond, nil)
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// give the watcher time to register before touching the file
	time.Sleep(100 * time.Millisecond)
	writeWorkbook(t, path, 2000)

	select {
	case snap := <-reloaded:
		assert.NotEqual(t, first.Version, snap.Version)
		assert.InDelta(t, 2000, snap.Table.Records()[0].Revenue, 0.1)
	case <-time.After(timeout):
		t.Fatal("watcher did not reload the dataset")
	}

	cancel()
	assert.NoError(t, <-done)
}
