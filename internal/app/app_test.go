package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"findash/internal/config"
	"findash/internal/dataset"
	"findash/internal/shared/testutil"
	ws "findash/internal/websocket"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.BaseDir = t.TempDir()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0
	cfg.Server.ShutdownTimeout = 5 * time.Second
	cfg.Security.RateLimit.Enabled = false
	return cfg
}

// writeWorkbook creates data/financial_data_us.xlsx under the base dir.
func writeWorkbook(t *testing.T, cfg *config.Config, walmartRevenue float64) {
	t.Helper()
	path := filepath.Join(cfg.Paths.BaseDir, cfg.Paths.DataDir, cfg.Data.WorkbookFile)
	testutil.WriteWorkbook(t, path, testutil.SampleRows(walmartRevenue))
}

func newTestApp(t *testing.T, cfg *config.Config) *Application {
	t.Helper()
	app, err := New(cfg, discardLogger())
	require.NoError(t, err)
	return app
}

func get(app *Application, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestNew_ResolvesPathsAndDirectories(t *testing.T) {
	cfg := testConfig(t)
	app := newTestApp(t, cfg)

	assert.Equal(t, filepath.Join(cfg.Paths.BaseDir, "data", "financial_data_us.xlsx"), app.Paths.WorkbookFile)
	assert.DirExists(t, filepath.Join(cfg.Paths.BaseDir, "exports"))
	assert.DirExists(t, filepath.Join(cfg.Paths.BaseDir, "logs"))
	assert.Nil(t, app.Watcher, "watching is off by default")
	assert.Equal(t, "127.0.0.1:0", app.Server.Addr)
}

func TestNew_InvalidTaxonomy(t *testing.T) {
	cfg := testConfig(t)
	cfg.Data.TaxonomyFile = "taxonomy.yaml"
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Paths.BaseDir, "taxonomy.yaml"), []byte("groups: []\n"), 0644))

	_, err := New(cfg, discardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "taxonomy")
}

func TestRouter_WithData(t *testing.T) {
	cfg := testConfig(t)
	writeWorkbook(t, cfg, 611289000000.0)
	app := newTestApp(t, cfg)

	tests := []struct {
		name        string
		target      string
		status      int
		contentType string
		contains    string
	}{
		{"health", "/api/health", http.StatusOK, "application/json", `"status":"ok"`},
		{"ready", "/api/health/ready", http.StatusOK, "application/json", `"status":"ready"`},
		{"version", "/api/version", http.StatusOK, "application/json", `"api_version":"v1"`},
		{"meta", "/api/v1/meta", http.StatusOK, "application/json", `"supermarkets"`},
		{"options", "/api/v1/categories/supermarkets/options", http.StatusOK, "application/json", `"Costco"`},
		{"dashboard", "/api/v1/dashboard?unit=millions", http.StatusOK, "application/json", `"unit":"millions"`},
		{"page", "/", http.StatusOK, "text/html", `value="Walmart" checked`},
		{"export", "/api/v1/export/pl.csv", http.StatusOK, "text/csv", "Walmart"},
		{"metrics", "/metrics", http.StatusOK, "text/plain", "go_goroutines"},
		{"not found", "/nope", http.StatusNotFound, "application/json", `"trace_id"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(app, tt.target)

			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Header().Get("Content-Type"), tt.contentType)
			assert.Contains(t, rec.Body.String(), tt.contains)
			assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
		})
	}
}

func TestRouter_SecurityHeaders(t *testing.T) {
	app := newTestApp(t, testConfig(t))

	rec := get(app, "/api/health/live")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "connect-src 'self' ws: wss:")
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	app := newTestApp(t, testConfig(t))

	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/meta", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRouter_MissingWorkbook(t *testing.T) {
	app := newTestApp(t, testConfig(t))

	rec := get(app, "/")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "Create a data/ folder")
	assert.NotContains(t, rec.Body.String(), "<form")

	rec = get(app, "/api/v1/dashboard")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var problem map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, "DATA_NOT_LOADED", problem["error_code"])

	assert.Equal(t, http.StatusServiceUnavailable, get(app, "/api/health/ready").Code)
	assert.Equal(t, http.StatusOK, get(app, "/api/health/live").Code)
}

func TestApplication_StartStop(t *testing.T) {
	cfg := testConfig(t)
	writeWorkbook(t, cfg, 611289000000.0)
	app := newTestApp(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, app.Start(ctx, cancel))
	stopped := false
	t.Cleanup(func() {
		if !stopped {
			_ = app.Stop(context.Background())
		}
	})

	base := "http://" + app.Addr()
	resp, err := http.Get(base + "/api/health/live")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+app.Addr()+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	var msg ws.Message
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, ws.TypeConnection, msg.Type)

	// A changed workbook pushes a reload notice to open pages
	_, err = app.Dataset.Get(ctx)
	require.NoError(t, err)
	writeWorkbook(t, cfg, 700000000000.0)
	_, err = app.Dataset.Reload(ctx)
	require.NoError(t, err)

	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, ws.TypeDatasetReloaded, msg.Type)

	stopped = true
	require.NoError(t, app.Stop(context.Background()))

	_, err = http.Get(base + "/api/health/live")
	assert.Error(t, err, "server no longer accepts connections")
}

func TestApplication_WatcherEnabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Data.Watch = true
	app := newTestApp(t, cfg)
	assert.NotNil(t, app.Watcher)

	cfg = testConfig(t)
	cfg.Data.Watch = true
	cfg.Data.Source = config.SourceSheets
	cfg.Data.Sheets.SpreadsheetID = "sheet-id"
	cfg.Data.Sheets.APIKey = "test-key"
	app = newTestApp(t, cfg)
	assert.Nil(t, app.Watcher, "only local workbooks are watched")
	assert.Equal(t, "sheets", app.Dataset.SourceName())
}

func TestWarmupLogsMissingWorkbook(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	app, err := New(testConfig(t), logger)
	require.NoError(t, err)

	app.warmup(context.Background())

	testutil.AssertLogContains(t, logs, slog.LevelWarn, "Financial data not found")
	rec, _ := logs.Find("Financial data not found")
	assert.Equal(t, dataset.MissingWorkbookHint, rec.Attrs["hint"])
	assert.NotContains(t, rec.Attrs, "workbooks_found")
}

func TestWarmupLogsDatasetReady(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	cfg := testConfig(t)
	writeWorkbook(t, cfg, 611289000000.0)
	app, err := New(cfg, logger)
	require.NoError(t, err)

	app.warmup(context.Background())

	testutil.AssertLogContains(t, logs, slog.LevelInfo, "Dataset ready")
	testutil.AssertNoErrors(t, logs)
}

func TestWarmupSuggestsOtherWorkbooks(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	cfg := testConfig(t)
	dir := filepath.Join(cfg.Paths.BaseDir, cfg.Paths.DataDir)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "financial_data.xlsx"), []byte("x"), 0644))

	app, err := New(cfg, logger)
	require.NoError(t, err)

	app.warmup(context.Background())

	rec, ok := logs.Find("Financial data not found")
	require.True(t, ok)
	assert.Equal(t, []string{"financial_data.xlsx"}, rec.Attrs["workbooks_found"])
}
