package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"findash/internal/categories"
	"findash/internal/dashboard"
	"findash/internal/dataset"
	apierrors "findash/internal/errors"
	"findash/internal/exporter"
	"findash/internal/services"
	"findash/pkg/contracts/domain"
)

// MockDashboardService is a mock implementation of DashboardServiceInterface
type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) Meta(ctx context.Context) (*services.Meta, error) {
	args := m.Called(ctx)
	meta, _ := args.Get(0).(*services.Meta)
	return meta, args.Error(1)
}

func (m *MockDashboardService) Options(ctx context.Context, category string) (categories.Choice, error) {
	args := m.Called(ctx, category)
	choice, _ := args.Get(0).(categories.Choice)
	return choice, args.Error(1)
}

func (m *MockDashboardService) Build(ctx context.Context, req services.SelectionRequest) (*services.DashboardResult, error) {
	args := m.Called(ctx, req)
	result, _ := args.Get(0).(*services.DashboardResult)
	return result, args.Error(1)
}

func (m *MockDashboardService) Export(ctx context.Context, w io.Writer, req services.SelectionRequest, view dashboard.ViewID, format exporter.Format) error {
	args := m.Called(ctx, w, req, view, format)
	return args.Error(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleMeta() *services.Meta {
	return &services.Meta{
		Units:           domain.Units,
		Categories:      []services.CategoryInfo{{ID: "big-box", Label: "Big Box"}, {ID: "custom", Label: "Custom", Custom: true}},
		DefaultCategory: "big-box",
		Years:           []int{2022, 2023},
		DefaultYear:     2023,
		Companies:       []string{"Costco", "Target", "Walmart"},
		Views:           dashboard.Views,
	}
}

func sampleResult() *services.DashboardResult {
	return &services.DashboardResult{
		Version: "v1",
		Dashboard: &dashboard.Dashboard{
			Selection: domain.Selection{
				Unit:      domain.UnitBillions,
				Category:  "big-box",
				Companies: []string{"Walmart", "Target"},
				Year:      2023,
				ShowTrend: true,
			},
			Header: dashboard.Header{Category: "Big Box", Year: "FY2023", Unit: "Billions"},
			Views: []dashboard.View{{
				ID:      dashboard.ViewPL,
				Name:    dashboard.ViewPL.Name(),
				Heading: "Income Statement Comparison (FY2023)",
				Charts:  []dashboard.Chart{{ID: "revenue", Title: "Revenue", SVG: `<svg id="revenue-chart"></svg>`}},
				Table: &dashboard.Table{
					Columns: []string{"Company", "Revenue ($B)"},
					Rows:    [][]string{{"Walmart", "611.3"}, {"Target", "107.4"}},
				},
				Caption: "Sorted by revenue",
			}},
			Trend:  &dashboard.Trend{Title: "Historical Trend", Years: []int{2022, 2023}},
			Footer: "Source: company filings",
		},
	}
}

func newDashboardRouter(svc DashboardServiceInterface) http.Handler {
	r := chi.NewRouter()
	r.Mount("/api/v1", NewDashboardHandler(svc, testLogger(), apierrors.NewErrorHandler(testLogger(), false)).Routes())
	return r
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func serve(h http.Handler, method, target string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestDashboardHandler_GetMeta(t *testing.T) {
	svc := new(MockDashboardService)
	svc.On("Meta", mock.Anything).Return(sampleMeta(), nil)

	rec := serve(newDashboardRouter(svc), http.MethodGet, "/api/v1/meta", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "success", body["status"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "big-box", data["default_category"])
	assert.Len(t, data["views"], len(dashboard.Views))
	svc.AssertExpectations(t)
}

func TestDashboardHandler_GetOptions(t *testing.T) {
	t.Run("escaped label", func(t *testing.T) {
		svc := new(MockDashboardService)
		svc.On("Options", mock.Anything, "Big Box").Return(categories.Choice{
			Category: "big-box",
			Label:    "Big Box",
			Options:  []string{"Costco", "Target", "Walmart"},
			Defaults: []string{"Costco", "Target", "Walmart"},
		}, nil)

		rec := serve(newDashboardRouter(svc), http.MethodGet, "/api/v1/categories/Big%20Box/options", nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		data := decodeBody(t, rec)["data"].(map[string]interface{})
		assert.Equal(t, "big-box", data["category"])
		assert.Len(t, data["options"], 3)
		svc.AssertExpectations(t)
	})

	t.Run("unknown category", func(t *testing.T) {
		svc := new(MockDashboardService)
		svc.On("Options", mock.Anything, "nope").
			Return(categories.Choice{}, fmt.Errorf("%w: %q", categories.ErrUnknownCategory, "nope"))

		rec := serve(newDashboardRouter(svc), http.MethodGet, "/api/v1/categories/nope/options", nil)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "UNKNOWN_CATEGORY", body["error_code"])
		assert.Equal(t, apierrors.TypeUnknownCategory, body["type"])
	})
}

func TestDashboardHandler_GetDashboard(t *testing.T) {
	svc := new(MockDashboardService)
	svc.On("Build", mock.Anything, mock.MatchedBy(func(req services.SelectionRequest) bool {
		return req.Unit == "millions" &&
			req.Category == "big-box" &&
			assert.ObjectsAreEqual([]string{"Walmart", "Target"}, req.Companies) &&
			req.CompaniesSet &&
			req.Year == 2023 &&
			req.Trend != nil && !*req.Trend
	})).Return(sampleResult(), nil)

	router := newDashboardRouter(svc)
	target := "/api/v1/dashboard?unit=millions&category=big-box&company=Walmart&company=Target&companies_set=1&year=2023&trend=false"

	rec := serve(router, http.MethodGet, target, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, `"v1"`, rec.Header().Get("ETag"))
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))

	body := decodeBody(t, rec)
	assert.Equal(t, "v1", body["version"])
	data := body["data"].(map[string]interface{})
	assert.Len(t, data["views"], 1)

	t.Run("not modified", func(t *testing.T) {
		rec := serve(router, http.MethodGet, target, http.Header{"If-None-Match": {`W/"v1"`}})
		assert.Equal(t, http.StatusNotModified, rec.Code)
		assert.Empty(t, rec.Body.String())
	})

	t.Run("stale etag", func(t *testing.T) {
		rec := serve(router, http.MethodGet, target, http.Header{"If-None-Match": {`"v0"`}})
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestDashboardHandler_GetDashboardErrors(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		buildErr error
		status   int
		code     string
	}{
		{"bad year", "year=twenty", nil, http.StatusBadRequest, "VALIDATION_FAILED"},
		{"bad trend", "trend=maybe", nil, http.StatusBadRequest, "VALIDATION_FAILED"},
		{"workbook missing", "", apierrors.NewStorageError(dataset.MissingWorkbookHint,
			fmt.Errorf("%w: data/financial_data_us.xlsx", dataset.ErrSourceNotFound)), http.StatusServiceUnavailable, "DATA_NOT_LOADED"},
		{"unknown category", "category=nope", fmt.Errorf("resolve: %w", categories.ErrUnknownCategory), http.StatusNotFound, "UNKNOWN_CATEGORY"},
		{"invalid selection", "unit=parsecs", apierrors.ErrValidation("unit", "must be billions or millions"), http.StatusBadRequest, "VALIDATION_FAILED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockDashboardService)
			if tt.buildErr != nil {
				svc.On("Build", mock.Anything, mock.Anything).Return(nil, tt.buildErr)
			}

			rec := serve(newDashboardRouter(svc), http.MethodGet, "/api/v1/dashboard?"+tt.query, nil)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, decodeBody(t, rec)["error_code"])
			if tt.buildErr == nil {
				svc.AssertNotCalled(t, "Build", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestDashboardHandler_Export(t *testing.T) {
	svc := new(MockDashboardService)
	svc.On("Export", mock.Anything, mock.Anything, mock.MatchedBy(func(req services.SelectionRequest) bool {
		return req.Category == "big-box"
	}), dashboard.ViewPL, exporter.FormatCSV).
		Run(func(args mock.Arguments) {
			_, _ = io.WriteString(args.Get(1).(io.Writer), "Company,Revenue ($B)\nWalmart,611.3\n")
		}).
		Return(nil)

	rec := serve(newDashboardRouter(svc), http.MethodGet, "/api/v1/export/pl.csv?category=big-box", nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="pl_comparison.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Contains(t, rec.Body.String(), "Walmart,611.3")
	svc.AssertExpectations(t)
}

func TestDashboardHandler_ExportErrors(t *testing.T) {
	tests := []struct {
		name      string
		target    string
		exportErr error
		status    int
		code      string
	}{
		{"unknown view", "/api/v1/export/sales.csv", nil, http.StatusNotFound, "UNKNOWN_VIEW"},
		{"unknown format", "/api/v1/export/pl.docx", nil, http.StatusBadRequest, "UNSUPPORTED_FORMAT"},
		{"nothing to export", "/api/v1/export/cf.pdf", exporter.ErrNothingToExport, http.StatusUnprocessableEntity, "NOTHING_TO_EXPORT"},
		{"render failure", "/api/v1/export/bs.html", apierrors.ExportError(io.ErrShortWrite), http.StatusInternalServerError, "EXPORT_FAILED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockDashboardService)
			if tt.exportErr != nil {
				svc.On("Export", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(tt.exportErr)
			}

			rec := serve(newDashboardRouter(svc), http.MethodGet, tt.target, nil)

			assert.Equal(t, tt.status, rec.Code)
			assert.Empty(t, rec.Header().Get("Content-Disposition"))
			assert.Equal(t, tt.code, decodeBody(t, rec)["error_code"])
		})
	}
}

func TestEtagMatches(t *testing.T) {
	tests := []struct {
		header string
		want   bool
	}{
		{`"v1"`, true},
		{`W/"v1"`, true},
		{`"v0", "v1"`, true},
		{`*`, true},
		{`"v2"`, false},
		{`v1`, false},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.want, etagMatches(tt.header, `"v1"`))
		})
	}
}

func TestSelectionQuery(t *testing.T) {
	q := selectionQuery("millions", "big-box", []string{"Walmart", "Target"}, 2023, true)

	assert.Equal(t, "millions", q.Get(paramUnit))
	assert.Equal(t, []string{"Walmart", "Target"}, q[paramCompany])
	assert.Equal(t, "1", q.Get(paramCompaniesSet))
	assert.Equal(t, "2023", q.Get(paramYear))
	assert.Equal(t, "true", q.Get(paramTrend))

	assert.Empty(t, selectionQuery("billions", "all", nil, 0, false).Get(paramYear))
}
