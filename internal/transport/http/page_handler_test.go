package http

import (
	"fmt"
	"html"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"findash/internal/categories"
	"findash/internal/dataset"
	apierrors "findash/internal/errors"
)

func newPageHandler(svc DashboardServiceInterface) *PageHandler {
	return NewPageHandler(svc, "/api/v1/export", testLogger(), apierrors.NewErrorHandler(testLogger(), false))
}

func TestPageHandler_Render(t *testing.T) {
	svc := new(MockDashboardService)
	svc.On("Build", mock.Anything, mock.Anything).Return(sampleResult(), nil)
	svc.On("Meta", mock.Anything).Return(sampleMeta(), nil)
	svc.On("Options", mock.Anything, "big-box").Return(categories.Choice{
		Category: "big-box",
		Label:    "Big Box",
		Options:  []string{"Costco", "Target", "Walmart"},
		Defaults: []string{"Costco", "Target", "Walmart"},
	}, nil)

	rec := serve(newPageHandler(svc), http.MethodGet, "/?category=big-box", nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, "<title>Retail Company Financial Comparison</title>")
	assert.Contains(t, body, "Category: Big Box | Reference year: FY2023 | Unit: Billions")
	assert.Contains(t, body, `<svg id="revenue-chart"></svg>`, "charts are embedded unescaped")
	assert.Contains(t, body, `value="Walmart" checked`)
	assert.NotContains(t, body, `value="Costco" checked`)
	assert.Contains(t, body, `<option value="2023" selected>FY2023</option>`)
	assert.Contains(t, body, `/api/v1/export/pl.csv?category=big-box`)
	assert.Contains(t, body, "Sorted by revenue")
	assert.Contains(t, body, `var version = "v1"`)
	assert.Contains(t, body, "Source: company filings")
	svc.AssertExpectations(t)
}

func TestPageHandler_MissingWorkbook(t *testing.T) {
	svc := new(MockDashboardService)
	svc.On("Build", mock.Anything, mock.Anything).
		Return(nil, apierrors.NewStorageError(dataset.MissingWorkbookHint, fmt.Errorf("%w: data/financial_data_us.xlsx", dataset.ErrSourceNotFound)))

	rec := serve(newPageHandler(svc), http.MethodGet, "/", nil)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Financial data could not be loaded")
	assert.Contains(t, body, html.EscapeString(dataset.MissingWorkbookHint))
	assert.NotContains(t, body, "<form", "no controls without data")
	svc.AssertNotCalled(t, "Meta", mock.Anything)
}

func TestPageHandler_Errors(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		buildErr error
		status   int
	}{
		{"bad year", "?year=abc", nil, http.StatusBadRequest},
		{"unknown category", "?category=nope", fmt.Errorf("%w: %q", categories.ErrUnknownCategory, "nope"), http.StatusNotFound},
		{"internal", "", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockDashboardService)
			if tt.buildErr != nil {
				svc.On("Build", mock.Anything, mock.Anything).Return(nil, tt.buildErr)
			}

			rec := serve(newPageHandler(svc), http.MethodGet, "/"+tt.query, nil)

			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), `class="notice error"`)
			assert.NotContains(t, rec.Body.String(), "<form")
		})
	}
}

func TestPageHandler_ExportLinks(t *testing.T) {
	h := newPageHandler(new(MockDashboardService))
	links := h.exportLinks(sampleResult().Dashboard.Selection)

	require.Len(t, links["pl"], 3)
	assert.Equal(t, "HTML", links["pl"][0].Label)
	assert.Equal(t,
		"/api/v1/export/bs.pdf?category=big-box&companies_set=1&company=Walmart&company=Target&trend=true&unit=billions&year=2023",
		string(links["bs"][2].URL))
}
