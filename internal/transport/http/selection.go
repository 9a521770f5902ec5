package http

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"findash/internal/categories"
	"findash/internal/dashboard"
	"findash/internal/dataset"
	apierrors "findash/internal/errors"
	"findash/internal/exporter"
	"findash/internal/services"
)

// Query parameter names shared by the page, the API and export links
const (
	paramUnit         = "unit"
	paramCategory     = "category"
	paramCompany      = "company"
	paramCompaniesSet = "companies_set"
	paramYear         = "year"
	paramTrend        = "trend"
)

// parseSelection reads the selection controls from the query string.
// Malformed numbers and booleans are validation errors; range and
// membership checks happen in the service.
func parseSelection(r *http.Request) (services.SelectionRequest, error) {
	q := r.URL.Query()
	req := services.SelectionRequest{
		Unit:     strings.TrimSpace(q.Get(paramUnit)),
		Category: strings.TrimSpace(q.Get(paramCategory)),
	}

	for _, c := range q[paramCompany] {
		if c = strings.TrimSpace(c); c != "" {
			req.Companies = append(req.Companies, c)
		}
	}

	if v := q.Get(paramCompaniesSet); v != "" {
		set, err := strconv.ParseBool(v)
		if err != nil {
			return req, apierrors.ErrValidation(paramCompaniesSet, "must be a boolean")
		}
		req.CompaniesSet = set
	}

	if v := q.Get(paramYear); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			return req, apierrors.ErrValidation(paramYear, "must be a fiscal year such as 2023")
		}
		req.Year = year
	}

	if v := q.Get(paramTrend); v != "" {
		trend, err := strconv.ParseBool(v)
		if err != nil {
			return req, apierrors.ErrValidation(paramTrend, "must be a boolean")
		}
		req.Trend = &trend
	}

	return req, nil
}

// selectionQuery encodes a resolved selection back into query parameters,
// so export links reproduce what the page shows.
func selectionQuery(unit, category string, companies []string, year int, trend bool) url.Values {
	q := url.Values{}
	q.Set(paramUnit, unit)
	q.Set(paramCategory, category)
	q.Set(paramCompaniesSet, "1")
	for _, c := range companies {
		q.Add(paramCompany, c)
	}
	if year > 0 {
		q.Set(paramYear, strconv.Itoa(year))
	}
	q.Set(paramTrend, strconv.FormatBool(trend))
	return q
}

// toAPIError maps service and domain sentinels to API errors. Unknown
// errors pass through for the error handler to classify.
func toAPIError(err error, subject string) error {
	var apiErr *apierrors.APIError
	switch {
	case errors.As(err, &apiErr):
		return err
	case errors.Is(err, dataset.ErrSourceNotFound):
		return apierrors.DataNotLoadedError(dataset.MissingWorkbookHint, err)
	case errors.Is(err, categories.ErrUnknownCategory):
		return apierrors.UnknownCategoryError(subject)
	case errors.Is(err, dashboard.ErrUnknownView):
		return apierrors.UnknownViewError(subject)
	case errors.Is(err, exporter.ErrUnsupportedFormat):
		return apierrors.UnsupportedFormatError(subject)
	case errors.Is(err, exporter.ErrNothingToExport):
		return apierrors.NothingToExportError(subject)
	}
	return err
}
