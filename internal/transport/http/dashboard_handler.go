package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"findash/internal/dashboard"
	apierrors "findash/internal/errors"
	"findash/internal/exporter"
)

// DashboardHandler serves the dashboard JSON API and report downloads
type DashboardHandler struct {
	service      DashboardServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service DashboardServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "dashboard_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the dashboard routes
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/meta", h.GetMeta)
	r.Get("/categories/{category}/options", h.GetOptions)
	r.Get("/dashboard", h.GetDashboard)
	r.Get("/export/{view}.{format}", h.Export)

	return r
}

// GetMeta handles GET /api/v1/meta
func (h *DashboardHandler) GetMeta(w http.ResponseWriter, r *http.Request) {
	meta, err := h.service.Meta(r.Context())
	if err != nil {
		h.fail(w, r, "failed to get meta", err, "")
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   meta,
	})
}

// GetOptions handles GET /api/v1/categories/{category}/options. The
// category is an id or a URL-escaped label.
func (h *DashboardHandler) GetOptions(w http.ResponseWriter, r *http.Request) {
	category, err := url.PathUnescape(chi.URLParam(r, "category"))
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("category", "invalid escape sequence"))
		return
	}

	choice, err := h.service.Options(r.Context(), category)
	if err != nil {
		h.fail(w, r, "failed to get category options", err, category)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   choice,
	})
}

// GetDashboard handles GET /api/v1/dashboard. The ETag is the dataset
// version, so a client polling the same URL gets 304 until the data changes.
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	req, err := parseSelection(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	result, err := h.service.Build(r.Context(), req)
	if err != nil {
		h.fail(w, r, "failed to build dashboard", err, req.Category)
		return
	}

	etag := fmt.Sprintf("%q", result.Version)
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	if match := r.Header.Get("If-None-Match"); match != "" && etagMatches(match, etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	h.logger.DebugContext(r.Context(), "dashboard built",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("category", result.Dashboard.Selection.Category),
		slog.Int("views", len(result.Dashboard.Views)))

	render.JSON(w, r, map[string]interface{}{
		"status":  "success",
		"version": result.Version,
		"data":    result.Dashboard,
	})
}

// Export handles GET /api/v1/export/{view}.{format}
func (h *DashboardHandler) Export(w http.ResponseWriter, r *http.Request) {
	rawView, rawFormat := chi.URLParam(r, "view"), chi.URLParam(r, "format")

	view, err := dashboard.ParseViewID(rawView)
	if err != nil {
		h.errorHandler.HandleError(w, r, toAPIError(err, rawView))
		return
	}
	format, err := exporter.ParseFormat(rawFormat)
	if err != nil {
		h.errorHandler.HandleError(w, r, toAPIError(err, rawFormat))
		return
	}
	req, err := parseSelection(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	// Buffered so a failed export still gets a problem response.
	var buf bytes.Buffer
	if err := h.service.Export(r.Context(), &buf, req, view, format); err != nil {
		h.fail(w, r, "export failed", err, string(view))
		return
	}

	h.logger.InfoContext(r.Context(), "report exported",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("view", string(view)),
		slog.String("format", string(format)),
		slog.Int("bytes", buf.Len()))

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", view.ExportName(string(format))))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (h *DashboardHandler) fail(w http.ResponseWriter, r *http.Request, msg string, err error, subject string) {
	h.logger.ErrorContext(r.Context(), msg,
		slog.String("error", err.Error()),
		slog.String("request_id", middleware.GetReqID(r.Context())))
	h.errorHandler.HandleError(w, r, toAPIError(err, subject))
}

func etagMatches(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == "*" || candidate == etag {
			return true
		}
	}
	return false
}
