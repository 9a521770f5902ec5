package http

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"findash/internal/categories"
	"findash/internal/dashboard"
	"findash/internal/dataset"
	apierrors "findash/internal/errors"
	"findash/internal/exporter"
	"findash/internal/services"
	"findash/pkg/contracts/domain"
)

//go:embed templates/dashboard.html
var templateFS embed.FS

const pageTitle = "Retail Company Financial Comparison"

var pageTemplate = template.Must(template.New("dashboard.html").Funcs(template.FuncMap{
	"svg": func(s string) template.HTML { return template.HTML(s) }, // rendered by internal/charts
	"fy":  domain.FormatFY,
}).ParseFS(templateFS, "templates/dashboard.html"))

type pageError struct {
	Title  string
	Detail string
	Hint   string
}

type exportLink struct {
	Label string
	URL   template.URL
}

type pageData struct {
	Title     string
	Error     *pageError
	Meta      *services.Meta
	Choice    categories.Choice
	Dashboard *dashboard.Dashboard
	Version   string
	Selected  map[string]bool
	Exports   map[dashboard.ViewID][]exportLink
	Footer    string
}

// PageHandler renders the interactive dashboard page
type PageHandler struct {
	service      DashboardServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	exportBase   string
}

// NewPageHandler creates a page handler. exportBase is the path the export
// routes are mounted under, e.g. /api/v1/export.
func NewPageHandler(service DashboardServiceInterface, exportBase string, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *PageHandler {
	return &PageHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "page_handler")),
		errorHandler: errorHandler,
		exportBase:   exportBase,
	}
}

// ServeHTTP handles GET /
func (h *PageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, err := parseSelection(r)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	result, err := h.service.Build(ctx, req)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	meta, err := h.service.Meta(ctx)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	sel := result.Dashboard.Selection
	choice, err := h.service.Options(ctx, sel.Category)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	data := pageData{
		Title:     pageTitle,
		Meta:      meta,
		Choice:    choice,
		Dashboard: result.Dashboard,
		Version:   result.Version,
		Selected:  make(map[string]bool, len(sel.Companies)),
		Exports:   h.exportLinks(sel),
		Footer:    result.Dashboard.Footer,
	}
	for _, c := range sel.Companies {
		data.Selected[c] = true
	}

	h.render(w, r, http.StatusOK, data)
}

func (h *PageHandler) exportLinks(sel domain.Selection) map[dashboard.ViewID][]exportLink {
	query := selectionQuery(string(sel.Unit), sel.Category, sel.Companies, sel.Year, sel.ShowTrend).Encode()
	links := make(map[dashboard.ViewID][]exportLink, len(dashboard.Views))
	for _, view := range dashboard.Views {
		for _, format := range exporter.Formats {
			links[view] = append(links[view], exportLink{
				Label: format.Label(),
				URL:   template.URL(h.exportBase + "/" + string(view) + "." + string(format) + "?" + query),
			})
		}
	}
	return links
}

// renderError shows the problem in place of the dashboard. A missing
// workbook gets only the load message, with no controls.
func (h *PageHandler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	mapped := toAPIError(err, r.URL.Query().Get(paramCategory))
	problem := h.errorHandler.ErrorToProblem(mapped, r)

	pe := &pageError{Title: problem.Title, Detail: problem.Detail}
	if errors.Is(err, dataset.ErrSourceNotFound) {
		pe.Title = "Financial data could not be loaded"
		pe.Hint = dataset.MissingWorkbookHint
	}

	level := slog.LevelWarn
	if problem.Status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.Log(r.Context(), level, "page render failed",
		slog.String("error", err.Error()),
		slog.Int("status", problem.Status),
		slog.String("request_id", middleware.GetReqID(r.Context())))

	h.render(w, r, problem.Status, pageData{Title: pageTitle, Error: pe})
}

func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, status int, data pageData) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		h.logger.ErrorContext(r.Context(), "template execution failed",
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetReqID(r.Context())))
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
