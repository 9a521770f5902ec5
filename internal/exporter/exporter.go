package exporter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"findash/internal/config"
	"findash/internal/dashboard"
)

var (
	// ErrUnsupportedFormat is returned for a format outside Formats.
	ErrUnsupportedFormat = errors.New("unsupported export format")

	// ErrNothingToExport is returned when the view rendered no table.
	ErrNothingToExport = errors.New("view has no data to export")
)

// Format is an export file type.
type Format string

const (
	FormatHTML Format = "html"
	FormatCSV  Format = "csv"
	FormatPDF  Format = "pdf"
)

// Formats lists the supported formats.
var Formats = []Format{FormatHTML, FormatCSV, FormatPDF}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(s))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// ContentType is the response media type.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatPDF:
		return "application/pdf"
	default:
		return "text/html; charset=utf-8"
	}
}

// Label is the link text for downloads.
func (f Format) Label() string { return strings.ToUpper(string(f)) }

// Report is everything a report needs from one render pass.
type Report struct {
	View      dashboard.ViewID
	Title     string
	Header    string
	Chart     *dashboard.Chart
	Table     *dashboard.Table
	Caption   string
	Footer    string
	Generated time.Time
}

// FileName is the download name, e.g. pl_comparison.html.
func (r *Report) FileName(f Format) string { return r.View.ExportName(string(f)) }

// GeneratedStamp is the timestamp line printed in every report.
func (r *Report) GeneratedStamp() string {
	return "Generated: " + r.Generated.Format("2006-01-02 15:04:05")
}

// NewReport picks the view out of d.
func NewReport(d *dashboard.Dashboard, id dashboard.ViewID, now time.Time) (*Report, error) {
	v, ok := d.View(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", dashboard.ErrUnknownView, id)
	}
	if !v.Exportable() {
		return nil, fmt.Errorf("%w: %s", ErrNothingToExport, id)
	}
	r := &Report{
		View:      id,
		Title:     v.ReportTitle,
		Header:    d.Header.String(),
		Table:     v.Table,
		Caption:   v.Caption,
		Footer:    d.Footer,
		Generated: now,
	}
	if r.Title == "" {
		r.Title = v.Heading
	}
	if c, ok := v.ExportChart(); ok {
		r.Chart = &c
	}
	return r, nil
}

// Exporter renders reports.
type Exporter struct {
	logger *slog.Logger
	now    func() time.Time
	png    func(dashboard.Chart) ([]byte, error)
}

// New creates an exporter.
func New(logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{
		logger: logger.With(slog.String("component", "exporter")),
		now:    time.Now,
		png:    dashboard.Chart.PNG,
	}
}

// Export writes view id of d to w in format f.
func (e *Exporter) Export(ctx context.Context, w io.Writer, d *dashboard.Dashboard, id dashboard.ViewID, f Format) error {
	r, err := NewReport(d, id, e.now())
	if err != nil {
		return err
	}

	e.logger.InfoContext(ctx, "Exporting view",
		slog.String("view", string(id)),
		slog.String("format", string(f)),
		slog.Int("rows", len(r.Table.Rows)))

	switch f {
	case FormatHTML:
		return e.writeHTML(ctx, w, r)
	case FormatCSV:
		return writeCSVReport(w, r)
	case FormatPDF:
		return e.writePDF(ctx, w, r)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
}

// ExportFile writes the export under the exports directory and returns
// the full path. An absolute path is used as is.
func (e *Exporter) ExportFile(ctx context.Context, paths *config.Paths, filePath string, d *dashboard.Dashboard, id dashboard.ViewID, f Format) (string, error) {
	fullPath := filePath
	if !filepath.IsAbs(fullPath) {
		fullPath = paths.ExportPath(filePath)
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	file, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}

	if err := e.Export(ctx, file, d, id, f); err != nil {
		file.Close()
		os.Remove(fullPath)
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("failed to close file: %w", err)
	}
	return fullPath, nil
}

// chartPNG renders the report chart as PNG. Failures are logged and
// reported as no image.
func (e *Exporter) chartPNG(ctx context.Context, r *Report) []byte {
	if r.Chart == nil {
		return nil
	}
	img, err := e.png(*r.Chart)
	if err != nil {
		e.logger.WarnContext(ctx, "Chart PNG rendering failed",
			slog.String("view", string(r.View)),
			slog.String("chart", r.Chart.ID),
			slog.String("error", err.Error()))
		return nil
	}
	return img
}
