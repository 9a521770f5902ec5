package exporter

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"html"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"findash/internal/config"
	"findash/internal/dashboard"
	"findash/pkg/contracts/domain"
)

func testDashboard(t *testing.T) *dashboard.Dashboard {
	t.Helper()
	w := domain.NewRecord("Walmart", 2023)
	w.Revenue, w.CostOfSales = 2000e9, 1500e9
	tg := domain.NewRecord("Target", 2023)
	tg.Revenue, tg.CostOfSales = 100e9, 80e9
	table, err := domain.NewTable([]domain.FinancialRecord{tg, w},
		[]domain.Column{domain.ColRevenue, domain.ColCostOfSales, domain.ColSGA})
	require.NoError(t, err)

	d, err := dashboard.Build(domain.Selection{
		Unit:      domain.UnitBillions,
		Category:  "custom",
		Companies: []string{"Walmart", "Target"},
		Year:      2023,
	}, table, "Custom", dashboard.DefaultOptions())
	require.NoError(t, err)
	return d
}

func fixedExporter() *Exporter {
	e := New(nil)
	e.now = func() time.Time { return time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC) }
	return e
}

// failingPNG makes every chart fall back to its SVG.
func failingPNG(dashboard.Chart) ([]byte, error) { return nil, errors.New("no renderer") }

func tinyPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	img.Set(1, 1, color.RGBA{R: 200, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("PDF")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, f)
	assert.Equal(t, "application/pdf", f.ContentType())

	_, err = ParseFormat("xlsx")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestNewReport(t *testing.T) {
	d := testDashboard(t)
	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

	r, err := NewReport(d, dashboard.ViewPL, now)
	require.NoError(t, err)
	assert.Equal(t, "Income Statement Comparison - FY2023", r.Title)
	assert.Equal(t, "pl_comparison.html", r.FileName(FormatHTML))
	assert.Equal(t, "Generated: 2026-03-04 05:06:07", r.GeneratedStamp())
	require.NotNil(t, r.Chart)
	assert.Equal(t, "composition", r.Chart.ID)

	_, err = NewReport(d, dashboard.ViewCF, now)
	assert.ErrorIs(t, err, ErrNothingToExport)

	_, err = NewReport(d, "nope", now)
	assert.ErrorIs(t, err, dashboard.ErrUnknownView)
}

func TestExportHTML_EmbedsPNG(t *testing.T) {
	d := testDashboard(t)
	v, _ := d.View(dashboard.ViewPL)
	chart, ok := v.ExportChart()
	require.True(t, ok)
	img, err := chart.PNG()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, fixedExporter().Export(context.Background(), &buf, d, dashboard.ViewPL, FormatHTML))

	page := html.UnescapeString(buf.String())
	assert.Contains(t, page, "<title>Income Statement Comparison - FY2023</title>")
	assert.Contains(t, page, `src="data:image/png;base64,`+base64.StdEncoding.EncodeToString(img)+`"`)
	assert.Contains(t, page, "Generated: 2026-03-04 05:06:07")
	assert.Contains(t, page, "<td>Walmart</td>")
	assert.Contains(t, page, `<td class="num">2,000.0</td>`)
	assert.Contains(t, page, "SG&A ($B)")
	assert.Contains(t, page, dashboard.Footer)
	assert.NotContains(t, page, "ZgotmplZ")
	assert.Contains(t, buf.String(), "SG&amp;A ($B)", "table text is escaped")
}

func TestExportHTML_PNGFailureFallsBackToSVG(t *testing.T) {
	d := testDashboard(t)
	v, _ := d.View(dashboard.ViewPL)
	chart, _ := v.ExportChart()

	e := fixedExporter()
	e.png = failingPNG
	var buf bytes.Buffer
	require.NoError(t, e.Export(context.Background(), &buf, d, dashboard.ViewPL, FormatHTML))

	page := html.UnescapeString(buf.String())
	assert.Contains(t, page, `src="data:image/svg+xml;base64,`+base64.StdEncoding.EncodeToString([]byte(chart.SVG))+`"`)
	assert.NotContains(t, page, "data:image/png")
}

func TestExportHTML_ChartWithoutPlotUsesSVG(t *testing.T) {
	d := testDashboard(t)
	v, _ := d.View(dashboard.ViewPL)
	svg := `<svg xmlns="http://www.w3.org/2000/svg" width="4" height="2"></svg>`
	v.Charts = []dashboard.Chart{{ID: "composition", Title: "Revenue", SVG: svg}}

	var buf bytes.Buffer
	require.NoError(t, fixedExporter().Export(context.Background(), &buf, d, dashboard.ViewPL, FormatHTML))
	assert.Contains(t, html.UnescapeString(buf.String()),
		"data:image/svg+xml;base64,"+base64.StdEncoding.EncodeToString([]byte(svg)))
}

func TestExportPDF(t *testing.T) {
	d := testDashboard(t)

	tests := map[string]func(dashboard.Chart) ([]byte, error){
		"with chart": dashboard.Chart.PNG,
		"table only": failingPNG,
		"fixed png":  func(dashboard.Chart) ([]byte, error) { return tinyPNG(t), nil },
	}
	for name, render := range tests {
		t.Run(name, func(t *testing.T) {
			e := fixedExporter()
			e.png = render
			var buf bytes.Buffer
			require.NoError(t, e.Export(context.Background(), &buf, d, dashboard.ViewPL, FormatPDF))
			assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
		})
	}
}

func TestExportFile(t *testing.T) {
	d := testDashboard(t)
	dir := t.TempDir()
	paths := &config.Paths{BaseDir: dir, ExportsDir: filepath.Join(dir, "exports")}

	full, err := fixedExporter().ExportFile(context.Background(), paths, "pl_comparison.csv", d, dashboard.ViewPL, FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "exports", "pl_comparison.csv"), full)

	content, err := os.ReadFile(full)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(content, utf8BOM))

	missing := filepath.Join(dir, "cf.csv")
	_, err = fixedExporter().ExportFile(context.Background(), paths, missing, d, dashboard.ViewCF, FormatCSV)
	assert.ErrorIs(t, err, ErrNothingToExport)
	assert.NoFileExists(t, missing)
}
