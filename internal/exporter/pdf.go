package exporter

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
)

const (
	pdfMargin       = 15.0
	pdfCompanyWidth = 45.0
	pdfRowHeight    = 7.0
)

type pdfReport struct {
	pdf          *fpdf.Fpdf
	tr           func(string) string
	contentWidth float64
}

func (e *Exporter) writePDF(ctx context.Context, w io.Writer, r *Report) error {
	orientation := "P"
	if len(r.Table.Columns) > 5 {
		orientation = "L"
	}
	report := &pdfReport{pdf: fpdf.New(orientation, "mm", "A4", "")}
	report.tr = report.pdf.UnicodeTranslatorFromDescriptor("")
	pageWidth, _ := report.pdf.GetPageSize()
	report.contentWidth = pageWidth - 2*pdfMargin

	report.pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	report.pdf.SetAutoPageBreak(true, 20)
	report.pdf.SetFooterFunc(func() {
		report.pdf.SetY(-15)
		report.pdf.SetFont("Arial", "I", 8)
		report.pdf.SetTextColor(150, 150, 150)
		report.pdf.CellFormat(0, 8, report.tr(r.Footer), "", 0, "C", false, 0, "")
	})
	report.pdf.AddPage()

	report.addTitle(r)
	if png := e.chartPNG(ctx, r); png != nil {
		report.addChart(r, png)
	}
	report.addTable(r)
	if r.Caption != "" {
		report.pdf.Ln(4)
		report.pdf.SetFont("Arial", "I", 9)
		report.pdf.SetTextColor(100, 100, 100)
		report.pdf.MultiCell(report.contentWidth, 5, report.tr(r.Caption), "", "L", false)
	}

	var buf bytes.Buffer
	if err := report.pdf.Output(&buf); err != nil {
		return fmt.Errorf("render pdf report: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}

func (p *pdfReport) addTitle(r *Report) {
	p.pdf.SetFont("Arial", "B", 16)
	p.pdf.SetTextColor(0, 51, 102)
	p.pdf.CellFormat(p.contentWidth, 10, p.tr(r.Title), "", 1, "L", false, 0, "")

	p.pdf.SetFont("Arial", "", 9)
	p.pdf.SetTextColor(80, 80, 80)
	p.pdf.CellFormat(p.contentWidth, 5, p.tr(r.Header), "", 1, "L", false, 0, "")
	p.pdf.CellFormat(p.contentWidth, 5, r.GeneratedStamp(), "", 1, "L", false, 0, "")
	p.pdf.Ln(4)
}

func (p *pdfReport) addChart(r *Report, png []byte) {
	name := "chart-" + string(r.View)
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	p.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(png))
	p.pdf.ImageOptions(name, pdfMargin, 0, p.contentWidth, 0, true, opts, 0, "")
	p.pdf.Ln(4)
}

func (p *pdfReport) addTable(r *Report) {
	cols := r.Table.Columns
	widths := make([]float64, len(cols))
	widths[0] = pdfCompanyWidth
	if len(cols) > 1 {
		rest := (p.contentWidth - pdfCompanyWidth) / float64(len(cols)-1)
		for i := 1; i < len(cols); i++ {
			widths[i] = rest
		}
	} else {
		widths[0] = p.contentWidth
	}

	p.pdf.SetFont("Arial", "B", 8)
	p.pdf.SetFillColor(245, 247, 250)
	p.pdf.SetTextColor(0, 51, 102)
	for i, c := range cols {
		p.pdf.CellFormat(widths[i], pdfRowHeight+1, p.tr(c), "1", 0, "C", true, 0, "")
	}
	p.pdf.Ln(-1)

	p.pdf.SetFont("Arial", "", 8)
	p.pdf.SetTextColor(50, 50, 50)
	for n, row := range r.Table.Rows {
		fill := n%2 == 1
		for i, cell := range row {
			align := "R"
			if i == 0 {
				align = "L"
			}
			p.pdf.CellFormat(widths[i], pdfRowHeight, p.tr(cell), "1", 0, align, fill, 0, "")
		}
		p.pdf.Ln(-1)
	}
}
