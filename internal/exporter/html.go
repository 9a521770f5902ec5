package exporter

import (
	"context"
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/report.html
var templateFS embed.FS

var reportTemplate = template.Must(template.ParseFS(templateFS, "templates/report.html"))

type htmlReport struct {
	Title      string
	Header     string
	Generated  string
	Image      template.URL
	ChartTitle string
	Columns    []string
	Rows       [][]string
	Caption    string
	Footer     string
}

func (e *Exporter) writeHTML(ctx context.Context, w io.Writer, r *Report) error {
	data := htmlReport{
		Title:     r.Title,
		Header:    r.Header,
		Generated: r.GeneratedStamp(),
		Columns:   r.Table.Columns,
		Rows:      r.Table.Rows,
		Caption:   r.Caption,
		Footer:    r.Footer,
	}
	if r.Chart != nil {
		data.ChartTitle = r.Chart.Title
		if png := e.chartPNG(ctx, r); png != nil {
			data.Image = dataURI("image/png", png)
		} else {
			data.Image = dataURI("image/svg+xml", []byte(r.Chart.SVG))
		}
	}

	if err := reportTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("render html report: %w", err)
	}
	return nil
}

func dataURI(mediaType string, body []byte) template.URL {
	return template.URL("data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(body))
}
