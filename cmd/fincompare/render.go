package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"findash/internal/dashboard"
	"findash/internal/dataset"
	"findash/internal/files"
	"findash/internal/services"
	"findash/pkg/contracts/domain"
)

// explain adds the setup hint, and any workbook found under another
// name, to a missing data source error.
func (c *cli) explain(err error) error {
	if !errors.Is(err, dataset.ErrSourceNotFound) {
		return err
	}
	msg := dataset.MissingWorkbookHint
	if found, _ := files.NewDiscovery(c.paths).Workbooks(); len(found) > 0 {
		msg += fmt.Sprintf("\nWorkbooks found in %s: %s (set FINDASH_DATA_WORKBOOK_FILE to use one)",
			c.paths.DataDir, strings.Join(files.Names(found), ", "))
	}
	return fmt.Errorf("%w\n%s", err, msg)
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

func renderMeta(w io.Writer, meta *services.Meta, counts map[string]int) {
	fmt.Fprintf(w, "Dataset: %s, %d records (version %s)\n\n", meta.Dataset.Source, meta.Dataset.Records, meta.Dataset.Version)

	t := newTable(w)
	t.AppendHeader(table.Row{"Category", "Label", "Companies", "Default"})
	for _, cat := range meta.Categories {
		def := ""
		if cat.ID == meta.DefaultCategory {
			def = "*"
		}
		t.AppendRow(table.Row{cat.ID, cat.Label, counts[cat.ID], def})
	}
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 3, Align: text.AlignRight}})
	t.Render()

	years := make([]string, len(meta.Years))
	for i, y := range meta.Years {
		years[i] = domain.FormatFY(y)
	}
	fmt.Fprintf(w, "\nFiscal years: %s\n", strings.Join(years, ", "))
	fmt.Fprintf(w, "Companies: %s\n", strings.Join(meta.Companies, ", "))
}

func renderDashboard(w io.Writer, d *dashboard.Dashboard) {
	fmt.Fprintln(w, d.Header.String())
	renderNotices(w, d.Notices)

	for i := range d.Views {
		v := &d.Views[i]
		fmt.Fprintf(w, "\n== %s ==\n", v.Heading)
		if v.Notice != nil {
			renderNotices(w, []dashboard.Notice{*v.Notice})
		}
		if v.Table != nil {
			renderViewTable(w, v.Table)
		}
		if v.Caption != "" {
			fmt.Fprintln(w, v.Caption)
		}
	}

	if d.Trend != nil {
		fmt.Fprintf(w, "\n== %s ==\n", d.Trend.Title)
		years := make([]string, len(d.Trend.Years))
		for i, y := range d.Trend.Years {
			years[i] = domain.FormatFY(y)
		}
		fmt.Fprintf(w, "%d charts over %s (open the dashboard or export HTML to view)\n", len(d.Trend.Charts), strings.Join(years, ", "))
	}

	if d.Footer != "" {
		fmt.Fprintf(w, "\n%s\n", d.Footer)
	}
}

func renderNotices(w io.Writer, notices []dashboard.Notice) {
	for _, n := range notices {
		fmt.Fprintf(w, "[%s] %s\n", strings.ToUpper(string(n.Level)), n.Message)
	}
}

// renderViewTable prints the formatted cells. The first column holds the
// company name; the rest are right aligned figures.
func renderViewTable(w io.Writer, tbl *dashboard.Table) {
	t := newTable(w)

	header := make(table.Row, len(tbl.Columns))
	configs := make([]table.ColumnConfig, 0, len(tbl.Columns))
	for i, col := range tbl.Columns {
		header[i] = col
		if i > 0 {
			configs = append(configs, table.ColumnConfig{Number: i + 1, Align: text.AlignRight})
		}
	}
	t.AppendHeader(header)
	t.SetColumnConfigs(configs)

	for _, cells := range tbl.Rows {
		row := make(table.Row, len(cells))
		for i, cell := range cells {
			row[i] = cell
		}
		t.AppendRow(row)
	}
	t.Render()
}

func renderExports(w io.Writer, dir string, found []files.FileInfo) {
	if len(found) == 0 {
		fmt.Fprintf(w, "No exports in %s\n", dir)
		return
	}

	t := newTable(w)
	t.AppendHeader(table.Row{"File", "View", "Format", "Size", "Modified"})
	for _, f := range found {
		t.AppendRow(table.Row{f.Name, f.View, f.Format, f.Size, f.ModTime.Format("2006-01-02 15:04:05")})
	}
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 4, Align: text.AlignRight}})
	t.Render()
}
