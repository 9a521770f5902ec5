// Package dashboard turns a selection and the loaded table into the view
// models of one render pass: a header, five comparison views and an
// optional trend section, each with charts and a formatted table.
package dashboard

import (
	"errors"
	"fmt"
	"strings"

	"findash/internal/charts"
	"findash/pkg/contracts/domain"
)

// ErrUnknownView is returned for a view id outside Views.
var ErrUnknownView = errors.New("unknown view")

// Level grades a notice.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notice is a message shown in place of, or above, content.
type Notice struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// ViewID names a comparison view. It doubles as the export file prefix.
type ViewID string

const (
	ViewPL           ViewID = "pl"
	ViewBS           ViewID = "bs"
	ViewMetrics      ViewID = "metrics"
	ViewCF           ViewID = "cf"
	ViewProductivity ViewID = "productivity"
)

// Views lists the views in tab order.
var Views = []ViewID{ViewPL, ViewBS, ViewMetrics, ViewCF, ViewProductivity}

var viewNames = map[ViewID]string{
	ViewPL:           "Income Statement",
	ViewBS:           "Balance Sheet",
	ViewMetrics:      "Financial Metrics",
	ViewCF:           "Cash Flow",
	ViewProductivity: "Labor Productivity",
}

// ParseViewID validates a view id.
func ParseViewID(s string) (ViewID, error) {
	id := ViewID(strings.ToLower(s))
	if _, ok := viewNames[id]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownView, s)
	}
	return id, nil
}

// Name is the tab label.
func (v ViewID) Name() string { return viewNames[v] }

// ExportName is the download file name, e.g. pl_comparison.html.
func (v ViewID) ExportName(ext string) string {
	return fmt.Sprintf("%s_comparison.%s", v, ext)
}

// ErrNoChartSource is returned by PNG for a chart built without its plot
// data.
var ErrNoChartSource = errors.New("chart has no plot data")

// Chart is one rendered chart. SVG is the page rendering; PNG re-renders
// the same plot for reports.
type Chart struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	SVG   string `json:"svg"`

	plot *charts.Chart
}

// Plot returns the data the chart was drawn from, or nil.
func (c Chart) Plot() *charts.Chart { return c.plot }

// PNG renders the chart as a PNG image.
func (c Chart) PNG() ([]byte, error) {
	if c.plot == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoChartSource, c.ID)
	}
	return c.plot.PNG()
}

// Table is a view's data table. Rows hold display strings; Values keeps
// the unit-converted numbers behind them for machine-readable exports.
type Table struct {
	Columns   []string        `json:"columns"`
	Keys      []domain.Column `json:"keys"`
	Rows      [][]string      `json:"rows"`
	Companies []string        `json:"-"`
	Values    [][]float64     `json:"-"`
}

// View is one comparison tab.
type View struct {
	ID          ViewID  `json:"id"`
	Name        string  `json:"name"`
	Heading     string  `json:"heading"`
	Notice      *Notice `json:"notice,omitempty"`
	Charts      []Chart `json:"charts,omitempty"`
	Table       *Table  `json:"table,omitempty"`
	Caption     string  `json:"caption,omitempty"`
	ReportTitle string  `json:"report_title,omitempty"`
	ReportChart string  `json:"report_chart,omitempty"`
}

// Exportable reports whether the view has data to export.
func (v *View) Exportable() bool { return v.Table != nil && len(v.Table.Rows) > 0 }

// Chart returns the chart with the given id.
func (v *View) Chart(id string) (Chart, bool) {
	for _, c := range v.Charts {
		if c.ID == id {
			return c, true
		}
	}
	return Chart{}, false
}

// ExportChart is the chart embedded in the view's report: the designated
// one when rendered, else the first.
func (v *View) ExportChart() (Chart, bool) {
	if c, ok := v.Chart(v.ReportChart); ok {
		return c, true
	}
	if len(v.Charts) > 0 {
		return v.Charts[0], true
	}
	return Chart{}, false
}

// Header summarizes the selection above the tabs.
type Header struct {
	Category string `json:"category"`
	Year     string `json:"year"`
	Unit     string `json:"unit"`
}

func (h Header) String() string {
	return fmt.Sprintf("Category: %s | Reference year: %s | Unit: %s", h.Category, h.Year, h.Unit)
}

// Trend is the multi-year section under the tabs.
type Trend struct {
	Title  string  `json:"title"`
	Years  []int   `json:"years"`
	Charts []Chart `json:"charts"`
}

// Dashboard is the complete output of a render pass.
type Dashboard struct {
	Selection domain.Selection  `json:"selection"`
	Header    Header            `json:"header"`
	Notices   []Notice          `json:"notices,omitempty"`
	Colors    map[string]string `json:"colors,omitempty"`
	Views     []View            `json:"views,omitempty"`
	Trend     *Trend            `json:"trend,omitempty"`
	Footer    string            `json:"footer"`
}

// View returns the view with the given id.
func (d *Dashboard) View(id ViewID) (*View, bool) {
	for i := range d.Views {
		if d.Views[i].ID == id {
			return &d.Views[i], true
		}
	}
	return nil, false
}
