// Package charts builds the dashboard charts on go-chart. A constructor
// returns a *Chart holding the data to plot; it renders as SVG for the
// page and as PNG for reports. An empty or all-N/A input renders a
// titled placeholder instead of failing.
package charts

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// NoDataMessage is drawn when a chart has nothing to plot.
const NoDataMessage = "No data available"

// Config holds rendering parameters shared by all charts.
type Config struct {
	Width  int
	Height int
	Title  string
}

// DefaultConfig returns the dashboard chart defaults.
func DefaultConfig() Config {
	return Config{Width: 800, Height: 400}
}

// WithTitle returns a copy of c with the title set.
func (c Config) WithTitle(title string) Config {
	c.Title = title
	return c
}

// WithSize returns a copy of c resized. Zero keeps the current value.
func (c Config) WithSize(width, height int) Config {
	if width > 0 {
		c.Width = width
	}
	if height > 0 {
		c.Height = height
	}
	return c
}

func (c Config) normalized() Config {
	d := DefaultConfig()
	if c.Width <= 0 {
		c.Width = d.Width
	}
	if c.Height <= 0 {
		c.Height = d.Height
	}
	return c
}

// Kind names the chart layout.
type Kind string

const (
	KindBar           Kind = "bar"
	KindHorizontalBar Kind = "horizontal_bar"
	KindStackedBar    Kind = "stacked_bar"
	KindGroupedBar    Kind = "grouped_bar"
	KindScatter       Kind = "scatter"
	KindLine          Kind = "line"
)

// RefLine is a dashed reference line across the value axis.
type RefLine struct {
	Value float64
	Color string
	Label string
}

// Options carries axis titles and overlays.
type Options struct {
	XTitle   string
	YTitle   string
	RefLines []RefLine
}

// Marker is the point shape of a line series.
type Marker string

const (
	MarkerCircle Marker = "circle"
	MarkerSquare Marker = "square"
)

// Series is one named, colored sequence of values aligned with the
// chart's categories.
type Series struct {
	Name   string
	Color  string
	Values []float64
	Marker Marker
}

// Chart is a chart ready to render. The exported fields are the data it
// plots, in plotting order.
type Chart struct {
	Kind       Kind
	Title      string
	Bars       []Bar
	Categories []string
	Series     []Series
	Points     []Point
	Options    Options

	cfg   Config
	build func(cfg Config) chart.Chart
}

// Empty reports whether the chart renders as the placeholder.
func (c *Chart) Empty() bool { return c.build == nil }

// Render writes the chart to w as SVG or PNG.
func (c *Chart) Render(format Format, w io.Writer) error {
	var graph chart.Chart
	if c.Empty() {
		graph = placeholder(c.cfg)
	} else {
		graph = c.build(c.cfg)
	}
	if err := graph.Render(format.provider(), w); err != nil {
		return fmt.Errorf("render %s chart %q: %w", c.Kind, c.Title, err)
	}
	return nil
}

// SVG renders the chart as an SVG document.
func (c *Chart) SVG() (string, error) {
	var buf bytes.Buffer
	if err := c.Render(FormatSVG, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// PNG renders the chart as a PNG image.
func (c *Chart) PNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := c.Render(FormatPNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Format is an output image type.
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

func (f Format) provider() chart.RendererProvider {
	if f == FormatPNG {
		return chart.PNG
	}
	return chart.SVG
}

func newChart(kind Kind, cfg Config) *Chart {
	cfg = cfg.normalized()
	return &Chart{Kind: kind, Title: cfg.Title, cfg: cfg}
}

// frame is the go-chart skeleton every layout starts from.
func frame(cfg Config, opts Options) chart.Chart {
	return chart.Chart{
		Title:  cfg.Title,
		Width:  cfg.Width,
		Height: cfg.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{Name: opts.XTitle},
		YAxis: chart.YAxis{Name: opts.YTitle},
	}
}

// placeholder is a titled chart with hidden axes and the no-data message
// in the middle.
func placeholder(cfg Config) chart.Chart {
	graph := frame(cfg, Options{})
	graph.XAxis.Style.Hidden = true
	graph.YAxis.Style.Hidden = true
	graph.XAxis.Range = &chart.ContinuousRange{Min: 0, Max: 1}
	graph.YAxis.Range = &chart.ContinuousRange{Min: 0, Max: 1}
	graph.Series = []chart.Series{
		chart.ContinuousSeries{
			Style:   chart.Style{StrokeColor: drawing.ColorTransparent},
			XValues: []float64{0, 1},
			YValues: []float64{0, 1},
		},
		chart.AnnotationSeries{
			Annotations: []chart.Value2{{XValue: 0.5, YValue: 0.5, Label: NoDataMessage}},
		},
	}
	return graph
}

const fallbackColor = "636EFA"

// color parses a #RRGGBB palette entry.
func color(hex string) drawing.Color {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 && len(hex) != 3 {
		hex = fallbackColor
	}
	return drawing.ColorFromHex(hex)
}

// finite drops NaN and infinite values.
func finite(values ...float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !isMissing(v) {
			out = append(out, v)
		}
	}
	return out
}

func isMissing(v float64) bool { return math.IsNaN(v) || math.IsInf(v, 0) }

// valueTicks turns a scale into axis ticks; its ends bound the axis.
func valueTicks(s scale) []chart.Tick {
	ticks := make([]chart.Tick, len(s.ticks))
	for i, t := range s.ticks {
		ticks[i] = chart.Tick{Value: t, Label: s.label(t)}
	}
	return ticks
}

// categoryTicks labels band i at position(i) over the range [0, n]. The
// unlabeled end ticks pin the axis to the full range.
func categoryTicks(labels []string, position func(i int) float64) []chart.Tick {
	n := float64(len(labels))
	ticks := []chart.Tick{{Value: 0}}
	for i, l := range labels {
		ticks = append(ticks, chart.Tick{Value: position(i), Label: l})
	}
	return append(ticks, chart.Tick{Value: n})
}

func axisRange(min, max float64) *chart.ContinuousRange {
	return &chart.ContinuousRange{Min: min, Max: max}
}

// annotations returns an annotation series, or nil when there is nothing
// to annotate: go-chart rejects an empty one.
func annotations(values []chart.Value2) chart.Series {
	if len(values) == 0 {
		return nil
	}
	return chart.AnnotationSeries{Annotations: values}
}

func appendSeries(series []chart.Series, extra ...chart.Series) []chart.Series {
	for _, s := range extra {
		if s != nil {
			series = append(series, s)
		}
	}
	return series
}
