package charts

import (
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
)

// Bar is one category of a single-series bar chart. Text, when set, is
// printed at the end of the bar.
type Bar struct {
	Label string
	Value float64
	Color string
	Text  string
}

const (
	barWidth   = 0.6
	groupWidth = 0.8
	naLabel    = "N/A"
)

func barValues(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Value
	}
	return out
}

func barLabels(bars []Bar) []string {
	out := make([]string, len(bars))
	for i, b := range bars {
		out[i] = b.Label
	}
	return out
}

func refValues(lines []RefLine) []float64 {
	out := make([]float64, len(lines))
	for i, l := range lines {
		out[i] = l.Value
	}
	return out
}

func refSeries(lines []RefLine, vertical bool) []chart.Series {
	var out []chart.Series
	for _, l := range lines {
		out = append(out, refLineSeries{line: l, vertical: vertical})
	}
	return out
}

// refLabels places each reference label at the far end of its line.
func refLabels(lines []RefLine, end float64, vertical bool) []chart.Value2 {
	var out []chart.Value2
	for _, l := range lines {
		if l.Label == "" {
			continue
		}
		v := chart.Value2{XValue: end, YValue: l.Value, Label: l.Label}
		if vertical {
			v.XValue, v.YValue = l.Value, end
		}
		out = append(out, v)
	}
	return out
}

// BarChart draws vertical bars in the given order. A missing value leaves
// its slot empty with an N/A marker.
func BarChart(bars []Bar, opts Options, cfg Config) *Chart {
	c := newChart(KindBar, cfg)
	c.Bars, c.Options = bars, opts
	vals := finite(barValues(bars)...)
	if len(vals) == 0 {
		return c
	}
	values := newScale(append(vals, refValues(opts.RefLines)...), true)
	n := float64(len(bars))

	c.build = func(cfg Config) chart.Chart {
		graph := frame(cfg, opts)
		graph.XAxis.Range = axisRange(0, n)
		graph.XAxis.Ticks = categoryTicks(barLabels(bars), bandCenter)
		graph.YAxis.Range = axisRange(values.min, values.max)
		graph.YAxis.Ticks = valueTicks(values)

		base := values.clampZero()
		bodies := rectSeries{name: opts.YTitle}
		var notes []chart.Value2
		for i, b := range bars {
			center := bandCenter(i)
			if isMissing(b.Value) {
				notes = append(notes, chart.Value2{XValue: center, YValue: base, Label: naLabel})
				continue
			}
			bodies.rects = append(bodies.rects, rect{
				x0: center - barWidth/2, x1: center + barWidth/2,
				y0: base, y1: b.Value,
				color: color(b.Color),
			})
			if b.Text != "" {
				notes = append(notes, chart.Value2{XValue: center, YValue: b.Value, Label: b.Text})
			}
		}
		notes = append(notes, refLabels(opts.RefLines, n, false)...)

		graph.Series = appendSeries([]chart.Series{bodies}, refSeries(opts.RefLines, false)...)
		graph.Series = appendSeries(graph.Series, annotations(notes))
		return graph
	}
	return c
}

// HorizontalBarChart draws one bar per row, first bar on top.
func HorizontalBarChart(bars []Bar, opts Options, cfg Config) *Chart {
	c := newChart(KindHorizontalBar, cfg)
	c.Bars, c.Options = bars, opts
	vals := finite(barValues(bars)...)
	if len(vals) == 0 {
		return c
	}
	values := newScale(append(vals, refValues(opts.RefLines)...), true)
	n := len(bars)
	row := func(i int) float64 { return float64(n-1-i) + 0.5 }

	c.build = func(cfg Config) chart.Chart {
		graph := frame(cfg, opts)
		graph.XAxis.Range = axisRange(values.min, values.max)
		graph.XAxis.Ticks = valueTicks(values)
		graph.YAxis.Range = axisRange(0, float64(n))
		graph.YAxis.Ticks = categoryTicks(barLabels(bars), row)

		base := values.clampZero()
		bodies := rectSeries{name: opts.XTitle}
		var notes []chart.Value2
		for i, b := range bars {
			center := row(i)
			if isMissing(b.Value) {
				notes = append(notes, chart.Value2{XValue: base, YValue: center, Label: naLabel})
				continue
			}
			bodies.rects = append(bodies.rects, rect{
				x0: base, x1: b.Value,
				y0: center - barWidth/2, y1: center + barWidth/2,
				color: color(b.Color),
			})
			if b.Text != "" {
				notes = append(notes, chart.Value2{XValue: b.Value, YValue: center, Label: b.Text})
			}
		}
		notes = append(notes, refLabels(opts.RefLines, float64(n), true)...)

		graph.Series = appendSeries([]chart.Series{bodies}, refSeries(opts.RefLines, true)...)
		graph.Series = appendSeries(graph.Series, annotations(notes))
		return graph
	}
	return c
}

func bandCenter(i int) float64 { return float64(i) + 0.5 }

func seriesValues(series []Series) []float64 {
	var out []float64
	for _, s := range series {
		out = append(out, s.Values...)
	}
	return out
}

func valueAt(s Series, i int) float64 {
	if i >= len(s.Values) {
		return math.NaN()
	}
	return s.Values[i]
}

// legendStyle makes the legend swatch carry the series color.
func legendStyle(hex string) chart.Style {
	c := color(hex)
	return chart.Style{StrokeColor: c, FillColor: c, StrokeWidth: 4}
}

// StackedBarChart stacks the series per category. Positive values grow
// up from zero and negative values down, so a loss does not hide the
// cost bars beneath it.
func StackedBarChart(categories []string, series []Series, opts Options, cfg Config) *Chart {
	c := newChart(KindStackedBar, cfg)
	c.Categories, c.Series, c.Options = categories, series, opts
	if len(categories) == 0 || len(finite(seriesValues(series)...)) == 0 {
		return c
	}

	pos := make([]float64, len(categories))
	neg := make([]float64, len(categories))
	for _, s := range series {
		for i := range categories {
			v := valueAt(s, i)
			if isMissing(v) {
				continue
			}
			if v >= 0 {
				pos[i] += v
			} else {
				neg[i] += v
			}
		}
	}
	values := newScale(append(append(pos, neg...), refValues(opts.RefLines)...), true)
	n := float64(len(categories))

	c.build = func(cfg Config) chart.Chart {
		graph := frame(cfg, opts)
		graph.XAxis.Range = axisRange(0, n)
		graph.XAxis.Ticks = categoryTicks(categories, bandCenter)
		graph.YAxis.Range = axisRange(values.min, values.max)
		graph.YAxis.Ticks = valueTicks(values)

		up := make([]float64, len(categories))
		down := make([]float64, len(categories))
		for _, s := range series {
			layer := rectSeries{name: s.Name, style: legendStyle(s.Color)}
			for i := range categories {
				v := valueAt(s, i)
				if isMissing(v) || v == 0 {
					continue
				}
				var from, to float64
				if v > 0 {
					from, to = up[i], up[i]+v
					up[i] = to
				} else {
					from, to = down[i], down[i]+v
					down[i] = to
				}
				center := bandCenter(i)
				layer.rects = append(layer.rects, rect{
					x0: center - barWidth/2, x1: center + barWidth/2,
					y0: from, y1: to,
					color: color(s.Color),
				})
			}
			graph.Series = append(graph.Series, layer)
		}
		graph.Series = appendSeries(graph.Series, refSeries(opts.RefLines, false)...)
		graph.Series = appendSeries(graph.Series, annotations(refLabels(opts.RefLines, n, false)))
		graph.Elements = []chart.Renderable{chart.Legend(&graph)}
		return graph
	}
	return c
}

// GroupedBarChart places the series side by side within each category.
func GroupedBarChart(categories []string, series []Series, opts Options, cfg Config) *Chart {
	c := newChart(KindGroupedBar, cfg)
	c.Categories, c.Series, c.Options = categories, series, opts
	vals := finite(seriesValues(series)...)
	if len(categories) == 0 || len(series) == 0 || len(vals) == 0 {
		return c
	}
	values := newScale(append(vals, refValues(opts.RefLines)...), true)
	n := float64(len(categories))
	width := groupWidth / float64(len(series))

	c.build = func(cfg Config) chart.Chart {
		graph := frame(cfg, opts)
		graph.XAxis.Range = axisRange(0, n)
		graph.XAxis.Ticks = categoryTicks(categories, bandCenter)
		graph.YAxis.Range = axisRange(values.min, values.max)
		graph.YAxis.Ticks = valueTicks(values)

		base := values.clampZero()
		for j, s := range series {
			layer := rectSeries{name: s.Name, style: legendStyle(s.Color)}
			for i := range categories {
				v := valueAt(s, i)
				if isMissing(v) {
					continue
				}
				left := float64(i) + (1-groupWidth)/2 + width*float64(j)
				layer.rects = append(layer.rects, rect{
					x0: left, x1: left + width*0.92,
					y0: base, y1: v,
					color: color(s.Color),
				})
			}
			graph.Series = append(graph.Series, layer)
		}
		graph.Series = appendSeries(graph.Series, refSeries(opts.RefLines, false)...)
		graph.Series = appendSeries(graph.Series, annotations(refLabels(opts.RefLines, n, false)))
		graph.Elements = []chart.Renderable{chart.Legend(&graph)}
		return graph
	}
	return c
}
