package charts

import (
	chart "github.com/wcharczuk/go-chart/v2"
)

// Point is a labelled scatter point.
type Point struct {
	Label string
	X, Y  float64
	Color string
}

const (
	scatterDot  = 8
	trendDot    = 4
	squareWidth = 8
)

// ScatterChart plots points with their labels printed next to them.
// Points with a missing coordinate are left out.
func ScatterChart(points []Point, opts Options, cfg Config) *Chart {
	c := newChart(KindScatter, cfg)
	c.Options = opts
	for _, p := range points {
		if !isMissing(p.X) && !isMissing(p.Y) {
			c.Points = append(c.Points, p)
		}
	}
	if len(c.Points) == 0 {
		return c
	}
	kept := c.Points
	xs := make([]float64, len(kept))
	ys := make([]float64, len(kept))
	for i, p := range kept {
		xs[i], ys[i] = p.X, p.Y
	}
	sx, sy := paddedScale(xs), paddedScale(ys)

	c.build = func(cfg Config) chart.Chart {
		graph := frame(cfg, opts)
		graph.XAxis.Range = axisRange(sx.min, sx.max)
		graph.XAxis.Ticks = valueTicks(sx)
		graph.YAxis.Range = axisRange(sy.min, sy.max)
		graph.YAxis.Ticks = valueTicks(sy)

		notes := make([]chart.Value2, 0, len(kept))
		for _, p := range kept {
			graph.Series = append(graph.Series, chart.ContinuousSeries{
				Name:    p.Label,
				Style:   pointStyle(p.Color),
				XValues: []float64{p.X},
				YValues: []float64{p.Y},
			})
			notes = append(notes, chart.Value2{XValue: p.X, YValue: p.Y, Label: p.Label})
		}
		graph.Series = appendSeries(graph.Series, annotations(notes))
		return graph
	}
	return c
}

// pointStyle draws dots only, no connecting line.
func pointStyle(hex string) chart.Style {
	return chart.Style{
		StrokeWidth: 0,
		DotWidth:    scatterDot,
		DotColor:    color(hex),
	}
}

// LineChart draws one line per series over evenly spaced x labels. A
// missing value breaks the line.
func LineChart(xLabels []string, series []Series, opts Options, cfg Config) *Chart {
	c := newChart(KindLine, cfg)
	c.Categories, c.Series, c.Options = xLabels, series, opts
	vals := finite(seriesValues(series)...)
	if len(xLabels) == 0 || len(vals) == 0 {
		return c
	}
	sy := paddedScale(vals)

	c.build = func(cfg Config) chart.Chart {
		graph := frame(cfg, opts)
		n := float64(len(xLabels))
		graph.XAxis.Range = axisRange(-0.5, n-0.5)
		graph.XAxis.Ticks = indexTicks(xLabels)
		graph.YAxis.Range = axisRange(sy.min, sy.max)
		graph.YAxis.Ticks = valueTicks(sy)

		for _, s := range series {
			line := trendLine{name: s.Name, style: lineStyle(s)}
			if s.Marker == MarkerSquare {
				line.square = squareWidth
			}
			line.runs = runs(s, len(xLabels), line.style)
			if len(line.runs) > 0 {
				graph.Series = append(graph.Series, line)
			}
		}
		graph.Elements = []chart.Renderable{chart.Legend(&graph)}
		return graph
	}
	return c
}

func lineStyle(s Series) chart.Style {
	c := color(s.Color)
	style := chart.Style{StrokeColor: c, StrokeWidth: 2}
	if s.Marker != MarkerSquare {
		style.DotColor = c
		style.DotWidth = trendDot
	}
	return style
}

// runs splits a series into unbroken stretches of present values.
func runs(s Series, n int, style chart.Style) []chart.ContinuousSeries {
	var out []chart.ContinuousSeries
	var cur *chart.ContinuousSeries
	for i := 0; i < n; i++ {
		v := valueAt(s, i)
		if isMissing(v) {
			cur = nil
			continue
		}
		if cur == nil {
			out = append(out, chart.ContinuousSeries{Name: s.Name, Style: style})
			cur = &out[len(out)-1]
		}
		cur.XValues = append(cur.XValues, float64(i))
		cur.YValues = append(cur.YValues, v)
	}
	return out
}

// indexTicks labels positions 0..n-1, padded half a step on both sides.
func indexTicks(labels []string) []chart.Tick {
	ticks := []chart.Tick{{Value: -0.5}}
	for i, l := range labels {
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: l})
	}
	return append(ticks, chart.Tick{Value: float64(len(labels)) - 0.5})
}
