package charts

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	chart "github.com/wcharczuk/go-chart/v2"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

// renderBoth renders c in both formats and returns the SVG document.
func renderBoth(t *testing.T, c *Chart) string {
	t.Helper()
	svg, err := c.SVG()
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(svg, "<svg"), svg)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(svg), "</svg>"))

	png, err := c.PNG()
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngMagic))
	return svg
}

// graphOf returns the go-chart definition c renders from.
func graphOf(t *testing.T, c *Chart) chart.Chart {
	t.Helper()
	require.False(t, c.Empty())
	return c.build(c.cfg)
}

func rectsOf(graph chart.Chart) []rectSeries {
	var out []rectSeries
	for _, s := range graph.Series {
		if r, ok := s.(rectSeries); ok {
			out = append(out, r)
		}
	}
	return out
}

func notesOf(graph chart.Chart) []string {
	var out []string
	for _, s := range graph.Series {
		if a, ok := s.(chart.AnnotationSeries); ok {
			for _, v := range a.Annotations {
				out = append(out, v.Label)
			}
		}
	}
	return out
}

func TestCharts_EmptyInput(t *testing.T) {
	nan := math.NaN()
	cfg := DefaultConfig().WithTitle("Empty")

	outputs := map[string]*Chart{
		"bar":         BarChart(nil, Options{}, cfg),
		"bar all nan": BarChart([]Bar{{Label: "A", Value: nan}}, Options{}, cfg),
		"horizontal":  HorizontalBarChart(nil, Options{}, cfg),
		"stacked":     StackedBarChart([]string{"A"}, []Series{{Name: "x", Values: []float64{nan}}}, Options{}, cfg),
		"grouped":     GroupedBarChart(nil, nil, Options{}, cfg),
		"scatter":     ScatterChart([]Point{{Label: "A", X: nan, Y: 1}}, Options{}, cfg),
		"line":        LineChart([]string{"FY2023"}, nil, Options{}, cfg),
	}
	for name, c := range outputs {
		t.Run(name, func(t *testing.T) {
			assert.True(t, c.Empty())
			assert.Equal(t, "Empty", c.Title)
			svg := renderBoth(t, c)
			assert.Contains(t, svg, NoDataMessage)
			assert.Contains(t, svg, "Empty")
		})
	}
}

func TestBarChart(t *testing.T) {
	c := BarChart([]Bar{
		{Label: "Walmart", Value: 40.5, Color: "#1f77b4", Text: "40.5%"},
		{Label: "Target", Value: -3, Color: "#ff7f0e"},
		{Label: "Kroger", Value: math.NaN()},
	}, Options{
		YTitle:   "Equity ratio (%)",
		RefLines: []RefLine{{Value: 50, Color: "#C73E1D", Label: "50% reference"}},
	}, DefaultConfig().WithTitle("Equity ratio"))

	assert.Equal(t, KindBar, c.Kind)
	require.Len(t, c.Bars, 3)

	graph := graphOf(t, c)
	bars := rectsOf(graph)
	require.Len(t, bars, 1)
	require.Len(t, bars[0].rects, 2, "the missing bar is not drawn")
	assert.Equal(t, 40.5, bars[0].rects[0].y1)
	assert.Equal(t, color("#ff7f0e"), bars[0].rects[1].color)
	assert.Equal(t, 0.0, bars[0].rects[1].y0, "a negative bar hangs from zero")
	assert.ElementsMatch(t, []string{"40.5%", "N/A", "50% reference"}, notesOf(graph))
	assert.GreaterOrEqual(t, graph.YAxis.Range.GetMax(), 50.0, "the reference line is in range")

	var refs []refLineSeries
	for _, s := range graph.Series {
		if r, ok := s.(refLineSeries); ok {
			refs = append(refs, r)
		}
	}
	require.Len(t, refs, 1)
	assert.Equal(t, []float64{5, 5}, refs[0].GetStyle().StrokeDashArray)
	assert.Equal(t, color("#C73E1D"), refs[0].GetStyle().StrokeColor)

	svg := renderBoth(t, c)
	for _, s := range []string{"Equity ratio", "Walmart", "Kroger", "40.5%", "N/A", "50% reference"} {
		assert.Contains(t, svg, s)
	}
}

func TestHorizontalBarChart(t *testing.T) {
	c := HorizontalBarChart([]Bar{
		{Label: "Costco", Value: 3.5, Color: "#2ca02c", Text: "3.5%"},
		{Label: "Amazon", Value: 6.4, Color: "#d62728", Text: "6.4%"},
	}, Options{XTitle: "Operating margin (%)"}, DefaultConfig())

	graph := graphOf(t, c)
	bars := rectsOf(graph)
	require.Len(t, bars, 1)
	require.Len(t, bars[0].rects, 2)
	assert.Greater(t, bars[0].rects[0].y0, bars[0].rects[1].y0, "first bar is on top")
	assert.Equal(t, 6.4, bars[0].rects[1].x1, "values run along the x axis")

	svg := renderBoth(t, c)
	assert.Contains(t, svg, "Costco")
	assert.Contains(t, svg, "6.4%")
}

func TestStackedBarChart(t *testing.T) {
	c := StackedBarChart([]string{"Walmart", "Target"}, []Series{
		{Name: "Cost of sales", Color: "#A9A9A9", Values: []float64{490, 77}},
		{Name: "SGA", Color: "#87CEEB", Values: []float64{130, 21}},
		{Name: "Operating income", Color: "#FF8C00", Values: []float64{27, -1}},
	}, Options{YTitle: "$B"}, DefaultConfig())

	graph := graphOf(t, c)
	layers := rectsOf(graph)
	require.Len(t, layers, 3)
	assert.Equal(t, "SGA", layers[1].GetName())
	assert.Equal(t, 490.0, layers[1].rects[0].y0, "SGA sits on cost of sales")
	assert.Equal(t, 620.0, layers[1].rects[0].y1)

	loss := layers[2].rects[1]
	assert.Equal(t, 0.0, loss.y0, "a loss grows down from zero")
	assert.Equal(t, -1.0, loss.y1)
	assert.Less(t, graph.YAxis.Range.GetMin(), 0.0)
	assert.Len(t, graph.Elements, 1, "legend")

	svg := renderBoth(t, c)
	for _, name := range []string{"Cost of sales", "SGA", "Operating income", "Target"} {
		assert.Contains(t, svg, name)
	}
}

func TestGroupedBarChart_SkipsMissing(t *testing.T) {
	c := GroupedBarChart([]string{"A", "B"}, []Series{
		{Name: "Operating CF", Color: "#2E86AB", Values: []float64{10, math.NaN()}},
		{Name: "Investing CF", Color: "#F18F01", Values: []float64{-4, -2}},
	}, Options{}, DefaultConfig())

	layers := rectsOf(graphOf(t, c))
	require.Len(t, layers, 2)
	assert.Len(t, layers[0].rects, 1)
	assert.Len(t, layers[1].rects, 2)
	assert.Less(t, layers[0].rects[0].x1, layers[1].rects[0].x0, "series sit side by side")

	svg := renderBoth(t, c)
	assert.Contains(t, svg, "Investing CF")
}

func TestScatterChart(t *testing.T) {
	c := ScatterChart([]Point{
		{Label: "Walmart", X: 8.9, Y: 4.2, Color: "#1f77b4"},
		{Label: "Dollar General", X: 4.1, Y: 7.8, Color: "#ff7f0e"},
		{Label: "Missing", X: math.NaN(), Y: 1},
	}, Options{XTitle: "Inventory turnover", YTitle: "Operating margin (%)"}, DefaultConfig())

	require.Len(t, c.Points, 2)
	graph := graphOf(t, c)
	var dots int
	for _, s := range graph.Series {
		if cs, ok := s.(chart.ContinuousSeries); ok {
			dots++
			assert.Equal(t, float64(scatterDot), cs.Style.DotWidth)
		}
	}
	assert.Equal(t, 2, dots)
	assert.Equal(t, []string{"Walmart", "Dollar General"}, notesOf(graph))

	svg := renderBoth(t, c)
	assert.Contains(t, svg, "Dollar General")
	assert.NotContains(t, svg, "Missing")
}

func TestLineChart(t *testing.T) {
	c := LineChart([]string{"FY2020", "FY2021", "FY2022"}, []Series{
		{Name: "Walmart", Color: "#1f77b4", Values: []float64{559, math.NaN(), 611}, Marker: MarkerCircle},
		{Name: "Target", Color: "#ff7f0e", Values: []float64{93, 106, 109}, Marker: MarkerSquare},
	}, Options{YTitle: "Revenue ($B)"}, DefaultConfig().WithTitle("Revenue trend (FY2020-FY2022)"))

	graph := graphOf(t, c)
	require.Len(t, graph.Series, 2)
	walmart := graph.Series[0].(trendLine)
	target := graph.Series[1].(trendLine)

	assert.Equal(t, "Walmart", walmart.GetName())
	assert.Len(t, walmart.runs, 2, "the gap restarts the line")
	assert.Equal(t, float64(trendDot), walmart.style.DotWidth)
	assert.Zero(t, walmart.square)

	require.Len(t, target.runs, 1)
	assert.Equal(t, []float64{0, 1, 2}, target.runs[0].XValues)
	assert.Equal(t, squareWidth, target.square)
	assert.Zero(t, target.style.DotWidth)

	svg := renderBoth(t, c)
	for _, s := range []string{"FY2021", "Walmart", "Target", "Revenue trend"} {
		assert.Contains(t, svg, s)
	}
}

func TestLineChart_SkipsSeriesWithoutValues(t *testing.T) {
	nan := math.NaN()
	c := LineChart([]string{"FY2021", "FY2022"}, []Series{
		{Name: "Walmart", Values: []float64{1, 2}},
		{Name: "Kroger", Values: []float64{nan, nan}},
	}, Options{}, DefaultConfig())

	graph := graphOf(t, c)
	require.Len(t, graph.Series, 1)
	assert.Equal(t, "Walmart", graph.Series[0].GetName())
	renderBoth(t, c)
}

func TestNewScale(t *testing.T) {
	tests := []struct {
		name        string
		values      []float64
		includeZero bool
		wantMin     float64
		wantMax     float64
	}{
		{"positive anchored at zero", []float64{3, 47}, true, 0, 50},
		{"negative and positive", []float64{-12, 30}, true, -20, 30},
		{"no values", nil, true, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newScale(tt.values, tt.includeZero)
			assert.InDelta(t, tt.wantMin, s.min, 1e-9)
			assert.InDelta(t, tt.wantMax, s.max, 1e-9)
			require.NotEmpty(t, s.ticks)
			assert.InDelta(t, s.min, s.ticks[0], 1e-9)
			assert.InDelta(t, s.max, s.ticks[len(s.ticks)-1], 1e-9)
			assert.LessOrEqual(t, len(s.ticks), maxTicks+2)
		})
	}
}

func TestNewScale_FlatValues(t *testing.T) {
	s := newScale([]float64{5, 5}, false)
	assert.Less(t, s.min, 5.0)
	assert.Greater(t, s.max, 5.0)
}

func TestScaleLabel(t *testing.T) {
	assert.Equal(t, "20", newScale([]float64{0, 100}, true).label(20))
	assert.Equal(t, "0.2", newScale([]float64{0, 1}, true).label(0.2))
	assert.Equal(t, "0.0", newScale([]float64{-1, 1}, true).label(math.Copysign(0, -1)))
}

func TestValueTicks_SpanTheScale(t *testing.T) {
	s := newScale([]float64{-3, 41}, true)
	ticks := valueTicks(s)
	require.NotEmpty(t, ticks)
	assert.Equal(t, s.min, ticks[0].Value)
	assert.Equal(t, s.max, ticks[len(ticks)-1].Value)
}

func TestColor(t *testing.T) {
	assert.Equal(t, color("C73E1D"), color("#C73E1D"))
	assert.Equal(t, color(fallbackColor), color(""))
}

func TestConfigNormalized(t *testing.T) {
	c := Config{Title: "x"}.normalized()
	assert.Equal(t, 800, c.Width)
	assert.Equal(t, 400, c.Height)
	assert.Equal(t, "x", c.Title)

	sized := DefaultConfig().WithSize(640, 0)
	assert.Equal(t, 640, sized.Width)
	assert.Equal(t, 400, sized.Height)
}
