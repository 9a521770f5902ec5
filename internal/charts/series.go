package charts

import (
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// rect is a filled box in data coordinates.
type rect struct {
	x0, x1 float64
	y0, y1 float64
	color  drawing.Color
}

// rectSeries draws bars. go-chart's own bar charts have no negative or
// horizontal bars, so the boxes are laid out here and drawn inside the
// regular chart canvas.
type rectSeries struct {
	name  string
	style chart.Style
	rects []rect
}

var _ chart.Series = rectSeries{}

func (s rectSeries) GetName() string           { return s.name }
func (s rectSeries) GetStyle() chart.Style     { return s.style }
func (s rectSeries) GetYAxis() chart.YAxisType { return chart.YAxisPrimary }
func (s rectSeries) Validate() error           { return nil }

func (s rectSeries) Render(r chart.Renderer, canvas chart.Box, xr, yr chart.Range, _ chart.Style) {
	for _, b := range s.rects {
		left := canvas.Left + xr.Translate(b.x0)
		right := canvas.Left + xr.Translate(b.x1)
		top := canvas.Bottom - yr.Translate(b.y1)
		bottom := canvas.Bottom - yr.Translate(b.y0)
		if left > right {
			left, right = right, left
		}
		if top > bottom {
			top, bottom = bottom, top
		}
		if left == right || top == bottom {
			continue
		}
		r.SetFillColor(b.color)
		r.SetStrokeColor(b.color)
		r.SetStrokeWidth(1)
		r.MoveTo(left, top)
		r.LineTo(right, top)
		r.LineTo(right, bottom)
		r.LineTo(left, bottom)
		r.LineTo(left, top)
		r.Close()
		r.FillStroke()
	}
}

// refLineSeries is a dashed line across the plot at a constant value.
// vertical puts the value on the X axis.
type refLineSeries struct {
	line     RefLine
	vertical bool
}

var _ chart.Series = refLineSeries{}

func (s refLineSeries) GetName() string { return s.line.Label }

func (s refLineSeries) GetStyle() chart.Style {
	return chart.Style{
		StrokeColor:     color(s.line.Color),
		StrokeWidth:     1.5,
		StrokeDashArray: []float64{5, 5},
	}
}

func (s refLineSeries) GetYAxis() chart.YAxisType { return chart.YAxisPrimary }
func (s refLineSeries) Validate() error           { return nil }

func (s refLineSeries) Render(r chart.Renderer, canvas chart.Box, xr, yr chart.Range, _ chart.Style) {
	style := s.GetStyle()
	r.SetStrokeColor(style.StrokeColor)
	r.SetStrokeWidth(style.StrokeWidth)
	r.SetStrokeDashArray(style.StrokeDashArray)
	if s.vertical {
		x := canvas.Left + xr.Translate(s.line.Value)
		r.MoveTo(x, canvas.Top)
		r.LineTo(x, canvas.Bottom)
	} else {
		y := canvas.Bottom - yr.Translate(s.line.Value)
		r.MoveTo(canvas.Left, y)
		r.LineTo(canvas.Right, y)
	}
	r.Stroke()
	r.SetStrokeDashArray(nil)
}

// trendLine is one named line broken into runs at missing values. Each
// run is drawn by go-chart; square markers are added on top since
// go-chart only draws round dots.
type trendLine struct {
	name   string
	style  chart.Style
	runs   []chart.ContinuousSeries
	square int
}

var _ chart.Series = trendLine{}

func (s trendLine) GetName() string           { return s.name }
func (s trendLine) GetStyle() chart.Style     { return s.style }
func (s trendLine) GetYAxis() chart.YAxisType { return chart.YAxisPrimary }

func (s trendLine) Validate() error {
	for _, run := range s.runs {
		if err := run.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (s trendLine) Render(r chart.Renderer, canvas chart.Box, xr, yr chart.Range, defaults chart.Style) {
	for _, run := range s.runs {
		run.Render(r, canvas, xr, yr, defaults)
		if s.square == 0 {
			continue
		}
		half := s.square / 2
		for i, xv := range run.XValues {
			x := canvas.Left + xr.Translate(xv)
			y := canvas.Bottom - yr.Translate(run.YValues[i])
			r.SetFillColor(s.style.StrokeColor)
			r.SetStrokeColor(s.style.StrokeColor)
			r.SetStrokeWidth(1)
			r.MoveTo(x-half, y-half)
			r.LineTo(x+half, y-half)
			r.LineTo(x+half, y+half)
			r.LineTo(x-half, y+half)
			r.LineTo(x-half, y-half)
			r.Close()
			r.FillStroke()
		}
	}
}
