package charts

import (
	"math"
	"strconv"
)

const maxTicks = 6

// scale is a value domain with round bounds and its tick positions.
type scale struct {
	min, max float64
	step     float64
	ticks    []float64
}

// newScale spans values with round tick boundaries. includeZero anchors
// bar charts at the baseline.
func newScale(values []float64, includeZero bool) scale {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if math.IsInf(lo, 1) {
		lo, hi = 0, 1
	}
	if includeZero {
		lo = math.Min(lo, 0)
		hi = math.Max(hi, 0)
	}
	if lo == hi {
		if lo == 0 {
			hi = 1
		} else {
			pad := math.Abs(lo) * 0.1
			lo, hi = lo-pad, hi+pad
		}
	}

	rng := niceNum(hi-lo, false)
	step := niceNum(rng/float64(maxTicks-1), true)
	nmin := math.Floor(lo/step) * step
	nmax := math.Ceil(hi/step) * step

	s := scale{min: nmin, max: nmax, step: step}
	n := int(math.Round((nmax - nmin) / step))
	for i := 0; i <= n; i++ {
		s.ticks = append(s.ticks, nmin+float64(i)*step)
	}
	return s
}

// paddedScale is newScale with 10% head room on both sides, so labelled
// points do not sit on the frame.
func paddedScale(values []float64) scale {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if math.IsInf(lo, 1) {
		return newScale(nil, false)
	}
	pad := (hi - lo) * 0.1
	if pad == 0 {
		pad = math.Max(math.Abs(lo)*0.1, 0.5)
	}
	return newScale([]float64{lo - pad, hi + pad}, false)
}

// niceNum rounds x to 1, 2, 5 or 10 times a power of ten.
func niceNum(x float64, round bool) float64 {
	if x <= 0 {
		return 1
	}
	exp := math.Floor(math.Log10(x))
	f := x / math.Pow(10, exp)
	var nf float64
	if round {
		switch {
		case f < 1.5:
			nf = 1
		case f < 3:
			nf = 2
		case f < 7:
			nf = 5
		default:
			nf = 10
		}
	} else {
		switch {
		case f <= 1:
			nf = 1
		case f <= 2:
			nf = 2
		case f <= 5:
			nf = 5
		default:
			nf = 10
		}
	}
	return nf * math.Pow(10, exp)
}

// clampZero is the baseline: zero when inside the domain, else the
// nearest edge.
func (s scale) clampZero() float64 {
	switch {
	case s.min > 0:
		return s.min
	case s.max < 0:
		return s.max
	default:
		return 0
	}
}

func (s scale) label(v float64) string {
	decimals := 0
	if s.step < 1 {
		decimals = int(math.Ceil(-math.Log10(s.step)))
	}
	if v == 0 {
		v = 0 // no "-0"
	}
	return strconv.FormatFloat(v, 'f', decimals, 64)
}
