package exporter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected string
	}{
		{"zero value", 0, "0.00"},
		{"one decimal padded", 13.4, "13.40"},
		{"rounded", 611.289, "611.29"},
		{"negative", -2.5, "-2.50"},
		{"missing", math.NaN(), ""},
		{"infinite", math.Inf(-1), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatFloat(tt.input))
		})
	}
}
