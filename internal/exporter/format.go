package exporter

import (
	"fmt"
	"math"
)

// formatFloat formats a value for CSV output with exactly 2 decimal places.
// Missing values become empty cells.
func formatFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	return fmt.Sprintf("%.2f", f)
}
