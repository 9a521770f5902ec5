package dashboard

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"findash/pkg/contracts/domain"
)

// NotAvailable is displayed for empty cells.
const NotAvailable = "N/A"

var printer = message.NewPrinter(language.English)

// FormatValue renders v the way its column is displayed: grouped amounts
// with one decimal, percentages with a % suffix, turnovers with two
// decimals, whole headcount.
func FormatValue(col domain.Column, v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NotAvailable
	}
	info, _ := domain.Info(col)
	switch info.Kind {
	case domain.KindAmount:
		return printer.Sprintf("%.1f", v)
	case domain.KindPercent:
		return fmt.Sprintf("%.1f%%", v)
	case domain.KindRatio:
		return fmt.Sprintf("%.2f", v)
	case domain.KindCount:
		return printer.Sprintf("%.0f", v)
	case domain.KindPerEmployee:
		return fmt.Sprintf("%.1f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}

// ColumnHeader labels a table column, with the unit for amounts.
func ColumnHeader(col domain.Column, unit domain.Unit) string {
	info, ok := domain.Info(col)
	if !ok {
		return col.Label()
	}
	switch info.Kind {
	case domain.KindAmount:
		return fmt.Sprintf("%s (%s)", info.Label, unit.Label())
	case domain.KindPerEmployee:
		return info.Label + " ($K)"
	default:
		return info.Label
	}
}

// UnitName is the long form shown in the header.
func UnitName(u domain.Unit) string {
	if u == domain.UnitMillions {
		return "Millions of USD ($M)"
	}
	return "Billions of USD ($B)"
}
