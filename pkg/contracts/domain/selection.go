package domain

import "fmt"

// Unit is the display scale for currency amounts.
type Unit string

const (
	UnitBillions Unit = "billions"
	UnitMillions Unit = "millions"
)

// Units lists the supported units in menu order.
var Units = []Unit{UnitBillions, UnitMillions}

// ParseUnit validates a unit name. An empty string selects billions.
func ParseUnit(s string) (Unit, error) {
	switch Unit(s) {
	case "", UnitBillions:
		return UnitBillions, nil
	case UnitMillions:
		return UnitMillions, nil
	}
	return "", fmt.Errorf("unknown unit %q", s)
}

// Divisor is the value raw amounts are divided by for display.
func (u Unit) Divisor() float64 {
	if u == UnitMillions {
		return 1e6
	}
	return 1e9
}

// Label is the short unit marker shown next to amounts.
func (u Unit) Label() string {
	if u == UnitMillions {
		return "$M"
	}
	return "$B"
}

// Scale converts a raw amount to the display unit.
func (u Unit) Scale(v float64) float64 {
	return v / u.Divisor()
}

// CategoryGroup is a named, ordered list of companies. ID is the stable
// key used in URLs. A custom group has no members and lets the user pick
// from every available company.
type CategoryGroup struct {
	ID      string   `json:"id" yaml:"id" validate:"required"`
	Label   string   `json:"label" yaml:"label" validate:"required"`
	Members []string `json:"members" yaml:"members"`
	Custom  bool     `json:"custom,omitempty" yaml:"custom"`
}

// Selection is the full set of user choices for one render pass.
// It is passed by value and never modified after construction.
type Selection struct {
	Unit      Unit     `json:"unit" validate:"required,oneof=billions millions"`
	Category  string   `json:"category" validate:"required"`
	Companies []string `json:"companies" validate:"dive,required"`
	Year      int      `json:"year" validate:"gte=0"`
	ShowTrend bool     `json:"show_trend"`
}

// NoCompanies reports whether nothing was selected.
func (s Selection) NoCompanies() bool { return len(s.Companies) == 0 }
