// Package palette assigns chart colors to companies.
package palette

// Colors is the chart palette, applied by position.
var Colors = []string{
	"#2E86AB",
	"#A23B72",
	"#F18F01",
	"#C73E1D",
	"#3B1F2B",
	"#95C623",
	"#5C4D7D",
}

// Fixed colors shared by every render pass.
const (
	CostOfSales     = "#A9A9A9"
	SGA             = "#87CEEB"
	OperatingIncome = "#FF8C00"
	Positive        = "#2E86AB"
	PositiveFreeCF  = "#95C623"
	Negative        = "#C73E1D"
	Accent          = "#F18F01"
	ReferenceLine   = "#C73E1D"
)

// AssignColors maps each company to Colors[i mod len(Colors)] by its
// position in the list. A repeated name keeps the color of its first
// occurrence, so the mapping depends only on the ordered input.
func AssignColors(companies []string) map[string]string {
	out := make(map[string]string, len(companies))
	for i, c := range companies {
		if _, ok := out[c]; ok {
			continue
		}
		out[c] = Colors[i%len(Colors)]
	}
	return out
}

// ColorFor returns the assigned color, falling back to the first palette entry.
func ColorFor(colors map[string]string, company string) string {
	if c, ok := colors[company]; ok {
		return c
	}
	return Colors[0]
}
