package palette

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssignColors_Deterministic(t *testing.T) {
	companies := []string{"Walmart", "Target", "Kroger", "Costco"}
	assert.Equal(t, AssignColors(companies), AssignColors(companies))
}

func TestAssignColors_WrapsPalette(t *testing.T) {
	var companies []string
	for _, c := range "ABCDEFGHI" {
		companies = append(companies, string(c))
	}
	got := AssignColors(companies)

	assert.Equal(t, Colors[0], got["A"])
	assert.Equal(t, Colors[6], got["G"])
	assert.Equal(t, Colors[0], got["H"])
	assert.Equal(t, Colors[1], got["I"])
}

func TestAssignColors_DuplicateKeepsFirst(t *testing.T) {
	got := AssignColors([]string{"Amazon", "eBay", "Amazon"})
	assert.Len(t, got, 2)
	assert.Equal(t, Colors[0], got["Amazon"])
	assert.Equal(t, Colors[1], got["eBay"])
}

func TestColorFor(t *testing.T) {
	colors := AssignColors([]string{"Etsy"})
	assert.Equal(t, Colors[0], ColorFor(colors, "Etsy"))
	assert.Equal(t, Colors[0], ColorFor(colors, "Unknown"))
}
