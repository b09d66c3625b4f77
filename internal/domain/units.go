package domain

import "strings"

// Quantities are persisted in an ingredient's base unit; the display unit is
// only an input/output convenience. The sole built-in default covers the
// kilogram to gram relationship. Every other unit pair needs an explicit
// conversion factor from the caller.

// NormalizeUnit lowercases and trims a unit label for comparison
func NormalizeUnit(unit string) string {
	return strings.ToLower(strings.TrimSpace(unit))
}

// DefaultConversionFactor returns the implied display-to-base multiplier for
// a display unit: 1000 for "kg", 1 for everything else.
func DefaultConversionFactor(displayUnit string) float64 {
	if NormalizeUnit(displayUnit) == "kg" {
		return 1000
	}
	return 1
}

// DefaultBaseUnit returns the implied base unit for a display unit
func DefaultBaseUnit(displayUnit string) string {
	if NormalizeUnit(displayUnit) == "kg" {
		return "g"
	}
	return displayUnit
}

// ToBaseUnits converts a display-unit quantity to base units
func ToBaseUnits(displayQuantity, conversionFactor float64) float64 {
	return displayQuantity * conversionFactor
}
