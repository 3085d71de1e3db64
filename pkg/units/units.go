// Package units converts and renders distances under a display unit mode.
// Values are always stored in meters; conversion happens only for display.
package units

import (
	"fmt"
	"strings"
)

// FeetPerMeter is the fixed conversion factor used for every rendering.
const FeetPerMeter = 3.28084

// DisplayUnit selects how lengths are rendered.
type DisplayUnit string

const (
	Meters DisplayUnit = "meters"
	Feet   DisplayUnit = "feet"
	Both   DisplayUnit = "both"
)

// DefaultUnit is used when no setting has been stored.
const DefaultUnit = Both

// ValidUnits contains all valid unit values
var ValidUnits = []DisplayUnit{Meters, Feet, Both}

// IsValid checks if the unit is one of ValidUnits
func (u DisplayUnit) IsValid() bool {
	for _, valid := range ValidUnits {
		if u == valid {
			return true
		}
	}
	return false
}

func (u DisplayUnit) String() string { return string(u) }

// ParseDisplayUnit accepts the unit names plus the short forms m and ft.
func ParseDisplayUnit(s string) (DisplayUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "meters", "meter", "metric", "m":
		return Meters, nil
	case "feet", "foot", "imperial", "ft":
		return Feet, nil
	case "both":
		return Both, nil
	default:
		return "", fmt.Errorf("unknown display unit %q (want meters, feet or both)", s)
	}
}

// MetersToFeet converts a length in meters to feet.
func MetersToFeet(m float64) float64 {
	return m * FeetPerMeter
}

// FeetToMeters converts a length in feet to meters.
func FeetToMeters(ft float64) float64 {
	return ft / FeetPerMeter
}
