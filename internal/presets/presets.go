// Package presets lists real-world heights for common subjects.
package presets

import (
	"fmt"
	"strings"

	fz "github.com/Hanaasagi/targetlock/pkg/fuzzymatch"
)

// Preset is a named real-world height.
type Preset struct {
	Title        string
	HeightMeters float64
}

var builtin = []Preset{
	{Title: "Adult Male (1.75m)", HeightMeters: 1.75},
	{Title: "Adult Female (1.65m)", HeightMeters: 1.65},
	{Title: "Child (1.20m)", HeightMeters: 1.20},
	{Title: "Large Dog (0.70m)", HeightMeters: 0.70},
	{Title: "Medium Dog (0.50m)", HeightMeters: 0.50},
	{Title: "Small Dog (0.30m)", HeightMeters: 0.30},
}

// All returns a copy of the built-in presets.
func All() []Preset {
	out := make([]Preset, len(builtin))
	copy(out, builtin)
	return out
}

// Titles returns the preset titles in display order.
func Titles() []string {
	titles := make([]string, len(builtin))
	for i, p := range builtin {
		titles[i] = p.Title
	}
	return titles
}

// Lookup resolves query to a preset, first by case-insensitive title, then by
// fuzzy match against the titles.
func Lookup(query string) (Preset, error) {
	query = strings.TrimSpace(query)
	for _, p := range builtin {
		if strings.EqualFold(p.Title, query) {
			return p, nil
		}
	}

	if query != "" {
		if best, ok := fz.NewFuzzyMatcher(false).Best(query, Titles()); ok {
			return builtin[best.Original], nil
		}
	}
	return Preset{}, fmt.Errorf("no preset matches %q", query)
}
