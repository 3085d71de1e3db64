package settings

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Hanaasagi/targetlock/pkg/units"
)

// Keys lists the names accepted by Set, in display order.
var Keys = []string{"display_unit", "theme", "show_grid_overlay", "calibration"}

// Set assigns a single setting from its string form.
func Set(s *Settings, key, value string) error {
	switch key {
	case "display_unit", "unit":
		u, err := units.ParseDisplayUnit(value)
		if err != nil {
			return err
		}
		s.DisplayUnit = u
	case "theme":
		s.Theme = Theme(strings.ToLower(strings.TrimSpace(value)))
	case "show_grid_overlay", "grid":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", key, err)
		}
		s.ShowGridOverlay = b
	case "calibration":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", key, err)
		}
		s.Calibration = f
	default:
		return fmt.Errorf("unknown setting %q (want one of %s)", key, strings.Join(Keys, ", "))
	}
	return nil
}

// Get returns the string form of a single setting.
func Get(s Settings, key string) (string, error) {
	switch key {
	case "display_unit", "unit":
		return string(s.DisplayUnit), nil
	case "theme":
		return string(s.Theme), nil
	case "show_grid_overlay", "grid":
		return strconv.FormatBool(s.ShowGridOverlay), nil
	case "calibration":
		return strconv.FormatFloat(s.Calibration, 'g', -1, 64), nil
	default:
		return "", fmt.Errorf("unknown setting %q (want one of %s)", key, strings.Join(Keys, ", "))
	}
}
