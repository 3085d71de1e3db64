package measure

import "math"

const (
	// RecentWindowSize is how many accepted distances jump detection looks back over.
	RecentWindowSize = 5

	closeRangeMeters = 0.5
	longRangeMeters  = 50.0
	jumpRatio        = 0.5
	// Floor for the jump denominator so a near-zero previous reading cannot blow up the ratio.
	jumpBaseFloor = 0.1
)

const (
	WarnCloseRange = "very close range, results may be inaccurate."
	WarnLongRange  = "very long range, results may be inaccurate."
	WarnLargeJump  = "large jump vs last measurement, consider recalibration."
)

// RecentWindow holds the last RecentWindowSize accepted distances, oldest
// first. The zero value is an empty window.
type RecentWindow struct {
	ring *Ring[float64]
}

// NewRecentWindow seeds a window with distances, oldest first. Only the
// newest RecentWindowSize values are kept.
func NewRecentWindow(distances ...float64) RecentWindow {
	w := RecentWindow{ring: NewRing[float64](RecentWindowSize)}
	for _, d := range distances {
		w.ring.Push(d)
	}
	return w
}

func (w RecentWindow) Len() int {
	if w.ring == nil {
		return 0
	}
	return w.ring.Len()
}

// Last returns the most recent distance.
func (w RecentWindow) Last() (float64, bool) {
	if w.ring == nil {
		return 0, false
	}
	return w.ring.Last()
}

// Values copies the window contents, oldest first.
func (w RecentWindow) Values() []float64 {
	if w.ring == nil {
		return []float64{}
	}
	return w.ring.Slice()
}

func (w RecentWindow) push(d float64) RecentWindow {
	var next RecentWindow
	if w.ring == nil {
		next = NewRecentWindow()
	} else {
		next = RecentWindow{ring: w.ring.Clone()}
	}
	next.ring.Push(d)
	return next
}

// Validate checks a distance against fixed range thresholds and against the
// most recent entry of window, then returns the warnings together with a new
// window that includes distanceMeters. The passed window is left untouched.
// An empty warning slice means the reading looks plausible.
func Validate(distanceMeters float64, window RecentWindow) ([]string, RecentWindow) {
	warnings := []string{}

	if distanceMeters < closeRangeMeters {
		warnings = append(warnings, WarnCloseRange)
	} else if distanceMeters > longRangeMeters {
		warnings = append(warnings, WarnLongRange)
	}

	if last, ok := window.Last(); ok {
		delta := math.Abs(distanceMeters - last)
		changeRatio := delta / math.Max(last, jumpBaseFloor)
		if changeRatio > jumpRatio {
			warnings = append(warnings, WarnLargeJump)
		}
	}

	return warnings, window.push(distanceMeters)
}
