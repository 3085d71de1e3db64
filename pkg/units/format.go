package units

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/Hanaasagi/targetlock/pkg/measure"
)

// TimestampLayout renders measurement times in history rows and shared text.
const TimestampLayout = "Jan 2, 2006 3:04 PM"

// Optional is a value that may be absent.
type Optional struct {
	Value float64
	Valid bool
}

// None is the absent Optional.
var None = Optional{}

// Some wraps a present value.
func Some(v float64) Optional {
	return Optional{Value: v, Valid: true}
}

// FormatLength renders a single length: "1.23m", "4.0ft" or "1.23m (4.0ft)".
func FormatLength(meters float64, unit DisplayUnit) string {
	switch unit {
	case Meters:
		return fmt.Sprintf("%.2fm", meters)
	case Feet:
		return fmt.Sprintf("%.1fft", MetersToFeet(meters))
	default:
		return fmt.Sprintf("%.2fm (%.1fft)", meters, MetersToFeet(meters))
	}
}

// FormatPercent renders a [0,1] confidence as a rounded percentage.
func FormatPercent(confidence float64) string {
	return fmt.Sprintf("%d%%", int(math.Round(confidence*100)))
}

// Format renders a distance with optional height and confidence fields:
//
//	4.00m (13.1ft) • H=1.70m (5.6ft) • 85%
func Format(distanceMeters float64, height, confidence Optional, unit DisplayUnit) string {
	var sb strings.Builder
	sb.WriteString(FormatLength(distanceMeters, unit))
	if height.Valid {
		sb.WriteString(" • H=")
		sb.WriteString(FormatLength(height.Value, unit))
	}
	if confidence.Valid {
		sb.WriteString(" • ")
		sb.WriteString(FormatPercent(confidence.Value))
	}
	return sb.String()
}

var lengthPattern = regexp.MustCompile(`(-?\d+(?:\.\d+)?)(m|ft)`)

// ParseMeters recovers the distance, in meters, from text produced by Format.
// A meters token is taken as is; a feet-only rendering is converted back.
func ParseMeters(s string) (float64, error) {
	m := lengthPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("no length found in %q", s)
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("parsing length %q: %w", m[1], err)
	}
	if m[2] == "ft" {
		return FeetToMeters(v), nil
	}
	return v, nil
}

// RowText is the two-line history entry: values on the first line, time on the second.
func RowText(m measure.Measurement, unit DisplayUnit) string {
	return Format(m.DistanceMeters, Some(m.HeightMeters), Some(m.Confidence), unit) +
		"\n" + m.Timestamp.Format(TimestampLayout)
}

// ShareText renders a measurement for sharing outside the application.
func ShareText(m measure.Measurement, unit DisplayUnit) string {
	return fmt.Sprintf("TargetLock Measurement\nDistance: %s\nHeight: %s\nConfidence: %s\nTime: %s",
		FormatLength(m.DistanceMeters, unit),
		FormatLength(m.HeightMeters, unit),
		FormatPercent(m.Confidence),
		m.Timestamp.Format(TimestampLayout),
	)
}

// StatsText renders the history summary header.
func StatsText(stats measure.Statistics, unit DisplayUnit) string {
	if !stats.OK {
		return "No measurements yet."
	}
	return fmt.Sprintf("Count: %d  •  Avg: %s  •  Min: %s  •  Max: %s",
		stats.Count,
		FormatLength(stats.AverageMeters, unit),
		FormatLength(stats.MinMeters, unit),
		FormatLength(stats.MaxMeters, unit),
	)
}
