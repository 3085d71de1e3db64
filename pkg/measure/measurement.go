// Package measure implements the measurement engine: pinhole distance
// estimation, confidence scoring, plausibility checks and a bounded history.
package measure

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrIndexOutOfRange is returned when a history index does not address an entry.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrNotFound is returned when no history entry carries the requested ID.
	ErrNotFound = errors.New("measurement not found")
	// ErrInvalidHeight is returned when the assumed real height is not a positive finite number.
	ErrInvalidHeight = errors.New("real height must be a positive finite number")
)

// Measurement is one completed distance calculation. Values are stored in meters.
type Measurement struct {
	ID             uuid.UUID
	Timestamp      time.Time
	DistanceMeters float64
	HeightMeters   float64
	Confidence     float64
}

// NewMeasurement builds a Measurement with a fresh ID.
func NewMeasurement(ts time.Time, distanceMeters, heightMeters, confidence float64) Measurement {
	return Measurement{
		ID:             uuid.New(),
		Timestamp:      ts,
		DistanceMeters: distanceMeters,
		HeightMeters:   heightMeters,
		Confidence:     confidence,
	}
}

// TrackingQuality is the platform's confidence in its pose estimate.
type TrackingQuality int

const (
	TrackingNormal TrackingQuality = iota
	TrackingLimited
	TrackingUnavailable
)

func (q TrackingQuality) String() string {
	switch q {
	case TrackingNormal:
		return "normal"
	case TrackingLimited:
		return "limited"
	case TrackingUnavailable:
		return "unavailable"
	default:
		return fmt.Sprintf("TrackingQuality(%d)", int(q))
	}
}

// ParseTrackingQuality accepts "normal", "limited" or "unavailable".
func ParseTrackingQuality(s string) (TrackingQuality, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "normal", "":
		return TrackingNormal, nil
	case "limited":
		return TrackingLimited, nil
	case "unavailable", "none":
		return TrackingUnavailable, nil
	default:
		return TrackingUnavailable, fmt.Errorf("unknown tracking quality %q (want normal, limited or unavailable)", s)
	}
}
