package measure

import "math"

const (
	distanceWeight = 0.35
	pixelWeight    = 0.25
	lightWeight    = 0.20
	trackingWeight = 0.20

	// Distance at which the distance score would reach zero before clamping.
	distanceHorizonMeters = 20.0
	// Pixel height at which the pixel score saturates before clamping.
	referencePixelHeight = 300.0
	// Neutral ambient light intensity.
	referenceLightIntensity = 1000.0

	subScoreMin   = 0.2
	subScoreMax   = 1.0
	confidenceMin = 0.1
	confidenceMax = 1.0

	// FallbackLightScore is used when no ambient light estimate is available.
	FallbackLightScore = 0.6
)

// LightEstimate is an optional ambient light intensity reading.
// The zero value means "no estimate".
type LightEstimate struct {
	Intensity float64
	Valid     bool
}

// NoLight is the absent light estimate.
var NoLight = LightEstimate{}

// Light wraps an available intensity reading.
func Light(intensity float64) LightEstimate {
	return LightEstimate{Intensity: intensity, Valid: true}
}

// Breakdown holds the individual sub-scores that make up a confidence value.
type Breakdown struct {
	Distance   float64
	Pixel      float64
	Light      float64
	Tracking   float64
	Raw        float64
	Confidence float64
}

// ComputeConfidence scores a measurement in [0.1, 1.0]. When light is not
// Valid the light sub-score is FallbackLightScore.
func ComputeConfidence(distanceMeters, pixelHeight float64, light LightEstimate, tracking TrackingQuality) float64 {
	return ScoreBreakdown(distanceMeters, pixelHeight, light, tracking).Confidence
}

// ScoreBreakdown is ComputeConfidence with the intermediate scores exposed.
func ScoreBreakdown(distanceMeters, pixelHeight float64, light LightEstimate, tracking TrackingQuality) Breakdown {
	b := Breakdown{
		Distance: clamp(1.0-distanceMeters/distanceHorizonMeters, subScoreMin, subScoreMax),
		Pixel:    clamp(pixelHeight/referencePixelHeight, subScoreMin, subScoreMax),
		Light:    FallbackLightScore,
		Tracking: trackingScore(tracking),
	}
	if light.Valid {
		b.Light = clamp(light.Intensity/referenceLightIntensity, subScoreMin, subScoreMax)
	}

	b.Raw = distanceWeight*b.Distance +
		pixelWeight*b.Pixel +
		lightWeight*b.Light +
		trackingWeight*b.Tracking
	b.Confidence = clamp(b.Raw, confidenceMin, confidenceMax)
	return b
}

func trackingScore(q TrackingQuality) float64 {
	switch q {
	case TrackingNormal:
		return 1.0
	case TrackingLimited:
		return 0.6
	default:
		return 0.3
	}
}

// clamp maps NaN to lo.
func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return min(max(v, lo), hi)
}
