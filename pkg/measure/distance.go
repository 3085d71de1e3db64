package measure

import "math"

// Calculator turns a focal length, an assumed real height and an apparent
// pixel height into a distance in meters.
type Calculator interface {
	CalculateDistance(focalLengthPixels, realHeightMeters, pixelHeight float64) float64
}

// PinholeCalculator applies the plain pinhole model.
type PinholeCalculator struct{}

func (PinholeCalculator) CalculateDistance(focalLengthPixels, realHeightMeters, pixelHeight float64) float64 {
	return CalculateDistance(focalLengthPixels, realHeightMeters, pixelHeight)
}

// CalculateDistance returns (focal × realHeight) / pixelHeight.
//
// A non-positive or NaN pixel height yields 0, which callers must read as
// "not computable" rather than as a zero-distance reading.
func CalculateDistance(focalLengthPixels, realHeightMeters, pixelHeight float64) float64 {
	if !(pixelHeight > 0) {
		return 0
	}
	return (focalLengthPixels * realHeightMeters) / pixelHeight
}

// Computable reports whether d is a usable distance: positive and finite.
func Computable(d float64) bool {
	return d > 0 && !math.IsInf(d, 1)
}

// PixelHeight converts two tap positions given in view points to a pixel
// height using the screen scale factor.
func PixelHeight(topY, bottomY, scale float64) float64 {
	if scale <= 0 {
		scale = 1
	}
	return math.Abs(topY-bottomY) * scale
}

// CalibrateFocalLength derives an effective focal length from a reference
// shot: an object of known height photographed at a known distance.
//
//	F = (distance × pixelHeight) / realHeight
func CalibrateFocalLength(knownDistanceMeters, realHeightMeters, pixelHeight float64) float64 {
	if realHeightMeters <= 0 || pixelHeight <= 0 {
		return 0
	}
	return (knownDistanceMeters * pixelHeight) / realHeightMeters
}

// CalibratedCalculator scales the reported focal length by a correction
// factor before applying the pinhole model. A zero Factor means no correction.
type CalibratedCalculator struct {
	Factor float64
}

func (c CalibratedCalculator) CalculateDistance(focalLengthPixels, realHeightMeters, pixelHeight float64) float64 {
	factor := c.Factor
	if factor == 0 {
		factor = 1
	}
	return CalculateDistance(focalLengthPixels*factor, realHeightMeters, pixelHeight)
}
