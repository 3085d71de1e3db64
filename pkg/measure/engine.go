package measure

import (
	"log/slog"
	"math"
	"time"
)

// Request carries the numeric inputs the camera, tracking and light
// collaborators supply for one measurement.
type Request struct {
	FocalLengthPixels float64
	RealHeightMeters  float64
	PixelHeight       float64
	Light             LightEstimate
	Tracking          TrackingQuality
}

// Result is the outcome of Engine.Measure. When Computable is false the
// pixel height was degenerate and nothing was recorded.
type Result struct {
	Computable  bool
	Measurement Measurement
	Warnings    []string
	Breakdown   Breakdown
}

// Option configures an Engine.
type Option func(*Engine)

// WithCalculator replaces the pinhole calculator.
func WithCalculator(c Calculator) Option {
	return func(e *Engine) {
		e.calc = c
	}
}

// WithHistory records into h instead of a fresh history. The recent-distance
// window is seeded from the newest entries of h.
func WithHistory(h *History) Option {
	return func(e *Engine) {
		e.history = h
	}
}

// WithClock sets the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// Engine turns requests into recorded measurements.
type Engine struct {
	calc    Calculator
	history *History
	window  RecentWindow
	now     func() time.Time
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		calc: PinholeCalculator{},
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.history == nil {
		e.history = NewHistory()
	}
	e.window = NewRecentWindow(e.history.Distances()...)
	return e
}

func (e *Engine) History() *History { return e.history }

// Window returns the current recent-distance window.
func (e *Engine) Window() RecentWindow { return e.window }

// Measure computes, scores, validates and records a measurement.
func (e *Engine) Measure(req Request) (Result, error) {
	if !(req.RealHeightMeters > 0) || math.IsInf(req.RealHeightMeters, 1) {
		return Result{}, ErrInvalidHeight
	}

	distance := e.calc.CalculateDistance(req.FocalLengthPixels, req.RealHeightMeters, req.PixelHeight)
	if !Computable(distance) {
		slog.Debug("distance not computable", "pixelHeight", req.PixelHeight, "focal", req.FocalLengthPixels)
		return Result{Computable: false}, nil
	}

	breakdown := ScoreBreakdown(distance, req.PixelHeight, req.Light, req.Tracking)
	warnings, window := Validate(distance, e.window)
	e.window = window

	m := NewMeasurement(e.now(), distance, req.RealHeightMeters, breakdown.Confidence)
	e.history.Append(m)

	slog.Debug("measurement recorded",
		"id", m.ID, "distance", distance, "confidence", breakdown.Confidence, "tracking", req.Tracking)
	for _, w := range warnings {
		slog.Warn("measurement warning", "id", m.ID, "warning", w)
	}

	return Result{
		Computable:  true,
		Measurement: m,
		Warnings:    warnings,
		Breakdown:   breakdown,
	}, nil
}
