package measure

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// HistoryCapacity is the maximum number of measurements a History keeps.
const HistoryCapacity = 50

// Statistics summarises the distances of a history. OK is false when the
// history is empty, in which case the numeric fields are zero.
type Statistics struct {
	OK            bool
	Count         int
	AverageMeters float64
	MinMeters     float64
	MaxMeters     float64
	StdDevMeters  float64
}

// History is a bounded, time-ordered log of measurements. Appending past
// capacity evicts the oldest entry. It is not safe for concurrent mutation.
type History struct {
	ring      *Ring[Measurement]
	observers []func([]Measurement)
}

// NewHistory returns an empty history seeded with ms, oldest first.
func NewHistory(ms ...Measurement) *History {
	h := &History{ring: NewRing[Measurement](HistoryCapacity)}
	for _, m := range ms {
		h.ring.Push(m)
	}
	return h
}

// OnUpdate registers fn to be called with a snapshot after every mutation.
func (h *History) OnUpdate(fn func([]Measurement)) {
	h.observers = append(h.observers, fn)
}

func (h *History) notify() {
	if len(h.observers) == 0 {
		return
	}
	snapshot := h.All()
	for _, fn := range h.observers {
		fn(snapshot)
	}
}

func (h *History) Len() int { return h.ring.Len() }

// Append adds m as the newest entry, evicting the oldest when full.
func (h *History) Append(m Measurement) {
	h.ring.Push(m)
	h.notify()
}

// At returns the i-th oldest measurement.
func (h *History) At(i int) (Measurement, error) {
	if i < 0 || i >= h.ring.Len() {
		return Measurement{}, fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, i, h.ring.Len())
	}
	return h.ring.At(i), nil
}

// RemoveAt deletes and returns the i-th oldest measurement.
func (h *History) RemoveAt(i int) (Measurement, error) {
	if i < 0 || i >= h.ring.Len() {
		return Measurement{}, fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, i, h.ring.Len())
	}
	m := h.ring.RemoveAt(i)
	h.notify()
	return m, nil
}

// Find returns the position of the measurement with the given ID.
func (h *History) Find(id uuid.UUID) (int, bool) {
	for i := 0; i < h.ring.Len(); i++ {
		if h.ring.At(i).ID == id {
			return i, true
		}
	}
	return -1, false
}

// RemoveID deletes the measurement with the given ID.
func (h *History) RemoveID(id uuid.UUID) (Measurement, error) {
	i, ok := h.Find(id)
	if !ok {
		return Measurement{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return h.RemoveAt(i)
}

func (h *History) Clear() {
	h.ring.Clear()
	h.notify()
}

// All copies the measurements, oldest first.
func (h *History) All() []Measurement {
	return h.ring.Slice()
}

// Distances returns the distance of every entry, oldest first.
func (h *History) Distances() []float64 {
	out := make([]float64, h.ring.Len())
	for i := range out {
		out[i] = h.ring.At(i).DistanceMeters
	}
	return out
}

// Statistics computes count, mean, min, max and population standard
// deviation over the stored distances.
func (h *History) Statistics() Statistics {
	distances := h.Distances()
	if len(distances) == 0 {
		return Statistics{}
	}

	_, variance := stat.PopMeanVariance(distances, nil)
	return Statistics{
		OK:            true,
		Count:         len(distances),
		AverageMeters: stat.Mean(distances, nil),
		MinMeters:     floats.Min(distances),
		MaxMeters:     floats.Max(distances),
		StdDevMeters:  math.Sqrt(variance),
	}
}
