// Package store persists the measurement history between runs.
package store

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/Hanaasagi/targetlock/pkg/measure"
	"github.com/adrg/xdg"
	"github.com/google/uuid"
)

const appName = "targetlock"

type record struct {
	ID             string    `toml:"id"`
	Timestamp      time.Time `toml:"timestamp"`
	DistanceMeters float64   `toml:"distance_meters"`
	HeightMeters   float64   `toml:"height_meters"`
	Confidence     float64   `toml:"confidence"`
}

type document struct {
	Measurements []record `toml:"measurement"`
}

// DefaultPath is $XDG_STATE_HOME/targetlock/history.toml.
func DefaultPath() string {
	return filepath.Join(xdg.StateHome, appName, "history.toml")
}

// Load reads the measurements stored at path, oldest first. A missing file
// is an empty history. Records with an unreadable ID get a fresh one.
// Timestamps are returned in local time.
func Load(path string) ([]measure.Measurement, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return []measure.Measurement{}, nil
	}

	var doc document
	if _, err := toml.DecodeFile(path, &doc); err != nil {
		return nil, fmt.Errorf("decoding history %s: %w", path, err)
	}

	out := make([]measure.Measurement, 0, len(doc.Measurements))
	for _, r := range doc.Measurements {
		id, err := uuid.Parse(r.ID)
		if err != nil {
			slog.Warn("Replacing unreadable measurement id", "id", r.ID, "error", err)
			id = uuid.New()
		}
		out = append(out, measure.Measurement{
			ID:             id,
			Timestamp:      r.Timestamp.Local(),
			DistanceMeters: r.DistanceMeters,
			HeightMeters:   r.HeightMeters,
			Confidence:     r.Confidence,
		})
	}
	return out, nil
}

// Save replaces the file at path with ms. The write goes to a temporary file
// that is renamed into place, so a crash never leaves a truncated history.
func Save(path string, ms []measure.Measurement) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating history directory: %w", err)
	}

	doc := document{Measurements: make([]record, 0, len(ms))}
	for _, m := range ms {
		doc.Measurements = append(doc.Measurements, record{
			ID:             m.ID.String(),
			Timestamp:      m.Timestamp.UTC().Truncate(time.Second),
			DistanceMeters: m.DistanceMeters,
			HeightMeters:   m.HeightMeters,
			Confidence:     m.Confidence,
		})
	}

	tmp, err := os.CreateTemp(dir, "history-*.toml")
	if err != nil {
		return fmt.Errorf("creating temp history file: %w", err)
	}
	defer os.Remove(tmp.Name()) // nolint: errcheck

	if err := toml.NewEncoder(tmp).Encode(doc); err != nil {
		tmp.Close() // nolint: errcheck
		return fmt.Errorf("encoding history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp history file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing history file: %w", err)
	}
	return nil
}

// Session is a History bound to its file. Every change is written back and
// the outcome of the latest write is kept for Err.
type Session struct {
	*measure.History

	path string
	mu   sync.Mutex
	err  error
}

// Open loads path into a Session that saves on every change.
func Open(path string) (*Session, error) {
	s, err := OpenReadOnly(path)
	if err != nil {
		return nil, err
	}
	s.History.OnUpdate(s.save)
	return s, nil
}

// OpenReadOnly loads path into a Session that never writes back.
func OpenReadOnly(path string) (*Session, error) {
	ms, err := Load(path)
	if err != nil {
		return nil, err
	}
	return &Session{History: measure.NewHistory(ms...), path: path}, nil
}

func (s *Session) save(snapshot []measure.Measurement) {
	err := Save(s.path, snapshot)
	if err != nil {
		slog.Error("Failed to save history", "path", s.path, "error", err)
	}
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// Err reports the failure of the most recent save, or nil when the file
// matches the history.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Session) Path() string { return s.path }
