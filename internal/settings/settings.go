package settings

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/Hanaasagi/targetlock/pkg/units"
	"github.com/adrg/xdg"
)

const appName = "targetlock"

// Theme selects the terminal palette.
type Theme string

const (
	ThemeSystem Theme = "system"
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
)

// Settings is the user-visible configuration. It is passed explicitly to the
// formatter and the UI; there is no process-wide instance.
type Settings struct {
	DisplayUnit     units.DisplayUnit `toml:"display_unit"`
	Theme           Theme             `toml:"theme"`
	ShowGridOverlay bool              `toml:"show_grid_overlay"`
	// Focal length correction factor from calibration; 0 means none.
	Calibration float64 `toml:"calibration"`
}

type file struct {
	Settings Settings `toml:"settings"`
}

func Default() Settings {
	return Settings{
		DisplayUnit:     units.DefaultUnit,
		Theme:           ThemeSystem,
		ShowGridOverlay: false,
	}
}

// DefaultPath is $XDG_CONFIG_HOME/targetlock/config.toml.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, appName, "config.toml")
}

func (s Settings) Validate() error {
	if !s.DisplayUnit.IsValid() {
		return fmt.Errorf("invalid display_unit %q", s.DisplayUnit)
	}
	switch s.Theme {
	case ThemeSystem, ThemeLight, ThemeDark:
	default:
		return fmt.Errorf("invalid theme %q", s.Theme)
	}
	if s.Calibration < 0 {
		return fmt.Errorf("invalid calibration %v: must not be negative", s.Calibration)
	}
	return nil
}

// Load reads settings from path. A missing file yields the defaults.
func Load(path string) (Settings, error) {
	f := file{Settings: Default()}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return f.Settings, nil
	}

	if _, err := toml.DecodeFile(path, &f); err != nil {
		return Settings{}, fmt.Errorf("failed to decode TOML settings: %w", err)
	}
	if err := f.Settings.Validate(); err != nil {
		return Settings{}, fmt.Errorf("settings %s: %w", path, err)
	}
	return f.Settings, nil
}

// Save writes settings to path, creating the parent directory. The file is
// written to a temporary name and renamed into place.
func Save(path string, s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating settings directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "config-*.toml")
	if err != nil {
		return fmt.Errorf("creating temp settings file: %w", err)
	}
	defer os.Remove(tmp.Name()) // nolint: errcheck

	if err := Write(tmp, s); err != nil {
		tmp.Close() // nolint: errcheck
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp settings file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing settings file: %w", err)
	}
	return nil
}

// Write encodes s in the config file format.
func Write(w io.Writer, s Settings) error {
	if err := toml.NewEncoder(w).Encode(file{Settings: s}); err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	return nil
}

// Observer is notified after a successful settings change.
type Observer interface {
	SettingsChanged(prev, next Settings)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(prev, next Settings)

func (f ObserverFunc) SettingsChanged(prev, next Settings) { f(prev, next) }

// Store holds the current settings and fans out change notifications.
type Store struct {
	mu        sync.RWMutex
	current   Settings
	path      string
	nextID    int
	observers map[int]Observer
}

// NewStore wraps s. When path is non-empty, Update persists every change there.
func NewStore(s Settings, path string) *Store {
	return &Store{
		current:   s,
		path:      path,
		observers: make(map[int]Observer),
	}
}

func (st *Store) Get() Settings {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.current
}

// Subscribe registers o and returns a function that removes it.
func (st *Store) Subscribe(o Observer) (cancel func()) {
	st.mu.Lock()
	id := st.nextID
	st.nextID++
	st.observers[id] = o
	st.mu.Unlock()

	return func() {
		st.mu.Lock()
		delete(st.observers, id)
		st.mu.Unlock()
	}
}

// Update applies fn to a copy of the settings, validates and persists the
// result, then notifies observers. Observers are not called when nothing changed.
func (st *Store) Update(fn func(*Settings)) error {
	st.mu.Lock()
	old := st.current
	next := old
	fn(&next)

	if err := next.Validate(); err != nil {
		st.mu.Unlock()
		return err
	}
	if st.path != "" {
		if err := Save(st.path, next); err != nil {
			st.mu.Unlock()
			return err
		}
	}
	st.current = next

	observers := make([]Observer, 0, len(st.observers))
	for _, o := range st.observers {
		observers = append(observers, o)
	}
	st.mu.Unlock()

	if old == next {
		return nil
	}
	for _, o := range observers {
		o.SettingsChanged(old, next)
	}
	return nil
}
