package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/Hanaasagi/targetlock/cmd"
	"github.com/Hanaasagi/targetlock/internal"
	"github.com/Hanaasagi/targetlock/internal/logger"
	"github.com/Hanaasagi/targetlock/internal/presets"
	"github.com/Hanaasagi/targetlock/internal/settings"
	"github.com/Hanaasagi/targetlock/internal/store"
	"github.com/Hanaasagi/targetlock/pkg/clipboard"
	"github.com/Hanaasagi/targetlock/pkg/measure"
	"github.com/Hanaasagi/targetlock/pkg/units"
	"github.com/adrg/xdg"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

const appName = "targetlock"

var (
	Version     = "0.1.0"
	CommitSha   = "unknown"
	FullVersion = Version + "-" + CommitSha
)

// app carries what every subcommand needs. Paths come from flags so tests
// and the e2e harness can point them at temporary files.
type app struct {
	configPath  string
	historyPath string
	unitFlag    string

	settings *settings.Store
	unit     units.DisplayUnit
	palette  internal.Palette

	copier  internal.Copier
	pick    func() (presets.Preset, error)
	browse  func(*measure.History, units.DisplayUnit, internal.Palette, internal.Copier) error
	confirm func(w io.Writer, prompt string) bool
}

func newApp() *app {
	return &app{
		configPath:  settings.DefaultPath(),
		historyPath: store.DefaultPath(),
		copier:      clipboard.New(),
		pick: func() (presets.Preset, error) {
			return internal.NewPresetPicker(presets.All()).Present()
		},
		browse: func(h *measure.History, unit units.DisplayUnit, p internal.Palette, c internal.Copier) error {
			return internal.NewHistoryView(h, unit, p, c).Present()
		},
		confirm: confirmOnTTY,
	}
}

// load reads the settings file and resolves the effective display unit.
func (a *app) load() error {
	s, err := settings.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	a.settings = settings.NewStore(s, a.configPath)
	a.settings.Subscribe(settings.ObserverFunc(func(prev, next settings.Settings) {
		slog.Info("settings changed", "path", a.configPath, "prev", prev, "next", next)
	}))

	a.unit = s.DisplayUnit
	if a.unitFlag != "" {
		if a.unit, err = units.ParseDisplayUnit(a.unitFlag); err != nil {
			return err
		}
	}
	a.palette = internal.PaletteFor(s.Theme)
	return nil
}

// openHistory loads the stored history. Persistent sessions save on every
// change and report a failed save through Err.
func (a *app) openHistory(persist bool) (*store.Session, error) {
	if persist {
		return store.Open(a.historyPath)
	}
	return store.OpenReadOnly(a.historyPath)
}

// saved returns the outcome of the session's last write.
func saved(h *store.Session) error {
	if err := h.Err(); err != nil {
		return fmt.Errorf("saving history to %s: %w", h.Path(), err)
	}
	return nil
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   appName,
		Short: "Estimate distance to a subject of known height",
		Long: color.New(color.FgHiMagenta).Sprintf(
			"Estimate distance to a subject of known height with a pinhole camera model. %s",
			color.New(color.FgBlue).Sprintf("(%s)", FullVersion),
		),
		Version:       FullVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(c *cobra.Command, args []string) error {
			return a.load()
		},
	}
	rootCmd.SetVersionTemplate(appName + " version: {{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", a.configPath, "Settings file")
	rootCmd.PersistentFlags().StringVar(&a.historyPath, "history-file", a.historyPath, "Measurement history file")
	rootCmd.PersistentFlags().StringVarP(&a.unitFlag, "unit", "u", "", "Display unit: meters, feet or both (overrides settings)")

	rootCmd.AddCommand(
		newMeasureCmd(a),
		newCalibrateCmd(a),
		newHistoryCmd(a),
		newPresetsCmd(a),
		newConfigCmd(a),
		newDiagnosticsCmd(a),
	)

	cmd.Install(rootCmd)
	return rootCmd
}

// setupRuntime opens the log file and the crash report file under the
// state directory.
func setupRuntime() func() {
	appDir := filepath.Join(xdg.StateHome, appName)
	if err := os.MkdirAll(appDir, 0o755); err != nil {
		panic(fmt.Sprintf("Error creating state directory: %v", err))
	}

	closeLog, err := logger.InitLogger(filepath.Join(appDir, appName+".log"), logger.LevelFromEnv("info"))
	if err != nil {
		panic(fmt.Sprintf("Error initializing logger: %v", err))
	}

	if f, err := os.Create(filepath.Join(appDir, "crash")); err == nil {
		_ = debug.SetCrashOutput(f, debug.CrashOptions{})
	}
	return func() { _ = closeLog() }
}

func main() {
	cleanup := setupRuntime()

	rootCmd := newRootCmd(newApp())
	if err := rootCmd.Execute(); err != nil {
		slog.Error("Error executing command", "error", err)
		fmt.Fprintln(os.Stderr, color.RedString("Error:"), err)
		cleanup()
		os.Exit(1)
	}
	cleanup()
}
