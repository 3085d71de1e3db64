package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Hanaasagi/targetlock/internal"
	"github.com/Hanaasagi/targetlock/internal/presets"
	"github.com/Hanaasagi/targetlock/internal/store"
	"github.com/Hanaasagi/targetlock/pkg/measure"
	"github.com/Hanaasagi/targetlock/pkg/units"
)

type recordingCopier struct {
	texts []string
}

func (r *recordingCopier) Copy(text string) error {
	r.texts = append(r.texts, text)
	return nil
}

func testApp(t *testing.T) *app {
	t.Helper()
	dir := t.TempDir()

	a := newApp()
	a.configPath = filepath.Join(dir, "config.toml")
	a.historyPath = filepath.Join(dir, "history.toml")
	a.copier = &recordingCopier{}
	a.pick = func() (presets.Preset, error) { return presets.All()[2], nil }
	a.browse = func(*measure.History, units.DisplayUnit, internal.Palette, internal.Copier) error { return nil }
	a.confirm = func(io.Writer, string) bool { return false }
	return a
}

func run(t *testing.T, a *app, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd(a)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, a *app, args ...string) string {
	t.Helper()
	out, err := run(t, a, args...)
	if err != nil {
		t.Fatalf("%v failed: %v\n%s", args, err, out)
	}
	return out
}

func storedDistances(t *testing.T, a *app) []float64 {
	t.Helper()
	ms, err := store.Load(a.historyPath)
	if err != nil {
		t.Fatalf("Load history failed: %v", err)
	}
	ds := make([]float64, len(ms))
	for i, m := range ms {
		ds[i] = m.DistanceMeters
	}
	return ds
}

func TestMeasurePrintsAndRecords(t *testing.T) {
	a := testApp(t)

	out := mustRun(t, a, "measure", "--focal", "1000", "--pixels", "500", "--height", "2", "--unit", "m")
	for _, want := range []string{"Distance:   4.00m", "Height:     2.00m", "Confidence: 85%"} {
		if !strings.Contains(out, want) {
			t.Errorf("Output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Warning:") {
		t.Errorf("Expected no warnings:\n%s", out)
	}

	if ds := storedDistances(t, a); len(ds) != 1 || ds[0] != 4 {
		t.Errorf("Expected stored [4], got %v", ds)
	}
}

func TestMeasureWarnsOnJumpAcrossRuns(t *testing.T) {
	a := testApp(t)
	mustRun(t, a, "measure", "--focal", "1000", "--pixels", "500", "--height", "2")

	out := mustRun(t, a, "measure", "--focal", "1000", "--pixels", "100", "--height", "2", "--unit", "meters")
	if !strings.Contains(out, "Distance:   20.00m") {
		t.Errorf("Unexpected distance:\n%s", out)
	}
	if !strings.Contains(out, "Warning: "+measure.WarnLargeJump) {
		t.Errorf("Expected jump warning:\n%s", out)
	}
	if ds := storedDistances(t, a); len(ds) != 2 {
		t.Errorf("Expected 2 stored measurements, got %v", ds)
	}
}

func TestMeasureWithTapsAndPreset(t *testing.T) {
	a := testApp(t)

	out := mustRun(t, a, "measure", "--focal", "1000", "--top", "100", "--bottom", "350", "--scale", "2",
		"--preset", "adult male", "--unit", "meters", "--breakdown")
	if !strings.Contains(out, "Preset:     Adult Male (1.75m)") {
		t.Errorf("Expected preset line:\n%s", out)
	}
	if !strings.Contains(out, "Distance:   3.50m") {
		t.Errorf("Expected 3.50m:\n%s", out)
	}
	if !strings.Contains(out, "raw ") {
		t.Errorf("Expected breakdown line:\n%s", out)
	}
}

func TestMeasurePick(t *testing.T) {
	a := testApp(t)

	out := mustRun(t, a, "measure", "--focal", "1000", "--pixels", "400", "--pick", "--unit", "m")
	if !strings.Contains(out, "Preset:     Child (1.20m)") || !strings.Contains(out, "Distance:   3.00m") {
		t.Errorf("Unexpected output:\n%s", out)
	}

	a.pick = func() (presets.Preset, error) { return presets.Preset{}, internal.ErrPickCancelled }
	if _, err := run(t, a, "measure", "--focal", "1000", "--pixels", "400", "--pick"); !errors.Is(err, internal.ErrPickCancelled) {
		t.Errorf("Expected cancelled pick error, got %v", err)
	}
}

func TestMeasureNoSave(t *testing.T) {
	a := testApp(t)
	mustRun(t, a, "measure", "--focal", "1000", "--pixels", "500", "--height", "2", "--no-save")

	if _, err := os.Stat(a.historyPath); !os.IsNotExist(err) {
		t.Errorf("History file should not exist, stat err: %v", err)
	}
}

func TestMeasureNotComputable(t *testing.T) {
	a := testApp(t)
	for _, pixels := range []string{"0", "NaN", "-Inf"} {
		out := mustRun(t, a, "measure", "--focal", "1000", "--pixels="+pixels, "--height", "2")
		if !strings.Contains(out, "not computable") {
			t.Errorf("Expected not computable message for %s:\n%s", pixels, out)
		}
	}
	out := mustRun(t, a, "measure", "--focal", "+Inf", "--pixels", "300", "--height", "2")
	if !strings.Contains(out, "not computable") {
		t.Errorf("Expected not computable message for infinite focal:\n%s", out)
	}
	if ds := storedDistances(t, a); len(ds) != 0 {
		t.Errorf("Nothing should be stored, got %v", ds)
	}
}

func TestMeasureInputErrors(t *testing.T) {
	a := testApp(t)

	if _, err := run(t, a, "measure", "--focal", "1000", "--pixels", "500"); err == nil {
		t.Error("Expected error without a height source")
	}
	if _, err := run(t, a, "measure", "--focal", "1000", "--height", "2"); err == nil {
		t.Error("Expected error without a pixel height")
	}
	if _, err := run(t, a, "measure", "--focal", "1000", "--pixels", "5", "--height", "0"); !errors.Is(err, measure.ErrInvalidHeight) {
		t.Errorf("Expected ErrInvalidHeight, got %v", err)
	}
	if _, err := run(t, a, "measure", "--focal", "1000", "--pixels", "5", "--height", "1", "--tracking", "great"); err == nil {
		t.Error("Expected error for unknown tracking quality")
	}
}

func TestCalibrate(t *testing.T) {
	a := testApp(t)

	out := mustRun(t, a, "calibrate", "--distance", "4", "--height", "2", "--pixels", "500")
	if !strings.Contains(out, "Focal length: 1000.0 px") {
		t.Errorf("Unexpected output:\n%s", out)
	}

	out = mustRun(t, a, "calibrate", "--distance", "4", "--height", "2", "--pixels", "500", "--focal", "800", "--save")
	if !strings.Contains(out, "Correction factor: 1.2500") {
		t.Errorf("Unexpected output:\n%s", out)
	}
	if got := strings.TrimSpace(mustRun(t, a, "config", "get", "calibration")); got != "1.25" {
		t.Errorf("Expected saved calibration 1.25, got %q", got)
	}

	// The saved factor now scales measurements.
	out = mustRun(t, a, "measure", "--focal", "800", "--pixels", "500", "--height", "2", "--unit", "m")
	if !strings.Contains(out, "Distance:   4.00m") {
		t.Errorf("Expected calibrated distance:\n%s", out)
	}

	if _, err := run(t, a, "calibrate", "--distance", "4", "--height", "0", "--pixels", "500"); err == nil {
		t.Error("Expected error for zero height")
	}
}

func seedHistory(t *testing.T, a *app, pixels ...string) {
	t.Helper()
	for _, p := range pixels {
		mustRun(t, a, "measure", "--focal", "1000", "--pixels", p, "--height", "1")
	}
}

func TestHistoryEmpty(t *testing.T) {
	a := testApp(t)
	if out := mustRun(t, a, "history", "list"); !strings.Contains(out, "No measurements yet.") {
		t.Errorf("Expected empty message:\n%s", out)
	}
	if out := mustRun(t, a, "history", "stats"); strings.TrimSpace(out) != "No measurements yet." {
		t.Errorf("Expected empty stats:\n%s", out)
	}
	if _, err := run(t, a, "history", "share"); !errors.Is(err, measure.ErrIndexOutOfRange) {
		t.Errorf("Expected ErrIndexOutOfRange sharing from empty history, got %v", err)
	}
}

func TestHistoryCommands(t *testing.T) {
	a := testApp(t)
	seedHistory(t, a, "500", "250", "125") // 2m, 4m, 8m

	out := mustRun(t, a, "history", "list", "--unit", "m")
	first := strings.Index(out, "1. 8.00m")
	last := strings.Index(out, "3. 2.00m")
	if first < 0 || last < 0 || first > last {
		t.Errorf("Expected newest first:\n%s", out)
	}

	out = mustRun(t, a, "history", "stats", "--unit", "m")
	if !strings.Contains(out, "Count: 3") || !strings.Contains(out, "Min: 2.00m") || !strings.Contains(out, "Max: 8.00m") {
		t.Errorf("Unexpected stats:\n%s", out)
	}
	if !strings.Contains(out, "StdDev: 2.49m") {
		t.Errorf("Expected population std dev:\n%s", out)
	}

	out = mustRun(t, a, "history", "share", "2", "--unit", "m")
	if !strings.Contains(out, "Distance: 4.00m") {
		t.Errorf("Unexpected share text:\n%s", out)
	}
	copier := a.copier.(*recordingCopier)
	if len(copier.texts) != 1 || !strings.HasPrefix(copier.texts[0], "TargetLock Measurement") {
		t.Errorf("Expected share text on the clipboard, got %v", copier.texts)
	}

	out = mustRun(t, a, "history", "rm", "1", "--unit", "m")
	if !strings.Contains(out, "Deleted 8.00m") {
		t.Errorf("Unexpected rm output:\n%s", out)
	}
	if ds := storedDistances(t, a); len(ds) != 2 || ds[0] != 2 || ds[1] != 4 {
		t.Errorf("Expected [2 4] after rm, got %v", ds)
	}

	ms, _ := store.Load(a.historyPath)
	mustRun(t, a, "history", "rm", ms[0].ID.String())
	if ds := storedDistances(t, a); len(ds) != 1 || ds[0] != 4 {
		t.Errorf("Expected [4] after rm by id, got %v", ds)
	}

	if _, err := run(t, a, "history", "rm", "7"); !errors.Is(err, measure.ErrIndexOutOfRange) {
		t.Errorf("Expected ErrIndexOutOfRange, got %v", err)
	}
	if _, err := run(t, a, "history", "rm", ms[0].ID.String()); !errors.Is(err, measure.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestHistoryClear(t *testing.T) {
	a := testApp(t)
	seedHistory(t, a, "500", "250")

	if _, err := run(t, a, "history", "clear"); err == nil {
		t.Error("Expected clear to refuse without confirmation")
	}
	if ds := storedDistances(t, a); len(ds) != 2 {
		t.Errorf("History should be untouched, got %v", ds)
	}

	out := mustRun(t, a, "history", "clear", "--yes")
	if !strings.Contains(out, "Cleared 2 measurements") {
		t.Errorf("Unexpected output:\n%s", out)
	}
	if ds := storedDistances(t, a); len(ds) != 0 {
		t.Errorf("Expected empty history, got %v", ds)
	}
}

func TestHistoryBrowseUsesStoredHistory(t *testing.T) {
	a := testApp(t)
	seedHistory(t, a, "500")

	var seen int
	a.browse = func(h *measure.History, _ units.DisplayUnit, _ internal.Palette, _ internal.Copier) error {
		seen = h.Len()
		return nil
	}
	mustRun(t, a, "history", "browse")
	if seen != 1 {
		t.Errorf("Expected browser to receive 1 measurement, got %d", seen)
	}
}

func TestHistoryBrowseReportsSaveFailure(t *testing.T) {
	a := testApp(t)
	stateDir := filepath.Join(filepath.Dir(a.historyPath), "state")
	a.historyPath = filepath.Join(stateDir, "history.toml")
	seedHistory(t, a, "500", "250")

	a.browse = func(h *measure.History, _ units.DisplayUnit, _ internal.Palette, _ internal.Copier) error {
		if err := os.RemoveAll(stateDir); err != nil {
			return err
		}
		if err := os.WriteFile(stateDir, []byte("x"), 0o644); err != nil {
			return err
		}
		_, err := h.RemoveAt(0)
		return err
	}

	_, err := run(t, a, "history", "browse")
	if err == nil || !strings.Contains(err.Error(), "saving history") {
		t.Errorf("Expected save error from browse, got %v", err)
	}
}

func TestPresets(t *testing.T) {
	a := testApp(t)

	out := mustRun(t, a, "presets", "--unit", "ft")
	if !strings.Contains(out, "Adult Male (1.75m)") || !strings.Contains(out, "5.7ft") {
		t.Errorf("Unexpected presets output:\n%s", out)
	}

	out = mustRun(t, a, "presets", "dog")
	if strings.Contains(out, "Adult") || strings.Count(out, "Dog") != 3 {
		t.Errorf("Expected only dog presets:\n%s", out)
	}

	if _, err := run(t, a, "presets", "xyz"); err == nil {
		t.Error("Expected error for unmatched query")
	}
}

func TestConfigCommands(t *testing.T) {
	a := testApp(t)

	if got := strings.TrimSpace(mustRun(t, a, "config", "path")); got != a.configPath {
		t.Errorf("Expected %s, got %s", a.configPath, got)
	}

	mustRun(t, a, "config", "set", "unit", "ft")
	out := mustRun(t, a, "config", "show")
	if !strings.Contains(out, `display_unit = "feet"`) {
		t.Errorf("Expected feet in settings:\n%s", out)
	}

	// The stored unit applies when --unit is absent.
	mustRun(t, a, "measure", "--focal", "1000", "--pixels", "500", "--height", "2")
	if out := mustRun(t, a, "history", "list"); !strings.Contains(out, "13.1ft") {
		t.Errorf("Expected feet rendering:\n%s", out)
	}

	if _, err := run(t, a, "config", "set", "theme", "neon"); err == nil {
		t.Error("Expected invalid theme to be rejected")
	}
	if _, err := run(t, a, "config", "set", "colour", "red"); err == nil {
		t.Error("Expected unknown key to be rejected")
	}
}

func TestDiagnostics(t *testing.T) {
	a := testApp(t)

	out := mustRun(t, a, "diagnostics")
	if !strings.Contains(out, "Intrinsics: unavailable") {
		t.Errorf("Expected unavailable intrinsics:\n%s", out)
	}

	out = mustRun(t, a, "diagnostics", "--fx", "1500", "--fy", "1501.5", "--cx", "960", "--cy", "540")
	if !strings.Contains(out, "Intrinsics (px)\nfx: 1500.00\nfy: 1501.50\ncx: 960.00\ncy: 540.00") {
		t.Errorf("Unexpected intrinsics:\n%s", out)
	}
}

func TestVersion(t *testing.T) {
	a := testApp(t)
	out := mustRun(t, a, "--version")
	if strings.TrimSpace(out) != "targetlock version: "+FullVersion {
		t.Errorf("Unexpected version output %q", out)
	}
}

func TestInvalidUnitFlag(t *testing.T) {
	a := testApp(t)
	if _, err := run(t, a, "history", "list", "--unit", "yards"); err == nil {
		t.Error("Expected error for unknown unit")
	}
}
