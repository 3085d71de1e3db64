package internal

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Hanaasagi/targetlock/internal/settings"
	"github.com/Hanaasagi/targetlock/pkg/measure"
	"github.com/Hanaasagi/targetlock/pkg/units"
	"github.com/gdamore/tcell/v2"
)

type fakeCopier struct {
	copied []string
	err    error
}

func (f *fakeCopier) Copy(text string) error {
	if f.err != nil {
		return f.err
	}
	f.copied = append(f.copied, text)
	return nil
}

func testHistory(distances ...float64) *measure.History {
	base := time.Date(2025, 6, 17, 22, 24, 0, 0, time.UTC)
	h := measure.NewHistory()
	for i, d := range distances {
		h.Append(measure.NewMeasurement(base.Add(time.Duration(i)*time.Minute), d, 1.7, 0.8))
	}
	return h
}

func newTestScreen(t *testing.T, width, height int) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	screen.SetSize(width, height)
	t.Cleanup(screen.Fini)
	return screen
}

func key(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func TestHistoryViewNavigation(t *testing.T) {
	h := testHistory(1, 2, 3)
	view := NewHistoryView(h, units.Meters, PaletteFor(settings.ThemeSystem), nil)

	m, ok := view.Selected()
	if !ok || m.DistanceMeters != 3 {
		t.Fatalf("Expected newest measurement selected first, got %v", m.DistanceMeters)
	}

	view.handleKeyEvent(key('j'))
	view.handleKeyEvent(key('j'))
	view.handleKeyEvent(key('j'))
	if m, _ := view.Selected(); m.DistanceMeters != 1 {
		t.Errorf("Expected selection to stop at oldest, got %v", m.DistanceMeters)
	}

	view.handleKeyEvent(tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone))
	if m, _ := view.Selected(); m.DistanceMeters != 2 {
		t.Errorf("Expected 2 after moving up, got %v", m.DistanceMeters)
	}
}

func TestHistoryViewDelete(t *testing.T) {
	h := testHistory(1, 2, 3)
	view := NewHistoryView(h, units.Meters, PaletteFor(settings.ThemeSystem), nil)

	view.handleKeyEvent(key('j'))
	view.handleKeyEvent(key('d'))

	if h.Len() != 2 {
		t.Fatalf("Expected 2 measurements after delete, got %d", h.Len())
	}
	if got := h.Distances(); got[0] != 1 || got[1] != 3 {
		t.Errorf("Expected [1 3], got %v", got)
	}
	if view.status != "Deleted 2.00m" {
		t.Errorf("Unexpected status %q", view.status)
	}

	// Deleting the last row moves the selection back in range
	view.handleKeyEvent(key('j'))
	view.handleKeyEvent(key('d'))
	if m, ok := view.Selected(); !ok || m.DistanceMeters != 3 {
		t.Errorf("Expected selection on remaining measurement, got %v", m.DistanceMeters)
	}
}

func TestHistoryViewClearNeedsConfirmation(t *testing.T) {
	h := testHistory(1, 2)
	view := NewHistoryView(h, units.Meters, PaletteFor(settings.ThemeSystem), nil)

	view.handleKeyEvent(key('c'))
	view.handleKeyEvent(key('n'))
	if h.Len() != 2 {
		t.Fatalf("History should survive a declined clear")
	}

	view.handleKeyEvent(key('c'))
	if !strings.Contains(view.status, "Clear all 2 measurements?") {
		t.Errorf("Expected confirmation prompt, got %q", view.status)
	}
	view.handleKeyEvent(key('y'))
	if h.Len() != 0 {
		t.Errorf("Expected empty history after confirmed clear, got %d", h.Len())
	}
}

func TestHistoryViewShare(t *testing.T) {
	h := testHistory(4)
	copier := &fakeCopier{}
	view := NewHistoryView(h, units.Meters, PaletteFor(settings.ThemeSystem), copier)

	view.handleKeyEvent(key('s'))
	if len(copier.copied) != 1 {
		t.Fatalf("Expected one copy, got %d", len(copier.copied))
	}
	if !strings.HasPrefix(copier.copied[0], "TargetLock Measurement\nDistance: 4.00m") {
		t.Errorf("Unexpected share text %q", copier.copied[0])
	}

	copier.err = errors.New("no tools")
	view.handleKeyEvent(key('s'))
	if view.status != "Copy failed: no tools" {
		t.Errorf("Unexpected status %q", view.status)
	}

	view = NewHistoryView(h, units.Meters, PaletteFor(settings.ThemeSystem), nil)
	view.Share()
	if view.status != "No clipboard available" {
		t.Errorf("Unexpected status %q", view.status)
	}
}

func TestHistoryViewQuitKeys(t *testing.T) {
	view := NewHistoryView(testHistory(1), units.Meters, PaletteFor(settings.ThemeSystem), nil)

	if !view.handleKeyEvent(key('q')) {
		t.Error("q should exit")
	}
	if !view.handleKeyEvent(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)) {
		t.Error("Esc should exit")
	}
	if view.handleKeyEvent(key('x')) {
		t.Error("Unbound keys should not exit")
	}
}

func TestHistoryViewRender(t *testing.T) {
	screen := newTestScreen(t, 60, 12)
	h := testHistory(2, 4, 6)
	view := NewHistoryView(h, units.Meters, PaletteFor(settings.ThemeDark), nil)
	view.screen = screen
	view.render()

	if got := view.buffer.Line(0); got != "TargetLock History" {
		t.Errorf("Unexpected title %q", got)
	}
	if got := view.buffer.Line(1); got != "Count: 3  •  Avg: 4.00m  •  Min: 2.00m  •  Max: 6.00m" {
		t.Errorf("Unexpected stats line %q", got)
	}
	if got := view.buffer.Line(3); got != "> 6.00m • H=1.70m • 80%" {
		t.Errorf("Unexpected first row %q", got)
	}
	if got := view.buffer.Line(4); got != "  Jun 17, 2025 10:26 PM" {
		t.Errorf("Unexpected timestamp row %q", got)
	}
	if got := view.buffer.Line(5); got != "  4.00m • H=1.70m • 80%" {
		t.Errorf("Unexpected second row %q", got)
	}
	if got := view.buffer.Line(11); got != helpText {
		t.Errorf("Unexpected footer %q", got)
	}

	if r, _, _, _ := screen.GetContent(2, 3); r != '6' {
		t.Errorf("Expected row to reach the screen, got %q", r)
	}
}

func TestHistoryViewRenderEmpty(t *testing.T) {
	screen := newTestScreen(t, 40, 8)
	view := NewHistoryView(measure.NewHistory(), units.Both, PaletteFor(settings.ThemeLight), nil)
	view.screen = screen
	view.render()

	if got := view.buffer.Line(1); got != "No measurements yet." {
		t.Errorf("Unexpected stats line %q", got)
	}
	if got := view.buffer.Line(headerRows); got != "  No measurements yet." {
		t.Errorf("Unexpected empty placeholder %q", got)
	}
}

func TestHistoryViewScrollsToSelection(t *testing.T) {
	screen := newTestScreen(t, 40, 8) // room for two items
	view := NewHistoryView(testHistory(1, 2, 3, 4, 5), units.Meters, PaletteFor(settings.ThemeSystem), nil)
	view.screen = screen
	view.render()

	for i := 0; i < 3; i++ {
		view.Next()
	}
	view.render()

	if view.scroll != 2 {
		t.Errorf("Expected scroll offset 2, got %d", view.scroll)
	}
	if got := view.buffer.Line(5); !strings.HasPrefix(got, "> 2.00m") {
		t.Errorf("Expected selected row visible at bottom, got %q", got)
	}
}

func TestHistoryViewRunUntilQuit(t *testing.T) {
	screen := newTestScreen(t, 60, 12)
	h := testHistory(1, 2, 3)
	view := NewHistoryView(h, units.Meters, PaletteFor(settings.ThemeSystem), nil)

	screen.InjectKey(tcell.KeyRune, 'j', tcell.ModNone)
	screen.InjectKey(tcell.KeyRune, 'd', tcell.ModNone)
	screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)

	done := make(chan struct{})
	go func() {
		view.Run(screen)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("view did not exit")
	}

	if h.Len() != 2 {
		t.Errorf("Expected one deletion, got %d measurements", h.Len())
	}
}
