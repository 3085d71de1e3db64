package internal

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Hanaasagi/targetlock/pkg/measure"
	"github.com/Hanaasagi/targetlock/pkg/units"
	"github.com/gdamore/tcell/v2"
)

// Copier receives share text. *clipboard.Clipboard satisfies it.
type Copier interface {
	Copy(text string) error
}

const (
	headerRows  = 3 // title, stats, separator
	footerRows  = 1
	rowsPerItem = 2 // values, timestamp
	helpText    = "j/k move  s share  d delete  c clear  q quit"
)

// HistoryView is a full-screen browser over a measurement history. Rows are
// shown newest first.
type HistoryView struct {
	history *measure.History
	unit    units.DisplayUnit
	palette Palette
	copier  Copier

	selected     int // position in display order, 0 is newest
	scroll       int
	confirmClear bool
	status       string

	screen tcell.Screen
	buffer *TextBuffer
}

// NewHistoryView creates a view over h. copier may be nil, in which case
// sharing reports that no clipboard is available.
func NewHistoryView(h *measure.History, unit units.DisplayUnit, palette Palette, copier Copier) *HistoryView {
	return &HistoryView{
		history: h,
		unit:    unit,
		palette: palette,
		copier:  copier,
	}
}

// historyIndex maps a display position to the oldest-first history index.
func (v *HistoryView) historyIndex(pos int) int {
	return v.history.Len() - 1 - pos
}

func (v *HistoryView) visibleItems() int {
	if v.buffer == nil {
		return 1
	}
	_, height := v.buffer.Size()
	return max((height-headerRows-footerRows)/rowsPerItem, 1)
}

// Prev moves the selection towards newer measurements.
func (v *HistoryView) Prev() {
	if v.selected > 0 {
		v.selected--
	}
	v.constrain()
}

// Next moves the selection towards older measurements.
func (v *HistoryView) Next() {
	if v.selected < v.history.Len()-1 {
		v.selected++
	}
	v.constrain()
}

// constrain keeps the selection in range and visible.
func (v *HistoryView) constrain() {
	count := v.history.Len()
	if v.selected >= count {
		v.selected = count - 1
	}
	if v.selected < 0 {
		v.selected = 0
	}

	visible := v.visibleItems()
	if v.selected < v.scroll {
		v.scroll = v.selected
	}
	if v.selected >= v.scroll+visible {
		v.scroll = v.selected - visible + 1
	}
	v.scroll = max(min(v.scroll, count-visible), 0)
}

// Selected returns the highlighted measurement.
func (v *HistoryView) Selected() (measure.Measurement, bool) {
	if v.history.Len() == 0 {
		return measure.Measurement{}, false
	}
	m, err := v.history.At(v.historyIndex(v.selected))
	if err != nil {
		return measure.Measurement{}, false
	}
	return m, true
}

// Delete removes the highlighted measurement.
func (v *HistoryView) Delete() {
	if v.history.Len() == 0 {
		return
	}
	m, err := v.history.RemoveAt(v.historyIndex(v.selected))
	if err != nil {
		v.status = err.Error()
		return
	}
	slog.Info("measurement deleted", "id", m.ID)
	v.status = "Deleted " + units.FormatLength(m.DistanceMeters, v.unit)
	v.constrain()
}

// Share copies the highlighted measurement's share text.
func (v *HistoryView) Share() {
	m, ok := v.Selected()
	if !ok {
		return
	}
	if v.copier == nil {
		v.status = "No clipboard available"
		return
	}
	if err := v.copier.Copy(units.ShareText(m, v.unit)); err != nil {
		slog.Error("failed to copy measurement", "error", err)
		v.status = "Copy failed: " + err.Error()
		return
	}
	v.status = "Copied measurement to clipboard"
}

// Clear asks for confirmation, then removes every measurement on the second call.
func (v *HistoryView) Clear() {
	if v.history.Len() == 0 {
		return
	}
	if !v.confirmClear {
		v.confirmClear = true
		v.status = fmt.Sprintf("Clear all %d measurements? (y/n)", v.history.Len())
		return
	}
	v.confirmClear = false
	v.history.Clear()
	slog.Info("history cleared")
	v.status = "History cleared"
	v.constrain()
}

// render draws the view into the buffer and flushes it to the screen.
func (v *HistoryView) render() {
	width, height := v.screen.Size()
	if v.buffer == nil {
		v.buffer = NewTextBuffer(width, height)
	} else if w, h := v.buffer.Size(); w != width || h != height {
		v.buffer = NewTextBuffer(width, height)
	} else {
		v.buffer.Clear()
	}
	v.constrain()

	p := v.palette
	base := style(p.Text, GetColor("default"))
	muted := style(p.Muted, GetColor("default"))

	v.buffer.SetString(0, 0, "TargetLock History", style(p.Title, GetColor("default")).Bold(true))
	v.buffer.SetString(0, 1, truncate(units.StatsText(v.history.Statistics(), v.unit), width), muted)
	v.buffer.SetString(0, 2, strings.Repeat("─", width), muted)

	if v.history.Len() == 0 {
		v.buffer.SetString(2, headerRows, "No measurements yet.", muted)
	}

	y := headerRows
	for pos := v.scroll; pos < v.history.Len() && y+rowsPerItem <= height-footerRows; pos++ {
		m, err := v.history.At(v.historyIndex(pos))
		if err != nil {
			break
		}
		v.renderRow(m, y, pos == v.selected, base, muted)
		y += rowsPerItem
	}

	footer := helpText
	footerStyle := muted
	if v.status != "" {
		footer = v.status
		footerStyle = style(p.Warning, GetColor("default"))
	}
	v.buffer.SetString(0, height-1, truncate(footer, width), footerStyle)

	v.screen.Clear()
	v.buffer.WriteToScreen(v.screen)
	v.screen.Show()
}

func (v *HistoryView) renderRow(m measure.Measurement, y int, selected bool, base, muted tcell.Style) {
	width, _ := v.buffer.Size()

	marker := "  "
	if selected {
		marker = "> "
		base = style(v.palette.SelectedFg, v.palette.SelectedBg)
		muted = base
	}

	values := units.Format(m.DistanceMeters, units.Some(m.HeightMeters), units.None, v.unit)

	x := v.buffer.SetString(0, y, marker, base)
	x = v.buffer.SetString(x, y, truncate(values, width-x-6), base)
	x = v.buffer.SetString(x, y, " • ", base)
	confStyle := style(ConfidenceColor(m.Confidence), GetColor("default"))
	if selected {
		confStyle = confStyle.Background(colorToTcell(v.palette.SelectedBg))
	}
	v.buffer.SetString(x, y, units.FormatPercent(m.Confidence), confStyle)
	v.buffer.SetString(2, y+1, m.Timestamp.Format(units.TimestampLayout), muted)

	if selected {
		v.buffer.FillRow(0, y, base)
		v.buffer.FillRow(0, y+1, base)
	}
}

// handleKeyEvent applies a key press and reports whether the view should exit.
func (v *HistoryView) handleKeyEvent(ev *tcell.EventKey) bool {
	if v.confirmClear {
		if ev.Key() == tcell.KeyRune && (ev.Rune() == 'y' || ev.Rune() == 'Y') {
			v.Clear()
		} else {
			v.confirmClear = false
			v.status = ""
		}
		return false
	}

	v.status = ""
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyUp:
		v.Prev()
	case tcell.KeyDown:
		v.Next()
	case tcell.KeyHome:
		v.selected = 0
		v.constrain()
	case tcell.KeyEnd:
		v.selected = v.history.Len() - 1
		v.constrain()
	case tcell.KeyDelete:
		v.Delete()
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return true
		case 'k':
			v.Prev()
		case 'j':
			v.Next()
		case 'd':
			v.Delete()
		case 's':
			v.Share()
		case 'c':
			v.Clear()
		}
	}
	return false
}

// Run drives the view on screen until the user quits. The caller owns the
// screen's lifecycle.
func (v *HistoryView) Run(screen tcell.Screen) {
	v.screen = screen

	renderStart := time.Now()
	v.render()
	slog.Debug("first render completed", "duration_ms", time.Since(renderStart).Milliseconds())

	for {
		switch ev := screen.PollEvent().(type) {
		case nil:
			return
		case *tcell.EventKey:
			if v.handleKeyEvent(ev) {
				return
			}
		case *tcell.EventResize:
			screen.Sync()
		case *tcell.EventError:
			return
		}
		v.render()
	}
}

// Present opens the terminal screen and runs the view.
func (v *HistoryView) Present() error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("creating screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("initializing screen: %w", err)
	}
	defer screen.Fini()

	screen.SetStyle(tcell.StyleDefault)
	screen.Clear()
	v.Run(screen)
	return nil
}
