package internal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/Hanaasagi/targetlock/internal/presets"
	fz "github.com/Hanaasagi/targetlock/pkg/fuzzymatch"
	"github.com/fatih/color"
	"golang.org/x/term"
)

const (
	defaultMaxVisibleItems = 8
	defaultWidth           = 80
	defaultHeight          = 24

	// Control characters
	ctrlC = 3   // Ctrl+C
	esc   = 27  // ESC
	del   = 127 // Backspace/Delete
	bs    = 8   // Backspace
	enter = 13  // Enter
	ctrlU = 21  // Ctrl+U (clear input)
	ctrlP = 16  // Ctrl+P (up)
	ctrlN = 14  // Ctrl+N (down)
	ctrlJ = 10  // Ctrl+J (down)
	ctrlK = 11  // Ctrl+K (up)
)

// ErrPickCancelled is returned when the picker is closed without a choice.
var ErrPickCancelled = errors.New("preset selection cancelled")

var cursorPositionPattern = regexp.MustCompile(`\x1b\[(\d+);(\d+)R`)

// PresetPicker is an inline fuzzy-filter dropdown drawn below the cursor.
type PresetPicker struct {
	presets         []presets.Preset
	candidates      []string
	filteredMatches []fz.FuzzyMatch
	selectedIndex   int
	scrollOffset    int
	query           string
	fuzzyMatcher    *fz.FuzzyMatcher
	picked          int
	done            bool

	maxVisibleItems int
	countWidth      int

	originalState *term.State
	width         int
	height        int
	startRow      int

	ttyin  *os.File
	ttyout io.Writer

	selectColor *color.Color
	matchColor  *color.Color
}

func NewPresetPicker(items []presets.Preset) *PresetPicker {
	candidates := make([]string, len(items))
	for i, p := range items {
		candidates[i] = p.Title
	}

	pp := &PresetPicker{
		presets:         items,
		candidates:      candidates,
		fuzzyMatcher:    fz.NewFuzzyMatcher(false),
		picked:          -1,
		maxVisibleItems: defaultMaxVisibleItems,
		countWidth:      len(strconv.Itoa(len(candidates))),
		width:           defaultWidth,
		height:          defaultHeight,
		ttyout:          io.Discard,
		selectColor:     color.New(color.BgCyan, color.FgBlack),
		matchColor:      color.New(color.FgYellow, color.Bold),
	}
	pp.updateFilter()
	return pp
}

// initTerminal opens /dev/tty in raw mode and finds where to draw.
func (pp *PresetPicker) initTerminal() error {
	tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("failed to open /dev/tty: %w", err)
	}
	pp.ttyin, pp.ttyout = tty, tty

	pp.originalState, err = term.MakeRaw(int(tty.Fd()))
	if err != nil {
		_ = tty.Close()
		return fmt.Errorf("failed to enter raw mode: %w", err)
	}

	if w, h, err := term.GetSize(int(tty.Fd())); err == nil {
		pp.width, pp.height = w, h
	}
	if err := pp.readCursorRow(); err != nil {
		pp.startRow = pp.height - 1
	}
	return nil
}

// readCursorRow asks the terminal for the cursor position (DSR).
func (pp *PresetPicker) readCursorRow() error {
	pp.write("\x1b[6n")

	buf := make([]byte, 32)
	n, err := pp.ttyin.Read(buf)
	if err != nil {
		return err
	}
	m := cursorPositionPattern.FindSubmatch(buf[:n])
	if m == nil {
		return fmt.Errorf("failed to parse cursor position")
	}
	row, _ := strconv.Atoi(string(m[1]))
	pp.startRow = row - 1
	return nil
}

func (pp *PresetPicker) cleanup() {
	if pp.originalState != nil {
		_ = term.Restore(int(pp.ttyin.Fd()), pp.originalState)
	}
	if pp.ttyin != nil {
		_ = pp.ttyin.Close()
	}
}

func (pp *PresetPicker) write(text string) {
	_, _ = io.WriteString(pp.ttyout, text)
}

func (pp *PresetPicker) moveCursor(row, col int) {
	pp.write(fmt.Sprintf("\x1b[%d;%dH", row+1, col+1))
}

func (pp *PresetPicker) clearArea(lines int) {
	for i := 0; i < lines; i++ {
		pp.moveCursor(pp.startRow+i, 0)
		pp.write("\x1b[2K")
	}
}

func (pp *PresetPicker) updateFilter() {
	pp.filteredMatches = pp.fuzzyMatcher.Match(pp.query, pp.candidates)
	if pp.selectedIndex >= len(pp.filteredMatches) {
		pp.selectedIndex = 0
	}
	pp.constrainSelection()
}

// constrainSelection keeps the selected item inside the visible window.
func (pp *PresetPicker) constrainSelection() {
	count := len(pp.filteredMatches)
	if count == 0 {
		pp.selectedIndex, pp.scrollOffset = 0, 0
		return
	}
	pp.selectedIndex = max(min(pp.selectedIndex, count-1), 0)

	numItems := min(pp.maxVisibleItems, count)
	minOffset := max(pp.selectedIndex-numItems+1, 0)
	maxOffset := max(min(count-numItems, pp.selectedIndex), 0)
	pp.scrollOffset = max(min(pp.scrollOffset, maxOffset), minOffset)
}

func (pp *PresetPicker) moveUp() {
	if pp.selectedIndex > 0 {
		pp.selectedIndex--
		pp.constrainSelection()
	}
}

func (pp *PresetPicker) moveDown() {
	if pp.selectedIndex < len(pp.filteredMatches)-1 {
		pp.selectedIndex++
		pp.constrainSelection()
	}
}

func (pp *PresetPicker) totalLines() int {
	return min(pp.maxVisibleItems, len(pp.filteredMatches)) + 1
}

// render draws the prompt line and the visible slice of matches.
func (pp *PresetPicker) render() {
	lines := pp.totalLines()
	if pp.startRow+lines >= pp.height {
		pp.startRow = max(pp.height-lines-1, 0)
	}
	pp.clearArea(pp.maxVisibleItems + 1)

	pp.moveCursor(pp.startRow, 0)
	current := 0
	if len(pp.filteredMatches) > 0 {
		current = pp.selectedIndex + 1
	}
	counter := fmt.Sprintf("[ %*d/%-*d ]", pp.countWidth, current, pp.countWidth, len(pp.filteredMatches))
	pp.write(fmt.Sprintf("%s height > %s", counter, pp.query))

	for i := 0; i < lines-1; i++ {
		idx := pp.scrollOffset + i
		match := pp.filteredMatches[idx]
		pp.moveCursor(pp.startRow+1+i, 0)

		if idx == pp.selectedIndex {
			pp.write(" > ")
			_, _ = pp.selectColor.Fprint(pp.ttyout, truncate(match.Text, pp.width-3))
			continue
		}
		pp.write("   ")
		pp.write(pp.highlight(match))
	}

	pp.moveCursor(pp.startRow, len(counter)+len(" height > ")+len(pp.query))
}

// highlight colors the characters that matched the query.
func (pp *PresetPicker) highlight(match fz.FuzzyMatch) string {
	if pp.query == "" || color.NoColor {
		return truncate(match.Text, pp.width-3)
	}
	return pp.fuzzyMatcher.HighlightMatch(match, "\x1b[33;1m", "\x1b[0m")
}

// handleKey applies one read from the terminal.
func (pp *PresetPicker) handleKey(buf []byte) {
	if len(buf) >= 3 && buf[0] == esc && buf[1] == '[' {
		switch buf[2] {
		case 'A':
			pp.moveUp()
		case 'B':
			pp.moveDown()
		}
		return
	}
	if len(buf) != 1 {
		return
	}

	switch ch := buf[0]; ch {
	case ctrlC, esc:
		pp.done = true
	case enter:
		if len(pp.filteredMatches) > 0 {
			pp.picked = pp.filteredMatches[pp.selectedIndex].Original
			pp.done = true
		}
	case del, bs:
		if len(pp.query) > 0 {
			pp.query = pp.query[:len(pp.query)-1]
			pp.updateFilter()
		}
	case ctrlU:
		pp.query = ""
		pp.updateFilter()
	case ctrlP, ctrlK:
		pp.moveUp()
	case ctrlN, ctrlJ:
		pp.moveDown()
	default:
		if ch >= 32 && ch < 127 {
			pp.query += string(ch)
			pp.updateFilter()
		}
	}
}

// result returns the picked preset, or ErrPickCancelled.
func (pp *PresetPicker) result() (presets.Preset, error) {
	if pp.picked < 0 {
		return presets.Preset{}, ErrPickCancelled
	}
	return pp.presets[pp.picked], nil
}

// Present runs the picker on the controlling terminal.
func (pp *PresetPicker) Present() (presets.Preset, error) {
	if len(pp.candidates) == 0 {
		return presets.Preset{}, ErrPickCancelled
	}
	if err := pp.initTerminal(); err != nil {
		return presets.Preset{}, err
	}
	defer pp.cleanup()

	pp.moveCursor(pp.startRow, 0)
	for i := 0; i < pp.totalLines(); i++ {
		pp.write("\n")
	}

	buf := make([]byte, 6)
	for !pp.done {
		pp.render()

		n, err := pp.ttyin.Read(buf)
		if err != nil {
			break
		}
		if n > 0 {
			pp.handleKey(buf[:n])
		}
		time.Sleep(time.Millisecond * 10)
	}

	pp.clearArea(pp.maxVisibleItems + 1)
	pp.moveCursor(pp.startRow, 0)
	return pp.result()
}
