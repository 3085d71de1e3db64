package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/gdamore/tcell/v2"
)

type TextCell struct {
	Rune  rune
	Style tcell.Style
}

// TextBuffer is an off-screen grid sized to the terminal. Writes outside the
// grid are clipped rather than wrapped.
type TextBuffer struct {
	content [][]TextCell
	width   int
	height  int
}

func NewTextBuffer(width, height int) *TextBuffer {
	width, height = max(width, 0), max(height, 0)
	content := make([][]TextCell, height)
	for i := range content {
		content[i] = make([]TextCell, width)
	}
	return &TextBuffer{content: content, width: width, height: height}
}

func (tb *TextBuffer) Size() (int, int) { return tb.width, tb.height }

// Clear clears the buffer
func (tb *TextBuffer) Clear() {
	for i := range tb.content {
		for j := range tb.content[i] {
			tb.content[i][j] = TextCell{}
		}
	}
}

// SetCell sets a rune at x, y. Out of range coordinates are ignored.
func (tb *TextBuffer) SetCell(x, y int, r rune, style tcell.Style) {
	if y < 0 || y >= tb.height || x < 0 || x >= tb.width {
		return
	}
	tb.content[y][x] = TextCell{Rune: r, Style: style}
}

// SetString writes text from x on row y and returns the column after it.
// Wide runes occupy their full display width.
func (tb *TextBuffer) SetString(x, y int, text string, style tcell.Style) int {
	for _, r := range text {
		w := runeWidth(r)
		if x+w > tb.width {
			break
		}
		tb.SetCell(x, y, r, style)
		x += w
	}
	return x
}

// FillRow paints the remainder of row y from x with style, used for the
// selection bar.
func (tb *TextBuffer) FillRow(x, y int, style tcell.Style) {
	if y < 0 || y >= tb.height {
		return
	}
	for ; x < tb.width; x++ {
		if tb.content[y][x].Rune == 0 {
			tb.content[y][x] = TextCell{Rune: ' ', Style: style}
		}
	}
}

// Line returns the visible text of row y with trailing blanks trimmed.
func (tb *TextBuffer) Line(y int) string {
	if y < 0 || y >= tb.height {
		return ""
	}
	var sb strings.Builder
	row := tb.content[y]
	for x := 0; x < len(row); x++ {
		if row[x].Rune == 0 {
			sb.WriteByte(' ')
			continue
		}
		sb.WriteRune(row[x].Rune)
		x += runeWidth(row[x].Rune) - 1
	}
	return strings.TrimRight(sb.String(), " ")
}

func (tb *TextBuffer) String() string {
	lines := make([]string, tb.height)
	for y := range lines {
		lines[y] = tb.Line(y)
	}
	return strings.Join(lines, "\n")
}

func (tb *TextBuffer) dumpSnapshot() error {
	appDir := filepath.Join(xdg.StateHome, "targetlock")
	if err := os.MkdirAll(appDir, 0o755); err != nil {
		return err
	}
	filePath := filepath.Join(appDir, fmt.Sprintf("snapshot-%d.txt", time.Now().UnixMilli()))

	f, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close() // nolint

	_, err = f.WriteString(tb.String())
	return err
}

// WriteToScreen copies the buffer onto screen.
func (tb *TextBuffer) WriteToScreen(screen tcell.Screen) {
	if IsDebugMode() {
		tb.dumpSnapshot() // nolint
	}

	for y, row := range tb.content {
		for x, cell := range row {
			if cell.Rune != 0 {
				screen.SetContent(x, y, cell.Rune, nil, cell.Style)
			}
		}
	}
}
