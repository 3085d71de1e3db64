package internal

import (
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
)

// IsDebugMode reports whether TARGETLOCK_DEBUG is set to true or 1.
func IsDebugMode() bool {
	isDebug := strings.ToLower(os.Getenv("TARGETLOCK_DEBUG"))
	return isDebug == "true" || isDebug == "1"
}

// runeWidth is the display width of r, never less than one cell.
func runeWidth(r rune) int {
	if w := runewidth.RuneWidth(r); w > 0 {
		return w
	}
	return 1
}

// truncate shortens text to width display cells, ending with "..." when cut.
func truncate(text string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(text) <= width {
		return text
	}
	if width <= 3 {
		return runewidth.Truncate(text, width, "")
	}
	return runewidth.Truncate(text, width, "...")
}
