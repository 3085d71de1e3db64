package internal

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/Hanaasagi/targetlock/internal/settings"
	"github.com/fatih/color"
	"github.com/gdamore/tcell/v2"
)

// Color interface defines how to colorize text
type Color interface {
	FgString(text string) string
	GetFgColor() color.Attribute
}

// ColorWrapper wraps fatih/color functionality
type ColorWrapper struct {
	colorFunc func(...interface{}) string
	colorAttr color.Attribute
	isRGB     bool
	r, g, b   uint8
}

// FgString returns a string with the color applied
func (c ColorWrapper) FgString(text string) string {
	if c.isRGB {
		if color.NoColor {
			return text
		}
		return fmt.Sprintf("\x1b[38;2;%d;%d;%dm%s\x1b[0m", c.r, c.g, c.b, text)
	}
	return c.colorFunc(text)
}

// GetFgColor returns the color.Attribute for this color
func (c ColorWrapper) GetFgColor() color.Attribute {
	return c.colorAttr
}

var rgbRegex = regexp.MustCompile(`^#([a-fA-F0-9]{2})([a-fA-F0-9]{2})([a-fA-F0-9]{2})$`)

var (
	colorCache = make(map[string]Color, 16)
	colorMutex sync.RWMutex
)

func named(attr color.Attribute) ColorWrapper {
	return ColorWrapper{colorFunc: color.New(attr).SprintFunc(), colorAttr: attr}
}

var predefinedColors = map[string]ColorWrapper{
	"black":   named(color.FgBlack),
	"red":     named(color.FgRed),
	"green":   named(color.FgGreen),
	"yellow":  named(color.FgYellow),
	"blue":    named(color.FgBlue),
	"magenta": named(color.FgMagenta),
	"cyan":    named(color.FgCyan),
	"white":   named(color.FgWhite),
	"default": named(color.Reset),
}

// GetColor parses a color name or #rrggbb string. Unknown names panic; the
// palette below only uses known ones.
func GetColor(name string) Color {
	colorMutex.RLock()
	if cached, exists := colorCache[name]; exists {
		colorMutex.RUnlock()
		return cached
	}
	colorMutex.RUnlock()

	var result Color
	if m := rgbRegex.FindStringSubmatch(name); m != nil {
		r, _ := strconv.ParseUint(m[1], 16, 8)
		g, _ := strconv.ParseUint(m[2], 16, 8)
		b, _ := strconv.ParseUint(m[3], 16, 8)
		result = ColorWrapper{
			colorFunc: color.New(color.FgWhite).SprintFunc(),
			colorAttr: color.FgWhite,
			isRGB:     true,
			r:         uint8(r),
			g:         uint8(g),
			b:         uint8(b),
		}
	} else if predefined, exists := predefinedColors[strings.ToLower(name)]; exists {
		result = predefined
	} else {
		panic(fmt.Sprintf("Unknown color: %s", name))
	}

	colorMutex.Lock()
	colorCache[name] = result
	colorMutex.Unlock()

	return result
}

// Confidence thresholds for the traffic-light coloring.
const (
	HighConfidence   = 0.75
	MediumConfidence = 0.5
)

// ConfidenceColor is green at or above 0.75, yellow at or above 0.5, red below.
func ConfidenceColor(confidence float64) Color {
	switch {
	case confidence >= HighConfidence:
		return GetColor("green")
	case confidence >= MediumConfidence:
		return GetColor("yellow")
	default:
		return GetColor("red")
	}
}

// Palette groups the colors used by the history view and CLI output.
type Palette struct {
	Title      Color
	Text       Color
	Muted      Color
	SelectedFg Color
	SelectedBg Color
	Warning    Color
}

// PaletteFor returns the palette for theme. The system theme keeps the
// terminal's own foreground and background.
func PaletteFor(theme settings.Theme) Palette {
	switch theme {
	case settings.ThemeLight:
		return Palette{
			Title:      GetColor("#005f87"),
			Text:       GetColor("black"),
			Muted:      GetColor("#6c6c6c"),
			SelectedFg: GetColor("white"),
			SelectedBg: GetColor("#005f87"),
			Warning:    GetColor("#af5f00"),
		}
	case settings.ThemeDark:
		return Palette{
			Title:      GetColor("#5fd7ff"),
			Text:       GetColor("white"),
			Muted:      GetColor("#8a8a8a"),
			SelectedFg: GetColor("black"),
			SelectedBg: GetColor("#5fd7ff"),
			Warning:    GetColor("#ffaf00"),
		}
	default:
		return Palette{
			Title:      GetColor("magenta"),
			Text:       GetColor("default"),
			Muted:      GetColor("default"),
			SelectedFg: GetColor("black"),
			SelectedBg: GetColor("cyan"),
			Warning:    GetColor("yellow"),
		}
	}
}

var attrToTcell = map[color.Attribute]tcell.Color{
	color.FgBlack:   tcell.ColorBlack,
	color.FgRed:     tcell.ColorRed,
	color.FgGreen:   tcell.ColorGreen,
	color.FgYellow:  tcell.ColorYellow,
	color.FgBlue:    tcell.ColorBlue,
	color.FgMagenta: tcell.ColorFuchsia,
	color.FgCyan:    tcell.ColorAqua,
	color.FgWhite:   tcell.ColorWhite,
	color.Reset:     tcell.ColorDefault,
}

// colorToTcell converts a Color to tcell.Color
func colorToTcell(c Color) tcell.Color {
	if cw, ok := c.(ColorWrapper); ok && cw.isRGB {
		return tcell.NewRGBColor(int32(cw.r), int32(cw.g), int32(cw.b))
	}
	if tc, exists := attrToTcell[c.GetFgColor()]; exists {
		return tc
	}
	return tcell.ColorDefault
}

// style builds a tcell style from a foreground/background pair.
func style(fg, bg Color) tcell.Style {
	return tcell.StyleDefault.Foreground(colorToTcell(fg)).Background(colorToTcell(bg))
}
