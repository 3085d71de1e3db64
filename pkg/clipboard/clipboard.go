// Package clipboard copies shared measurements to the tmux buffer, the
// system clipboard and the terminal (OSC52).
package clipboard

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/leaanthony/go-ansi-parser"
)

// Writer represents a clipboard destination
type Writer interface {
	Write(text string) error
}

// Option configures a Clipboard
type Option func(*Clipboard)

// Clipboard fans text out to every enabled target.
type Clipboard struct {
	tmux   bool
	system bool
	osc52  bool
	output io.Writer
}

// New creates a Clipboard with all targets enabled and OSC52 on stderr.
func New(opts ...Option) *Clipboard {
	c := &Clipboard{
		tmux:   true,
		system: true,
		osc52:  true,
		output: os.Stderr,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func WithTmux(enabled bool) Option {
	return func(c *Clipboard) { c.tmux = enabled }
}

func WithSystem(enabled bool) Option {
	return func(c *Clipboard) { c.system = enabled }
}

func WithOSC52(enabled bool) Option {
	return func(c *Clipboard) { c.osc52 = enabled }
}

// WithOutput sets where OSC52 sequences are written.
func WithOutput(w io.Writer) Option {
	return func(c *Clipboard) { c.output = w }
}

// writers lists the targets that are enabled and usable right now.
func (c *Clipboard) writers() []Writer {
	var ws []Writer
	if c.tmux && isTmuxSession() {
		ws = append(ws, TmuxWriter{})
	}
	if c.system {
		ws = append(ws, SystemWriter{})
	}
	if c.osc52 {
		ws = append(ws, NewOSC52Writer(c.output))
	}
	return ws
}

// Copy strips terminal styling from text and writes it to every target.
// It fails only when no target accepted the text.
func (c *Clipboard) Copy(text string) error {
	plain := StripANSI(text)

	var errs []error
	written := 0
	for _, w := range c.writers() {
		if err := w.Write(plain); err != nil {
			errs = append(errs, err)
			continue
		}
		written++
	}
	if written == 0 && len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// StripANSI removes escape sequences, keeping the visible text.
func StripANSI(text string) string {
	if !strings.Contains(text, "\x1b") {
		return text
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		parts, err := ansi.Parse(line)
		if err != nil {
			continue
		}
		var sb strings.Builder
		for _, p := range parts {
			sb.WriteString(p.Label)
		}
		lines[i] = sb.String()
	}
	return strings.Join(lines, "\n")
}

// TmuxWriter loads text into the tmux paste buffer.
type TmuxWriter struct{}

func (TmuxWriter) Write(text string) error {
	if !isTmuxSession() {
		return fmt.Errorf("not in tmux session")
	}
	if text == "" {
		return exec.Command("tmux", "delete-buffer").Run()
	}
	return pipeTo(exec.Command("tmux", "load-buffer", "-"), text)
}

// SystemWriter pipes text into the platform clipboard tool.
type SystemWriter struct{}

func (SystemWriter) Write(text string) error {
	tool := findSystemClipboardTool()
	if tool == "" {
		return fmt.Errorf("no system clipboard tool available")
	}
	return pipeTo(exec.Command(tool), text)
}

// OSC52Writer emits the OSC52 escape sequence, wrapped for tmux passthrough
// when running inside tmux.
type OSC52Writer struct {
	output io.Writer
}

func NewOSC52Writer(output io.Writer) *OSC52Writer {
	return &OSC52Writer{output: output}
}

func (o *OSC52Writer) Write(text string) error {
	_, err := io.WriteString(o.output, osc52Sequence(text, isTmuxSession()))
	return err
}

func osc52Sequence(text string, tmux bool) string {
	if text == "" {
		return "\033]52;c;\007"
	}
	encoded := base64.StdEncoding.EncodeToString([]byte(text))
	if tmux {
		return fmt.Sprintf("\033Ptmux;\033\033]52;c;%s\007\033\\", encoded)
	}
	return fmt.Sprintf("\033]52;c;%s\007", encoded)
}

func pipeTo(cmd *exec.Cmd, text string) error {
	cmd.Stdin = strings.NewReader(text)
	return cmd.Run()
}

func isTmuxSession() bool {
	return os.Getenv("TMUX") != ""
}

func findSystemClipboardTool() string {
	for _, tool := range clipboardTools(runtime.GOOS) {
		if _, err := exec.LookPath(tool); err == nil {
			return tool
		}
	}
	return ""
}

func clipboardTools(goos string) []string {
	switch goos {
	case "darwin":
		return []string{"pbcopy"}
	case "linux":
		return []string{"wl-copy", "xclip", "xsel"}
	case "windows":
		return []string{"clip"}
	default:
		return nil
	}
}

// Copy is a convenience function using the default targets.
func Copy(text string) error {
	return New().Copy(text)
}

// Available reports which targets can be used right now.
func Available() map[string]bool {
	return map[string]bool{
		"tmux":   isTmuxSession(),
		"system": findSystemClipboardTool() != "",
		"osc52":  true,
	}
}
