package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"

	"github.com/robbyt/go-scriptdesk/overlay"
)

var (
	errorColor  = color.New(color.FgRed, color.Bold)
	lintColor   = color.New(color.FgYellow)
	statusColor = color.New(color.FgCyan, color.Bold)
	pathColor   = color.New(color.Bold)
)

// terminal draws the overlay and the status line on a text stream.
type terminal struct {
	mu   sync.Mutex
	out  io.Writer
	file string
}

func newTerminal(out io.Writer) *terminal {
	return &terminal{out: out}
}

// setFile names the script whose diagnostics are drawn next.
func (t *terminal) setFile(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.file = path
}

// SetMarkers implements overlay.Surface.
func (t *terminal) SetMarkers(markers []overlay.Marker) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, m := range markers {
		c := errorColor
		if m.Kind == overlay.KindLint {
			c = lintColor
		}
		d := m.Diagnostic
		msg := d.Message
		if d.Code != "" {
			msg = fmt.Sprintf("%s [%s]", msg, d.Code)
		}
		fmt.Fprintf(t.out, "%s:%s: %s %s\n",
			pathColor.Sprint(t.file), d.Position, c.Sprint(d.Severity), msg)
	}
}

// SetText implements controller.StatusLabel. An empty status prints nothing.
func (t *terminal) SetText(text string) {
	if text == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	statusColor.Fprintln(t.out, text)
}

func configureColor(mode string) error {
	switch mode {
	case "auto":
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	default:
		return fmt.Errorf("unsupported color mode %q", mode)
	}
	return nil
}
