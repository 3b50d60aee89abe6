package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"compmode/internal/message"
)

// Summary is the one line printed after a run.
type Summary struct {
	Errors   int
	Warnings int
	ExitCode int
	TimedOut bool
	Duration time.Duration
}

type palette struct {
	err  *color.Color
	warn *color.Color
	ok   *color.Color
	dim  *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:  color.New(color.FgRed, color.Bold),
		warn: color.New(color.FgYellow, color.Bold),
		ok:   color.New(color.FgGreen, color.Bold),
		dim:  color.New(color.Faint),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.ok, p.dim} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// WriteSummary prints e.g. "2 errors, 1 warning (exit 1, 3.2s)".
func WriteSummary(w io.Writer, s Summary, colored bool) error {
	p := newPalette(colored)

	var parts []string
	switch {
	case s.Errors > 0:
		parts = append(parts, p.err.Sprint(plural(s.Errors, "error")))
	default:
		parts = append(parts, p.ok.Sprint(plural(0, "error")))
	}
	if s.Warnings > 0 {
		parts = append(parts, p.warn.Sprint(plural(s.Warnings, "warning")))
	} else {
		parts = append(parts, plural(0, "warning"))
	}

	status := fmt.Sprintf("exit %d", s.ExitCode)
	if s.TimedOut {
		status = "timed out"
	}
	detail := p.dim.Sprintf("(%s, %s)", status, s.Duration.Round(100*time.Millisecond))

	_, err := fmt.Fprintf(w, "%s %s\n", strings.Join(parts, ", "), detail)
	return err
}

// WriteMessage prints one diagnostic as "file:line:col: error: msg".
func WriteMessage(w io.Writer, msg message.Message, colored bool) error {
	p := newPalette(colored)
	sev := p.warn
	if msg.IsError {
		sev = p.err
	}
	_, err := fmt.Fprintf(w, "%s: %s: %s\n", msg.Location(), sev.Sprint(msg.Severity()), msg.Msg)
	return err
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
