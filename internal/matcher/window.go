package matcher

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// window is the two-slot lookahead over the line stream. Slot 0 is the
// current line, slot 1 the next one. Lines are stored without terminators.
type window struct {
	r             *bufio.Reader
	terminatorLen int

	lines [2]string
	count int
	eof   bool
	err   error
}

func newWindow(r io.Reader, terminatorLen int) *window {
	return &window{r: bufio.NewReader(r), terminatorLen: terminatorLen}
}

// fill reads until both slots are occupied or the stream ends.
func (w *window) fill() {
	for w.count < len(w.lines) && !w.eof {
		line, ok := w.readLine()
		if !ok {
			return
		}
		w.lines[w.count] = line
		w.count++
	}
}

func (w *window) readLine() (string, bool) {
	line, err := w.r.ReadString('\n')
	if err != nil {
		w.eof = true
		if !errors.Is(err, io.EOF) {
			w.err = err
		}
		// A final line without a terminator is still a line.
		if line == "" {
			return "", false
		}
		return line, true
	}
	line = strings.TrimSuffix(line, "\n")
	if w.terminatorLen == 2 {
		line = strings.TrimSuffix(line, "\r")
	}
	return line, true
}

func (w *window) current() (string, bool) {
	if w.count == 0 {
		return "", false
	}
	return w.lines[0], true
}

func (w *window) next() (string, bool) {
	if w.count < 2 {
		return "", false
	}
	return w.lines[1], true
}

// advance drops n lines from the front of the window.
func (w *window) advance(n int) {
	switch {
	case n <= 0:
		return
	case n >= w.count:
		w.lines = [2]string{}
		w.count = 0
	default:
		w.lines[0], w.lines[1] = w.lines[1], ""
		w.count--
	}
}
