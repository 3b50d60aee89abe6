package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

const spinnerInterval = 120 * time.Millisecond

// Spinner redraws a single status line until stopped. It is meant for a
// terminal stderr while the command's own output is suppressed.
type Spinner struct {
	w      io.Writer
	frames []string

	mu      sync.Mutex
	message string
	started bool
	stopped bool
	width   int

	stopCh chan struct{}
	doneCh chan struct{}
}

func NewSpinner(w io.Writer) *Spinner {
	return &Spinner{
		w:      w,
		frames: []string{"|", "/", "-", "\\"},
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start begins drawing. Calling it again only replaces the message.
func (s *Spinner) Start(initial string) {
	s.SetMessage(initial)

	s.mu.Lock()
	if s.started || s.stopped {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	go func() {
		defer close(s.doneCh)

		t := time.NewTicker(spinnerInterval)
		defer t.Stop()

		for i := 0; ; i++ {
			s.draw(s.frames[i%len(s.frames)])
			select {
			case <-s.stopCh:
				return
			case <-t.C:
			}
		}
	}()
}

func (s *Spinner) SetMessage(m string) {
	s.mu.Lock()
	s.message = strings.TrimSpace(m)
	s.mu.Unlock()
}

// Stop halts drawing and clears the line. It is safe to call more than once.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	started := s.started
	s.mu.Unlock()

	close(s.stopCh)
	if !started {
		return
	}
	<-s.doneCh

	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprint(s.w, "\r"+strings.Repeat(" ", s.width)+"\r")
}

func (s *Spinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := s.message
	if msg == "" {
		msg = "..."
	}
	line := frame + " " + msg
	pad := ""
	if n := len(line); n < s.width {
		pad = strings.Repeat(" ", s.width-n)
	} else {
		s.width = n
	}
	fmt.Fprint(s.w, "\r"+line+pad)
}
