package ui

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func waitForOutput(t *testing.T, b *syncBuffer, want string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !strings.Contains(b.String(), want) {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %q, got %q", want, b.String())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestSpinnerDrawPadsShorterMessage(t *testing.T) {
	var out bytes.Buffer
	s := NewSpinner(&out)

	s.SetMessage("cargo build: 12 errors")
	s.draw("|")
	first := out.Len()
	s.SetMessage("  done  ")
	s.draw("/")

	long := "| cargo build: 12 errors"
	short := "/ done"
	want := "\r" + long + "\r" + short + strings.Repeat(" ", len(long)-len(short))
	if out.String() != want {
		t.Fatalf("output = %q, want %q", out.String(), want)
	}
	if first != len("\r"+long) || s.width != len(long) {
		t.Fatalf("width = %d after %d bytes, want %d", s.width, first, len(long))
	}
}

func TestSpinnerDrawWithoutMessage(t *testing.T) {
	var out bytes.Buffer
	s := NewSpinner(&out)
	s.draw("-")
	if out.String() != "\r- ..." {
		t.Fatalf("output = %q", out.String())
	}
}

func TestSpinnerStopClearsDrawnWidth(t *testing.T) {
	out := &syncBuffer{}
	s := NewSpinner(out)

	s.Start("make: 0 errors")
	waitForOutput(t, out, "make: 0 errors")
	s.SetMessage("make")
	s.Stop()

	clear := "\r" + strings.Repeat(" ", len("| make: 0 errors")) + "\r"
	if !strings.HasSuffix(out.String(), clear) {
		t.Fatalf("expected output to end with a %d-column clear, got %q", len(clear)-2, out.String())
	}

	written := len(out.String())
	time.Sleep(3 * spinnerInterval)
	if len(out.String()) != written {
		t.Fatalf("spinner kept writing after Stop: %q", out.String())
	}

	s.Stop()
	if len(out.String()) != written {
		t.Fatalf("second Stop wrote %q", out.String()[written:])
	}
}

func TestSpinnerStartReplacesMessage(t *testing.T) {
	out := &syncBuffer{}
	s := NewSpinner(out)

	s.Start("first")
	waitForOutput(t, out, "first")
	s.Start("second")
	waitForOutput(t, out, "second")
	s.Stop()
}

func TestSpinnerSilentOutsideStartStop(t *testing.T) {
	tests := []struct {
		name string
		run  func(s *Spinner)
	}{
		{name: "stop before start", run: func(s *Spinner) { s.Stop() }},
		{name: "start after stop", run: func(s *Spinner) {
			s.Stop()
			s.Start("late")
			s.SetMessage("later")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &syncBuffer{}
			s := NewSpinner(out)
			tt.run(s)
			time.Sleep(2 * spinnerInterval)
			if got := out.String(); got != "" {
				t.Fatalf("expected no output, got %q", got)
			}
		})
	}
}
