// Package matcher extracts diagnostics from a line stream as it arrives.
//
// Each step builds a probe from the current line and, when there is one, the
// following line joined by "\n". The first pattern whose match starts within
// the current line wins. A match that spans the inserted "\n" consumes both
// lines; otherwise only the current line is consumed and the following line
// becomes current.
// Spans are shifted by the number of stream bytes already consumed so they
// index the raw output, terminators included.
package matcher

import (
	"errors"
	"io"
	"iter"
	"log/slog"
	"runtime"
	"strings"

	"compmode/internal/message"
	"compmode/internal/patterns"
)

const (
	// DefaultMaxLineLength bounds the lines handed to the regex engine.
	DefaultMaxLineLength = 64 * 1024

	probeSeparator = "\n"
)

// ErrTerminatorLen is returned by New for a terminator length other than 1 or 2.
var ErrTerminatorLen = errors.New("line terminator length must be 1 (LF) or 2 (CRLF)")

type Options struct {
	// TerminatorLen is the byte length of the stream's line terminator.
	// Zero selects the host default.
	TerminatorLen int

	// Echo receives every consumed line, unmodified, followed by "\n".
	Echo io.Writer

	// OnDiscard receives matches that could not be converted. When nil they
	// are logged at warn level.
	OnDiscard func(err error)

	Logger *slog.Logger

	// MaxLineLength skips matching on longer lines. Zero selects
	// DefaultMaxLineLength, a negative value disables the limit.
	MaxLineLength int
}

// Matcher applies a pattern set to a line stream. It is not safe for
// concurrent use; run one Scan at a time.
type Matcher struct {
	patterns      patterns.Set
	terminatorLen int
	maxLineLength int
	echo          io.Writer
	onDiscard     func(error)
	logger        *slog.Logger

	// position counts the stream bytes committed so far. It only grows.
	position int
	err      error
}

// DefaultTerminatorLen is the terminator length child processes use on this host.
func DefaultTerminatorLen() int {
	if runtime.GOOS == "windows" {
		return 2
	}
	return 1
}

// New compiles sources into a matcher. A malformed source fails with
// *patterns.CompileError before any scanning happens.
func New(sources []string, opts Options) (*Matcher, error) {
	set, err := patterns.Compile(sources)
	if err != nil {
		return nil, err
	}
	return NewWithSet(set, opts)
}

// NewWithSet builds a matcher around an already compiled set.
func NewWithSet(set patterns.Set, opts Options) (*Matcher, error) {
	termLen := opts.TerminatorLen
	if termLen == 0 {
		termLen = DefaultTerminatorLen()
	}
	if termLen != 1 && termLen != 2 {
		return nil, ErrTerminatorLen
	}

	maxLen := opts.MaxLineLength
	if maxLen == 0 {
		maxLen = DefaultMaxLineLength
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Matcher{
		patterns:      set,
		terminatorLen: termLen,
		maxLineLength: maxLen,
		echo:          opts.Echo,
		onDiscard:     opts.OnDiscard,
		logger:        logger,
	}, nil
}

// Patterns returns the compiled set the matcher applies.
func (m *Matcher) Patterns() patterns.Set { return m.patterns }

// Err returns the read error that ended the last Scan, if any. io.EOF is not an error.
func (m *Matcher) Err() error { return m.err }

// Scan returns the diagnostics found in r, in stream order. The sequence is
// lazy: lines are read only as the caller ranges over it. Check Err after
// the loop.
func (m *Matcher) Scan(r io.Reader) iter.Seq[message.Message] {
	return func(yield func(message.Message) bool) {
		w := newWindow(r, m.terminatorLen)
		defer func() { m.err = w.err }()

		for {
			w.fill()
			cur, ok := w.current()
			if !ok {
				return
			}
			next, hasNext := w.next()

			m.emit(cur)
			msg, found, pair := m.probe(cur, next, hasNext)

			consumed := len(cur) + m.terminatorLen
			lines := 1
			if pair {
				m.emit(next)
				consumed += len(next) + m.terminatorLen
				lines = 2
			}
			base := m.position
			m.position += consumed
			w.advance(lines)

			if !found {
				continue
			}
			msg.Span = m.streamSpan(msg.Span, len(cur), base)
			if !yield(msg) {
				return
			}
		}
	}
}

// ScanAll drains Scan into a slice.
func (m *Matcher) ScanAll(r io.Reader) ([]message.Message, error) {
	var out []message.Message
	for msg := range m.Scan(r) {
		out = append(out, msg)
	}
	return out, m.Err()
}

// probe matches the current line, joined with the next one when present.
// pair reports whether the winning match crossed into the next line. A match
// that fails conversion is reported to the discard channel and still decides
// how far the window moves.
func (m *Matcher) probe(cur, next string, hasNext bool) (msg message.Message, found bool, pair bool) {
	if m.patterns.Len() == 0 {
		return message.Message{}, false, false
	}
	if m.tooLong(cur) {
		m.logger.Debug("line too long to match", "offset", m.position, "len", len(cur), "limit", m.maxLineLength)
		return message.Message{}, false, false
	}

	text := cur
	if hasNext && !m.tooLong(next) {
		text = cur + probeSeparator + next
	}

	// A match starting inside the next line is left for the step where that
	// line is current.
	re, loc := m.patterns.FirstMatchBefore(text, len(cur))
	if re == nil {
		return message.Message{}, false, false
	}
	pair = strings.Contains(text[loc[0]:loc[1]], probeSeparator)

	msg, err := message.FromMatch(re, text, loc)
	if err != nil {
		m.discard(err)
		return message.Message{}, false, pair
	}
	return msg, true, pair
}

// streamSpan maps a probe-relative span onto the stream. Offsets past the
// current line sit behind a real terminator, which may be wider than the
// probe separator.
func (m *Matcher) streamSpan(s message.Span, curLen, base int) message.Span {
	toStream := func(off int) int {
		if off > curLen {
			off += m.terminatorLen - len(probeSeparator)
		}
		return base + off
	}
	return message.Span{Start: toStream(s.Start), End: toStream(s.End)}
}

func (m *Matcher) tooLong(line string) bool {
	return m.maxLineLength > 0 && len(line) > m.maxLineLength
}

func (m *Matcher) emit(line string) {
	if m.echo == nil {
		return
	}
	if _, err := io.WriteString(m.echo, line+"\n"); err != nil {
		m.logger.Debug("echo write failed", "err", err)
	}
}

func (m *Matcher) discard(err error) {
	if m.onDiscard != nil {
		m.onDiscard(err)
		return
	}
	m.logger.Warn("discarded match", "err", err)
}
