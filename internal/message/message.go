// Package message defines the diagnostic record extracted from tool output and
// the conversion from a regex match into one.
package message

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/vmihailenco/msgpack/v5"
)

// Span is a half-open byte range [Start, End) into the whole output stream.
type Span struct {
	Start int
	End   int
}

func (s Span) Len() int { return s.End - s.Start }

// MarshalJSON renders the span as a [start, end] pair.
func (s Span) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{s.Start, s.End})
}

func (s *Span) UnmarshalJSON(data []byte) error {
	var pair [2]int
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("span: %w", err)
	}
	s.Start, s.End = pair[0], pair[1]
	return nil
}

// EncodeMsgpack writes the span as a two element array, matching the JSON form.
func (s Span) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeArrayLen(2); err != nil {
		return err
	}
	if err := enc.EncodeInt(int64(s.Start)); err != nil {
		return err
	}
	return enc.EncodeInt(int64(s.End))
}

func (s *Span) DecodeMsgpack(dec *msgpack.Decoder) error {
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return fmt.Errorf("span: %w", err)
	}
	if n != 2 {
		return fmt.Errorf("span: expected 2 elements, got %d", n)
	}
	if s.Start, err = dec.DecodeInt(); err != nil {
		return fmt.Errorf("span: %w", err)
	}
	if s.End, err = dec.DecodeInt(); err != nil {
		return fmt.Errorf("span: %w", err)
	}
	return nil
}

// Message is one error or warning found in the output.
type Message struct {
	IsError bool   `json:"is_error" msgpack:"is_error"`
	Msg     string `json:"msg" msgpack:"msg"`
	File    string `json:"file" msgpack:"file"`
	Line    *uint  `json:"line" msgpack:"line"`
	Column  *uint  `json:"column" msgpack:"column"`
	Span    Span   `json:"span" msgpack:"span"`
}

// Equal reports whether two messages point at the same place.
// Only Span, Line and Column are compared; text and severity are ignored.
func (m Message) Equal(other Message) bool {
	return m.Span == other.Span &&
		equalOptional(m.Line, other.Line) &&
		equalOptional(m.Column, other.Column)
}

// Location renders file[:line[:col]] the way compilers print it.
func (m Message) Location() string {
	loc := m.File
	if m.Line != nil {
		loc += ":" + strconv.FormatUint(uint64(*m.Line), 10)
		if m.Column != nil {
			loc += ":" + strconv.FormatUint(uint64(*m.Column), 10)
		}
	}
	return loc
}

// Severity returns "error" or "warning".
func (m Message) Severity() string {
	if m.IsError {
		return "error"
	}
	return "warning"
}

func (m Message) String() string {
	return fmt.Sprintf("%s: %s: %s", m.Location(), m.Severity(), m.Msg)
}

func equalOptional(a, b *uint) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
