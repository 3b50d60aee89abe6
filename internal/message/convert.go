package message

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Capture group names a pattern may define.
const (
	GroupType      = "type"
	GroupTypeError = "type_error"
	GroupMsg       = "msg"
	GroupFile      = "file"
	GroupLine      = "line"
	GroupCol       = "col"
)

// ErrConversion matches every error FromMatch returns.
var ErrConversion = errors.New("message conversion failed")

// MissingCaptureError reports a required group that did not participate in a match.
type MissingCaptureError struct {
	Group   string
	Pattern string
}

func (e *MissingCaptureError) Error() string {
	return fmt.Sprintf("pattern %q matched without required group %q", e.Pattern, e.Group)
}

func (e *MissingCaptureError) Is(target error) bool { return target == ErrConversion }

// MalformedNumberError reports a line or col capture that is not a base-10 unsigned integer.
type MalformedNumberError struct {
	Group   string
	Pattern string
	Text    string
	Err     error
}

func (e *MalformedNumberError) Error() string {
	return fmt.Sprintf("pattern %q captured %q in group %q: %v", e.Pattern, e.Text, e.Group, e.Err)
}

func (e *MalformedNumberError) Unwrap() error { return e.Err }

func (e *MalformedNumberError) Is(target error) bool { return target == ErrConversion }

// captures is a read-only view of one match of re against text.
type captures struct {
	re   *regexp.Regexp
	text string
	loc  []int
}

// get returns the text of a named group and whether it took part in the match.
// A group the pattern never defines is reported the same as one that did not participate.
func (c captures) get(name string) (string, bool) {
	idx := c.re.SubexpIndex(name)
	if idx < 0 || 2*idx+1 >= len(c.loc) {
		return "", false
	}
	start, end := c.loc[2*idx], c.loc[2*idx+1]
	if start < 0 || end < 0 {
		return "", false
	}
	return c.text[start:end], true
}

func (c captures) required(name string) (string, error) {
	v, ok := c.get(name)
	if !ok {
		return "", &MissingCaptureError{Group: name, Pattern: c.re.String()}
	}
	return v, nil
}

func (c captures) number(name string) (*uint, error) {
	v, ok := c.get(name)
	if !ok {
		return nil, nil
	}
	n, err := strconv.ParseUint(v, 10, 0)
	if err != nil {
		return nil, &MalformedNumberError{Group: name, Pattern: c.re.String(), Text: v, Err: err}
	}
	u := uint(n)
	return &u, nil
}

// FromMatch converts one match into a Message. loc is the result of
// re.FindStringSubmatchIndex(text). The span covers the whole match and is
// relative to text.
func FromMatch(re *regexp.Regexp, text string, loc []int) (Message, error) {
	if len(loc) < 2 || loc[0] < 0 {
		return Message{}, fmt.Errorf("pattern %q: no match to convert: %w", re.String(), ErrConversion)
	}
	c := captures{re: re, text: text, loc: loc}

	isError := false
	if t, ok := c.get(GroupType); ok && strings.EqualFold(t, "error") {
		isError = true
	}
	if _, ok := c.get(GroupTypeError); ok {
		isError = true
	}

	msg, err := c.required(GroupMsg)
	if err != nil {
		return Message{}, err
	}
	file, err := c.required(GroupFile)
	if err != nil {
		return Message{}, err
	}
	line, err := c.number(GroupLine)
	if err != nil {
		return Message{}, err
	}
	col, err := c.number(GroupCol)
	if err != nil {
		return Message{}, err
	}

	return Message{
		IsError: isError,
		Msg:     msg,
		File:    file,
		Line:    line,
		Column:  col,
		Span:    Span{Start: loc[0], End: loc[1]},
	}, nil
}
