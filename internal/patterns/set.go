// Package patterns holds the compiled regular expressions the matcher applies
// to tool output, the builtin pattern groups, and group selection.
package patterns

import (
	"fmt"
	"iter"
	"regexp"
)

// CompileError reports a pattern source that is not a valid regular expression.
type CompileError struct {
	Pattern string
	Err     error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("failed to compile pattern %q: %v", e.Pattern, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }

// Set is an ordered, read-only list of compiled patterns.
type Set struct {
	patterns []*regexp.Regexp
}

// Compile compiles every source in order. The first invalid source aborts
// compilation with a *CompileError.
func Compile(sources []string) (Set, error) {
	compiled := make([]*regexp.Regexp, 0, len(sources))
	for _, src := range sources {
		re, err := regexp.Compile(src)
		if err != nil {
			return Set{}, &CompileError{Pattern: src, Err: err}
		}
		compiled = append(compiled, re)
	}
	return Set{patterns: compiled}, nil
}

// MustCompile is like Compile but panics on error. Meant for builtin tables and tests.
func MustCompile(sources ...string) Set {
	s, err := Compile(sources)
	if err != nil {
		panic(err)
	}
	return s
}

func (s Set) Len() int { return len(s.patterns) }

func (s Set) Sources() []string {
	out := make([]string, 0, len(s.patterns))
	for _, re := range s.patterns {
		out = append(out, re.String())
	}
	return out
}

// All yields the patterns in order.
func (s Set) All() iter.Seq2[int, *regexp.Regexp] {
	return func(yield func(int, *regexp.Regexp) bool) {
		for i, re := range s.patterns {
			if !yield(i, re) {
				return
			}
		}
	}
}

// FirstMatch tries each pattern in order and returns the first one that
// matches text together with its submatch indexes. It returns nil, nil when
// no pattern matches.
func (s Set) FirstMatch(text string) (*regexp.Regexp, []int) {
	return s.FirstMatchBefore(text, len(text))
}

// FirstMatchBefore is FirstMatch restricted to matches starting at or before
// limit. A pattern whose leftmost match starts later counts as not matching.
func (s Set) FirstMatchBefore(text string, limit int) (*regexp.Regexp, []int) {
	for _, re := range s.patterns {
		if loc := re.FindStringSubmatchIndex(text); loc != nil && loc[0] <= limit {
			return re, loc
		}
	}
	return nil, nil
}
