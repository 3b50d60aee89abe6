// Package report collects the diagnostics of one run together with the run's
// metadata and renders them for editor plugins.
package report

import (
	"compmode/internal/message"
)

type Report struct {
	Command       []string          `json:"command" msgpack:"command"`
	RootDirectory string            `json:"root_directory" msgpack:"root_directory"`
	Messages      []message.Message `json:"messages" msgpack:"messages"`
	ExitCode      int               `json:"exit_code" msgpack:"exit_code"`
}

func New(command []string, root string) *Report {
	return &Report{
		Command:       append([]string{}, command...),
		RootDirectory: root,
		Messages:      []message.Message{},
	}
}

func (r *Report) Add(msgs ...message.Message) {
	r.Messages = append(r.Messages, msgs...)
}

// Dedup drops every message equal to an earlier one, keeping the first.
func (r *Report) Dedup() {
	out := r.Messages[:0]
	for _, msg := range r.Messages {
		dup := false
		for _, kept := range out {
			if kept.Equal(msg) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, msg)
		}
	}
	r.Messages = out
}

// Counts returns the number of errors and warnings.
func (r *Report) Counts() (errors int, warnings int) {
	for _, msg := range r.Messages {
		if msg.IsError {
			errors++
		} else {
			warnings++
		}
	}
	return errors, warnings
}
