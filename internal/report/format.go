package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"compmode/internal/message"
)

type Format string

const (
	FormatDebug   Format = "debug"
	FormatJSON    Format = "json"
	FormatCSV     Format = "csv"
	FormatNullSep Format = "nullsep"
	FormatMsgpack Format = "msgpack"
)

// Formats lists every supported format in help order.
func Formats() []Format {
	return []Format{FormatDebug, FormatJSON, FormatCSV, FormatNullSep, FormatMsgpack}
}

func ParseFormat(s string) (Format, error) {
	want := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, f := range Formats() {
		if f == want {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q (expected one of %s)", s, formatList())
}

func formatList() string {
	names := make([]string, 0, len(Formats()))
	for _, f := range Formats() {
		names = append(names, string(f))
	}
	return strings.Join(names, ", ")
}

// Write renders the report in the given format.
func (r *Report) Write(w io.Writer, f Format) error {
	switch f {
	case FormatDebug:
		return r.writeDebug(w)
	case FormatJSON:
		if err := json.NewEncoder(w).Encode(r); err != nil {
			return fmt.Errorf("failed to serialize report: %w", err)
		}
		return nil
	case FormatCSV:
		return r.writeCSV(w)
	case FormatNullSep:
		return r.writeSeparated(w, "\x00")
	case FormatMsgpack:
		if err := msgpack.NewEncoder(w).Encode(r); err != nil {
			return fmt.Errorf("failed to serialize report: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format %q", f)
	}
}

var columns = []string{"is_error", "msg", "file", "line", "column"}

func row(msg message.Message) []string {
	isError := "0"
	if msg.IsError {
		isError = "1"
	}
	return []string{isError, msg.Msg, msg.File, optional(msg.Line), optional(msg.Column)}
}

// writeCSV writes a header row and one RFC 4180 record per message.
func (r *Report) writeCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return err
	}
	for _, msg := range r.Messages {
		if err := cw.Write(row(msg)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// writeSeparated writes a header row and one row per message. Fields are
// written verbatim; the separator is expected not to occur in them.
func (r *Report) writeSeparated(w io.Writer, sep string) error {
	var b strings.Builder
	b.WriteString(strings.Join(columns, sep))
	for _, msg := range r.Messages {
		b.WriteString("\n")
		b.WriteString(strings.Join(row(msg), sep))
	}
	b.WriteString("\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// writeDebug prints a human-readable dump, one message per line.
func (r *Report) writeDebug(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "command:   %q\n", r.Command)
	fmt.Fprintf(&b, "root:      %s\n", r.RootDirectory)
	fmt.Fprintf(&b, "exit code: %d\n", r.ExitCode)
	fmt.Fprintf(&b, "messages:  %d\n", len(r.Messages))
	for i, msg := range r.Messages {
		writeDebugMessage(&b, i, msg)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeDebugMessage(b *strings.Builder, i int, msg message.Message) {
	fmt.Fprintf(b, "  #%d %-7s %s: %q [%d,%d)\n", i, msg.Severity(), msg.Location(), msg.Msg, msg.Span.Start, msg.Span.End)
}

func optional(v *uint) string {
	if v == nil {
		return ""
	}
	return strconv.FormatUint(uint64(*v), 10)
}
