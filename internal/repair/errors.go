package repair

import (
	"fmt"
	"strings"
)

// contextLines is the number of lines shown before and after the error
// position in diagnostics.
const contextLines = 2

// MalformedResponseError reports provider output that could not be
// repaired into strict JSON. It carries the offending text and a
// line/column pointer into it.
type MalformedResponseError struct {
	Raw     string
	Line    int
	Column  int
	Message string
	Cause   error
}

func (e *MalformedResponseError) Error() string {
	msg := fmt.Sprintf("malformed response at line %d, column %d: %s", e.Line, e.Column, e.Message)
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	if ctx := e.Context(); ctx != "" {
		msg += "\n" + ctx
	}
	return msg
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Cause
}

// Context returns the lines surrounding the error position, with a caret
// marking the reported column, for diagnosis.
func (e *MalformedResponseError) Context() string {
	lines := strings.Split(e.Raw, "\n")
	if e.Line < 1 || e.Line > len(lines) {
		return ""
	}

	start := e.Line - 1 - contextLines
	if start < 0 {
		start = 0
	}
	end := e.Line + contextLines
	if end > len(lines) {
		end = len(lines)
	}

	var sb strings.Builder
	for i := start; i < end; i++ {
		fmt.Fprintf(&sb, "%4d | %s\n", i+1, lines[i])
		if i == e.Line-1 && e.Column >= 1 {
			fmt.Fprintf(&sb, "     | %s^\n", strings.Repeat(" ", e.Column-1))
		}
	}
	return sb.String()
}

// lineColumn converts a byte offset into 1-based line and column numbers.
func lineColumn(text string, offset int64) (line, column int) {
	if offset < 0 {
		offset = 0
	}
	if offset > int64(len(text)) {
		offset = int64(len(text))
	}

	line, column = 1, 1
	for _, b := range []byte(text[:offset]) {
		if b == '\n' {
			line++
			column = 1
		} else {
			column++
		}
	}
	return line, column
}
