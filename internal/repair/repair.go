// Package repair normalizes raw provider responses into syntactically
// valid JSON through an ordered pipeline of named fixes, and surfaces
// unrepairable output with line/column diagnostics.
package repair

import (
	"encoding/json"
)

// Clean applies every fix in order and returns the repaired text. It does
// not verify the result parses; use Repair for that.
func Clean(raw string) string {
	text := raw
	for _, fix := range Fixes() {
		text = fix.Apply(text)
	}
	return text
}

// Repair cleans the raw provider output and strictly parses it. On
// failure it returns a *MalformedResponseError pointing at the offending
// position in the repaired text. It never retries; the caller decides
// whether to re-run the whole stage.
func Repair(raw string) (json.RawMessage, error) {
	cleaned := Clean(raw)

	var probe any
	if err := json.Unmarshal([]byte(cleaned), &probe); err != nil {
		line, column := 1, 1
		if syntaxErr, ok := err.(*json.SyntaxError); ok {
			line, column = lineColumn(cleaned, syntaxErr.Offset)
		}
		return nil, &MalformedResponseError{
			Raw:     cleaned,
			Line:    line,
			Column:  column,
			Message: "response is not valid JSON after repair",
			Cause:   err,
		}
	}

	return json.RawMessage(cleaned), nil
}
