package rendering

import "fmt"

// Error reports a failure while rendering a document.
type Error struct {
	Document string
	Message  string
	Cause    error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("rendering error for %s: %s: %v", e.Document, e.Message, e.Cause)
	}
	return fmt.Sprintf("rendering error for %s: %s", e.Document, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
