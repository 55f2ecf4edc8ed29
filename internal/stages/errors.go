package stages

import "fmt"

// ValidationError reports a parsed provider document that fails the
// stage's required shape. It is fatal to the current stage.
type ValidationError struct {
	Stage   string
	Field   string
	Message string
	Cause   error
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("validation error in stage %s", e.Stage)
	if e.Field != "" {
		msg += fmt.Sprintf(" (field %s)", e.Field)
	}
	msg += ": " + e.Message
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}
