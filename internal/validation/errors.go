// Package validation guards prompts against untrusted input: book titles
// typed by users and text fetched from the web.
package validation

import "fmt"

// Error represents a general validation error
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("validation error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// TitleError reports a title that cannot be sent to the model.
type TitleError struct {
	Title  string
	Reason string
}

func (e *TitleError) Error() string {
	return fmt.Sprintf("invalid title %q: %s", e.Title, e.Reason)
}
