// Package repair asks the model to fix JSON it could not produce cleanly the first time.
package repair

import "fmt"

// Error represents a terminal repair failure: the repaired text still does not decode.
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("repair error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("repair error: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// ProposeError represents a failed repair completion (the fix was never proposed)
type ProposeError struct {
	Message string
	Cause   error
}

func (e *ProposeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("repair proposal error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("repair proposal error: %s", e.Message)
}

func (e *ProposeError) Unwrap() error {
	return e.Cause
}
