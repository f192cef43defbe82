package chat

import (
	"errors"
	"fmt"
)

// ErrEmptyMessage is the cause of an InputError for a blank submission.
var ErrEmptyMessage = errors.New("empty message")

// InputError rejects a malformed chat submission.
type InputError struct {
	Field   string
	Message string
	Err     error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *InputError) Unwrap() error { return e.Err }
