package script

import (
	"errors"
	"fmt"
)

// ErrStateClosed is returned when operating on a closed state.
var ErrStateClosed = errors.New("lua state is closed")

// Error reports a failed script run.
type Error struct {
	Source string // chunk name, usually the script path
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("script %s: %v", e.Source, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
