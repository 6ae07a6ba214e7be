package model

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when the target item does not exist, either in the
// remote collection or in the local snapshot.
var ErrNotFound = errors.New("item not found")

// ValidationError reports bad local input. No network call is made when
// one of these is returned.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Msg
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Msg)
}

// RemoteError wraps a transport or store failure. Msg is the backend's own
// message and is what the UI shows.
type RemoteError struct {
	Op  string
	Msg string
	Err error
}

func NewRemoteError(op string, err error) *RemoteError {
	return &RemoteError{Op: op, Msg: err.Error(), Err: err}
}

func (e *RemoteError) Error() string {
	return e.Op + ": " + e.Msg
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsRemote reports whether err is (or wraps) a RemoteError.
func IsRemote(err error) bool {
	var re *RemoteError
	return errors.As(err, &re)
}
