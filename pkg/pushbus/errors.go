package pushbus

import (
	"context"
	"errors"
	"net"
)

// TemporaryError marks a publish failure worth retrying: the record stays
// unpublished and a later attempt may succeed.
type TemporaryError struct {
	Err error
}

func (e *TemporaryError) Error() string {
	return e.Err.Error()
}

func (e *TemporaryError) Unwrap() error {
	return e.Err
}

func Temporary(err error) error {
	if err == nil {
		return nil
	}

	return &TemporaryError{Err: err}
}

func IsTemporary(err error) bool {
	var tmp *TemporaryError
	if errors.As(err, &tmp) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return errors.Is(err, context.DeadlineExceeded)
}
