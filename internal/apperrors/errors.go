package apperrors

import (
	"errors"
)

var (
	ErrShutdown = errors.New("shutdown error")

	ErrProspectDoesNotExist   = errors.New("prospect does not exist")
	ErrStudentDoesNotExist    = errors.New("student does not exist")
	ErrInstructorDoesNotExist = errors.New("instructor does not exist")
	ErrEmailAlreadyTaken      = errors.New("email already taken")

	ErrProjectionDoesNotExist = errors.New("projection does not exist")

	ErrUnroutableEvent = errors.New("no topic for event type")
	ErrMalformedEvent  = errors.New("malformed event payload")

	ErrLeaseNotHeld = errors.New("relay lease held by another instance")

	ErrHubFull   = errors.New("connection limit reached")
	ErrHubClosed = errors.New("hub is shut down")

	ErrContextValueDoesNotExist = errors.New("context value does not exist")
	ErrContextValueInvalidType  = errors.New("invalid context value type")
)
