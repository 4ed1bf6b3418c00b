package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the target task does not exist at the authority.
	ErrNotFound = errors.New("not found")

	// ErrInvalid is returned when the authority rejects the request payload.
	ErrInvalid = errors.New("invalid request")

	// ErrUnavailable is returned for transport or authority failures.
	ErrUnavailable = errors.New("backend unavailable")
)

// ValidationError is a local rejection raised before any remote call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// ErrorKind classifies failures for callers that need to pick a reaction.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindValidation
	KindNotFound
	KindInvalid
	KindUnavailable
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not found"
	case KindInvalid:
		return "invalid"
	case KindUnavailable:
		return "unavailable"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// KindOf classifies err. Errors outside the taxonomy count as unavailable.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return KindValidation
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalid):
		return KindInvalid
	default:
		return KindUnavailable
	}
}

// Unavailable wraps err so that it matches ErrUnavailable while keeping its message.
func Unavailable(err error) error {
	if err == nil || errors.Is(err, ErrUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}
