package service

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotOwner            = errors.New("memory belongs to another user")
	ErrMainPictureRequired = errors.New("memory requires a main picture")
	ErrPlaceInUse          = errors.New("place is still referenced by memories")
	ErrLocationInUse       = errors.New("location is still referenced")
)

// invalidf builds an ErrInvalidInput carrying a client-facing detail.
func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// Detail strips the ErrInvalidInput prefix from a validation error.
func Detail(err error) string {
	msg := err.Error()
	prefix := ErrInvalidInput.Error() + ": "
	if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
		return msg[len(prefix):]
	}
	return msg
}
