// Package apperr carries the service-level error taxonomy. Services
// return these kinds; controllers map them to HTTP codes in one place
// so no transport knowledge leaks into the core.
package apperr

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindNotAuthorized
	KindInvalidState
	KindNotFound
	KindValidation
)

type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func New(kind Kind, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

func NotAuthorized(format string, args ...interface{}) error {
	return New(KindNotAuthorized, fmt.Sprintf(format, args...))
}

func InvalidState(format string, args ...interface{}) error {
	return New(KindInvalidState, fmt.Sprintf(format, args...))
}

func NotFound(format string, args ...interface{}) error {
	return New(KindNotFound, fmt.Sprintf(format, args...))
}

func Validation(format string, args ...interface{}) error {
	return New(KindValidation, fmt.Sprintf(format, args...))
}

func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPStatus maps an error kind to the status code the boundary uses.
// Unknown errors stay 500: lower-layer failures are logged and reported
// as a generic failure.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotAuthorized:
		return fiber.StatusForbidden
	case KindInvalidState:
		return fiber.StatusConflict
	case KindNotFound:
		return fiber.StatusNotFound
	case KindValidation:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}
