// Package liberr defines the error taxonomy shared by every operation:
// validation failures, malformed content, missing entities and business-rule
// violations. The HTTP layer maps each kind to a status code.
package liberr

import (
	"errors"
	"fmt"
)

// ValidationError reports an argument with the wrong shape. It is raised
// before any storage access happens.
type ValidationError struct {
	msg string
}

func NewValidation(format string, args ...any) *ValidationError {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string { return e.msg }

// ContentError reports a well-typed but semantically malformed value,
// such as a string that is not an e-mail address.
type ContentError struct {
	msg string
}

func NewContent(format string, args ...any) *ContentError {
	return &ContentError{msg: fmt.Sprintf(format, args...)}
}

func (e *ContentError) Error() string { return e.msg }

// NotFoundError reports a referenced entity that does not exist.
type NotFoundError struct {
	msg string
}

func NewNotFound(format string, args ...any) *NotFoundError {
	return &NotFoundError{msg: fmt.Sprintf(format, args...)}
}

func (e *NotFoundError) Error() string { return e.msg }

// NotAllowedError reports an operation that violates a business rule:
// duplicate registration, wrong credentials, exceeded limits, out of stock.
type NotAllowedError struct {
	msg string
}

func NewNotAllowed(format string, args ...any) *NotAllowedError {
	return &NotAllowedError{msg: fmt.Sprintf(format, args...)}
}

func (e *NotAllowedError) Error() string { return e.msg }

func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

func IsContent(err error) bool {
	var e *ContentError
	return errors.As(err, &e)
}

func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

func IsNotAllowed(err error) bool {
	var e *NotAllowedError
	return errors.As(err, &e)
}
