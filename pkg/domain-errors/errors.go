// Package domainerrors provides coded errors for the registry core. Every
// operation failure carries a Code that maps onto the error taxonomy
// (authorization, validation, lifecycle state, payment, invariant) plus the
// human-readable reason callers match on.
package domainerrors

import "errors"

// Code classifies a domain error. Transport layers translate codes to HTTP
// statuses; the core never branches on the message text.
type Code string

const (
	// CodeUnauthorized: the caller lacks the required role or ownership.
	CodeUnauthorized Code = "unauthorized"
	// CodeValidation: malformed or out-of-range input.
	CodeValidation Code = "validation"
	// CodeInvalidState: the operation is not valid for the record's current
	// lifecycle state.
	CodeInvalidState Code = "invalid_state"
	// CodePayment: the supplied payment does not cover the required total.
	CodePayment Code = "payment"
	// CodeInvariantViolation: a defensive internal check failed. These are
	// expected to be unreachable under validated configuration.
	CodeInvariantViolation Code = "invariant_violation"
	// CodeNotFound: the referenced record does not exist.
	CodeNotFound Code = "not_found"
	// CodeBadRequest: the request could not be understood at the transport
	// boundary.
	CodeBadRequest Code = "bad_request"
	// CodeInternal: infrastructure failure; nothing the caller can fix.
	CodeInternal Code = "internal"
)

// Error is a coded domain error. The message is part of the contract: callers
// are expected to match on it, so it is never rewritten while wrapping.
type Error struct {
	Code    Code
	Message string
	cause   error
}

// New returns a coded error with the given reason.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and reason to an underlying error.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes the cause for errors.Is / errors.As chains.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches another domain error by code and message, so independently
// constructed errors compare equal under errors.Is.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == other.Code && e.Message == other.Message
}

// HasCode reports whether err (or anything it wraps) is a domain error with
// the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf returns the code of err, or CodeInternal when err carries none.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// Is forwards to errors.Is so call sites need a single errors import.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
