package service

import (
	"errors"
	"fmt"
)

// Error kinds. Match them with errors.Is; the message of the returned
// error is safe to show to clients for every kind except ErrUpstream.
var (
	ErrValidation = errors.New("validation error")
	ErrPolicy     = errors.New("policy error")
	ErrForbidden  = errors.New("forbidden")
	ErrNotFound   = errors.New("not found")
	ErrUpstream   = errors.New("upstream error")
)

// Error carries a client-facing message and its kind.
type Error struct {
	kind  error
	msg   string
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.msg + ": " + e.cause.Error()
	}
	return e.msg
}

// Message is the text without the underlying cause.
func (e *Error) Message() string {
	return e.msg
}

func (e *Error) Unwrap() []error {
	if e.cause != nil {
		return []error{e.kind, e.cause}
	}
	return []error{e.kind}
}

func newError(kind error, format string, args ...interface{}) error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...)}
}

func upstreamError(msg string, cause error) error {
	return &Error{kind: ErrUpstream, msg: msg, cause: cause}
}

var errNoProvider = errors.New("no language model provider configured")
