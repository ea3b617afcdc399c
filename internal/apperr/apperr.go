// Package apperr defines the error taxonomy shared by all services.
// Handlers map each kind to an HTTP status; services never translate
// errors themselves.
package apperr

import (
	"errors"
	"fmt"
)

type ErrKind int

const (
	KindInternal ErrKind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindAccessDenied
	KindInsufficientCredit
)

// Error is a typed application error carrying a kind and a user-facing message.
type Error struct {
	Kind ErrKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Kind reports the kind of err, or KindInternal if err is not an *Error.
func Kind(err error) ErrKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

func AccessDenied(format string, args ...interface{}) *Error {
	return &Error{Kind: KindAccessDenied, Msg: fmt.Sprintf(format, args...)}
}

func InsufficientCredit(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInsufficientCredit, Msg: fmt.Sprintf(format, args...)}
}

// Internal wraps an unexpected error.
func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Msg: msg, Err: err}
}
