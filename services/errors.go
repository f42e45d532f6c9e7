package services

import (
	"errors"
	"fmt"
)

// Error kinds map one-to-one onto the caller's 404/403/409/400/500
// branching. Controllers match on the kind, never on message text.
const (
	KindNotFound            = "not_found"
	KindForbidden           = "forbidden"
	KindInvalidState        = "invalid_state"
	KindInsufficientBalance = "insufficient_balance"
	KindValidation          = "validation"
	KindConflict            = "conflict"
	KindInternal            = "internal"
)

type Error struct {
	Kind    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Forbidden(format string, args ...any) *Error {
	return &Error{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

func InvalidState(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidState, Message: fmt.Sprintf(format, args...)}
}

func InsufficientBalance(format string, args ...any) *Error {
	return &Error{Kind: KindInsufficientBalance, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf reports the kind of a workflow error, or KindInternal for
// anything that is not a tagged *Error.
func KindOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func IsKind(err error, kind string) bool {
	return KindOf(err) == kind
}
