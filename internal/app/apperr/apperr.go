// Package apperr defines the application-layer error shape shared by the booking use cases.
//
// Every error leaving an app service is an *Error with a Kind (the taxonomy callers
// branch on) and a Code (the specific condition). Transport adapters map Kind to a
// status code and pass Code through unchanged.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindNotFound     Kind = "NOT_FOUND"
	KindConflict     Kind = "CONFLICT"
	KindValidation   Kind = "VALIDATION"
	KindStoreFailure Kind = "STORE_FAILURE"
)

const (
	CodeClientNotFound          = "CLIENT_NOT_FOUND"
	CodeTripNotFound            = "TRIP_NOT_FOUND"
	CodeRegistrationNotFound    = "REGISTRATION_NOT_FOUND"
	CodeClientAlreadyRegistered = "CLIENT_ALREADY_REGISTERED"
	CodeTripFull                = "TRIP_FULL"
	CodeClientAlreadyExists     = "CLIENT_ALREADY_EXISTS"
	CodeValidation              = "VALIDATION_ERROR"
	CodeStoreFailure            = "STORE_FAILURE"
)

// Error is an application-layer error that can be mapped to a transport response.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Details map[string]any

	// Err is the underlying cause, if any. It is never exposed to API callers.
	Err error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if msg == "" {
		msg = e.Code
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func NotFound(code, message string) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: message}
}

func Conflict(code, message string) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: message}
}

// Validation builds a VALIDATION_ERROR carrying per-field details.
func Validation(message string, details map[string]any) *Error {
	return &Error{Kind: KindValidation, Code: CodeValidation, Message: message, Details: details}
}

// StoreFailure wraps an unexpected persistence error.
func StoreFailure(err error) *Error {
	return &Error{Kind: KindStoreFailure, Code: CodeStoreFailure, Message: "store failure", Err: err}
}

// As returns the *Error in err's chain.
func As(err error) (*Error, bool) {
	ae := (*Error)(nil)
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// KindOf returns the Kind of err, or "" when err is nil or not an *Error.
func KindOf(err error) Kind {
	if ae, ok := As(err); ok {
		return ae.Kind
	}
	return ""
}

// CodeOf returns the Code of err, or "" when err is nil or not an *Error.
func CodeOf(err error) string {
	if ae, ok := As(err); ok {
		return ae.Code
	}
	return ""
}

func HasKind(err error, k Kind) bool { return KindOf(err) == k }

func HasCode(err error, code string) bool { return CodeOf(err) == code }
