package session

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind classifies a failed auth operation.
type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindInvalidCredentials
	KindConflict
	KindInvalidCode
	KindNotFound
	KindTransport
	KindUnauthorized
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindConflict:
		return "conflict"
	case KindInvalidCode:
		return "invalid_code"
	case KindNotFound:
		return "not_found"
	case KindTransport:
		return "transport"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "unknown"
	}
}

// AuthError is the typed failure of an auth operation.
type AuthError struct {
	Kind   ErrorKind
	Detail string
	Err    error
}

func NewError(kind ErrorKind, detail string) *AuthError {
	return &AuthError{Kind: kind, Detail: detail}
}

// WrapError attaches cause to a new AuthError.
func WrapError(kind ErrorKind, detail string, cause error) *AuthError {
	return &AuthError{Kind: kind, Detail: detail, Err: cause}
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message(), e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message())
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// Message is the short text shown to the user.
func (e *AuthError) Message() string {
	if e.Detail != "" {
		return e.Detail
	}
	switch e.Kind {
	case KindValidation:
		return "Please check the form and try again."
	case KindInvalidCredentials:
		return "Invalid email or password."
	case KindConflict:
		return "An account with this email already exists."
	case KindInvalidCode:
		return "The verification code is incorrect."
	case KindNotFound:
		return "No matching account or code was found."
	case KindUnauthorized:
		return "Your session has expired. Please log in again."
	default:
		return "Unable to reach the server. Please try again."
	}
}

// IsKind reports whether err is an AuthError of kind.
func IsKind(err error, kind ErrorKind) bool {
	var ae *AuthError
	return errors.As(err, &ae) && ae.Kind == kind
}

// asAuthError converts any collaborator error into an AuthError. Errors that
// are not already typed are transport failures.
func asAuthError(err error) *AuthError {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return WrapError(KindTransport, "The request was cancelled or timed out.", err)
	}
	return WrapError(KindTransport, "", err)
}

// Result is the outcome of every Manager operation. Err is nil on success.
type Result struct {
	Session *Session
	Err     *AuthError
}

func (r Result) OK() bool {
	return r.Err == nil
}

func failure(err *AuthError) Result {
	return Result{Err: err}
}
