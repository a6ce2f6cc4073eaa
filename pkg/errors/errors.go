// Package errors provides the structured error type shared by every layer of
// the coverage service.  Repositories wrap driver failures, the engine adds
// context, and the HTTP and CLI layers translate the code into a status.
package errors

import (
	"errors"
	"fmt"
)

// ─────────────────────────────────────────────────────────────────────────────
// AppError
// ─────────────────────────────────────────────────────────────────────────────

// AppError carries a typed code, a caller-safe message, optional detail, and
// the underlying cause.  It works with errors.Is / errors.As through Unwrap.
//
//	return errors.Wrap(err, errors.ErrCodeDatabaseError, "fetch country content")
//	return errors.NotFound("platform not found").WithDetail("id=" + id)
type AppError struct {
	Code    ErrorCode
	Message string
	Detail  string
	Cause   error
}

// Error formats as "[CODE] message: detail (cause)".  Segments that are empty
// are omitted.
func (e *AppError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Cause != nil {
		msg += " (" + e.Cause.Error() + ")"
	}
	return msg
}

// Unwrap returns the wrapped cause.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetail returns a copy of e with Detail set.  Safe on nil.
func (e *AppError) WithDetail(detail string) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Detail = detail
	return &clone
}

// WithCause returns a copy of e with Cause set.  Safe on nil.
func (e *AppError) WithCause(err error) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Cause = err
	return &clone
}

// HTTPStatus is a shortcut for HTTPStatusForCode(e.Code).
func (e *AppError) HTTPStatus() int {
	return HTTPStatusForCode(e.Code)
}

// ─────────────────────────────────────────────────────────────────────────────
// Factories
// ─────────────────────────────────────────────────────────────────────────────

// New builds an AppError with no cause.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Newf is New with fmt.Sprintf formatting.
func Newf(code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches err as the cause of a new AppError.  A nil err yields nil so
// Wrap can be used inline on return paths.  When code is ErrCodeUnknown and
// err already carries an AppError, the inner code is kept.
func Wrap(err error, code ErrorCode, message string) error {
	if err == nil {
		return nil
	}
	if code == ErrCodeUnknown {
		var ae *AppError
		if errors.As(err, &ae) {
			code = ae.Code
		}
	}
	return &AppError{Code: code, Message: message, Cause: err}
}

// NotFound builds an ErrCodeNotFound error.
func NotFound(message string) *AppError { return New(ErrCodeNotFound, message) }

// InvalidParam builds an ErrCodeInvalidParam error.
func InvalidParam(message string) *AppError { return New(ErrCodeInvalidParam, message) }

// Internal builds an ErrCodeInternal error.
func Internal(message string) *AppError { return New(ErrCodeInternal, message) }

// Unavailable builds an ErrCodeServiceUnavailable error.
func Unavailable(message string) *AppError { return New(ErrCodeServiceUnavailable, message) }

// ─────────────────────────────────────────────────────────────────────────────
// Inspection
// ─────────────────────────────────────────────────────────────────────────────

// IsCode reports whether any AppError in err's tree carries code.  Joined
// errors are searched branch by branch.
func IsCode(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}
	if ae, ok := err.(*AppError); ok && ae.Code == code {
		return true
	}
	switch u := err.(type) {
	case interface{ Unwrap() []error }:
		for _, e := range u.Unwrap() {
			if IsCode(e, code) {
				return true
			}
		}
	case interface{ Unwrap() error }:
		return IsCode(u.Unwrap(), code)
	}
	return false
}

// IsNotFound reports whether err's chain carries a not-found code.
func IsNotFound(err error) bool {
	return IsCode(err, ErrCodeNotFound) ||
		IsCode(err, ErrCodePlatformNotFound)
}

// IsValidation reports whether err's chain carries a caller-input code.
func IsValidation(err error) bool {
	return IsCode(err, ErrCodeInvalidParam) ||
		IsCode(err, ErrCodeInvalidFilter)
}

// GetCode returns the code of the outermost AppError in err's chain,
// ErrCodeOK for nil, and ErrCodeUnknown for foreign errors.
func GetCode(err error) ErrorCode {
	if err == nil {
		return ErrCodeOK
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ErrCodeUnknown
}

// Is and As re-export the standard library helpers so callers need a single
// errors import.
func Is(err, target error) bool { return errors.Is(err, target) }

// As re-exports errors.As.
func As(err error, target interface{}) bool { return errors.As(err, target) }

// Join re-exports errors.Join.
func Join(errs ...error) error { return errors.Join(errs...) }
