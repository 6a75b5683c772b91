package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// Kind classifies an error so handlers can map it to a response status
// without string matching.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindConflict
	KindInvalid
	KindUnauthorized
)

// Error is the result value used across services and repositories in place
// of exception-style control flow. Fields carries the offending field names
// for validation failures.
type Error struct {
	Kind   Kind
	Msg    string
	Fields []string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

func Invalid(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalid, Msg: fmt.Sprintf(format, args...)}
}

func Unauthorized(format string, args ...interface{}) *Error {
	return &Error{Kind: KindUnauthorized, Msg: fmt.Sprintf(format, args...)}
}

// Internal wraps an unexpected failure. The wrapped cause stays server-side;
// clients only ever see a generic message.
func Internal(err error, msg string) *Error {
	return &Error{Kind: KindInternal, Msg: msg, Err: err}
}

// Validation reports a failed model validation with the set of failing
// fields. The merge that produced the invalid result must not be committed.
func Validation(fields []string) *Error {
	return &Error{
		Kind:   KindInvalid,
		Msg:    "validation failed: " + strings.Join(fields, ", "),
		Fields: fields,
	}
}

// KindOf returns the classification of err, KindInternal when err carries
// no *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsValidation reports whether err is a validation failure carrying a field
// set (as opposed to a malformed request).
func IsValidation(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindInvalid && len(e.Fields) > 0
}

// Status maps an error kind to its HTTP response status.
func Status(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindInvalid:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// HTTP converts err into an echo HTTP error. Internal failures surface a
// generic message; the cause is attached for the request logger only.
func HTTP(err error) *echo.HTTPError {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return echo.NewHTTPError(Status(err), e.Msg)
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error").SetInternal(err)
}
