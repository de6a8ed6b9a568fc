package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrRateLimited  = errors.New("rate limited")
	ErrUpstream     = errors.New("upstream failure")
	ErrInternal     = errors.New("internal error")
)

// Error is a failure with an HTTP status, a machine code and a message that is safe to show users.
type Error struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	return fmt.Sprintf("api error (%d)", e.Status)
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return &Error{Status: status, Code: code, Message: msg, Err: err}
}

func Validation(format string, args ...any) *Error {
	return tagged(http.StatusBadRequest, "validation_error", ErrValidation, format, args...)
}

func NotFound(format string, args ...any) *Error {
	return tagged(http.StatusNotFound, "not_found", ErrNotFound, format, args...)
}

func Conflict(format string, args ...any) *Error {
	return tagged(http.StatusConflict, "conflict", ErrConflict, format, args...)
}

func Unauthorized(format string, args ...any) *Error {
	return tagged(http.StatusUnauthorized, "unauthorized", ErrUnauthorized, format, args...)
}

func Forbidden(format string, args ...any) *Error {
	return tagged(http.StatusForbidden, "forbidden", ErrForbidden, format, args...)
}

// Upstream marks a failed call to an external dependency.
func Upstream(op string, err error) *Error {
	return &Error{
		Status:  http.StatusBadGateway,
		Code:    "upstream_error",
		Message: op + " failed",
		Err:     errors.Join(ErrUpstream, err),
	}
}

// Internal hides the cause behind a generic message.
func Internal(op string, err error) *Error {
	return &Error{
		Status:  http.StatusInternalServerError,
		Code:    "internal_error",
		Message: "internal server error",
		Err:     fmt.Errorf("%s: %w", op, errors.Join(ErrInternal, err)),
	}
}

func tagged(status int, code string, sentinel error, format string, args ...any) *Error {
	msg := strings.TrimSpace(fmt.Sprintf(format, args...))
	return &Error{Status: status, Code: code, Message: msg, Err: errors.Join(sentinel, errors.New(msg))}
}

// FromDB maps a persistence failure to the taxonomy. notFoundMsg is used for missing rows.
func FromDB(op string, err error, notFoundMsg string) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if notFoundMsg == "" {
			notFoundMsg = "resource not found"
		}
		return NotFound("%s", notFoundMsg)
	case IsUniqueViolation(err):
		return Conflict("%s conflicts with an existing record", op)
	}
	return Internal(op, err)
}

// IsUniqueViolation reports whether err came from a unique constraint on either backend.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return strings.TrimSpace(pgErr.Code) == "23505"
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint failed")
}

// Status returns the HTTP status for err, defaulting to 500.
func Status(err error) int {
	var ae *Error
	if errors.As(err, &ae) && ae.Status != 0 {
		return ae.Status
	}
	return http.StatusInternalServerError
}

// Code returns the machine code for err.
func Code(err error) string {
	var ae *Error
	if errors.As(err, &ae) && ae.Code != "" {
		return ae.Code
	}
	return "internal_error"
}

// PublicMessage returns the text that may be shown to the caller.
func PublicMessage(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Error()
	}
	return "internal server error"
}
