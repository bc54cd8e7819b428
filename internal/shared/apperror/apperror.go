// Package apperror carries the error kinds shared by every feature package
// and their mapping onto HTTP status codes.
package apperror

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type Kind string

const (
	KindInvalidInput      Kind = "INVALID_INPUT"
	KindNotFound          Kind = "NOT_FOUND"
	KindSeatsUnavailable  Kind = "SEATS_UNAVAILABLE"
	KindIntegrityConflict Kind = "INTEGRITY_CONFLICT"
	KindForbidden         Kind = "FORBIDDEN"
	KindUnexpected        Kind = "UNEXPECTED"
)

// Postgres SQLSTATE codes we react to
const (
	pgLockNotAvailable     = "55P03"
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgQueryCanceled        = "57014"
)

// Error is a classified failure. Fields holds per-field validation messages.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func InvalidInput(message string) *Error {
	return &Error{Kind: KindInvalidInput, Message: message}
}

// InvalidField reports a single offending field
func InvalidField(field, message string) *Error {
	return &Error{Kind: KindInvalidInput, Message: message, Fields: map[string]string{field: message}}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func SeatsUnavailable(message string) *Error {
	return &Error{Kind: KindSeatsUnavailable, Message: message}
}

func IntegrityConflict(message string, err error) *Error {
	return &Error{Kind: KindIntegrityConflict, Message: message, Err: err}
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

func Unexpected(message string, err error) *Error {
	return &Error{Kind: KindUnexpected, Message: message, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or
// KindUnexpected when err is unclassified.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnexpected
}

// HTTPStatus maps a kind onto the status code returned to clients
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindSeatsUnavailable, KindIntegrityConflict:
		return http.StatusConflict
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// FromDB classifies a database error. Lock waits that time out or fail
// under NOWAIT mean another buyer holds the seats; unique violations and
// serialization failures are integrity conflicts. Anything already
// classified passes through unchanged.
func FromDB(err error, message string) error {
	if err == nil {
		return nil
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return err
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &Error{Kind: KindNotFound, Message: message, Err: err}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindSeatsUnavailable, Message: "seats are being reserved by another buyer, try again", Err: err}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgLockNotAvailable, pgQueryCanceled:
			return &Error{Kind: KindSeatsUnavailable, Message: "seats are being reserved by another buyer, try again", Err: err}
		case pgUniqueViolation, pgSerializationFailure, pgDeadlockDetected:
			return &Error{Kind: KindIntegrityConflict, Message: message, Err: err}
		}
	}

	return &Error{Kind: KindUnexpected, Message: message, Err: err}
}

// IsUniqueViolation reports whether err is a Postgres unique_violation
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
