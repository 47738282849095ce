// Package apperrors defines the discriminated error type shared by the stores,
// the services and the HTTP boundary.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind groups error codes by how the boundary reports them.
type Kind string

const (
	KindValidation        Kind = "validation"
	KindDuplicate         Kind = "duplicate"
	KindAuth              Kind = "auth"
	KindForbidden         Kind = "forbidden"
	KindNotFound          Kind = "not_found"
	KindInsufficientFunds Kind = "insufficient_funds"
	KindConflict          Kind = "conflict"
	KindRateLimited       Kind = "rate_limited"
	KindUnavailable       Kind = "unavailable"
	KindInternal          Kind = "internal"
)

// Error is a typed application error. Code is stable and machine-checkable;
// Message is safe to show to callers.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Field   string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Code + ": " + e.Message
	if e.Field != "" {
		msg += " (" + e.Field + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on Code so sentinels work with errors.Is after wrapping or
// after Wrap attached a cause.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// Status maps the error kind to an HTTP status code.
func (e *Error) Status() int {
	return StatusOf(e.Kind)
}

// Wrap returns a copy of e carrying cause.
func (e *Error) Wrap(cause error) *Error {
	c := *e
	c.Err = cause
	return &c
}

// WithMessage returns a copy of e with a more specific message.
func (e *Error) WithMessage(format string, args ...any) *Error {
	c := *e
	c.Message = fmt.Sprintf(format, args...)
	return &c
}

func StatusOf(kind Kind) int {
	switch kind {
	case KindValidation, KindDuplicate, KindInsufficientFunds:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Validation builds a field-level validation error.
func Validation(field, message string) *Error {
	return &Error{Kind: KindValidation, Code: "VALIDATION_FAILED", Message: message, Field: field}
}

// Unavailable wraps an infrastructure failure. The cause is logged, never sent.
func Unavailable(cause error) *Error {
	return ErrStoreUnavailable.Wrap(cause)
}

// From extracts an *Error from err, or reports an internal error.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return ErrInternal.Wrap(err)
}

var (
	ErrValidation           = New(KindValidation, "VALIDATION_FAILED", "Validation failed")
	ErrInvalidAmount        = New(KindValidation, "INVALID_AMOUNT", "Amount must be greater than zero")
	ErrMissingPurchaseItems = New(KindValidation, "MISSING_PURCHASE_ITEMS", "A purchase must list at least one item")
	ErrInvalidKind          = New(KindValidation, "INVALID_TRANSACTION_KIND", "Transaction kind must be deposit, purchase or refund")
	ErrDuplicateIdentifier  = New(KindDuplicate, "DUPLICATE_IDENTIFIER", "An account with that email or student ID already exists")
	ErrDuplicateSchool      = New(KindDuplicate, "DUPLICATE_SCHOOL", "A school with that name already exists")
	ErrInvalidCredentials   = New(KindAuth, "INVALID_CREDENTIALS", "Invalid credentials")
	ErrInvalidToken         = New(KindAuth, "INVALID_TOKEN", "Invalid or expired token")
	ErrForbidden            = New(KindForbidden, "FORBIDDEN", "You do not have permission to perform this action")
	ErrAccountNotFound      = New(KindNotFound, "ACCOUNT_NOT_FOUND", "Account not found")
	ErrItemNotFound         = New(KindNotFound, "ITEM_NOT_FOUND", "Item not found")
	ErrTransactionNotFound  = New(KindNotFound, "TRANSACTION_NOT_FOUND", "Transaction not found")
	ErrSchoolNotFound       = New(KindNotFound, "SCHOOL_NOT_FOUND", "School not found")
	ErrInsufficientFunds    = New(KindInsufficientFunds, "INSUFFICIENT_FUNDS", "Insufficient funds")
	ErrConflict             = New(KindConflict, "CONCURRENT_UPDATE", "The account was modified concurrently, retry the request")
	ErrRateLimited          = New(KindRateLimited, "RATE_LIMITED", "Too many requests, try again later")
	ErrStoreUnavailable     = New(KindUnavailable, "STORE_UNAVAILABLE", "Service temporarily unavailable")
	ErrInternal             = New(KindInternal, "INTERNAL_ERROR", "An Internal Error Occurred")
)
