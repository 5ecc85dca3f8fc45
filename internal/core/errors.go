// AngelaMos | 2026
// errors.go

package core

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound     = errors.New("resource not found")
	ErrDuplicateKey = errors.New("duplicate key")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
	ErrRateLimited  = errors.New("rate limited")
	ErrExternal     = errors.New("external service failure")

	ErrPasswordTooLong = errors.New("password exceeds 72 bytes")
)

// Kind is the closed set of failure categories surfaced to API clients.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuth
	KindForbidden
	KindConflict
	KindNotFound
	KindRateLimited
	KindExternal
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindRateLimited:
		return "rate_limited"
	case KindExternal:
		return "external"
	default:
		return "internal"
	}
}

// Status maps a kind onto its HTTP status. Conflicts reuse 400 so duplicate
// registrations look like any other rejected signup.
func (k Kind) Status() int {
	switch k {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

type AppError struct {
	Kind    Kind
	Err     error
	Message string
	Status  int
	Code    string
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(err error, message string, status int, code string) *AppError {
	return &AppError{
		Kind:    kindForStatus(status),
		Err:     err,
		Message: message,
		Status:  status,
		Code:    code,
	}
}

func newKindError(kind Kind, err error, message, code string) *AppError {
	return &AppError{
		Kind:    kind,
		Err:     err,
		Message: message,
		Status:  kind.Status(),
		Code:    code,
	}
}

func kindForStatus(status int) Kind {
	switch status {
	case http.StatusBadRequest:
		return KindValidation
	case http.StatusUnauthorized:
		return KindAuth
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusTooManyRequests:
		return KindRateLimited
	case http.StatusBadGateway:
		return KindExternal
	default:
		return KindInternal
	}
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func ValidationError(message string) *AppError {
	return newKindError(KindValidation, ErrInvalidInput, message, "VALIDATION_ERROR")
}

func UnauthorizedError(message string) *AppError {
	if message == "" {
		message = "authentication required"
	}
	return newKindError(KindAuth, ErrUnauthorized, message, "UNAUTHORIZED")
}

func ForbiddenError(message string) *AppError {
	if message == "" {
		message = "forbidden"
	}
	return newKindError(KindForbidden, ErrForbidden, message, "FORBIDDEN")
}

func DuplicateError(field string) *AppError {
	return newKindError(
		KindConflict,
		ErrDuplicateKey,
		fmt.Sprintf("%s already exists", field),
		"DUPLICATE",
	)
}

func NotFoundError(resource string) *AppError {
	return newKindError(
		KindNotFound,
		ErrNotFound,
		fmt.Sprintf("%s not found", resource),
		"NOT_FOUND",
	)
}

func ExternalServiceError(service string, err error) *AppError {
	return newKindError(
		KindExternal,
		fmt.Errorf("%w: %w", ErrExternal, err),
		fmt.Sprintf("%s is unavailable", service),
		"EXTERNAL_SERVICE_ERROR",
	)
}

func RateLimitedError(message string) *AppError {
	return newKindError(KindRateLimited, ErrRateLimited, message, "RATE_LIMITED")
}

func TokenExpiredError() *AppError {
	return newKindError(KindForbidden, ErrTokenExpired, "token has expired", "TOKEN_EXPIRED")
}

func TokenInvalidError() *AppError {
	return newKindError(KindForbidden, ErrTokenInvalid, "invalid token", "TOKEN_INVALID")
}

func InternalError(err error) *AppError {
	return newKindError(KindInternal, err, "internal server error", "INTERNAL_ERROR")
}
