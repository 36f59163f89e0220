package internal

import (
	"errors"
	"fmt"
)

// Sentinel errors for the conditions every operation boundary must
// recognize and convert to a user-safe response. Anything else becomes
// a generic internal error so details never leak past the logs.
var (
	ErrUnauthenticated = errors.New("login required")
	ErrNotFound        = errors.New("not found")
	ErrProviderAuth    = errors.New("provider authentication rejected")
	ErrNotApproved     = errors.New("email not approved")
)

type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

func NewAppError(code int, msg string) *AppError {
	return &AppError{Code: code, Message: msg}
}

// ValidationError marks malformed mutation input, rejected before any
// side effect.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

func NewValidationError(reason string) *ValidationError {
	return &ValidationError{Reason: reason}
}
