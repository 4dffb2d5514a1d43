package types

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

func (e ErrorCode) String() string {
	return string(e)
}

const (
	// InternalServiceError is the error code for internal service errors
	InternalServiceError ErrorCode = "INTERNAL_SERVICE_ERROR"
	// ValidationError is the error code for validation errors on request inputs
	ValidationError ErrorCode = "VALIDATION_ERROR"
	// NotFound is the error code for missing vaults or stakes
	NotFound ErrorCode = "NOT_FOUND"
	// ZeroDeposit is the error code for a deposit of zero units
	ZeroDeposit ErrorCode = "ZERO_DEPOSIT"
	// InsufficientFunds is the error code for a withdrawal exceeding the vault balance
	InsufficientFunds ErrorCode = "INSUFFICIENT_FUNDS"
	// VaultNotEmpty is the error code for destroying a vault that still holds value
	VaultNotEmpty ErrorCode = "VAULT_NOT_EMPTY"
	// NotActive is the error code for settlement or closure of a non-active stake
	NotActive ErrorCode = "NOT_ACTIVE"
	// InvalidRate is the error code for a rate update above the governance ceiling
	InvalidRate ErrorCode = "INVALID_RATE"
	// Overflow is the error code for accrual results outside the representable range
	Overflow ErrorCode = "OVERFLOW"
	// Unauthorized is the error code for a missing or invalid capability token
	Unauthorized ErrorCode = "UNAUTHORIZED"
)

// Error wraps an underlying error with the HTTP status and error code
// surfaced to callers. Every operation returns a specific code so that
// client tooling can tell insufficient funds from missing authorization
// from a math overflow.
type Error struct {
	Err        error
	StatusCode int
	ErrorCode  ErrorCode
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.ErrorCode.String()
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(statusCode int, errorCode ErrorCode, err error) *Error {
	return &Error{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Err:        err,
	}
}

func NewErrorWithMsg(statusCode int, errorCode ErrorCode, msg string) *Error {
	return NewError(statusCode, errorCode, errors.New(msg))
}

func NewInternalServiceError(err error) *Error {
	return &Error{
		StatusCode: http.StatusInternalServerError,
		ErrorCode:  InternalServiceError,
		Err:        err,
	}
}

func NewValidationFailedError(err error) *Error {
	return &Error{
		StatusCode: http.StatusBadRequest,
		ErrorCode:  ValidationError,
		Err:        err,
	}
}

func NewNotFoundError(key string) *Error {
	return &Error{
		StatusCode: http.StatusNotFound,
		ErrorCode:  NotFound,
		Err:        fmt.Errorf("%s not found", key),
	}
}
