package db

import "errors"

// DuplicateKeyError is an error type for duplicate key errors
type DuplicateKeyError struct {
	Key     string
	Message string
}

func (e *DuplicateKeyError) Error() string {
	return e.Message
}

func (e *DuplicateKeyError) Is(target error) bool {
	_, ok := target.(*DuplicateKeyError)
	return ok
}

func IsDuplicateKeyError(err error) bool {
	return errors.Is(err, &DuplicateKeyError{})
}

// Not found Error
type NotFoundError struct {
	Key     string
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, &NotFoundError{})
}

// InsufficientBalanceError is returned when a withdrawal would take a vault
// balance below zero or below the principal attributed to active stakes.
type InsufficientBalanceError struct {
	Key     string
	Message string
}

func (e *InsufficientBalanceError) Error() string {
	return e.Message
}

func (e *InsufficientBalanceError) Is(target error) bool {
	_, ok := target.(*InsufficientBalanceError)
	return ok
}

func IsInsufficientBalanceError(err error) bool {
	return errors.Is(err, &InsufficientBalanceError{})
}

// NotEmptyError is returned when destroying a vault that still holds value.
type NotEmptyError struct {
	Key     string
	Message string
}

func (e *NotEmptyError) Error() string {
	return e.Message
}

func (e *NotEmptyError) Is(target error) bool {
	_, ok := target.(*NotEmptyError)
	return ok
}

func IsNotEmptyError(err error) bool {
	return errors.Is(err, &NotEmptyError{})
}

// StaleSettlementError is returned when a settlement update matched no
// document because the stake's checkpoint moved underneath it. The caller
// treats it as "already settled" and re-reads the totals.
type StaleSettlementError struct {
	Key     string
	Message string
}

func (e *StaleSettlementError) Error() string {
	return e.Message
}

func (e *StaleSettlementError) Is(target error) bool {
	_, ok := target.(*StaleSettlementError)
	return ok
}

func IsStaleSettlementError(err error) bool {
	return errors.Is(err, &StaleSettlementError{})
}
