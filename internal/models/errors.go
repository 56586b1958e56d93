package models

import "errors"

// Error kinds shared by every layer. Wrap them with fmt.Errorf("...: %w", Err...) and test with errors.Is.
var (
	ErrValidation          = errors.New("validation failed")
	ErrNotFound            = errors.New("not found")
	ErrInsufficientPayment = errors.New("insufficient payment")
	ErrOracleUnavailable   = errors.New("price oracle unavailable")
	ErrTransferFailure     = errors.New("transfer failed")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrReentrantCall       = errors.New("reentrant call during settlement")
)
