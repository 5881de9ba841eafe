package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument will throw if the given request-body or params is not valid
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnauthorized will throw if the caller does not own the token
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound will throw if the requested item is not exists
	ErrNotFound = errors.New("not found")
	// ErrNotForSale will throw if the token is not listed
	ErrNotForSale = errors.New("not for sale")
	// ErrSelfPurchase will throw if the buyer already owns the token
	ErrSelfPurchase = errors.New("self purchase")
	// ErrInsufficientFunds will throw if the tendered amount or balance does not cover the price
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrInvariantViolation is an internal consistency failure, the surrounding transaction is aborted
	ErrInvariantViolation = errors.New("invariant violation")
	// ErrLockTimeout will throw if a token lock can't be acquired in time
	ErrLockTimeout       = errors.New("lock acquisition timed out")
	ErrUnsupportedSchema = errors.New("unsupported schema")
	ErrInvalidJsonFormat = errors.New("invalid JSON format")

	// request error
	ErrInvalidAddress   = fmt.Errorf("invalid address: %w", ErrInvalidArgument)
	ErrInvalidAmount    = fmt.Errorf("invalid amount: %w", ErrInvalidArgument)
	ErrInvalidSignature = fmt.Errorf("invalid signature: %w", ErrUnauthorized)
)
