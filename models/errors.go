package models

import (
	"errors"
	"fmt"
)

var (
	ErrRequired          = errors.New("is required")
	ErrMustBePositive    = errors.New("must be positive")
	ErrMustBeNonNegative = errors.New("must not be negative")
	ErrMustBeFinite      = errors.New("must be a finite number")
	ErrInvalidOptionType = errors.New("must be Call or Put")
	ErrMalformedPair     = errors.New("must be a currency pair of the form BASE/QUOTE")
)

// ValidationError reports a single field of an option record that violates its constraint.
type ValidationError struct {
	Field string
	Value interface{}
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %v: %v", e.Field, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// InvalidCurrencyError is returned when a notional currency is neither leg of the underlying pair.
type InvalidCurrencyError struct {
	Currency string
	Pair     CurrencyPair
}

func (e *InvalidCurrencyError) Error() string {
	return fmt.Sprintf("notional_currency %q matches neither leg of %s", e.Currency, e.Pair)
}
