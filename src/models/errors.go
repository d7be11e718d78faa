package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type InvalidQuantityError struct {
	Quantity int64
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be positive, got %d", e.Quantity)
}

type InvalidPriceError struct {
	Price decimal.Decimal
}

func (e *InvalidPriceError) Error() string {
	return fmt.Sprintf("price must be positive, got %s", e.Price)
}

type InvalidSymbolError struct {
	Symbol string
}

func (e *InvalidSymbolError) Error() string {
	return fmt.Sprintf("invalid ticker %q", e.Symbol)
}

type UnsupportedCurrencyError struct {
	Code string
}

func (e *UnsupportedCurrencyError) Error() string {
	return fmt.Sprintf("unsupported currency %q", e.Code)
}

// CurrencyMismatchError is returned when a buy names a currency other than
// the one the existing holding is denominated in.
type CurrencyMismatchError struct {
	Symbol    string
	Held      Currency
	Requested Currency
}

func (e *CurrencyMismatchError) Error() string {
	return fmt.Sprintf("%s is held in %s, cannot add %s lots", e.Symbol, e.Held, e.Requested)
}

type NoPositionError struct {
	UserID string
	Symbol string
}

func (e *NoPositionError) Error() string {
	return fmt.Sprintf("no position in %s for user %s", e.Symbol, e.UserID)
}

// NoPositionsError means the user holds nothing at all.
type NoPositionsError struct {
	UserID string
}

func (e *NoPositionsError) Error() string {
	return fmt.Sprintf("no positions found for user %s", e.UserID)
}

type InsufficientQuantityError struct {
	Symbol    string
	Held      int64
	Requested int64
}

func (e *InsufficientQuantityError) Error() string {
	return fmt.Sprintf("cannot sell %d %s, only %d held", e.Requested, e.Symbol, e.Held)
}

type PriceUnavailableError struct {
	Symbol string
	Err    error
}

func (e *PriceUnavailableError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("price unavailable for %s", e.Symbol)
	}
	return fmt.Sprintf("price unavailable for %s: %v", e.Symbol, e.Err)
}

func (e *PriceUnavailableError) Unwrap() error {
	return e.Err
}

type InvalidUserError struct {
	UserID string
}

func (e *InvalidUserError) Error() string {
	return fmt.Sprintf("invalid user id %q", e.UserID)
}
