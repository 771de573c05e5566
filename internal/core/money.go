// Package core provides the expense value type, amount parsing and the
// sentinel errors shared by the ledger and its callers.
package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseError reports user-supplied text that is not a number.
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse amount %q: %v", e.Input, e.Err)
}

func (e *ParseError) Unwrap() error { return ErrInvalidAmount }

// ParseAmount converts user text into a decimal amount.
//
// Surrounding whitespace is ignored and a single decimal comma is accepted
// in place of a dot. Signs and exponents are accepted; the ledger places no
// constraint on sign.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34
//	ParseAmount("12,34")  -> 12.34
//	ParseAmount("-5")     -> -5
//	ParseAmount("abc")    -> *ParseError
func ParseAmount(s string) (decimal.Decimal, error) {
	raw := s
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, &ParseError{Input: raw, Err: errors.New("empty input")}
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, &ParseError{Input: raw, Err: err}
	}
	return d, nil
}

// FormatAmount renders an amount with the currency symbol and two decimals.
func FormatAmount(symbol string, amount decimal.Decimal) string {
	return symbol + amount.StringFixed(2)
}
