// Package core provides money parsing and handling utilities.
//
// Amounts are carried as integer cents. Parsing and formatting go through
// shopspring/decimal so no value ever passes through a float64.
package core

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an amount in minor units (cents).
type Money struct {
	Cents int64
}

var maxCents = decimal.NewFromInt(math.MaxInt64)

// maxExponent bounds the decimal exponent accepted from input; rescaling
// allocates a power of ten as large as the exponent.
const maxExponent = 20

func exponentInRange(d decimal.Decimal) bool {
	exp := d.Exponent()
	return exp >= -maxExponent && exp <= maxExponent
}

// ParseAmount converts a decimal string to Money, rounding half away from zero
// at two decimal places.
//
// The value must be a finite number greater than zero and must not round to
// zero cents. Inputs whose decimal exponent exceeds ±20 are rejected.
//
// Examples:
//
//	ParseAmount("12.5")  -> 1250
//	ParseAmount("1.005") -> 101
//	ParseAmount("1e2")   -> 10000
//	ParseAmount("0")     -> ErrInvalidAmount
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !exponentInRange(d) {
		return Money{}, ErrInvalidAmount
	}
	if d.Sign() <= 0 {
		return Money{}, ErrInvalidAmount
	}
	cents := d.Shift(2).Round(0)
	if cents.Sign() <= 0 || cents.GreaterThan(maxCents) {
		return Money{}, ErrInvalidAmount
	}
	return Money{Cents: cents.IntPart()}, nil
}

// Decimal returns the amount in major units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// String formats the amount with exactly two decimals.
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// Add returns the sum of two amounts.
func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

// MarshalJSON writes the amount as a bare JSON number (12.5, 3.99).
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal().String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string.
func (m *Money) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(bytes.TrimSpace(b), `"`)
	if len(b) == 0 || string(b) == "null" {
		m.Cents = 0
		return nil
	}
	d, err := decimal.NewFromString(string(b))
	if err != nil {
		return fmt.Errorf("decode amount %q: %w", b, err)
	}
	if !exponentInRange(d) {
		return fmt.Errorf("decode amount: exponent %d out of range", d.Exponent())
	}
	m.Cents = d.Shift(2).Round(0).IntPart()
	return nil
}
