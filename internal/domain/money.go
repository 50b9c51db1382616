package domain

import (
	"fmt"
	"math"
)

// Money is a fixed-point currency amount stored as integer cents.
// The zero value is $0.00. Money values are never negative.
type Money struct {
	cents int64
}

// NewMoney converts a decimal amount (e.g. 12.34) to Money, rounding
// to the nearest cent. Negative amounts are rejected.
func NewMoney(amount float64) (Money, error) {
	cents := int64(math.Round(amount * 100))
	if cents < 0 {
		return Money{}, &ValidationError{Field: "amount", Reason: "money amount cannot be negative"}
	}
	return Money{cents: cents}, nil
}

// NewMoneyFromCents builds Money from an integer number of cents.
func NewMoneyFromCents(cents int64) (Money, error) {
	if cents < 0 {
		return Money{}, &ValidationError{Field: "cents", Reason: "money amount cannot be negative"}
	}
	return Money{cents: cents}, nil
}

// Zero returns a zero-valued Money.
func Zero() Money {
	return Money{}
}

func (m Money) Cents() int64 {
	return m.cents
}

func (m Money) IsZero() bool {
	return m.cents == 0
}

func (m Money) Add(other Money) Money {
	return Money{cents: m.cents + other.cents}
}

// Subtract returns m - other, failing if the result would be negative.
func (m Money) Subtract(other Money) (Money, error) {
	if other.cents > m.cents {
		return Money{}, &ValidationError{Field: "amount", Reason: "subtraction result cannot be negative"}
	}
	return Money{cents: m.cents - other.cents}, nil
}

// Multiply scales the amount by factor, rounding to the nearest cent.
// Negative factors are rejected.
func (m Money) Multiply(factor float64) (Money, error) {
	if factor < 0 {
		return Money{}, &ValidationError{Field: "factor", Reason: "multiplication factor cannot be negative"}
	}
	return Money{cents: int64(math.Round(float64(m.cents) * factor))}, nil
}

// MultiplyInt scales the amount by a non-negative whole number.
func (m Money) MultiplyInt(n int64) (Money, error) {
	if n < 0 {
		return Money{}, &ValidationError{Field: "factor", Reason: "multiplication factor cannot be negative"}
	}
	return Money{cents: m.cents * n}, nil
}

func (m Money) Equals(other Money) bool {
	return m.cents == other.cents
}

func (m Money) GreaterThan(other Money) bool {
	return m.cents > other.cents
}

func (m Money) String() string {
	return fmt.Sprintf("$%d.%02d", m.cents/100, m.cents%100)
}
