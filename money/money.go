// Package money provides an exact signed monetary amount tagged with a
// currency code.
//
// Amounts are backed by shopspring/decimal, so arithmetic never drifts the
// way binary floating point does. Operations that combine two Money values
// require identical currencies and return ErrCurrencyMismatch otherwise.
// The one exception is comparison: a zero amount compares against any
// currency, so callers can test "is this less than nothing" without knowing
// the currency up front.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrCurrencyMismatch is returned when an operation combines two Money
// values of different currencies.
var ErrCurrencyMismatch = errors.New("money: currency mismatch")

// zeroMinorUnits lists currencies whose smallest unit is the whole unit.
// Everything else uses two decimal places.
var zeroMinorUnits = map[string]bool{
	"JPY": true, // Japanese Yen
	"KRW": true, // Korean Won
	"VND": true, // Vietnamese Dong
	"CLP": true, // Chilean Peso
	"PYG": true, // Paraguayan Guarani
	"IDR": true, // Indonesian Rupiah
}

// MinorUnits returns the number of decimal places of the currency's smallest
// unit: 0 for currencies like JPY, 2 for most others.
func MinorUnits(currency string) int32 {
	if zeroMinorUnits[strings.ToUpper(currency)] {
		return 0
	}
	return 2
}

// Money is an immutable signed amount in a single currency. The zero value
// is a currency-less zero amount; build real values with New, Zero or
// FromString.
type Money struct {
	amount   decimal.Decimal
	currency string
}

// New returns a Money holding amount exactly as given. The currency code is
// trimmed and upper-cased; no rounding is applied.
func New(amount decimal.Decimal, currency string) Money {
	return Money{amount: amount, currency: normalize(currency)}
}

// Zero returns the zero amount in the given currency.
func Zero(currency string) Money {
	return Money{currency: normalize(currency)}
}

// FromString parses a plain decimal string such as "29.99" or "-3" and
// rounds it (banker's rounding) to the currency's minor units.
func FromString(value, currency string) (Money, error) {
	code := normalize(currency)
	if code == "" {
		return Money{}, fmt.Errorf("money: currency code required")
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return Money{}, fmt.Errorf("money: parse amount %q: %w", value, err)
	}
	return Money{amount: d.RoundBank(MinorUnits(code)), currency: code}, nil
}

// MustParse is FromString for fixed literals in tests and examples; it
// panics on invalid input.
func MustParse(value, currency string) Money {
	m, err := FromString(value, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// Amount returns the exact decimal amount.
func (m Money) Amount() decimal.Decimal { return m.amount }

// Currency returns the normalized currency code.
func (m Money) Currency() string { return m.currency }

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool { return m.amount.IsZero() }

// IsPositive reports whether the amount is greater than zero.
func (m Money) IsPositive() bool { return m.amount.IsPositive() }

// IsNegative reports whether the amount is less than zero.
func (m Money) IsNegative() bool { return m.amount.IsNegative() }

// Neg returns the amount with its sign flipped.
func (m Money) Neg() Money {
	return Money{amount: m.amount.Neg(), currency: m.currency}
}

// Abs returns the amount with a non-negative sign.
func (m Money) Abs() Money {
	return Money{amount: m.amount.Abs(), currency: m.currency}
}

// Add returns m + other. Currencies must match.
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, ErrCurrencyMismatch
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// Sub returns m - other. Currencies must match.
func (m Money) Sub(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, ErrCurrencyMismatch
	}
	return Money{amount: m.amount.Sub(other.amount), currency: m.currency}, nil
}

// Cmp compares the amounts: -1 if m < other, 0 if equal, +1 if m > other.
// Currencies must match unless either amount is zero.
func (m Money) Cmp(other Money) (int, error) {
	if m.currency != other.currency && !m.amount.IsZero() && !other.amount.IsZero() {
		return 0, ErrCurrencyMismatch
	}
	return m.amount.Cmp(other.amount), nil
}

// Equal reports whether both values represent the same amount. Zero amounts
// are equal regardless of currency; non-zero amounts must share a currency.
func (m Money) Equal(other Money) bool {
	if m.amount.IsZero() && other.amount.IsZero() {
		return true
	}
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// Split divides the amount into n shares that sum back to it exactly.
// Shares are as even as possible at the currency's minor unit; when the
// amount does not divide evenly, the leftover minor units are assigned one
// each to the earliest shares. Amounts carrying more precision than the
// currency's minor unit are split at their own precision instead, so the
// sum stays exact.
func (m Money) Split(n int) ([]Money, error) {
	if n < 1 {
		return nil, fmt.Errorf("money: cannot split into %d shares", n)
	}

	scale := MinorUnits(m.currency)
	if digits := -m.amount.Exponent(); digits > scale {
		scale = digits
	}
	units := m.amount.Shift(scale)

	// Integer-divide the minor units; the remainder keeps the amount's sign
	// and is strictly smaller than n, so handing one unit to each of the
	// first |remainder| shares restores the exact total.
	base, rem := units.QuoRem(decimal.NewFromInt(int64(n)), 0)
	extra := rem.Abs().IntPart()
	step := decimal.NewFromInt(int64(rem.Sign()))

	shares := make([]Money, n)
	for i := range shares {
		u := base
		if int64(i) < extra {
			u = u.Add(step)
		}
		shares[i] = Money{amount: u.Shift(-scale), currency: m.currency}
	}
	return shares, nil
}

// String renders the amount at the currency's minor units followed by the
// code, e.g. "20.00 USD". Amounts with finer precision keep all their
// digits.
func (m Money) String() string {
	places := int32(0)
	if m.currency != "" {
		places = MinorUnits(m.currency)
	}
	if digits := -m.amount.Exponent(); digits > places {
		places = digits
	}
	if m.currency == "" {
		return m.amount.StringFixed(places)
	}
	return m.amount.StringFixed(places) + " " + m.currency
}

func normalize(currency string) string {
	return strings.ToUpper(strings.TrimSpace(currency))
}
