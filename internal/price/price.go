// Package price converts the catalog's string-encoded decimal prices to integer minor
// units and back.
package price

import (
	"math"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// ErrInvalid is returned by Normalize for input that is not a positive decimal.
var ErrInvalid = errors.New("invalid price")

// MaxCents is the largest unit price accepted, in minor units (10 billion).
const MaxCents int64 = 1_000_000_000_000

var maxPrice = decimal.New(MaxCents, -2)

// ParseCents converts a decimal string such as "29.99" to minor units. Blank, malformed,
// negative and values above MaxCents yield 0. Sub-cent fractions round half away from zero.
func ParseCents(s string) int64 {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || d.IsNegative() {
		return 0
	}
	cents := d.Shift(2).Round(0)
	if !cents.BigInt().IsInt64() || cents.IntPart() > MaxCents {
		return 0
	}
	return cents.IntPart()
}

// MulCents returns cents*qty, saturating at math.MaxInt64. Negative inputs yield 0.
func MulCents(cents int64, qty int) int64 {
	if cents <= 0 || qty <= 0 {
		return 0
	}
	if cents > math.MaxInt64/int64(qty) {
		return math.MaxInt64
	}
	return cents * int64(qty)
}

// AddCents returns a+b for non-negative amounts, saturating at math.MaxInt64.
func AddCents(a, b int64) int64 {
	if a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}

// FormatCents renders minor units with two decimals, e.g. 5998 -> "59.98".
func FormatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

// Normalize accepts user input with either '.' or ',' as the decimal separator and
// returns the canonical decimal string. The value must be greater than zero and at most
// MaxCents minor units.
func Normalize(input string) (string, error) {
	s := strings.ReplaceAll(strings.TrimSpace(input), ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return "", errors.Wrapf(ErrInvalid, "parse %q", input)
	}
	if !d.IsPositive() {
		return "", errors.Wrapf(ErrInvalid, "%q must be greater than zero", input)
	}
	if d.GreaterThan(maxPrice) {
		return "", errors.Wrapf(ErrInvalid, "%q exceeds %s", input, maxPrice.StringFixed(2))
	}
	return d.String(), nil
}
