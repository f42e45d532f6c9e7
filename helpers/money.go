package helpers

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount parses an exact-precision decimal string from a command
// payload. Amounts cross the API boundary as strings, never floats.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, errors.New("amount is required")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, errors.New("amount is not a valid decimal")
	}
	return d, nil
}

// ParsePositiveAmount additionally requires amount > 0.
func ParsePositiveAmount(s string) (decimal.Decimal, error) {
	d, err := ParseAmount(s)
	if err != nil {
		return decimal.Zero, err
	}
	if !d.IsPositive() {
		return decimal.Zero, errors.New("amount must be positive")
	}
	return d, nil
}
