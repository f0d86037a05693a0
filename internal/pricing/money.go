package pricing

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/shopspring/decimal"
)

// Money is a non-negative monetary amount kept at two decimal places.
type Money struct {
	decimal.Decimal
}

// Zero is the zero amount.
var Zero = Money{Decimal: decimal.Zero.Round(2)}

// NewMoney rounds amount to two decimal places.
func NewMoney(amount decimal.Decimal) Money {
	return Money{Decimal: amount.Round(2)}
}

// MoneyFromInt builds an amount from whole units.
func MoneyFromInt(units int64) Money {
	return NewMoney(decimal.NewFromInt(units))
}

// MustParse parses a decimal string and panics on failure. Intended for constants and tests.
func MustParse(value string) Money {
	d, err := decimal.NewFromString(value)
	if err != nil {
		panic(err)
	}
	return NewMoney(d)
}

// Add returns m + other.
func (m Money) Add(other Money) Money {
	return NewMoney(m.Decimal.Add(other.Decimal))
}

// Times returns m multiplied by qty.
func (m Money) Times(qty int) Money {
	return NewMoney(m.Decimal.Mul(decimal.NewFromInt(int64(qty))))
}

// Equal reports whether both amounts are numerically identical.
func (m Money) Equal(other Money) bool {
	return m.Decimal.Equal(other.Decimal)
}

// String renders the amount with exactly two decimals.
func (m Money) String() string {
	return m.Decimal.Round(2).StringFixed(2)
}

// MarshalJSON writes the amount as a JSON number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number, a numeric string or null.
func (m *Money) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*m = Zero
		return nil
	}
	raw := string(b)
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		raw = s
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return errors.New("pricing: invalid money value " + raw)
	}
	*m = NewMoney(d)
	return nil
}
