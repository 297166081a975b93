package core

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is the raw decimal text of an expense amount. Record sources
// (database rows, AI extraction output, imports) deliver amounts as text;
// coercion happens at the point of use so one bad value never poisons a
// whole record set.
type Amount string

// AmountFromFloat formats a numeric amount for storage.
func AmountFromFloat(v float64) Amount {
	return Amount(decimal.NewFromFloat(v).String())
}

// Value coerces the amount to a float64. Negative and non-numeric
// amounts are rejected with ErrInvalidAmount.
func (a Amount) Value() (float64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(string(a)))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, string(a))
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("%w: negative: %q", ErrInvalidAmount, string(a))
	}
	return d.InexactFloat64(), nil
}

// MarshalJSON emits a bare JSON number for well-formed amounts so the
// dashboard payload keeps numeric amounts. Malformed amounts round-trip
// as strings instead of failing the whole response.
func (a Amount) MarshalJSON() ([]byte, error) {
	if d, err := decimal.NewFromString(strings.TrimSpace(string(a))); err == nil {
		return []byte(strconv.FormatFloat(d.InexactFloat64(), 'f', -1, 64)), nil
	}
	return json.Marshal(string(a))
}

// UnmarshalJSON accepts both JSON numbers and strings.
func (a *Amount) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*a = Amount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("amount: %w", err)
	}
	*a = Amount(n.String())
	return nil
}
