package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// The fixed category taxonomy enforced by the validation layer. The
// aggregation engine deliberately does not consult this list: series and
// totals are partitioned by whatever category strings the records carry,
// so off-list categories persisted by older versions are never dropped.
const (
	CategoryFood          Category = "Food & Dining"
	CategoryTransport     Category = "Transportation"
	CategoryShopping      Category = "Shopping"
	CategoryBills         Category = "Bills & Utilities"
	CategoryEntertainment Category = "Entertainment"
)

type Category string

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidTimestamp = errors.New("invalid timestamp")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyName        = errors.New("empty name")
	ErrUnknownCategory  = errors.New("unknown category")
)

// Categories returns the fixed taxonomy in display order.
func Categories() []Category {
	return []Category{
		CategoryFood,
		CategoryTransport,
		CategoryShopping,
		CategoryBills,
		CategoryEntertainment,
	}
}

// Valid reports whether c is one of the fixed taxonomy labels.
func (c Category) Valid() bool {
	switch c {
	case CategoryFood, CategoryTransport, CategoryShopping, CategoryBills, CategoryEntertainment:
		return true
	}
	return false
}

// ExpenseRecord is a persisted expense as delivered by a record source.
// The aggregation engine treats it as read-only input: Amount and
// CreatedAt are kept in their raw textual form and coerced per use, so a
// single malformed record degrades to a skip instead of failing a whole
// dashboard computation.
type ExpenseRecord struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Name        string `json:"name"`
	Amount      Amount `json:"amount"`
	Category    string `json:"category"`
	CreatedAt   string `json:"created_at"`
}

// Validate checks the fields the write path requires. Read paths never
// call this; they coerce field by field and skip on failure.
func (e ExpenseRecord) Validate() error {
	if strings.TrimSpace(e.Description) == "" {
		return ErrEmptyDescription
	}
	if strings.TrimSpace(e.Name) == "" {
		return ErrEmptyName
	}
	v, err := e.Amount.Value()
	if err != nil {
		return err
	}
	if v <= 0 {
		return ErrInvalidAmount
	}
	if !Category(e.Category).Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, e.Category)
	}
	if _, err := ParseCreatedAt(e.CreatedAt); err != nil {
		return err
	}
	return nil
}

// createdAtLayouts are tried in order after zone normalization.
var createdAtLayouts = []string{
	"2006-01-02T15:04:05-07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseCreatedAt parses an ISO-8601 timestamp as stored on an expense
// record. A trailing literal "Z" zone marker is normalized to an explicit
// "+00:00" offset before parsing; timestamps without any zone are taken
// as UTC. Fractional seconds are accepted on any layout.
func ParseCreatedAt(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty created_at", ErrInvalidTimestamp)
	}
	if strings.HasSuffix(s, "Z") {
		s = strings.TrimSuffix(s, "Z") + "+00:00"
	}
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
}
