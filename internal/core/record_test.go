package core

import (
	"errors"
	"testing"
	"time"
)

func TestParseCreatedAt(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"2025-05-20T09:30:00Z", time.Date(2025, 5, 20, 9, 30, 0, 0, time.UTC), true},
		{"2025-05-20T09:30:00+00:00", time.Date(2025, 5, 20, 9, 30, 0, 0, time.UTC), true},
		{"2025-05-20T09:30:00+02:00", time.Date(2025, 5, 20, 9, 30, 0, 0, time.FixedZone("", 2*3600)), true},
		{"2025-05-20T09:30:00", time.Date(2025, 5, 20, 9, 30, 0, 0, time.UTC), true},
		{"2025-05-20T09:30:00.123456Z", time.Date(2025, 5, 20, 9, 30, 0, 123456000, time.UTC), true},
		{"2025-05-20 09:30:00", time.Date(2025, 5, 20, 9, 30, 0, 0, time.UTC), true},
		{"2025-05-20", time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC), true},
		{"", time.Time{}, false},
		{"not-a-date", time.Time{}, false},
		{"2025-13-01T00:00:00Z", time.Time{}, false},
	}

	for _, tc := range cases {
		got, err := ParseCreatedAt(tc.in)
		if tc.ok {
			if err != nil {
				t.Fatalf("%q: unexpected error %v", tc.in, err)
			}
			if !got.Equal(tc.want) {
				t.Fatalf("%q: got %v, want %v", tc.in, got, tc.want)
			}
		} else {
			if err == nil {
				t.Fatalf("%q: expected error", tc.in)
			}
			if !errors.Is(err, ErrInvalidTimestamp) {
				t.Fatalf("%q: error %v is not ErrInvalidTimestamp", tc.in, err)
			}
		}
	}
}

func TestCategoryValid(t *testing.T) {
	for _, c := range Categories() {
		if !c.Valid() {
			t.Fatalf("taxonomy category %q reported invalid", c)
		}
	}
	if Category("Groceries").Valid() {
		t.Fatalf("off-taxonomy category reported valid")
	}
	if Category("").Valid() {
		t.Fatalf("empty category reported valid")
	}
}

func TestExpenseRecordValidate(t *testing.T) {
	good := ExpenseRecord{
		ID:          "1",
		Description: "coffee with team",
		Name:        "Coffee",
		Amount:      "4.50",
		Category:    string(CategoryFood),
		CreatedAt:   "2025-05-20T09:30:00Z",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("valid record rejected: %v", err)
	}

	cases := []struct {
		name    string
		mutate  func(*ExpenseRecord)
		wantErr error
	}{
		{"empty description", func(r *ExpenseRecord) { r.Description = "  " }, ErrEmptyDescription},
		{"empty name", func(r *ExpenseRecord) { r.Name = "" }, ErrEmptyName},
		{"non-numeric amount", func(r *ExpenseRecord) { r.Amount = "abc" }, ErrInvalidAmount},
		{"zero amount", func(r *ExpenseRecord) { r.Amount = "0" }, ErrInvalidAmount},
		{"negative amount", func(r *ExpenseRecord) { r.Amount = "-3" }, ErrInvalidAmount},
		{"unknown category", func(r *ExpenseRecord) { r.Category = "Groceries" }, ErrUnknownCategory},
		{"bad timestamp", func(r *ExpenseRecord) { r.CreatedAt = "yesterday" }, ErrInvalidTimestamp},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := good
			tc.mutate(&r)
			err := r.Validate()
			if err == nil {
				t.Fatalf("expected error")
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("error %v, want %v", err, tc.wantErr)
			}
		})
	}
}
