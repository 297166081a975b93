package core

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestAmountValue(t *testing.T) {
	cases := []struct {
		in   Amount
		want float64
		ok   bool
	}{
		{"42.50", 42.5, true},
		{"0", 0, true},
		{"1000", 1000, true},
		{" 2.25 ", 2.25, true},
		{"abc", 0, false},
		{"", 0, false},
		{"-1", 0, false},
		{"1.2.3", 0, false},
	}

	for _, tc := range cases {
		got, err := tc.in.Value()
		if tc.ok {
			if err != nil || got != tc.want {
				t.Fatalf("%q: got %v (err=%v), want %v", tc.in, got, err, tc.want)
			}
		} else {
			if err == nil {
				t.Fatalf("%q: expected error", tc.in)
			}
			if !errors.Is(err, ErrInvalidAmount) {
				t.Fatalf("%q: error %v is not ErrInvalidAmount", tc.in, err)
			}
		}
	}
}

func TestAmountJSONRoundTrip(t *testing.T) {
	rec := ExpenseRecord{ID: "1", Amount: "42.50"}
	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded ExpenseRecord
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v, err := decoded.Amount.Value(); err != nil || v != 42.5 {
		t.Fatalf("round-trip amount = %q (err=%v), want 42.5", decoded.Amount, err)
	}
}

func TestAmountMarshalsAsNumber(t *testing.T) {
	data, err := json.Marshal(Amount("42.50"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != "42.5" {
		t.Fatalf("marshaled as %s, want bare number 42.5", data)
	}
}

func TestAmountMarshalsMalformedAsString(t *testing.T) {
	data, err := json.Marshal(Amount("abc"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"abc"` {
		t.Fatalf("marshaled as %s, want quoted string", data)
	}
}

func TestAmountUnmarshalFromNumber(t *testing.T) {
	var a Amount
	if err := json.Unmarshal([]byte(`19.99`), &a); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v, err := a.Value(); err != nil || v != 19.99 {
		t.Fatalf("value = %v (err=%v), want 19.99", v, err)
	}
}

func TestAmountFromFloat(t *testing.T) {
	a := AmountFromFloat(12.34)
	if v, err := a.Value(); err != nil || v != 12.34 {
		t.Fatalf("AmountFromFloat(12.34).Value() = %v (err=%v)", v, err)
	}
}
