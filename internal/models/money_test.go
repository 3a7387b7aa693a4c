package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestMoneyJSON(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: `"12.5"`, want: "12.50"},
		{in: `12.345`, want: "12.35"},
		{in: `"0.1"`, want: "0.10"},
		{in: `19.99`, want: "19.99"},
	}
	for _, tc := range cases {
		var m Money
		if err := json.Unmarshal([]byte(tc.in), &m); err != nil {
			t.Fatalf("unmarshal %s failed: %v", tc.in, err)
		}
		if m.String() != tc.want {
			t.Fatalf("unmarshal %s want %s got %s", tc.in, tc.want, m.String())
		}
		out, err := json.Marshal(m)
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		if string(out) != `"`+tc.want+`"` {
			t.Fatalf("marshal want %q got %s", tc.want, out)
		}
	}

	var m Money
	if err := json.Unmarshal([]byte(`"abc"`), &m); err == nil {
		t.Fatalf("expected error for non-numeric money")
	}
}

func TestMoneyIsPositive(t *testing.T) {
	if NewMoneyFromDecimal(decimal.RequireFromString("0.004")).IsPositive() {
		t.Fatalf("0.004 rounds to zero")
	}
	if !NewMoneyFromDecimal(decimal.RequireFromString("0.005")).IsPositive() {
		t.Fatalf("0.005 rounds to 0.01")
	}
	if NewMoneyFromDecimal(decimal.NewFromInt(-3)).IsPositive() {
		t.Fatalf("negative money is not positive")
	}
}

func TestMoneyScan(t *testing.T) {
	var m Money
	if err := m.Scan("42.129"); err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if m.String() != "42.13" {
		t.Fatalf("scan want 42.13 got %s", m.String())
	}
}
