package core

import (
	"math"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out float64
		ok  bool
	}{
		{"1", 1, true},
		{"1.0", 1, true},
		{"1.23", 1.23, true},
		{"1,500", 1500, true},
		{"₹2,000", 2000, true},
		{"1,23,456", 123456, true},
		{"1,23,456.50", 123456.5, true},
		{"1,234.50", 1234.5, true},
		{"-1,000", -1000, true},
		{"1.5,0", 0, false},
		{",100", 0, false},
		{"100,", 0, false},
		{"1,,000", 0, false},
		{"₹ 250", 250, true},
		{" 2.50 ", 2.5, true},
		{"0", 0, true},
		{"-15", -15, true},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %v, got %v (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestValidateAmount(t *testing.T) {
	if err := ValidateAmount(math.NaN()); err == nil {
		t.Fatal("NaN should be rejected")
	}
	if err := ValidateAmount(math.Inf(1)); err == nil {
		t.Fatal("Inf should be rejected")
	}
	if err := ValidateAmount(-3); err != nil {
		t.Fatalf("negative amounts are allowed: %v", err)
	}
}

func TestFormatAmount(t *testing.T) {
	if got := FormatAmount(1234.5); got != "1234.50" {
		t.Fatalf("got %q", got)
	}
	if got := FormatRupees(15); got != "₹15.00" {
		t.Fatalf("got %q", got)
	}
	if got := FormatRupees(-3); got != "-₹3.00" {
		t.Fatalf("got %q", got)
	}
}

func TestSumAmounts(t *testing.T) {
	if got := SumAmounts(0.1, 0.2); got != 0.3 {
		t.Fatalf("expected 0.3, got %v", got)
	}
}
