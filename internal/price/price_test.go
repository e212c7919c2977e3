package price

import (
	"errors"
	"math"
	"testing"
)

func TestParseCents(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"29.99", 2999},
		{"10.00", 1000},
		{"10", 1000},
		{" 7.5 ", 750},
		{"0.005", 1},
		{"abc", 0},
		{"", 0},
		{"-3.00", 0},
		{"1e400", 0},
		{"10000000000", 1000000000000},
		{"10000000000.01", 0},
		{"50000000000000000", 0},
	}
	for _, tc := range cases {
		if got := ParseCents(tc.in); got != tc.want {
			t.Fatalf("ParseCents(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestFormatCents(t *testing.T) {
	if got := FormatCents(5998); got != "59.98" {
		t.Fatalf("unexpected format: %s", got)
	}
	if got := FormatCents(0); got != "0.00" {
		t.Fatalf("unexpected format: %s", got)
	}
	if got := FormatCents(5); got != "0.05" {
		t.Fatalf("unexpected format: %s", got)
	}
}

func TestNormalize(t *testing.T) {
	got, err := Normalize("29,90")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "29.9" {
		t.Fatalf("unexpected normalized price: %s", got)
	}

	if got, err := Normalize("10000000000"); err != nil || got != "10000000000" {
		t.Fatalf("largest price should be accepted, got %q %v", got, err)
	}

	for _, in := range []string{"", "abc", "0", "-1", "1,2,3", "10000000000,01", "50000000000000000"} {
		if _, err := Normalize(in); !errors.Is(err, ErrInvalid) {
			t.Fatalf("Normalize(%q): expected ErrInvalid, got %v", in, err)
		}
	}
}

func TestMulAndAddCentsSaturate(t *testing.T) {
	if got := MulCents(2999, 2); got != 5998 {
		t.Fatalf("MulCents = %d, want 5998", got)
	}
	if got := MulCents(5000000000000000000, 2); got != math.MaxInt64 {
		t.Fatalf("MulCents should saturate, got %d", got)
	}
	if got := MulCents(-5, 3); got != 0 {
		t.Fatalf("MulCents with negative cents = %d, want 0", got)
	}
	if got := AddCents(math.MaxInt64-1, 5); got != math.MaxInt64 {
		t.Fatalf("AddCents should saturate, got %d", got)
	}
	if got := AddCents(5998, 1000); got != 6998 {
		t.Fatalf("AddCents = %d, want 6998", got)
	}
}
