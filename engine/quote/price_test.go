package quote

import (
	"errors"
	"testing"
)

func TestParseUnitPrice(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"1.234,56", 1234.56},
		{"24,99", 24.99},
		{"120", 120},
		{" 15,50 ", 15.5},
		{"2.000.000,00", 2000000},
	}
	for _, c := range cases {
		got, err := ParseUnitPrice(c.in)
		if err != nil {
			t.Errorf("ParseUnitPrice(%q) unexpected error: %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseUnitPrice(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestParseUnitPrice_Malformed(t *testing.T) {
	for _, in := range []string{"", "   ", "abc", "12,34,56", "€"} {
		if _, err := ParseUnitPrice(in); !errors.Is(err, ErrMalformedPrice) {
			t.Errorf("ParseUnitPrice(%q): expected ErrMalformedPrice, got %v", in, err)
		}
	}
}
