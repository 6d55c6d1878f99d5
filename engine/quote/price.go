// Package quote assembles priced proposals from transcript extractions and
// catalog matches.
package quote

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedPrice is returned when a catalog price string cannot be parsed.
var ErrMalformedPrice = errors.New("malformed price")

// ParseUnitPrice parses a catalog price in European notation, where "." is a
// thousands separator and "," the decimal mark: "1.234,56" -> 1234.56.
func ParseUnitPrice(s string) (float64, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, fmt.Errorf("quote: empty price: %w", ErrMalformedPrice)
	}

	normalized := strings.ReplaceAll(trimmed, ".", "")
	normalized = strings.ReplaceAll(normalized, ",", ".")

	v, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return 0, fmt.Errorf("quote: %q: %w", s, ErrMalformedPrice)
	}
	return v, nil
}
