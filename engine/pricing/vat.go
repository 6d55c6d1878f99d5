package pricing

import "strings"

// DefaultVATRate applies when no keyword rule matches.
const DefaultVATRate = 0.20

// VATRate returns the VAT rate for a task as a decimal (e.g. 0.20). Keys are
// scanned in a fixed order; the first keyword that is a substring of the
// lowercased task name wins. The city parameter is accepted but not
// consulted — it is an extension point, kept for interface stability.
func VATRate(taskName, _city string) float64 {
	t := strings.ToLower(taskName)
	tb := current()

	for _, key := range tb.vatOrder {
		if key == "default" {
			continue
		}
		if strings.Contains(t, key) {
			return tb.vatRates[key]
		}
	}
	if v, ok := tb.vatRates["default"]; ok {
		return v
	}
	return DefaultVATRate
}
