package pricing

import (
	"math"
	"strings"
)

// baseHourlyRate is the default labor rate in EUR before city adjustment.
const baseHourlyRate = 40.0

// Complexity levels accepted by EstimateHours.
const (
	ComplexityStandard = "standard"
	ComplexityHigh     = "high"
	ComplexityLow      = "low"
)

// hourRule pairs a task-name predicate with its base-hours rule. Rules are
// evaluated in order; the first match wins.
type hourRule struct {
	name  string
	match func(task string) bool
	hours func(task string, area *float64) float64
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

var hourRules = []hourRule{
	{
		name:  "tiling",
		match: func(t string) bool { return strings.Contains(t, "til") },
		hours: func(_ string, area *float64) float64 {
			if area != nil && *area > 0 {
				return 0.9 * *area
			}
			return 4.0
		},
	},
	{
		name:  "painting",
		match: func(t string) bool { return strings.Contains(t, "paint") },
		hours: func(_ string, area *float64) float64 {
			if area != nil && *area > 0 {
				return math.Max(1.0, *area/10.0)
			}
			return 3.0
		},
	},
	{
		name:  "plumbing",
		match: func(t string) bool { return strings.Contains(t, "plumb") },
		hours: func(t string, _ *float64) float64 {
			if containsAny(t, "redo", "replace") {
				return 6.0
			}
			return 4.0
		},
	},
	{
		name:  "demolition",
		match: func(t string) bool { return containsAny(t, "demol", "disposal", "remove") },
		hours: func(_ string, _ *float64) float64 { return 2.0 },
	},
	{
		name:  "toilet",
		match: func(t string) bool { return strings.Contains(t, "toilet") },
		hours: func(_ string, _ *float64) float64 { return 2.0 },
	},
	{
		name:  "vanity",
		match: func(t string) bool { return strings.Contains(t, "vanity") },
		hours: func(_ string, _ *float64) float64 { return 2.0 },
	},
}

// defaultHours is the generic estimate for unmatched tasks.
const defaultHours = 3.0

// EstimateHours estimates labor hours for a task. The complexity multiplier
// applies after the base rule, and the result rounds up to the nearest
// quarter hour.
func EstimateHours(taskName string, area *float64, complexity string) float64 {
	t := strings.ToLower(taskName)

	hours := defaultHours
	for _, r := range hourRules {
		if r.match(t) {
			hours = r.hours(t, area)
			break
		}
	}

	switch complexity {
	case ComplexityHigh:
		hours *= 1.25
	case ComplexityLow:
		hours *= 0.9
	}

	return math.Ceil(hours*4) / 4
}

// CityMultiplier returns the labor multiplier for a city. Lookup is
// case-insensitive; an empty or unknown city gets the Generic multiplier.
func CityMultiplier(city string) float64 {
	mods := current().cityMultipliers
	generic, ok := mods["Generic"]
	if !ok {
		generic = 1.0
	}
	if city == "" {
		return generic
	}
	if m, ok := mods[capitalize(city)]; ok {
		return m
	}
	return generic
}

// HourlyRate returns the city-adjusted hourly labor rate, rounded to cents.
func HourlyRate(city string) float64 {
	return round2(baseHourlyRate * CityMultiplier(city))
}

// LaborCost computes hours times the city-adjusted rate, rounded to cents.
func LaborCost(hours float64, city string) float64 {
	return round2(hours * HourlyRate(city))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
