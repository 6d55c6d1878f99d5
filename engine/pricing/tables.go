// Package pricing implements the deterministic pricing rules: labor-hour
// estimation, city-aware hourly rates, VAT lookup, and material unit costs.
// Rate tables load once from optional JSON files and fall back to built-in
// defaults silently; they are immutable after load.
package pricing

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// MaterialCost is one priced line of the built-in materials table.
type MaterialCost struct {
	Unit string  `json:"unit"`
	Cost float64 `json:"cost"`
}

var defaultVATRates = map[string]float64{
	"default":    0.20,
	"tiling":     0.20,
	"painting":   0.20,
	"plumbing":   0.20,
	"materials":  0.20,
	"labor":      0.20,
	"demolition": 0.20,
	"toilet":     0.20,
	"vanity":     0.20,
}

// defaultVATOrder fixes the keyword scan order; first substring match wins.
var defaultVATOrder = []string{
	"tiling", "painting", "plumbing", "materials",
	"labor", "demolition", "toilet", "vanity",
}

var defaultCityMultipliers = map[string]float64{
	"Generic":   1.0,
	"Marseille": 1.00,
	"Paris":     1.25,
	"Lyon":      1.10,
}

var defaultMaterials = map[string]MaterialCost{
	"tiles_ceramic_m2": {Unit: "m2", Cost: 25.0},
	"toilet_standard":  {Unit: "each", Cost: 120.0},
	"vanity_basic":     {Unit: "each", Cost: 100.0},
	"paint_litre":      {Unit: "litre", Cost: 12.0},
	"plumbing_parts":   {Unit: "job", Cost: 150.0},
	"disposal_fee":     {Unit: "job", Cost: 50.0},
}

type tables struct {
	vatRates        map[string]float64
	vatOrder        []string
	cityMultipliers map[string]float64
	materials       map[string]MaterialCost
}

var (
	loadOnce sync.Once
	loadedMu sync.RWMutex
	loaded   *tables
)

// DataDir returns the directory searched for override files.
func DataDir() string {
	if d := os.Getenv("PRICING_DATA_DIR"); d != "" {
		return d
	}
	return "data"
}

func current() *tables {
	loadOnce.Do(func() {
		t := load(DataDir())
		loadedMu.Lock()
		loaded = t
		loadedMu.Unlock()
	})
	loadedMu.RLock()
	defer loadedMu.RUnlock()
	return loaded
}

// Reload repopulates the tables from dir. Explicit action only; normal
// operation reads the once-loaded snapshot.
func Reload(dir string) {
	t := load(dir)
	loadOnce.Do(func() {})
	loadedMu.Lock()
	loaded = t
	loadedMu.Unlock()
}

// load reads each table from its JSON file, falling back to the built-in
// defaults on any read or parse error.
func load(dir string) *tables {
	t := &tables{
		vatRates:        copyFloats(defaultVATRates),
		vatOrder:        append([]string(nil), defaultVATOrder...),
		cityMultipliers: copyFloats(defaultCityMultipliers),
		materials:       copyMaterials(defaultMaterials),
	}

	var vat map[string]float64
	if readJSON(filepath.Join(dir, "vat_rates.json"), &vat) && len(vat) > 0 {
		t.vatRates = make(map[string]float64, len(vat))
		for k, v := range vat {
			t.vatRates[strings.ToLower(k)] = v
		}
		t.vatOrder = vatOrderFor(t.vatRates)
	}

	var cities map[string]float64
	if readJSON(filepath.Join(dir, "city_modifiers.json"), &cities) && len(cities) > 0 {
		t.cityMultipliers = make(map[string]float64, len(cities))
		for k, v := range cities {
			t.cityMultipliers[capitalize(k)] = v
		}
	}

	var mats map[string]MaterialCost
	if readJSON(filepath.Join(dir, "materials.json"), &mats) && len(mats) > 0 {
		t.materials = mats
	}

	return t
}

// vatOrderFor keeps the default keyword precedence for known keys and
// appends any extra keys from the file in sorted order.
func vatOrderFor(rates map[string]float64) []string {
	known := make(map[string]bool, len(defaultVATOrder)+1)
	known["default"] = true
	var order []string
	for _, k := range defaultVATOrder {
		known[k] = true
		if _, ok := rates[k]; ok {
			order = append(order, k)
		}
	}
	var extra []string
	for k := range rates {
		if !known[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return append(order, extra...)
}

func readJSON(path string, out any) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return json.Unmarshal(data, out) == nil
}

// capitalize matches the table key convention: first letter upper, rest lower.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

func copyFloats(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyMaterials(m map[string]MaterialCost) map[string]MaterialCost {
	out := make(map[string]MaterialCost, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
