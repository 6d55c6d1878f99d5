package pricing

import (
	"errors"
	"fmt"
)

// ErrUnknownMaterial is returned for items absent from the materials table.
var ErrUnknownMaterial = errors.New("unknown material")

// UnitCost returns the per-unit cost of a built-in material with the city
// multiplier applied.
func UnitCost(item, city string) (float64, error) {
	m, ok := current().materials[item]
	if !ok {
		return 0, fmt.Errorf("pricing: %q: %w", item, ErrUnknownMaterial)
	}
	return round2(m.Cost * CityMultiplier(city)), nil
}

// TotalMaterialCost returns the cost of quantity units of item for a city.
func TotalMaterialCost(item string, quantity float64, city string) (float64, error) {
	unit, err := UnitCost(item, city)
	if err != nil {
		return 0, err
	}
	return round2(quantity * unit), nil
}
