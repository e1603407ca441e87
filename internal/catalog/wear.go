package catalog

import "strings"

// Wear is one of the five exterior conditions derived from an item's float.
type Wear string

const (
	FactoryNew    Wear = "Factory New"
	MinimalWear   Wear = "Minimal Wear"
	FieldTested   Wear = "Field-Tested"
	WellWorn      Wear = "Well-Worn"
	BattleScarred Wear = "Battle-Scarred"
)

// Wears lists all conditions from least to most worn.
var Wears = []Wear{FactoryNew, MinimalWear, FieldTested, WellWorn, BattleScarred}

// WearFromFloat maps a float value onto its wear condition using the fixed
// CS2 thresholds.
func WearFromFloat(f float64) Wear {
	switch {
	case f < 0.07:
		return FactoryNew
	case f < 0.15:
		return MinimalWear
	case f < 0.38:
		return FieldTested
	case f < 0.45:
		return WellWorn
	default:
		return BattleScarred
	}
}

// Midpoint returns the representative float for items of this wear: the true
// midpoint of the wear bracket (BS brackets run to 1.0).
func (w Wear) Midpoint() float64 {
	switch w {
	case FactoryNew:
		return 0.035
	case MinimalWear:
		return 0.11
	case FieldTested:
		return 0.265
	case WellWorn:
		return 0.415
	default:
		return 0.725
	}
}

// BaseName strips the wear suffix from a market name, so condition variants
// of one item collapse to a single key.
// "AK-47 | Safari Mesh (Field-Tested)" -> "AK-47 | Safari Mesh".
func BaseName(marketName string) string {
	for _, w := range Wears {
		suffix := " (" + string(w) + ")"
		if strings.HasSuffix(marketName, suffix) {
			return strings.TrimSuffix(marketName, suffix)
		}
	}
	return marketName
}
