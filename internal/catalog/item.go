package catalog

import "fmt"

// FloatRange is the sub-range of [0,1] an item's float can take.
type FloatRange struct {
	Min float64
	Max float64
}

// FallbackFloatRange is used when a catalog entry has no float range of its
// own. It is the typical CS2 skin range, not the full [0,1] span; every code
// path that needs a fallback uses this one value.
var FallbackFloatRange = FloatRange{Min: 0.06, Max: 0.80}

// Width returns Max - Min.
func (r FloatRange) Width() float64 { return r.Max - r.Min }

// Contains reports whether f lies inside the range.
func (r FloatRange) Contains(f float64) bool { return f >= r.Min && f <= r.Max }

// Item is a single catalog entry: one wear variant of one skin. Items are
// validated at construction and immutable for the duration of a search.
type Item struct {
	ID         string // market hash name, including wear suffix
	BaseName   string // market name without the wear suffix
	Collection string
	Rarity     Rarity
	Wear       Wear
	Price      float64 // last known quote; 0 = unknown
	FloatRange FloatRange
	HasRange   bool // false when the catalog had no float data for this entry
	Marketable bool
	StatTrak   bool
	Souvenir   bool
}

// NewItem validates raw catalog fields and returns an Item. Malformed entries
// (empty id, inverted or out-of-bounds float range, unknown rarity) are
// rejected here rather than propagated into the engine.
func NewItem(id, collection string, rarity Rarity, wear Wear, price, floatMin, floatMax float64, marketable, stattrak, souvenir bool) (Item, error) {
	if id == "" {
		return Item{}, fmt.Errorf("catalog item with empty id")
	}
	if !rarity.Known() {
		return Item{}, fmt.Errorf("item %q: unknown rarity %q", id, rarity)
	}
	hasRange := !(floatMin == 0 && floatMax == 0)
	if hasRange {
		if floatMin > floatMax {
			return Item{}, fmt.Errorf("item %q: float_min %v > float_max %v", id, floatMin, floatMax)
		}
		if floatMin < 0 || floatMax > 1 {
			return Item{}, fmt.Errorf("item %q: float range [%v, %v] outside [0,1]", id, floatMin, floatMax)
		}
	}
	if price < 0 {
		return Item{}, fmt.Errorf("item %q: negative price %v", id, price)
	}

	it := Item{
		ID:         id,
		BaseName:   BaseName(id),
		Collection: collection,
		Rarity:     rarity,
		Wear:       wear,
		Price:      price,
		HasRange:   hasRange,
		Marketable: marketable,
		StatTrak:   stattrak,
		Souvenir:   souvenir,
	}
	if hasRange {
		it.FloatRange = FloatRange{Min: floatMin, Max: floatMax}
	} else {
		it.FloatRange = FallbackFloatRange
	}
	return it, nil
}

// TradeEligible reports whether the item may appear in a trade-up, on either
// side of the contract.
func (i Item) TradeEligible() bool {
	return i.Marketable && !i.StatTrak && !i.Souvenir && i.Rarity != Contraband
}
