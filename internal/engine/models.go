package engine

import (
	"fmt"
	"sort"
	"strings"

	"tradeup-scout/internal/catalog"
)

// ContractSize is the number of inputs a trade-up contract consumes.
const ContractSize = 10

// InputItem is one purchased input slot of a contract.
type InputItem struct {
	Item  catalog.Item
	Float float64 // representative float used for output scaling
	Price float64 // validated unit price
}

// OutputCandidate is one possible contract output together with its
// probability and projected condition.
type OutputCandidate struct {
	BaseName    string
	Collection  string
	Probability float64
	Float       float64 // projected output float
	Wear        catalog.Wear
	Price       float64
	Priced      bool // false when no trustworthy price could be resolved
}

// Opportunity is a fully evaluated trade-up configuration.
type Opportunity struct {
	Rarity        catalog.Rarity
	InputCounts   map[string]int // collection -> number of inputs
	Inputs        []InputItem
	Outputs       []OutputCandidate
	Cost          float64 // total acquisition cost of the ten inputs
	ExpectedValue float64 // probability-weighted gross output value
	ExpectedNet   float64 // expected value after the sale fee
	Profit        float64 // expected net minus cost
	ROI           float64 // profit / cost, as a percentage
	Guaranteed    bool    // every priced output nets more than cost
}

// Split returns a stable "A:9+B:1" style description of the input mix.
func (o Opportunity) Split() string {
	names := make([]string, 0, len(o.InputCounts))
	for name := range o.InputCounts {
		names = append(names, name)
	}
	// Larger share first, name as tiebreak.
	sort.Slice(names, func(i, j int) bool {
		if o.InputCounts[names[i]] != o.InputCounts[names[j]] {
			return o.InputCounts[names[i]] > o.InputCounts[names[j]]
		}
		return names[i] < names[j]
	})
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s:%d", name, o.InputCounts[name])
	}
	return strings.Join(parts, "+")
}

// SweepParams holds the input parameters for an opportunity sweep.
type SweepParams struct {
	Rarities       []catalog.Rarity // empty means every tradeable rarity
	Collections    []string         // optional whitelist of input collections
	FeeRate        float64          // marketplace sale fee, e.g. 0.15
	MinProfit      float64          // drop opportunities below this expected profit
	MaxInputPrice  float64          // skip inputs priced above this, 0 = no cap
	GuaranteedOnly bool
	MaxResults     int // 0 = unlimited
	Offset         int // skip this many ranked results
}
