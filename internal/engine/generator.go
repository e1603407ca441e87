package engine

import (
	"fmt"
	"sort"

	"tradeup-scout/internal/catalog"
)

// mixedSplits are the allowed two-collection input ratios.
var mixedSplits = [][2]int{{9, 1}, {8, 2}, {7, 3}, {6, 4}, {5, 5}}

// outputBase is one distinct successor-rarity item. Wear-suffix variants of
// the same skin collapse into a single base with a variant per condition.
type outputBase struct {
	BaseName   string
	Collection string
	Range      catalog.FloatRange
	Variants   map[catalog.Wear]catalog.Item
}

// Candidate is a legal input configuration awaiting pricing. Anchors hold the
// single cheapest item chosen per contributing collection; the contract
// repeats each anchor for its collection's share of the ten slots.
type Candidate struct {
	Rarity  catalog.Rarity
	Counts  map[string]int            // collection -> input count
	Anchors map[string]catalog.Item   // collection -> chosen input item
	Outputs []outputBase
	K       map[string]int // collection -> distinct successor outputs
}

// Generator enumerates candidate trade-up configurations from the catalog.
type Generator struct {
	store catalog.Store
}

func NewGenerator(store catalog.Store) *Generator {
	return &Generator{store: store}
}

// eligibleInputs filters a collection's items down to legal contract inputs.
// maxPrice of 0 means no cap; items without a catalog price pass here and are
// priced later.
func eligibleInputs(items []catalog.Item, rarity catalog.Rarity, maxPrice float64) []catalog.Item {
	var out []catalog.Item
	for _, it := range items {
		if it.Rarity != rarity || !it.TradeEligible() {
			continue
		}
		if maxPrice > 0 && it.Price > maxPrice {
			continue
		}
		out = append(out, it)
	}
	return out
}

// outputPool loads a collection's successor-rarity items and groups them by
// base name, so each distinct skin counts once regardless of how many wear
// variants the catalog lists.
func (g *Generator) outputPool(collection string, successor catalog.Rarity) ([]outputBase, error) {
	items, err := g.store.Items(collection, successor)
	if err != nil {
		return nil, fmt.Errorf("load outputs for %s/%s: %w", collection, successor, err)
	}
	byBase := make(map[string]*outputBase)
	var order []string
	for _, it := range items {
		if !it.TradeEligible() {
			continue
		}
		base, ok := byBase[it.BaseName]
		if !ok {
			base = &outputBase{
				BaseName:   it.BaseName,
				Collection: collection,
				Range:      it.FloatRange,
				Variants:   make(map[catalog.Wear]catalog.Item),
			}
			byBase[it.BaseName] = base
			order = append(order, it.BaseName)
		}
		base.Variants[it.Wear] = it
	}
	pool := make([]outputBase, 0, len(order))
	for _, name := range order {
		pool = append(pool, *byBase[name])
	}
	return pool, nil
}

// cheapestPerWear returns, for each wear bucket that has eligible items, the
// lowest-priced one. Items without a catalog price are only used when a
// bucket has nothing priced.
func cheapestPerWear(items []catalog.Item) map[catalog.Wear]catalog.Item {
	anchors := make(map[catalog.Wear]catalog.Item)
	for _, it := range items {
		cur, ok := anchors[it.Wear]
		if !ok || better(it, cur) {
			anchors[it.Wear] = it
		}
	}
	return anchors
}

// cheapest returns the lowest-priced eligible item of a collection.
func cheapest(items []catalog.Item) (catalog.Item, bool) {
	var best catalog.Item
	found := false
	for _, it := range items {
		if !found || better(it, best) {
			best = it
			found = true
		}
	}
	return best, found
}

// better prefers priced items over unpriced, then lower prices.
func better(a, b catalog.Item) bool {
	if (a.Price > 0) != (b.Price > 0) {
		return a.Price > 0
	}
	return a.Price < b.Price
}

// Configurations enumerates every candidate configuration for one input
// rarity: one single-collection candidate per collection and wear bucket,
// plus two-collection candidates for each ordered pair and split ratio.
// Collections whose successor pool is empty are discarded, along with every
// mixed candidate they would contribute to.
func (g *Generator) Configurations(rarity catalog.Rarity, params SweepParams) ([]Candidate, error) {
	successor, ok := rarity.Successor()
	if !ok {
		return nil, fmt.Errorf("rarity %s has no trade-up successor", rarity)
	}

	collections, err := g.store.Collections(rarity)
	if err != nil {
		return nil, fmt.Errorf("list collections for %s: %w", rarity, err)
	}
	collections = filterCollections(collections, params.Collections)
	sort.Strings(collections)

	// Load inputs and output pools once per collection.
	type source struct {
		name    string
		inputs  []catalog.Item
		outputs []outputBase
	}
	var sources []source
	for _, name := range collections {
		items, err := g.store.Items(name, rarity)
		if err != nil {
			return nil, fmt.Errorf("load inputs for %s/%s: %w", name, rarity, err)
		}
		inputs := eligibleInputs(items, rarity, params.MaxInputPrice)
		if len(inputs) == 0 {
			continue
		}
		outputs, err := g.outputPool(name, successor)
		if err != nil {
			return nil, err
		}
		if len(outputs) == 0 {
			// Not viable: nothing to receive the probability mass.
			continue
		}
		sources = append(sources, source{name: name, inputs: inputs, outputs: outputs})
	}

	var candidates []Candidate

	// Single collection: one candidate per wear bucket, anchored on the
	// cheapest item of that bucket.
	for _, src := range sources {
		anchors := cheapestPerWear(src.inputs)
		for _, wear := range catalog.Wears {
			anchor, ok := anchors[wear]
			if !ok {
				continue
			}
			candidates = append(candidates, Candidate{
				Rarity:  rarity,
				Counts:  map[string]int{src.name: ContractSize},
				Anchors: map[string]catalog.Item{src.name: anchor},
				Outputs: src.outputs,
				K:       map[string]int{src.name: len(src.outputs)},
			})
		}
	}

	// Two collections: cheapest item of each, every split ratio. Ordered
	// pairs cover 9/1 both ways; the symmetric 5/5 split is emitted once.
	for i, a := range sources {
		anchorA, okA := cheapest(a.inputs)
		if !okA {
			continue
		}
		for j, b := range sources {
			if i == j {
				continue
			}
			anchorB, okB := cheapest(b.inputs)
			if !okB {
				continue
			}
			for _, split := range mixedSplits {
				if split[0] == split[1] && i > j {
					continue
				}
				outputs := make([]outputBase, 0, len(a.outputs)+len(b.outputs))
				outputs = append(outputs, a.outputs...)
				outputs = append(outputs, b.outputs...)
				candidates = append(candidates, Candidate{
					Rarity:  rarity,
					Counts:  map[string]int{a.name: split[0], b.name: split[1]},
					Anchors: map[string]catalog.Item{a.name: anchorA, b.name: anchorB},
					Outputs: outputs,
					K:       map[string]int{a.name: len(a.outputs), b.name: len(b.outputs)},
				})
			}
		}
	}

	return candidates, nil
}

func filterCollections(all, allowed []string) []string {
	if len(allowed) == 0 {
		return all
	}
	want := make(map[string]bool, len(allowed))
	for _, name := range allowed {
		want[name] = true
	}
	var out []string
	for _, name := range all {
		if want[name] {
			out = append(out, name)
		}
	}
	return out
}
