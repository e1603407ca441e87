package catalog

// Rarity is an item grade in the trade-up hierarchy.
type Rarity string

const (
	Consumer   Rarity = "Consumer Grade"
	Industrial Rarity = "Industrial Grade"
	MilSpec    Rarity = "Mil-Spec Grade"
	Restricted Rarity = "Restricted"
	Classified Rarity = "Classified"
	Covert     Rarity = "Covert"
	// Contraband items exist in the catalog but never participate in
	// trade-ups, as input or output.
	Contraband Rarity = "Contraband"
)

// InputRarities lists the grades that can feed a trade-up contract, in
// ascending order. Covert has no successor and Contraband is excluded.
var InputRarities = []Rarity{Consumer, Industrial, MilSpec, Restricted, Classified}

var successor = map[Rarity]Rarity{
	Consumer:   Industrial,
	Industrial: MilSpec,
	MilSpec:    Restricted,
	Restricted: Classified,
	Classified: Covert,
}

// Successor returns the next grade up, or false for terminal grades.
func (r Rarity) Successor() (Rarity, bool) {
	s, ok := successor[r]
	return s, ok
}

// Known reports whether r is a member of the hierarchy.
func (r Rarity) Known() bool {
	if r == Covert || r == Contraband {
		return true
	}
	_, ok := successor[r]
	return ok
}
