package engine

// outputProbability is the chance of drawing one particular output from a
// contributing collection: the collection's share of the ten input slots
// divided evenly across its distinct successor outputs.
func outputProbability(inputCount, distinctOutputs int) float64 {
	if distinctOutputs <= 0 {
		return 0
	}
	return float64(inputCount) / ContractSize / float64(distinctOutputs)
}

// viable reports whether every contributing collection offers at least one
// successor output. A collection with an empty output pool makes the whole
// configuration invalid; its input share cannot be redistributed.
func viable(counts map[string]int, outputsPerCollection map[string]int) bool {
	for name, n := range counts {
		if n > 0 && outputsPerCollection[name] == 0 {
			return false
		}
	}
	return true
}
