package engine

import "sort"

// evaluate aggregates priced outputs into the final profitability numbers.
// Unpriced outputs contribute zero to the expected value and their
// probability mass is not redistributed, so the expectation is conservative.
func evaluate(c Candidate, inputs []InputItem, outputs []OutputCandidate, cost, feeRate float64) Opportunity {
	o := Opportunity{
		Rarity:      c.Rarity,
		InputCounts: c.Counts,
		Inputs:      inputs,
		Outputs:     outputs,
		Cost:        cost,
	}

	minNet := 0.0
	havePriced := false
	for _, out := range outputs {
		if !out.Priced {
			continue
		}
		o.ExpectedValue += out.Price * out.Probability
		net := out.Price * (1 - feeRate)
		if !havePriced || net < minNet {
			minNet = net
			havePriced = true
		}
	}
	o.ExpectedNet = o.ExpectedValue * (1 - feeRate)
	o.Profit = o.ExpectedNet - cost
	if cost > 0 {
		o.ROI = o.Profit / cost * 100
	}
	o.Guaranteed = havePriced && minNet > cost
	return o
}

// Rank sorts opportunities by profit descending, breaking ties by ROI.
func Rank(opps []Opportunity) {
	sort.SliceStable(opps, func(i, j int) bool {
		if opps[i].Profit != opps[j].Profit {
			return opps[i].Profit > opps[j].Profit
		}
		return opps[i].ROI > opps[j].ROI
	})
}
