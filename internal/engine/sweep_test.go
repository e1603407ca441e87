package engine

import (
	"context"
	"math"
	"testing"

	"tradeup-scout/internal/catalog"
)

// mapResolver is a canned PriceResolver keyed by item id.
type mapResolver struct {
	prices map[string]float64
}

func (m mapResolver) Resolve(_ context.Context, item catalog.Item) (float64, bool, error) {
	p, ok := m.prices[item.ID]
	return p, ok, nil
}

// oneCollectionStore builds a single Consumer collection with one input item
// and three Industrial outputs, all Field-Tested.
func oneCollectionStore(t *testing.T) catalog.Store {
	t.Helper()
	return catalog.NewMemStore([]catalog.Item{
		mustItem(t, "in (Field-Tested)", "Alpha", catalog.Consumer, catalog.FieldTested, 0.50),
		mustItem(t, "Out1 (Field-Tested)", "Alpha", catalog.Industrial, catalog.FieldTested, 0),
		mustItem(t, "Out2 (Field-Tested)", "Alpha", catalog.Industrial, catalog.FieldTested, 0),
		mustItem(t, "Out3 (Field-Tested)", "Alpha", catalog.Industrial, catalog.FieldTested, 0),
	})
}

func TestSweep_UnprofitableConfiguration(t *testing.T) {
	resolver := mapResolver{prices: map[string]float64{
		"in (Field-Tested)":   0.50,
		"Out1 (Field-Tested)": 2.00,
		"Out2 (Field-Tested)": 3.00,
		"Out3 (Field-Tested)": 4.00,
	}}
	s := NewSweeper(oneCollectionStore(t), resolver, 2)

	opps, incomplete, err := s.Collect(context.Background(), SweepParams{
		Rarities:  []catalog.Rarity{catalog.Consumer},
		FeeRate:   0.15,
		MinProfit: -100,
	})
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if incomplete {
		t.Fatal("sweep reported incomplete")
	}
	if len(opps) != 1 {
		t.Fatalf("opportunities = %d, want 1", len(opps))
	}

	o := opps[0]
	if o.Cost != 5.00 {
		t.Errorf("Cost = %v, want 5.00", o.Cost)
	}
	if math.Abs(o.ExpectedValue-3.00) > 1e-9 {
		t.Errorf("ExpectedValue = %v, want 3.00", o.ExpectedValue)
	}
	if math.Abs(o.ExpectedNet-2.55) > 1e-9 {
		t.Errorf("ExpectedNet = %v, want 2.55", o.ExpectedNet)
	}
	if math.Abs(o.Profit-(-2.45)) > 1e-9 {
		t.Errorf("Profit = %v, want -2.45", o.Profit)
	}
	if o.Guaranteed {
		t.Error("Guaranteed = true; min net 1.70 is below the 5.00 cost")
	}
	if len(o.Inputs) != ContractSize {
		t.Errorf("inputs = %d, want %d", len(o.Inputs), ContractSize)
	}
	for _, out := range o.Outputs {
		if out.Wear != catalog.FieldTested {
			t.Errorf("predicted wear = %q, want Field-Tested", out.Wear)
		}
		if math.Abs(out.Probability-1.0/3) > 1e-9 {
			t.Errorf("probability = %v, want 1/3", out.Probability)
		}
	}
}

func TestSweep_GuaranteedProfit(t *testing.T) {
	resolver := mapResolver{prices: map[string]float64{
		"in (Field-Tested)":   0.50,
		"Out1 (Field-Tested)": 7.00,
		"Out2 (Field-Tested)": 8.00,
		"Out3 (Field-Tested)": 9.00,
	}}
	s := NewSweeper(oneCollectionStore(t), resolver, 2)

	opps, _, err := s.Collect(context.Background(), SweepParams{
		Rarities: []catalog.Rarity{catalog.Consumer},
		FeeRate:  0.15,
	})
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(opps) != 1 {
		t.Fatalf("opportunities = %d, want 1", len(opps))
	}
	o := opps[0]
	// Minimum outcome nets 7.00 * 0.85 = 5.95, above the 5.00 cost.
	if !o.Guaranteed {
		t.Error("Guaranteed = false, want true")
	}
	if math.Abs(o.ExpectedValue-8.00) > 1e-9 {
		t.Errorf("ExpectedValue = %v, want 8.00", o.ExpectedValue)
	}
}

// guaranteed_profit must be strict: a minimum outcome that exactly covers
// cost does not qualify.
func TestEvaluate_GuaranteedIsStrict(t *testing.T) {
	c := Candidate{Rarity: catalog.Consumer, Counts: map[string]int{"Alpha": 10}}
	outputs := []OutputCandidate{
		{BaseName: "Out", Probability: 1, Price: 5.00, Priced: true},
	}
	o := evaluate(c, nil, outputs, 5.00, 0)
	if o.Guaranteed {
		t.Error("Guaranteed = true with min net equal to cost")
	}
	o = evaluate(c, nil, outputs, 4.99, 0)
	if !o.Guaranteed {
		t.Error("Guaranteed = false with min net above cost")
	}
}

func TestEvaluate_UnpricedOutputsNotRenormalized(t *testing.T) {
	c := Candidate{Rarity: catalog.Consumer, Counts: map[string]int{"Alpha": 10}}
	outputs := []OutputCandidate{
		{BaseName: "priced", Probability: 0.5, Price: 4.00, Priced: true},
		{BaseName: "unpriced", Probability: 0.5},
	}
	o := evaluate(c, nil, outputs, 1.00, 0)
	if math.Abs(o.ExpectedValue-2.00) > 1e-9 {
		t.Errorf("ExpectedValue = %v, want 2.00 with half the mass unpriced", o.ExpectedValue)
	}
}

func TestEvaluate_NoPricedOutputs(t *testing.T) {
	c := Candidate{Rarity: catalog.Consumer, Counts: map[string]int{"Alpha": 10}}
	o := evaluate(c, nil, []OutputCandidate{{BaseName: "x", Probability: 1}}, 2.00, 0.15)
	if o.ExpectedValue != 0 || o.Guaranteed {
		t.Errorf("opportunity = %+v, want zero value and not guaranteed", o)
	}
	if o.Profit != -2.00 {
		t.Errorf("Profit = %v, want -2.00", o.Profit)
	}
}

func mixedStore(t *testing.T) catalog.Store {
	t.Helper()
	return catalog.NewMemStore([]catalog.Item{
		mustItem(t, "a (Field-Tested)", "Alpha", catalog.Consumer, catalog.FieldTested, 0.10),
		mustItem(t, "b (Minimal Wear)", "Beta", catalog.Consumer, catalog.MinimalWear, 0.20),
		mustItem(t, "A1 (Field-Tested)", "Alpha", catalog.Industrial, catalog.FieldTested, 0),
		mustItem(t, "A2 (Field-Tested)", "Alpha", catalog.Industrial, catalog.FieldTested, 0),
		mustItem(t, "B1 (Field-Tested)", "Beta", catalog.Industrial, catalog.FieldTested, 0),
		mustItem(t, "B2 (Field-Tested)", "Beta", catalog.Industrial, catalog.FieldTested, 0),
		mustItem(t, "B3 (Field-Tested)", "Beta", catalog.Industrial, catalog.FieldTested, 0),
	})
}

func mixedResolver() mapResolver {
	return mapResolver{prices: map[string]float64{
		"a (Field-Tested)":  0.10,
		"b (Minimal Wear)":  0.20,
		"A1 (Field-Tested)": 1.00,
		"A2 (Field-Tested)": 2.00,
		"B1 (Field-Tested)": 1.50,
		"B2 (Field-Tested)": 2.50,
		"B3 (Field-Tested)": 3.50,
	}}
}

// Every emitted opportunity's output probabilities must sum to one,
// single-collection and mixed alike.
func TestSweep_ProbabilitiesSumToOne(t *testing.T) {
	s := NewSweeper(mixedStore(t), mixedResolver(), 4)

	var seen int
	_, err := s.Run(context.Background(), SweepParams{
		Rarities:  []catalog.Rarity{catalog.Consumer},
		FeeRate:   0.15,
		MinProfit: -100,
	}, func(o Opportunity) bool {
		seen++
		sum := 0.0
		for _, out := range o.Outputs {
			sum += out.Probability
		}
		if math.Abs(sum-1.0) > 1e-9 {
			t.Errorf("split %s: probability sum = %v", o.Split(), sum)
		}
		return true
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// Two single-collection candidates plus nine mixed splits.
	if seen != 11 {
		t.Errorf("opportunities = %d, want 11", seen)
	}
}

func TestSweep_EarlyExit(t *testing.T) {
	s := NewSweeper(mixedStore(t), mixedResolver(), 1)

	var seen int
	incomplete, err := s.Run(context.Background(), SweepParams{
		Rarities:  []catalog.Rarity{catalog.Consumer},
		FeeRate:   0.15,
		MinProfit: -100,
	}, func(Opportunity) bool {
		seen++
		return false
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if incomplete {
		t.Error("caller-requested stop must not be reported as incomplete")
	}
	if seen != 1 {
		t.Errorf("emitted = %d, want 1", seen)
	}
}

func TestSweep_CancelledContextIsIncomplete(t *testing.T) {
	s := NewSweeper(mixedStore(t), mixedResolver(), 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	incomplete, err := s.Run(ctx, SweepParams{
		Rarities: []catalog.Rarity{catalog.Consumer},
	}, func(Opportunity) bool { return true })
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !incomplete {
		t.Error("cancelled sweep must report incomplete")
	}
}

func TestSweep_UnpricedAnchorSkipsCandidate(t *testing.T) {
	// Resolver knows the outputs but not the input.
	resolver := mapResolver{prices: map[string]float64{
		"Out1 (Field-Tested)": 2.00,
		"Out2 (Field-Tested)": 3.00,
		"Out3 (Field-Tested)": 4.00,
	}}
	s := NewSweeper(oneCollectionStore(t), resolver, 2)

	opps, incomplete, err := s.Collect(context.Background(), SweepParams{
		Rarities:  []catalog.Rarity{catalog.Consumer},
		FeeRate:   0.15,
		MinProfit: -100,
	})
	if err != nil || incomplete {
		t.Fatalf("Collect = (%v, %v)", incomplete, err)
	}
	if len(opps) != 0 {
		t.Errorf("opportunities = %d, want 0; zero results is a normal outcome", len(opps))
	}
}

func TestCollect_RanksAndPages(t *testing.T) {
	s := NewSweeper(mixedStore(t), mixedResolver(), 4)
	params := SweepParams{
		Rarities:  []catalog.Rarity{catalog.Consumer},
		FeeRate:   0.15,
		MinProfit: -100,
	}

	all, _, err := s.Collect(context.Background(), params)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	for i := 1; i < len(all); i++ {
		if all[i].Profit > all[i-1].Profit {
			t.Fatalf("results not sorted by profit: %v before %v", all[i-1].Profit, all[i].Profit)
		}
	}

	params.Offset = 2
	params.MaxResults = 3
	page, _, err := s.Collect(context.Background(), params)
	if err != nil {
		t.Fatalf("Collect page: %v", err)
	}
	if len(page) != 3 {
		t.Fatalf("page len = %d, want 3", len(page))
	}

	params.Offset = len(all) + 5
	empty, _, err := s.Collect(context.Background(), params)
	if err != nil {
		t.Fatalf("Collect past end: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("past-end page len = %d, want 0", len(empty))
	}
}

func TestRank_TiesBrokenByROI(t *testing.T) {
	opps := []Opportunity{
		{Profit: 1.0, ROI: 10},
		{Profit: 2.0, ROI: 5},
		{Profit: 1.0, ROI: 50},
	}
	Rank(opps)
	if opps[0].Profit != 2.0 {
		t.Fatalf("top profit = %v, want 2.0", opps[0].Profit)
	}
	if opps[1].ROI != 50 || opps[2].ROI != 10 {
		t.Errorf("tie order = %v, %v, want ROI 50 then 10", opps[1].ROI, opps[2].ROI)
	}
}
