package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"tradeup-scout/internal/catalog"
	"tradeup-scout/internal/logger"
)

// PriceResolver resolves a trustworthy unit price for an item. Implemented by
// validator.Pricer.
type PriceResolver interface {
	Resolve(ctx context.Context, item catalog.Item) (float64, bool, error)
}

// Sweeper runs opportunity sweeps: it enumerates candidate configurations,
// prices them through the validation pipeline, and streams the profitable
// ones to the caller.
type Sweeper struct {
	gen     *Generator
	pricer  PriceResolver
	workers int
}

func NewSweeper(store catalog.Store, pricer PriceResolver, workers int) *Sweeper {
	if workers < 1 {
		workers = 1
	}
	return &Sweeper{gen: NewGenerator(store), pricer: pricer, workers: workers}
}

// Run evaluates every candidate for the requested rarities and calls emit for
// each opportunity that clears the filters. emit returning false stops the
// sweep early; that is a normal completion. The returned incomplete flag is
// true only when the context ended the sweep before all candidates were
// evaluated. Workers complete out of order, so emitted opportunities are
// unordered; Collect sorts them.
func (s *Sweeper) Run(ctx context.Context, params SweepParams, emit func(Opportunity) bool) (incomplete bool, err error) {
	rarities := params.Rarities
	if len(rarities) == 0 {
		rarities = catalog.InputRarities
	}

	var candidates []Candidate
	for _, rarity := range rarities {
		batch, err := s.gen.Configurations(rarity, params)
		if err != nil {
			return false, err
		}
		candidates = append(candidates, batch...)
	}
	logger.Info("SWEEP", fmt.Sprintf("Evaluating %d candidate configurations", len(candidates)))

	runCtx, stop := context.WithCancel(ctx)
	defer stop()

	var (
		mu      sync.Mutex
		stopped bool // emit asked to stop; not an abort
	)
	g, runCtx := errgroup.WithContext(runCtx)
	g.SetLimit(s.workers)

	for _, cand := range candidates {
		cand := cand
		if runCtx.Err() != nil {
			break
		}
		g.Go(func() error {
			opp, ok, err := s.price(runCtx, cand, params)
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			if opp.Profit < params.MinProfit {
				return nil
			}
			if params.GuaranteedOnly && !opp.Guaranteed {
				return nil
			}
			mu.Lock()
			defer mu.Unlock()
			if stopped {
				return nil
			}
			if !emit(opp) {
				stopped = true
				stop()
			}
			return nil
		})
	}

	err = g.Wait()
	if stopped {
		// Early exit requested by the caller: swallow our own cancellation.
		if errors.Is(err, context.Canceled) {
			err = nil
		}
		return false, err
	}
	if ctx.Err() != nil {
		// Deadline or external cancel: partial results, flag it. Everything
		// priced so far is already persisted in the validation cache.
		logger.Warn("SWEEP", "Sweep aborted before all candidates were evaluated")
		return true, nil
	}
	return false, err
}

// Collect runs a sweep to completion (or MaxResults qualifying hits), ranks
// the results, and applies paging.
func (s *Sweeper) Collect(ctx context.Context, params SweepParams) ([]Opportunity, bool, error) {
	var opps []Opportunity
	limit := 0
	if params.MaxResults > 0 {
		limit = params.Offset + params.MaxResults
	}
	incomplete, err := s.Run(ctx, params, func(o Opportunity) bool {
		opps = append(opps, o)
		return limit == 0 || len(opps) < limit
	})
	if err != nil {
		return nil, false, err
	}
	Rank(opps)
	if params.Offset > 0 {
		if params.Offset >= len(opps) {
			opps = nil
		} else {
			opps = opps[params.Offset:]
		}
	}
	if params.MaxResults > 0 && len(opps) > params.MaxResults {
		opps = opps[:params.MaxResults]
	}
	return opps, incomplete, nil
}

// price resolves input and output prices for one candidate and evaluates it.
// ok is false when the candidate cannot be costed or is not viable; only
// context cancellation and cache-store failures surface as errors.
func (s *Sweeper) price(ctx context.Context, c Candidate, params SweepParams) (Opportunity, bool, error) {
	if !viable(c.Counts, c.K) {
		return Opportunity{}, false, nil
	}

	// Price the anchor of each contributing collection. A collection whose
	// anchor cannot be priced sinks the whole candidate.
	type pricedAnchor struct {
		item  catalog.Item
		price float64
		count int
	}
	anchors := make([]pricedAnchor, 0, len(c.Anchors))
	names := make([]string, 0, len(c.Anchors))
	for name := range c.Anchors {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		anchor := c.Anchors[name]
		price, ok, err := s.pricer.Resolve(ctx, anchor)
		if err != nil {
			return Opportunity{}, false, err
		}
		if !ok {
			return Opportunity{}, false, nil
		}
		if params.MaxInputPrice > 0 && price > params.MaxInputPrice {
			return Opportunity{}, false, nil
		}
		anchors = append(anchors, pricedAnchor{item: anchor, price: price, count: c.Counts[name]})
	}

	// Build the ten input slots and the representative float: the
	// count-weighted mean of each anchor's wear-bucket midpoint, scaled
	// against the union of the anchors' float ranges.
	var (
		inputs   []InputItem
		cost     float64
		repFloat float64
		inRange  catalog.FloatRange
	)
	for i, a := range anchors {
		mid := a.item.Wear.Midpoint()
		repFloat += mid * float64(a.count) / ContractSize
		cost += a.price * float64(a.count)
		if i == 0 {
			inRange = a.item.FloatRange
		} else {
			if a.item.FloatRange.Min < inRange.Min {
				inRange.Min = a.item.FloatRange.Min
			}
			if a.item.FloatRange.Max > inRange.Max {
				inRange.Max = a.item.FloatRange.Max
			}
		}
		for n := 0; n < a.count; n++ {
			inputs = append(inputs, InputItem{Item: a.item, Float: mid, Price: a.price})
		}
	}

	// Scale, predict condition, and price every distinct output.
	outputs := make([]OutputCandidate, 0, len(c.Outputs))
	for _, base := range c.Outputs {
		f, wear := ScaleFloat(repFloat, inRange, base.Range)
		out := OutputCandidate{
			BaseName:    base.BaseName,
			Collection:  base.Collection,
			Probability: outputProbability(c.Counts[base.Collection], c.K[base.Collection]),
			Float:       f,
			Wear:        wear,
		}
		if variant, ok := base.Variants[wear]; ok {
			price, priced, err := s.pricer.Resolve(ctx, variant)
			if err != nil {
				return Opportunity{}, false, err
			}
			out.Price = price
			out.Priced = priced
		}
		outputs = append(outputs, out)
	}

	return evaluate(c, inputs, outputs, cost, params.FeeRate), true, nil
}
