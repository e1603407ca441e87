package validator

import (
	"context"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/singleflight"

	"tradeup-scout/internal/catalog"
	"tradeup-scout/internal/logger"
)

// RejectReason says why a validation produced no accepted price. These are
// data-quality outcomes, not errors.
type RejectReason string

const (
	ReasonNone                RejectReason = ""
	ReasonNegativeCache       RejectReason = "negative_cache"
	ReasonNoAuthoritative     RejectReason = "no_authoritative_price"
	ReasonImplausiblePrice    RejectReason = "implausible_price"
	ReasonDiscrepancyTooLarge RejectReason = "discrepancy_too_large"
)

// Outcome is the result of validating one external quote.
type Outcome struct {
	Accepted bool
	Price    float64 // the authoritative price, when accepted
	Reason   RejectReason
}

func accepted(price float64) Outcome { return Outcome{Accepted: true, Price: price} }
func rejected(r RejectReason) Outcome { return Outcome{Reason: r} }

// AuthoritativeSource supplies trusted quotes. Implementations own their rate
// limiting, timeouts and retries; an exhausted retry budget surfaces as
// (0, false, nil), not an error.
type AuthoritativeSource interface {
	Quote(ctx context.Context, itemID string) (float64, bool, error)
}

// Price plausibility bounds. The floor is the marketplace minimum; ceilings
// are per-rarity sanity caps from observed market behavior.
const priceFloor = 0.03

var priceCeilings = map[catalog.Rarity]float64{
	catalog.Consumer:   3.0,
	catalog.Industrial: 10.0,
	catalog.MilSpec:    25.0,
	catalog.Restricted: 100.0,
	catalog.Classified: 300.0,
	catalog.Covert:     1000.0,
}

const defaultCeiling = 50.0

// Plausible reports whether an authoritative price passes the per-rarity
// bound check.
func Plausible(price float64, rarity catalog.Rarity) bool {
	ceiling, ok := priceCeilings[rarity]
	if !ok {
		ceiling = defaultCeiling
	}
	return price >= priceFloor && price <= ceiling
}

// Validator reconciles external quotes against the authoritative source,
// backed by a persistent trust cache with durable negative caching.
type Validator struct {
	store        RecordStore
	auth         AuthoritativeSource
	tolerancePct float64
	freshFor     time.Duration
	now          func() time.Time
	group        singleflight.Group
}

// Option configures a Validator.
type Option func(*Validator)

// WithClock injects the time source (used by tests to control freshness).
func WithClock(now func() time.Time) Option {
	return func(v *Validator) { v.now = now }
}

// WithTolerance overrides the discrepancy tolerance percentage.
func WithTolerance(pct float64) Option {
	return func(v *Validator) { v.tolerancePct = pct }
}

// WithFreshness overrides how long a valid record stays fresh.
func WithFreshness(d time.Duration) Option {
	return func(v *Validator) { v.freshFor = d }
}

// New creates a Validator with a 20% tolerance and 7-day freshness window.
func New(store RecordStore, auth AuthoritativeSource, opts ...Option) *Validator {
	v := &Validator{
		store:        store,
		auth:         auth,
		tolerancePct: 20.0,
		freshFor:     7 * 24 * time.Hour,
		now:          time.Now,
	}
	for _, o := range opts {
		o(v)
	}
	return v
}

// Validate reconciles an external quote for itemID against the authoritative
// source. Cache order: a durable invalid record rejects with no network call;
// a fresh valid record returns the cached authoritative price; anything else
// triggers one authoritative lookup. The authoritative price always wins over
// the external quote. Every status transition is persisted before returning.
//
// Concurrent calls for the same item are coalesced, so the at-most-one-lookup
// guarantee holds across the worker pool too.
func (v *Validator) Validate(ctx context.Context, itemID string, externalQuote float64, rarity catalog.Rarity) (Outcome, error) {
	res, err, _ := v.group.Do(itemID, func() (interface{}, error) {
		return v.validate(ctx, itemID, externalQuote, rarity)
	})
	if err != nil {
		return Outcome{}, err
	}
	return res.(Outcome), nil
}

func (v *Validator) validate(ctx context.Context, itemID string, externalQuote float64, rarity catalog.Rarity) (Outcome, error) {
	rec, found, err := v.store.Get(itemID)
	if err != nil {
		return Outcome{}, fmt.Errorf("validation cache get %q: %w", itemID, err)
	}
	if found {
		switch rec.Status {
		case StatusInvalid:
			return rejected(ReasonNegativeCache), nil
		case StatusValid:
			if v.now().Sub(rec.CheckedAt) < v.freshFor {
				return accepted(rec.AuthPrice), nil
			}
			// Stale: fall through and revalidate.
		}
	}

	authPrice, ok, err := v.auth.Quote(ctx, itemID)
	if err != nil {
		// Context cancellation aborts without poisoning the cache; the
		// item simply stays unvalidated for the next sweep.
		return Outcome{}, fmt.Errorf("authoritative quote %q: %w", itemID, err)
	}
	if !ok {
		if err := v.mark(itemID, StatusInvalid, 0, 0); err != nil {
			return Outcome{}, err
		}
		logger.Warn("VALIDATE", fmt.Sprintf("no authoritative price for %s, marked invalid", itemID))
		return rejected(ReasonNoAuthoritative), nil
	}

	if !Plausible(authPrice, rarity) {
		if err := v.mark(itemID, StatusInvalid, 0, 0); err != nil {
			return Outcome{}, err
		}
		logger.Warn("VALIDATE", fmt.Sprintf("implausible price $%.2f for %s (%s), marked invalid", authPrice, itemID, rarity))
		return rejected(ReasonImplausiblePrice), nil
	}

	discrepancy := math.Abs(externalQuote-authPrice) / authPrice * 100
	if discrepancy > v.tolerancePct {
		if err := v.mark(itemID, StatusInvalid, 0, discrepancy); err != nil {
			return Outcome{}, err
		}
		logger.Warn("VALIDATE", fmt.Sprintf("discrepancy %.1f%% for %s (external $%.2f vs authoritative $%.2f), marked invalid",
			discrepancy, itemID, externalQuote, authPrice))
		return rejected(ReasonDiscrepancyTooLarge), nil
	}

	if err := v.mark(itemID, StatusValid, authPrice, discrepancy); err != nil {
		return Outcome{}, err
	}
	return accepted(authPrice), nil
}

func (v *Validator) mark(itemID string, status Status, authPrice, discrepancy float64) error {
	err := v.store.Put(Record{
		ItemID:      itemID,
		Status:      status,
		AuthPrice:   authPrice,
		Discrepancy: discrepancy,
		CheckedAt:   v.now(),
	})
	if err != nil {
		return fmt.Errorf("validation cache put %q: %w", itemID, err)
	}
	return nil
}
