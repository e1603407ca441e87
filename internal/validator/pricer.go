package validator

import (
	"context"
	"fmt"

	"tradeup-scout/internal/catalog"
	"tradeup-scout/internal/logger"
)

// QuoteSource supplies external, untrusted quotes.
type QuoteSource interface {
	Price(ctx context.Context, itemID string) (float64, bool, error)
}

// Pricer resolves the trusted price of a catalog item: an external quote from
// the oracle (falling back to the catalog's last-known price when the oracle
// has none), reconciled through the Validator. A quote that fails validation
// resolves to no price; it never aborts the caller's sweep.
type Pricer struct {
	Oracle QuoteSource
	V      *Validator
}

// Resolve returns the accepted price for item, or false when no trustworthy
// price is available. Errors are reserved for cancellation and cache store
// failures; oracle trouble just leaves the item unpriced.
func (p *Pricer) Resolve(ctx context.Context, item catalog.Item) (float64, bool, error) {
	quote, ok, err := p.Oracle.Price(ctx, item.ID)
	if err != nil {
		if ctx.Err() != nil {
			return 0, false, ctx.Err()
		}
		logger.Debug("PRICER", fmt.Sprintf("oracle error for %s: %v", item.ID, err))
		ok = false
	}
	if !ok {
		if item.Price <= 0 {
			return 0, false, nil
		}
		quote = item.Price
	}

	out, err := p.V.Validate(ctx, item.ID, quote, item.Rarity)
	if err != nil {
		return 0, false, err
	}
	if !out.Accepted {
		return 0, false, nil
	}
	return out.Price, true, nil
}
