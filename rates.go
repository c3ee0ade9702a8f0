package moneybook

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrRateNotFound is a data-completeness problem: the caller must supply a
// rate or change the date/currency. There is no implicit rate of 1 except
// when the two currencies are identical.
var ErrRateNotFound = errors.New("no exchange rate found")

// RateResolver looks up conversion rates for a currency pair as of a date.
type RateResolver struct {
	store Store
}

// NewRateResolver creates a resolver over the given store.
func NewRateResolver(s Store) *RateResolver {
	return &RateResolver{store: s}
}

// FindRate returns the conversion rate from 'from' to 'to' as of 'on':
// among all stored snapshots for the pair dated on or before 'on', the most
// recent one wins. Identical currencies convert at exactly 1 without a
// lookup. ok is false when no usable snapshot exists.
func (r *RateResolver) FindRate(from, to string, on Date) (rate decimal.Decimal, ok bool, err error) {
	if from == to {
		return decimal.NewFromInt(1), true, nil
	}
	snapshots, err := r.store.RatesFor(from, to)
	if err != nil {
		return decimal.Decimal{}, false, fmt.Errorf("rates for %s/%s: %w", from, to, err)
	}
	var best ExchangeRate
	for _, s := range snapshots {
		if s.Date.After(on) {
			continue
		}
		if !ok || s.Date.After(best.Date) {
			best, ok = s, true
		}
	}
	if !ok {
		return decimal.Decimal{}, false, nil
	}
	return best.Rate, true, nil
}

// FrozenRates is the conversion bundle captured once per transaction
// construction. DisplayToBudget is nil when no budget is attributed.
type FrozenRates struct {
	DisplayToAccount decimal.Decimal
	DisplayToBudget  *decimal.Decimal
}

// FreezeRates composes the lookups a new leg needs: display→account, and
// display→budget when budgetCurrency is non-empty. Any missing required
// rate fails the whole operation with ErrRateNotFound.
func (r *RateResolver) FreezeRates(displayCurrency, accountCurrency, budgetCurrency string, on Date) (FrozenRates, error) {
	var fr FrozenRates
	rate, ok, err := r.FindRate(displayCurrency, accountCurrency, on)
	if err != nil {
		return fr, err
	}
	if !ok {
		return fr, fmt.Errorf("%s to %s on %s: %w", displayCurrency, accountCurrency, on, ErrRateNotFound)
	}
	fr.DisplayToAccount = rate

	if budgetCurrency != "" {
		rate, ok, err := r.FindRate(displayCurrency, budgetCurrency, on)
		if err != nil {
			return fr, err
		}
		if !ok {
			return fr, fmt.Errorf("%s to %s on %s: %w", displayCurrency, budgetCurrency, on, ErrRateNotFound)
		}
		fr.DisplayToBudget = &rate
	}
	return fr, nil
}
