package moneybook

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// BalanceEngine computes balances and aggregates from the persisted entry
// set. All of its methods are pure reads and may run concurrently with each
// other.
type BalanceEngine struct {
	store Store
	rates *RateResolver
}

// NewBalanceEngine creates a balance engine over the given store.
func NewBalanceEngine(s Store) *BalanceEngine {
	return &BalanceEngine{store: s, rates: NewRateResolver(s)}
}

// AccountBalance sums amount_account over every entry referencing the
// account, with no date filter. The result is in the account's native
// currency.
func (b *BalanceEngine) AccountBalance(accountID string) (decimal.Decimal, error) {
	entries, err := b.store.EntriesByAccount(accountID)
	if err != nil {
		return decimal.Decimal{}, err
	}
	sum := decimal.Zero
	for _, e := range entries {
		sum = sum.Add(e.AmountAccount)
	}
	return sum, nil
}

// AccountBalanceAtDate sums amount_account over entries dated on or before
// 'on'. It is the basis for historical reconstruction.
func (b *BalanceEngine) AccountBalanceAtDate(accountID string, on Date) (decimal.Decimal, error) {
	entries, err := b.store.EntriesByAccount(accountID)
	if err != nil {
		return decimal.Decimal{}, err
	}
	sum := decimal.Zero
	for _, e := range entries {
		if e.Date.After(on) {
			continue
		}
		sum = sum.Add(e.AmountAccount)
	}
	return sum, nil
}

// BalancePoint is one day of a balance history: the running balance at the
// end of that calendar day.
type BalancePoint struct {
	Date    Date
	Balance decimal.Decimal
}

// BalanceHistory walks all entries of the account within [from, to] in
// chronological order, accumulating a running balance seeded with the
// balance just before 'from'. Same-day entries collapse into a single
// point, the day's last value wins.
func (b *BalanceEngine) BalanceHistory(accountID string, from, to Date) ([]BalancePoint, error) {
	running, err := b.AccountBalanceAtDate(accountID, from.Add(-1))
	if err != nil {
		return nil, err
	}
	entries, err := b.store.EntriesByAccount(accountID)
	if err != nil {
		return nil, err
	}

	r := NewRange(from, to)
	points := make([]BalancePoint, 0)
	for _, e := range entries {
		if !r.Contains(e.Date) {
			continue
		}
		running = running.Add(e.AmountAccount)
		if n := len(points); n > 0 && points[n-1].Date == e.Date {
			points[n-1].Balance = running
			continue
		}
		points = append(points, BalancePoint{Date: e.Date, Balance: running})
	}
	return points, nil
}

// BudgetTotal sums amount_budget over entries referencing the budget within
// [from, to]. Entries without a budget amount are excluded. The result is
// in the budget's currency.
func (b *BalanceEngine) BudgetTotal(budgetID string, from, to Date) (decimal.Decimal, error) {
	entries, err := b.store.EntriesByBudget(budgetID)
	if err != nil {
		return decimal.Decimal{}, err
	}
	r := NewRange(from, to)
	sum := decimal.Zero
	for _, e := range entries {
		if e.AmountBudget == nil || !r.Contains(e.Date) {
			continue
		}
		sum = sum.Add(*e.AmountBudget)
	}
	return sum, nil
}

// NetWorthResult carries a net-worth figure plus the ids of the accounts
// that could not be converted for lack of a current rate. A non-empty
// SkippedAccounts means Value is a partial, best-effort figure.
type NetWorthResult struct {
	Value           decimal.Decimal
	Currency        string
	SkippedAccounts []string
}

// NetWorth sums the balances of asset and liability accounts flagged
// include_in_net_worth, each converted into displayCurrency at the current
// rate as of today. Liability balances are negative under the zero-sum
// convention, so the plain sum already nets debt against assets. Accounts
// whose current rate is missing are skipped and reported in the result
// rather than failing the whole computation.
func (b *BalanceEngine) NetWorth(displayCurrency string) (NetWorthResult, error) {
	if err := ValidateCurrency(displayCurrency); err != nil {
		return NetWorthResult{}, err
	}
	accounts, err := b.store.Accounts()
	if err != nil {
		return NetWorthResult{}, err
	}

	today := Today()
	result := NetWorthResult{Value: decimal.Zero, Currency: displayCurrency}
	for _, a := range accounts {
		if !a.IncludeInNetWorth {
			continue
		}
		if a.Type != Asset && a.Type != Liability {
			continue
		}
		balance, err := b.AccountBalance(a.ID)
		if err != nil {
			return NetWorthResult{}, fmt.Errorf("balance of %q: %w", a.ID, err)
		}
		rate, ok, err := b.rates.FindRate(a.Currency, displayCurrency, today)
		if err != nil {
			return NetWorthResult{}, err
		}
		if !ok {
			result.SkippedAccounts = append(result.SkippedAccounts, a.ID)
			continue
		}
		converted := roundAmount(balance.Mul(rate), displayCurrency)
		result.Value = result.Value.Add(converted)
	}
	return result, nil
}
