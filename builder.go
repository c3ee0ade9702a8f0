package moneybook

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Builder composes balanced sets of ledger entries for the common
// transaction shapes. It only builds legs; persistence goes through
// Ledger.CreateTransaction, which validates the batch first. All rates are
// frozen once per construction call, so a later edit of the rate history
// does not touch entries built before it.
type Builder struct {
	store Store
	rates *RateResolver
	newID func() string
}

// NewBuilder creates a builder over the given store.
func NewBuilder(s Store) *Builder {
	return &Builder{store: s, rates: NewRateResolver(s), newID: uuid.NewString}
}

// Split is one caller-supplied leg of a MultiSplit transaction. Amount is
// signed and expressed in the transaction's display currency.
type Split struct {
	AccountID string
	Amount    decimal.Decimal
	BudgetID  string
}

// Income builds the two legs of an income transaction: the asset account
// gains amount, the income account loses it. amount must be positive and is
// expressed in the display currency.
func (b *Builder) Income(on Date, description string, amount decimal.Decimal, currency, incomeAccountID, assetAccountID, budgetID string, status EntryStatus) ([]LedgerEntry, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("income amount %s must be positive", amount)
	}
	return b.build(on, description, currency, status, []Split{
		{AccountID: assetAccountID, Amount: amount},
		{AccountID: incomeAccountID, Amount: amount.Neg(), BudgetID: budgetID},
	})
}

// Expense builds the two legs of an expense transaction: the expense
// account gains amount, the asset account loses it.
func (b *Builder) Expense(on Date, description string, amount decimal.Decimal, currency, expenseAccountID, assetAccountID, budgetID string, status EntryStatus) ([]LedgerEntry, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("expense amount %s must be positive", amount)
	}
	return b.build(on, description, currency, status, []Split{
		{AccountID: expenseAccountID, Amount: amount, BudgetID: budgetID},
		{AccountID: assetAccountID, Amount: amount.Neg()},
	})
}

// Transfer builds the two legs of a transfer: destination gains, source
// loses. Transfers carry no budget attribution.
func (b *Builder) Transfer(on Date, description string, amount decimal.Decimal, currency, fromAccountID, toAccountID string, status EntryStatus) ([]LedgerEntry, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("transfer amount %s must be positive", amount)
	}
	return b.build(on, description, currency, status, []Split{
		{AccountID: toAccountID, Amount: amount},
		{AccountID: fromAccountID, Amount: amount.Neg()},
	})
}

// MultiSplit builds one leg per split. The caller is responsible for
// supplying splits whose display amounts sum to zero; the validation engine
// enforces it before anything is persisted, nothing is auto-balanced here.
func (b *Builder) MultiSplit(on Date, description, currency string, splits []Split, status EntryStatus) ([]LedgerEntry, error) {
	return b.build(on, description, currency, status, splits)
}

// build is the generic pipeline shared by all constructors: resolve the
// referenced accounts and budgets, freeze one rate bundle per leg, and
// compute the account- and budget-currency amounts from the display amount.
func (b *Builder) build(on Date, description, currency string, status EntryStatus, splits []Split) ([]LedgerEntry, error) {
	if err := ValidateCurrency(currency); err != nil {
		return nil, err
	}
	if on.IsZero() {
		on = Today()
	}
	if status == "" {
		status = StatusConfirmed
	}
	if _, err := ParseEntryStatus(string(status)); err != nil {
		return nil, err
	}

	txID := b.newID()
	entries := make([]LedgerEntry, 0, len(splits))
	for i, sp := range splits {
		account, err := b.store.Account(sp.AccountID)
		if err != nil {
			return nil, fmt.Errorf("leg %d account %q: %w", i, sp.AccountID, ErrAccountNotFound)
		}
		var budgetCurrency string
		if sp.BudgetID != "" {
			budget, err := b.store.Budget(sp.BudgetID)
			if err != nil {
				return nil, fmt.Errorf("leg %d budget %q: %w", i, sp.BudgetID, ErrBudgetNotFound)
			}
			budgetCurrency = budget.Currency
		}

		frozen, err := b.rates.FreezeRates(currency, account.Currency, budgetCurrency, on)
		if err != nil {
			return nil, err
		}

		e := LedgerEntry{
			ID:                   b.newID(),
			TransactionID:        txID,
			Index:                i,
			Date:                 on,
			Description:          description,
			Status:               status,
			CurrencyDisplay:      currency,
			AmountDisplay:        sp.Amount,
			AccountID:            sp.AccountID,
			AmountAccount:        roundAmount(sp.Amount.Mul(frozen.DisplayToAccount), account.Currency),
			RateDisplayToAccount: frozen.DisplayToAccount,
		}
		if sp.BudgetID != "" {
			amount := roundAmount(sp.Amount.Mul(*frozen.DisplayToBudget), budgetCurrency)
			e.BudgetID = sp.BudgetID
			e.AmountBudget = &amount
			e.RateDisplayToBudget = frozen.DisplayToBudget
		}
		entries = append(entries, e)
	}
	return entries, nil
}
