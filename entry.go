package moneybook

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// AccountType is a typed string identifying the accounting role of an account.
type AccountType string

// The five account types of the double-entry model.
const (
	Asset     AccountType = "asset"
	Liability AccountType = "liability"
	Income    AccountType = "income"
	Expense   AccountType = "expense"
	Equity    AccountType = "equity"
)

// ParseAccountType parses a string into an AccountType.
func ParseAccountType(s string) (AccountType, error) {
	switch AccountType(s) {
	case Asset, Liability, Income, Expense, Equity:
		return AccountType(s), nil
	default:
		return "", fmt.Errorf("unknown account type: %q", s)
	}
}

// BudgetCategory tells whether a budget tracks money coming in or going out.
type BudgetCategory string

const (
	BudgetIncome  BudgetCategory = "income"
	BudgetExpense BudgetCategory = "expense"
)

// ParseBudgetCategory parses a string into a BudgetCategory.
func ParseBudgetCategory(s string) (BudgetCategory, error) {
	switch BudgetCategory(s) {
	case BudgetIncome, BudgetExpense:
		return BudgetCategory(s), nil
	default:
		return "", fmt.Errorf("unknown budget category: %q", s)
	}
}

// EntryStatus marks a ledger entry as projected (planned) or confirmed (booked).
type EntryStatus string

const (
	StatusProjected EntryStatus = "projected"
	StatusConfirmed EntryStatus = "confirmed"
)

// ParseEntryStatus parses a string into an EntryStatus.
func ParseEntryStatus(s string) (EntryStatus, error) {
	switch EntryStatus(s) {
	case StatusProjected, StatusConfirmed:
		return EntryStatus(s), nil
	default:
		return "", fmt.Errorf("unknown entry status: %q", s)
	}
}

// RateSource records where an exchange rate came from.
type RateSource string

const (
	SourceManual RateSource = "manual"
	SourceAPI    RateSource = "api"
)

// LedgerEntry is one leg ("split") of a transaction, the atomic persisted
// unit. All legs of a transaction share a transaction_id and duplicate the
// header fields (date, description, status, tags) for query locality.
//
// The amount is carried three times: in the display currency (the one the
// zero-sum invariant is checked against), in the owning account's native
// currency, and optionally in the attributed budget's currency. The
// conversion rates are frozen at creation time and never recomputed.
type LedgerEntry struct {
	ID            string `json:"id"`
	TransactionID string `json:"transaction_id"`
	Index         int    `json:"idx"`

	Date            Date        `json:"date"`
	Description     string      `json:"description"`
	Status          EntryStatus `json:"status"`
	RecurringRuleID string      `json:"recurring_rule_id,omitempty"`
	SearchTags      []string    `json:"search_tags,omitempty"`

	CurrencyDisplay string          `json:"currency_display"`
	AmountDisplay   decimal.Decimal `json:"amount_display"`

	AccountID            string          `json:"account_id"`
	AmountAccount        decimal.Decimal `json:"amount_account"`
	RateDisplayToAccount decimal.Decimal `json:"rate_display_to_account"`

	BudgetID            string           `json:"budget_id,omitempty"`
	AmountBudget        *decimal.Decimal `json:"amount_budget,omitempty"`
	RateDisplayToBudget *decimal.Decimal `json:"rate_display_to_budget,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	DeviceID  string    `json:"_device_id,omitempty"`
	Version   int64     `json:"_version"`
}

// Clone returns a deep copy of the entry.
func (e LedgerEntry) Clone() LedgerEntry {
	c := e
	if e.SearchTags != nil {
		c.SearchTags = append([]string(nil), e.SearchTags...)
	}
	if e.AmountBudget != nil {
		v := *e.AmountBudget
		c.AmountBudget = &v
	}
	if e.RateDisplayToBudget != nil {
		v := *e.RateDisplayToBudget
		c.RateDisplayToBudget = &v
	}
	return c
}

// Account is a named bucket of value with an immutable native currency.
// Accounts are referenced by ledger entries and cannot be deleted while
// entries reference them.
type Account struct {
	ID                string      `json:"id"`
	Name              string      `json:"name"`
	Type              AccountType `json:"type"`
	Currency          string      `json:"currency"`
	IncludeInNetWorth bool        `json:"include_in_net_worth"`
	IsSystemDefault   bool        `json:"is_system_default"`
	IsArchived        bool        `json:"is_archived"`
	UpdatedAt         time.Time   `json:"updated_at"`
	DeviceID          string      `json:"_device_id,omitempty"`
	Version           int64       `json:"_version"`
}

// Budget is an optional attribution target for ledger entries, with its
// own immutable currency.
type Budget struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Category   BudgetCategory `json:"category"`
	Currency   string         `json:"currency"`
	IsArchived bool           `json:"is_archived"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeviceID   string         `json:"_device_id,omitempty"`
	Version    int64          `json:"_version"`
}

// ExchangeRate is a point-in-time conversion snapshot. Its identity is the
// composite (from, to, date); storing the same key again replaces the old
// snapshot, other dates are never touched.
type ExchangeRate struct {
	From      string          `json:"from"`
	To        string          `json:"to"`
	Date      Date            `json:"date"`
	Rate      decimal.Decimal `json:"rate"`
	Source    RateSource      `json:"source"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Key returns the composite identity of the rate.
func (r ExchangeRate) Key() string {
	return r.From + "/" + r.To + "/" + r.Date.String()
}
