package moneybook

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation errors are caller-input problems: surfaced immediately, never
// retried, and nothing is persisted when one is returned.
var (
	ErrTooFewLegs      = errors.New("transaction needs at least two legs")
	ErrUnbalanced      = errors.New("transaction legs do not sum to zero")
	ErrUnknownAccount  = errors.New("unknown account")
	ErrUnknownBudget   = errors.New("unknown budget")
	ErrInvalidType     = errors.New("invalid account type")
	ErrInvalidCurrency = errors.New("invalid currency code")
	ErrEmptyName       = errors.New("name is empty")
	ErrNonPositiveRate = errors.New("rate must be positive")
	ErrNonFiniteRate   = errors.New("rate must be finite")
)

// balanceTolerance absorbs accumulated rounding across many currency
// conversions, never logic errors: |Σ amount_display| must stay within it.
var balanceTolerance = decimal.New(1, -2) // 0.01

var currencyShapeRE = regexp.MustCompile(`^[A-Z]{3}$`)

// ValidateCurrency checks that code has the ISO-4217 shape (three uppercase
// letters) and is a known currency.
func ValidateCurrency(code string) error {
	if !currencyShapeRE.MatchString(code) {
		return fmt.Errorf("%q: %w", code, ErrInvalidCurrency)
	}
	if !KnownCurrency(code) {
		return fmt.Errorf("%q is not ISO 4217: %w", code, ErrInvalidCurrency)
	}
	return nil
}

// ValidateTransaction checks a complete set of legs for one transaction:
// at least two legs, display amounts summing to zero within the tolerance,
// and all referenced accounts and budgets resolving in the store. It is a
// pure check; callers persist only after it succeeds.
func ValidateTransaction(s Store, entries []LedgerEntry) error {
	if len(entries) < 2 {
		return fmt.Errorf("got %d: %w", len(entries), ErrTooFewLegs)
	}
	sum := decimal.Zero
	for _, e := range entries {
		sum = sum.Add(e.AmountDisplay)
	}
	if sum.Abs().GreaterThan(balanceTolerance) {
		return fmt.Errorf("sum of display amounts is %s: %w", sum, ErrUnbalanced)
	}
	for _, e := range entries {
		if _, err := s.Account(e.AccountID); err != nil {
			return fmt.Errorf("leg %d account %q: %w", e.Index, e.AccountID, ErrUnknownAccount)
		}
		if e.BudgetID != "" {
			if _, err := s.Budget(e.BudgetID); err != nil {
				return fmt.Errorf("leg %d budget %q: %w", e.Index, e.BudgetID, ErrUnknownBudget)
			}
		}
	}
	return nil
}

// ValidateAccount checks an account's type, currency shape and name.
func ValidateAccount(a Account) error {
	if _, err := ParseAccountType(string(a.Type)); err != nil {
		return fmt.Errorf("%q: %w", a.Type, ErrInvalidType)
	}
	if err := ValidateCurrency(a.Currency); err != nil {
		return err
	}
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("account: %w", ErrEmptyName)
	}
	return nil
}

// ValidateBudget checks a budget's category, currency shape and name.
func ValidateBudget(b Budget) error {
	if _, err := ParseBudgetCategory(string(b.Category)); err != nil {
		return fmt.Errorf("%q: %w", b.Category, ErrInvalidType)
	}
	if err := ValidateCurrency(b.Currency); err != nil {
		return err
	}
	if strings.TrimSpace(b.Name) == "" {
		return fmt.Errorf("budget: %w", ErrEmptyName)
	}
	return nil
}

// ValidateExchangeRate checks that a rate snapshot is usable for conversion.
func ValidateExchangeRate(r ExchangeRate) error {
	if !r.Rate.IsPositive() {
		return fmt.Errorf("%s rate %s: %w", r.Key(), r.Rate, ErrNonPositiveRate)
	}
	if err := ValidateCurrency(r.From); err != nil {
		return err
	}
	return ValidateCurrency(r.To)
}

// RateFromFloat converts a float coming from an external feed into a
// decimal rate, rejecting NaN and infinities before decimal conversion.
func RateFromFloat(f float64) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Decimal{}, fmt.Errorf("%v: %w", f, ErrNonFiniteRate)
	}
	if f <= 0 {
		return decimal.Decimal{}, fmt.Errorf("%v: %w", f, ErrNonPositiveRate)
	}
	return decimal.NewFromFloat(f), nil
}
