package moneybook

import (
	"testing"

	"github.com/shopspring/decimal"
)

// dec is a helper for tests to build decimals from constants.
func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := Open(NewMemStore())
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}
	return l
}

func mustAccount(t *testing.T, l *Ledger, name string, typ AccountType, currency string, networth bool) Account {
	t.Helper()
	a, err := l.CreateAccount(name, typ, currency, networth)
	if err != nil {
		t.Fatalf("create account %s: %v", name, err)
	}
	return a
}

func mustBudget(t *testing.T, l *Ledger, name string, category BudgetCategory, currency string) Budget {
	t.Helper()
	b, err := l.CreateBudget(name, category, currency)
	if err != nil {
		t.Fatalf("create budget %s: %v", name, err)
	}
	return b
}

func mustRate(t *testing.T, l *Ledger, from, to, date, rate string) ExchangeRate {
	t.Helper()
	r, err := l.PutRate(from, to, MustParseDate(date), dec(rate), SourceManual)
	if err != nil {
		t.Fatalf("put rate %s/%s: %v", from, to, err)
	}
	return r
}
