package moneybook

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

// The worked example: income of 5000 USD into a GBP asset account against a
// EUR income account, with USD→EUR=0.85 and USD→GBP=0.75 frozen on the day.
func TestIncomeAcrossThreeCurrencies(t *testing.T) {
	l := testLedger(t)
	salary := mustAccount(t, l, "Salary", Income, "EUR", false)
	checking := mustAccount(t, l, "Checking", Asset, "GBP", true)
	mustRate(t, l, "USD", "EUR", "2026-02-01", "0.85")
	mustRate(t, l, "USD", "GBP", "2026-02-01", "0.75")

	entries, err := l.Income(MustParseDate("2026-02-01"), "February pay", dec("5000"), "USD", salary.ID, checking.ID, "", "")
	if err != nil {
		t.Fatalf("Income: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d legs, want 2", len(entries))
	}

	asset, income := entries[0], entries[1]
	if asset.AccountID != checking.ID || income.AccountID != salary.ID {
		t.Fatalf("legs attributed to wrong accounts: %s, %s", asset.AccountID, income.AccountID)
	}
	if !asset.AmountDisplay.Equal(dec("5000")) || !asset.AmountAccount.Equal(dec("3750")) {
		t.Errorf("asset leg = display %s account %s, want 5000 / 3750", asset.AmountDisplay, asset.AmountAccount)
	}
	if !income.AmountDisplay.Equal(dec("-5000")) || !income.AmountAccount.Equal(dec("-4250")) {
		t.Errorf("income leg = display %s account %s, want -5000 / -4250", income.AmountDisplay, income.AmountAccount)
	}
	if sum := asset.AmountDisplay.Add(income.AmountDisplay); !sum.IsZero() {
		t.Errorf("display amounts sum to %s, want 0", sum)
	}
	if !asset.RateDisplayToAccount.Equal(dec("0.75")) || !income.RateDisplayToAccount.Equal(dec("0.85")) {
		t.Errorf("frozen rates = %s, %s; want 0.75, 0.85", asset.RateDisplayToAccount, income.RateDisplayToAccount)
	}
	if asset.TransactionID != income.TransactionID {
		t.Error("legs carry different transaction ids")
	}
	if asset.Index != 0 || income.Index != 1 {
		t.Errorf("leg indexes = %d, %d; want 0, 1", asset.Index, income.Index)
	}
	if asset.Status != StatusConfirmed {
		t.Errorf("default status = %s, want confirmed", asset.Status)
	}
}

// Editing the rate history after the fact must not move amounts that were
// frozen at creation time.
func TestRateFreezing(t *testing.T) {
	l := testLedger(t)
	salary := mustAccount(t, l, "Salary", Income, "EUR", false)
	checking := mustAccount(t, l, "Checking", Asset, "EUR", true)
	mustRate(t, l, "USD", "EUR", "2026-02-01", "0.85")

	entries, err := l.Income(MustParseDate("2026-02-01"), "pay", dec("100"), "USD", salary.ID, checking.ID, "", "")
	if err != nil {
		t.Fatalf("Income: %v", err)
	}

	// Replace the same (from,to,date) snapshot with a very different rate.
	mustRate(t, l, "USD", "EUR", "2026-02-01", "2.00")

	for _, e := range entries {
		stored, err := l.Store().Entry(e.ID)
		if err != nil {
			t.Fatalf("Entry: %v", err)
		}
		if !stored.AmountAccount.Equal(e.AmountAccount) {
			t.Errorf("leg %d amount_account moved from %s to %s after rate edit", e.Index, e.AmountAccount, stored.AmountAccount)
		}
		if !stored.RateDisplayToAccount.Equal(dec("0.85")) {
			t.Errorf("leg %d frozen rate = %s, want 0.85", e.Index, stored.RateDisplayToAccount)
		}
	}
}

func TestExpenseLegsAndBudget(t *testing.T) {
	l := testLedger(t)
	food := mustAccount(t, l, "Food", Expense, "EUR", false)
	checking := mustAccount(t, l, "Checking", Asset, "EUR", true)
	groceries := mustBudget(t, l, "Groceries", BudgetExpense, "USD")
	mustRate(t, l, "EUR", "USD", "2026-01-01", "1.10")

	entries, err := l.Expense(MustParseDate("2026-01-10"), "market", dec("50"), "EUR", food.ID, checking.ID, groceries.ID, "")
	if err != nil {
		t.Fatalf("Expense: %v", err)
	}
	expense, asset := entries[0], entries[1]
	if !expense.AmountDisplay.Equal(dec("50")) || !asset.AmountDisplay.Equal(dec("-50")) {
		t.Errorf("legs = %s, %s; want 50, -50", expense.AmountDisplay, asset.AmountDisplay)
	}
	if expense.BudgetID != groceries.ID {
		t.Errorf("budget attributed to %q, want the expense leg", expense.BudgetID)
	}
	if expense.AmountBudget == nil || !expense.AmountBudget.Equal(dec("55")) {
		t.Errorf("amount_budget = %v, want 55", expense.AmountBudget)
	}
	if asset.BudgetID != "" || asset.AmountBudget != nil {
		t.Error("asset leg must carry no budget attribution")
	}
}

func TestTransferHasNoBudget(t *testing.T) {
	l := testLedger(t)
	checking := mustAccount(t, l, "Checking", Asset, "EUR", true)
	savings := mustAccount(t, l, "Savings", Asset, "EUR", true)

	entries, err := l.Transfer(MustParseDate("2026-01-10"), "stash", dec("200"), "EUR", checking.ID, savings.ID, "")
	if err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	to, from := entries[0], entries[1]
	if to.AccountID != savings.ID || !to.AmountDisplay.Equal(dec("200")) {
		t.Errorf("destination leg = %s %s", to.AccountID, to.AmountDisplay)
	}
	if from.AccountID != checking.ID || !from.AmountDisplay.Equal(dec("-200")) {
		t.Errorf("source leg = %s %s", from.AccountID, from.AmountDisplay)
	}
	for _, e := range entries {
		if e.BudgetID != "" {
			t.Errorf("leg %d carries budget %q", e.Index, e.BudgetID)
		}
	}
}

func TestMultiSplitZeroSum(t *testing.T) {
	l := testLedger(t)
	checking := mustAccount(t, l, "Checking", Asset, "EUR", true)
	food := mustAccount(t, l, "Food", Expense, "EUR", false)
	household := mustAccount(t, l, "Household", Expense, "EUR", false)

	entries, err := l.MultiSplit(MustParseDate("2026-01-10"), "supermarket", "EUR", []Split{
		{AccountID: food.ID, Amount: dec("32.50")},
		{AccountID: household.ID, Amount: dec("17.50")},
		{AccountID: checking.ID, Amount: dec("-50")},
	}, "")
	if err != nil {
		t.Fatalf("MultiSplit: %v", err)
	}
	sum := decimal.Zero
	for _, e := range entries {
		sum = sum.Add(e.AmountDisplay)
	}
	if !sum.IsZero() {
		t.Errorf("display amounts sum to %s, want 0", sum)
	}
}

func TestMultiSplitIsNotAutoBalanced(t *testing.T) {
	l := testLedger(t)
	checking := mustAccount(t, l, "Checking", Asset, "EUR", true)
	food := mustAccount(t, l, "Food", Expense, "EUR", false)

	_, err := l.MultiSplit(MustParseDate("2026-01-10"), "oops", "EUR", []Split{
		{AccountID: food.ID, Amount: dec("30")},
		{AccountID: checking.ID, Amount: dec("-50")},
	}, "")
	if !errors.Is(err, ErrUnbalanced) {
		t.Fatalf("got %v, want ErrUnbalanced", err)
	}
	entries, err := l.Store().Entries()
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("failure persisted %d legs, want none", len(entries))
	}
}

func TestBuilderFailureModes(t *testing.T) {
	l := testLedger(t)
	checking := mustAccount(t, l, "Checking", Asset, "EUR", true)
	salary := mustAccount(t, l, "Salary", Income, "EUR", false)

	t.Run("account not found", func(t *testing.T) {
		_, err := l.Income(MustParseDate("2026-01-10"), "pay", dec("10"), "EUR", "missing", checking.ID, "", "")
		if !errors.Is(err, ErrAccountNotFound) {
			t.Fatalf("got %v, want ErrAccountNotFound", err)
		}
	})
	t.Run("budget not found", func(t *testing.T) {
		_, err := l.Income(MustParseDate("2026-01-10"), "pay", dec("10"), "EUR", salary.ID, checking.ID, "missing", "")
		if !errors.Is(err, ErrBudgetNotFound) {
			t.Fatalf("got %v, want ErrBudgetNotFound", err)
		}
	})
	t.Run("rate not found", func(t *testing.T) {
		_, err := l.Income(MustParseDate("2026-01-10"), "pay", dec("10"), "USD", salary.ID, checking.ID, "", "")
		if !errors.Is(err, ErrRateNotFound) {
			t.Fatalf("got %v, want ErrRateNotFound", err)
		}
	})
	t.Run("nothing persisted on failure", func(t *testing.T) {
		entries, err := l.Store().Entries()
		if err != nil {
			t.Fatalf("Entries: %v", err)
		}
		if len(entries) != 0 {
			t.Fatalf("failures persisted %d legs", len(entries))
		}
	})
}
