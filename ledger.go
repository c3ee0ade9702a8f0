package moneybook

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Lookup and integrity errors of the mutation service.
var (
	ErrAccountNotFound = errors.New("account not found")
	ErrBudgetNotFound  = errors.New("budget not found")
	// ErrHasReferences is an integrity violation: it is fatal to the
	// operation, non-retryable, and never downgraded to a warning.
	ErrHasReferences = errors.New("record is referenced by ledger entries")
	// ErrImmutableCurrency rejects currency changes after creation.
	ErrImmutableCurrency = errors.New("currency is immutable after creation")
)

// Ledger is the mutation service of the accounting core: every local write
// of accounts, budgets, rates and entries goes through it, so that
// validation runs before persistence and sync metadata (updated_at,
// _version, _device_id) is stamped consistently.
//
// A Ledger expects a single logical writer; concurrent pure reads through
// the balance engine or rate resolver are fine.
type Ledger struct {
	store    Store
	builder  *Builder
	rates    *RateResolver
	balances *BalanceEngine
	deviceID string
	clock    func() time.Time
	newID    func() string
}

// Open creates a ledger service over the store, generating and persisting a
// device identity on first use.
func Open(s Store) (*Ledger, error) {
	l := &Ledger{
		store:    s,
		builder:  NewBuilder(s),
		rates:    NewRateResolver(s),
		balances: NewBalanceEngine(s),
		clock:    time.Now,
		newID:    uuid.NewString,
	}
	id, err := s.Meta(MetaDeviceID)
	if errors.Is(err, ErrNotFound) {
		id = l.newID()
		if err := s.PutMeta(MetaDeviceID, id); err != nil {
			return nil, fmt.Errorf("persist device id: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("read device id: %w", err)
	}
	l.deviceID = id
	return l, nil
}

// DeviceID returns the replica's persisted-once identity.
func (l *Ledger) DeviceID() string { return l.deviceID }

// Store exposes the underlying store for read-side collaborators.
func (l *Ledger) Store() Store { return l.store }

// Balances returns the read-side balance engine.
func (l *Ledger) Balances() *BalanceEngine { return l.balances }

// Rates returns the read-side rate resolver.
func (l *Ledger) Rates() *RateResolver { return l.rates }

// now returns the wall clock truncated to millisecond, the resolution the
// sync protocol compares.
func (l *Ledger) now() time.Time { return l.clock().UTC().Truncate(time.Millisecond) }

// CreateAccount validates and persists a new account.
func (l *Ledger) CreateAccount(name string, typ AccountType, currency string, includeInNetWorth bool) (Account, error) {
	a := Account{
		ID:                l.newID(),
		Name:              strings.TrimSpace(name),
		Type:              typ,
		Currency:          currency,
		IncludeInNetWorth: includeInNetWorth,
	}
	if err := ValidateAccount(a); err != nil {
		return Account{}, err
	}
	l.stampAccount(&a)
	if err := l.store.PutAccount(a); err != nil {
		return Account{}, err
	}
	return a, nil
}

// UpdateAccount validates and persists changes to an existing account. The
// currency cannot change once entries may depend on it.
func (l *Ledger) UpdateAccount(a Account) (Account, error) {
	current, err := l.store.Account(a.ID)
	if err != nil {
		return Account{}, fmt.Errorf("account %q: %w", a.ID, ErrAccountNotFound)
	}
	if a.Currency != current.Currency {
		return Account{}, fmt.Errorf("account %q: %w", a.ID, ErrImmutableCurrency)
	}
	if err := ValidateAccount(a); err != nil {
		return Account{}, err
	}
	a.Version = current.Version
	l.stampAccount(&a)
	if err := l.store.PutAccount(a); err != nil {
		return Account{}, err
	}
	return a, nil
}

// ArchiveAccount marks an account archived without touching its entries.
func (l *Ledger) ArchiveAccount(id string) (Account, error) {
	a, err := l.store.Account(id)
	if err != nil {
		return Account{}, fmt.Errorf("account %q: %w", id, ErrAccountNotFound)
	}
	a.IsArchived = true
	return l.UpdateAccount(a)
}

// DeleteAccount removes an account. It fails with ErrHasReferences while
// any ledger entry references it, leaving the store unchanged.
func (l *Ledger) DeleteAccount(id string) error {
	if _, err := l.store.Account(id); err != nil {
		return fmt.Errorf("account %q: %w", id, ErrAccountNotFound)
	}
	refs, err := l.store.EntriesByAccount(id)
	if err != nil {
		return err
	}
	if len(refs) > 0 {
		return fmt.Errorf("account %q has %d entries: %w", id, len(refs), ErrHasReferences)
	}
	return l.store.DeleteAccount(id)
}

// CreateBudget validates and persists a new budget.
func (l *Ledger) CreateBudget(name string, category BudgetCategory, currency string) (Budget, error) {
	b := Budget{
		ID:       l.newID(),
		Name:     strings.TrimSpace(name),
		Category: category,
		Currency: currency,
	}
	if err := ValidateBudget(b); err != nil {
		return Budget{}, err
	}
	l.stampBudget(&b)
	if err := l.store.PutBudget(b); err != nil {
		return Budget{}, err
	}
	return b, nil
}

// UpdateBudget validates and persists changes to an existing budget.
func (l *Ledger) UpdateBudget(b Budget) (Budget, error) {
	current, err := l.store.Budget(b.ID)
	if err != nil {
		return Budget{}, fmt.Errorf("budget %q: %w", b.ID, ErrBudgetNotFound)
	}
	if b.Currency != current.Currency {
		return Budget{}, fmt.Errorf("budget %q: %w", b.ID, ErrImmutableCurrency)
	}
	if err := ValidateBudget(b); err != nil {
		return Budget{}, err
	}
	b.Version = current.Version
	l.stampBudget(&b)
	if err := l.store.PutBudget(b); err != nil {
		return Budget{}, err
	}
	return b, nil
}

// DeleteBudget removes a budget. It fails with ErrHasReferences while any
// ledger entry references it.
func (l *Ledger) DeleteBudget(id string) error {
	if _, err := l.store.Budget(id); err != nil {
		return fmt.Errorf("budget %q: %w", id, ErrBudgetNotFound)
	}
	refs, err := l.store.EntriesByBudget(id)
	if err != nil {
		return err
	}
	if len(refs) > 0 {
		return fmt.Errorf("budget %q has %d entries: %w", id, len(refs), ErrHasReferences)
	}
	return l.store.DeleteBudget(id)
}

// PutRate validates and stores a rate snapshot. Only the same
// (from, to, date) key is replaced, other dates are never touched.
func (l *Ledger) PutRate(from, to string, on Date, rate decimal.Decimal, source RateSource) (ExchangeRate, error) {
	r := ExchangeRate{From: from, To: to, Date: on, Rate: rate, Source: source}
	if err := ValidateExchangeRate(r); err != nil {
		return ExchangeRate{}, err
	}
	r.UpdatedAt = l.now()
	if err := l.store.PutRate(r); err != nil {
		return ExchangeRate{}, err
	}
	return r, nil
}

// GetRate returns the exact snapshot stored for (from, to, on), if any.
func (l *Ledger) GetRate(from, to string, on Date) (ExchangeRate, error) {
	return l.store.Rate(from, to, on)
}

// Income builds, validates and persists an income transaction.
func (l *Ledger) Income(on Date, description string, amount decimal.Decimal, currency, incomeAccountID, assetAccountID, budgetID string, status EntryStatus) ([]LedgerEntry, error) {
	entries, err := l.builder.Income(on, description, amount, currency, incomeAccountID, assetAccountID, budgetID, status)
	if err != nil {
		return nil, err
	}
	return l.CreateTransaction(entries)
}

// Expense builds, validates and persists an expense transaction.
func (l *Ledger) Expense(on Date, description string, amount decimal.Decimal, currency, expenseAccountID, assetAccountID, budgetID string, status EntryStatus) ([]LedgerEntry, error) {
	entries, err := l.builder.Expense(on, description, amount, currency, expenseAccountID, assetAccountID, budgetID, status)
	if err != nil {
		return nil, err
	}
	return l.CreateTransaction(entries)
}

// Transfer builds, validates and persists a transfer transaction.
func (l *Ledger) Transfer(on Date, description string, amount decimal.Decimal, currency, fromAccountID, toAccountID string, status EntryStatus) ([]LedgerEntry, error) {
	entries, err := l.builder.Transfer(on, description, amount, currency, fromAccountID, toAccountID, status)
	if err != nil {
		return nil, err
	}
	return l.CreateTransaction(entries)
}

// MultiSplit builds, validates and persists an arbitrary split transaction.
func (l *Ledger) MultiSplit(on Date, description, currency string, splits []Split, status EntryStatus) ([]LedgerEntry, error) {
	entries, err := l.builder.MultiSplit(on, description, currency, splits, status)
	if err != nil {
		return nil, err
	}
	return l.CreateTransaction(entries)
}

// CreateTransaction validates a complete leg set and persists it. Failures
// are atomic: on any validation error no leg is written.
func (l *Ledger) CreateTransaction(entries []LedgerEntry) ([]LedgerEntry, error) {
	if err := ValidateTransaction(l.store, entries); err != nil {
		return nil, err
	}
	now := l.now()
	for i := range entries {
		entries[i].CreatedAt = now
		entries[i].UpdatedAt = now
		entries[i].Version = 1
		entries[i].DeviceID = l.deviceID
	}
	for i, e := range entries {
		if err := l.store.PutEntry(e); err != nil {
			// Roll back the legs already written to keep the batch atomic.
			for _, written := range entries[:i] {
				_ = l.store.DeleteEntry(written.ID)
			}
			return nil, fmt.Errorf("persist leg %d: %w", i, err)
		}
	}
	return entries, nil
}

// Transaction returns all legs of a transaction ordered by leg index.
func (l *Ledger) Transaction(transactionID string) ([]LedgerEntry, error) {
	entries, err := l.store.EntriesByTransaction(transactionID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("transaction %q: %w", transactionID, ErrNotFound)
	}
	return entries, nil
}

// UpdateEntry replaces a single leg. The resulting leg set of the
// transaction must still validate; otherwise nothing is written.
func (l *Ledger) UpdateEntry(e LedgerEntry) (LedgerEntry, error) {
	current, err := l.store.Entry(e.ID)
	if err != nil {
		return LedgerEntry{}, err
	}
	if e.TransactionID != current.TransactionID {
		return LedgerEntry{}, fmt.Errorf("entry %q: transaction_id cannot change", e.ID)
	}
	siblings, err := l.store.EntriesByTransaction(current.TransactionID)
	if err != nil {
		return LedgerEntry{}, err
	}
	next := make([]LedgerEntry, 0, len(siblings))
	for _, s := range siblings {
		if s.ID == e.ID {
			next = append(next, e)
		} else {
			next = append(next, s)
		}
	}
	if err := ValidateTransaction(l.store, next); err != nil {
		return LedgerEntry{}, err
	}
	e.CreatedAt = current.CreatedAt
	e.Version = current.Version + 1
	e.DeviceID = l.deviceID
	e.UpdatedAt = l.now()
	if err := l.store.PutEntry(e); err != nil {
		return LedgerEntry{}, err
	}
	return e, nil
}

// DeleteEntry removes one leg, but only if the remaining legs of its
// transaction still form a valid balanced set. A deletion that would break
// the zero-sum invariant is rejected; use DeleteTransaction to drop the
// whole set.
func (l *Ledger) DeleteEntry(id string) error {
	e, err := l.store.Entry(id)
	if err != nil {
		return err
	}
	siblings, err := l.store.EntriesByTransaction(e.TransactionID)
	if err != nil {
		return err
	}
	remaining := make([]LedgerEntry, 0, len(siblings)-1)
	for _, s := range siblings {
		if s.ID != id {
			remaining = append(remaining, s)
		}
	}
	if err := ValidateTransaction(l.store, remaining); err != nil {
		return fmt.Errorf("deleting entry %q would leave an invalid transaction: %w", id, err)
	}
	return l.store.DeleteEntry(id)
}

// DeleteTransaction removes every leg of a transaction.
func (l *Ledger) DeleteTransaction(transactionID string) error {
	entries, err := l.Transaction(transactionID)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := l.store.DeleteEntry(e.ID); err != nil {
			return fmt.Errorf("delete leg %d: %w", e.Index, err)
		}
	}
	return nil
}

func (l *Ledger) stampAccount(a *Account) {
	a.UpdatedAt = l.now()
	a.Version++
	a.DeviceID = l.deviceID
}

func (l *Ledger) stampBudget(b *Budget) {
	b.UpdatedAt = l.now()
	b.Version++
	b.DeviceID = l.deviceID
}
