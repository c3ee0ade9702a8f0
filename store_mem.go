package moneybook

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemStore is a volatile Store backed by maps. It is the zero-config
// default and the fixture of choice in tests; badgerstore holds the
// persistent implementation.
type MemStore struct {
	mu       sync.RWMutex
	entries  map[string]LedgerEntry
	accounts map[string]Account
	budgets  map[string]Budget
	rates    map[string]ExchangeRate
	meta     map[string]string
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		entries:  make(map[string]LedgerEntry),
		accounts: make(map[string]Account),
		budgets:  make(map[string]Budget),
		rates:    make(map[string]ExchangeRate),
		meta:     make(map[string]string),
	}
}

var _ Store = (*MemStore)(nil)

func (s *MemStore) Entry(id string) (LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	if !ok {
		return LedgerEntry{}, fmt.Errorf("entry %q: %w", id, ErrNotFound)
	}
	return e.Clone(), nil
}

func (s *MemStore) PutEntry(e LedgerEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[e.ID] = e.Clone()
	return nil
}

func (s *MemStore) DeleteEntry(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}

func (s *MemStore) Entries() ([]LedgerEntry, error) {
	return s.selectEntries(func(LedgerEntry) bool { return true }), nil
}

func (s *MemStore) EntriesByAccount(accountID string) ([]LedgerEntry, error) {
	return s.selectEntries(func(e LedgerEntry) bool { return e.AccountID == accountID }), nil
}

func (s *MemStore) EntriesByBudget(budgetID string) ([]LedgerEntry, error) {
	return s.selectEntries(func(e LedgerEntry) bool { return e.BudgetID == budgetID }), nil
}

func (s *MemStore) EntriesByTransaction(transactionID string) ([]LedgerEntry, error) {
	return s.selectEntries(func(e LedgerEntry) bool { return e.TransactionID == transactionID }), nil
}

func (s *MemStore) EntriesUpdatedAfter(t time.Time) ([]LedgerEntry, error) {
	return s.selectEntries(func(e LedgerEntry) bool { return e.UpdatedAt.After(t) }), nil
}

// selectEntries returns matching entries sorted by date then transaction
// and leg index, so balance walks see a chronological sequence.
func (s *MemStore) selectEntries(keep func(LedgerEntry) bool) []LedgerEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]LedgerEntry, 0)
	for _, e := range s.entries {
		if keep(e) {
			out = append(out, e.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Date.Compare(out[j].Date); c != 0 {
			return c < 0
		}
		if out[i].TransactionID != out[j].TransactionID {
			return out[i].TransactionID < out[j].TransactionID
		}
		return out[i].Index < out[j].Index
	})
	return out
}

func (s *MemStore) Account(id string) (Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[id]
	if !ok {
		return Account{}, fmt.Errorf("account %q: %w", id, ErrNotFound)
	}
	return a, nil
}

func (s *MemStore) PutAccount(a Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[a.ID] = a
	return nil
}

func (s *MemStore) DeleteAccount(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.accounts, id)
	return nil
}

func (s *MemStore) Accounts() ([]Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemStore) AccountsUpdatedAfter(t time.Time) ([]Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Account, 0)
	for _, a := range s.accounts {
		if a.UpdatedAt.After(t) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemStore) Budget(id string) (Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.budgets[id]
	if !ok {
		return Budget{}, fmt.Errorf("budget %q: %w", id, ErrNotFound)
	}
	return b, nil
}

func (s *MemStore) PutBudget(b Budget) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budgets[b.ID] = b
	return nil
}

func (s *MemStore) DeleteBudget(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.budgets, id)
	return nil
}

func (s *MemStore) Budgets() ([]Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Budget, 0, len(s.budgets))
	for _, b := range s.budgets {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemStore) BudgetsUpdatedAfter(t time.Time) ([]Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Budget, 0)
	for _, b := range s.budgets {
		if b.UpdatedAt.After(t) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemStore) Rate(from, to string, on Date) (ExchangeRate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key := ExchangeRate{From: from, To: to, Date: on}.Key()
	r, ok := s.rates[key]
	if !ok {
		return ExchangeRate{}, fmt.Errorf("rate %s: %w", key, ErrNotFound)
	}
	return r, nil
}

func (s *MemStore) PutRate(r ExchangeRate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rates[r.Key()] = r
	return nil
}

func (s *MemStore) RatesFor(from, to string) ([]ExchangeRate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ExchangeRate, 0)
	for _, r := range s.rates {
		if r.From == from && r.To == to {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *MemStore) Meta(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.meta[key]
	if !ok {
		return "", fmt.Errorf("meta %q: %w", key, ErrNotFound)
	}
	return v, nil
}

func (s *MemStore) PutMeta(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.meta[key] = value
	return nil
}

func (s *MemStore) Close() error { return nil }
