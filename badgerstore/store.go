// Package badgerstore persists the moneybook entity set in BadgerDB, one
// JSON document per record under a per-collection key prefix. Secondary
// lookups (account, budget, transaction, updated_at) are prefix scans,
// which is plenty for the data volumes of a personal ledger.
package badgerstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/mwrz/moneybook"
)

const (
	prefixEntry   = "entry/"
	prefixAccount = "account/"
	prefixBudget  = "budget/"
	prefixRate    = "rate/"
	prefixMeta    = "meta/"
)

// Store is a persistent moneybook.Store over BadgerDB.
type Store struct {
	db *badger.DB
}

var _ moneybook.Store = (*Store)(nil)

// Open initializes the store at path.
func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) get(key string, v any) error {
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, v)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("%s: %w", key, moneybook.ErrNotFound)
	}
	return err
}

func (s *Store) put(key string, v any) error {
	doc, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), doc)
	})
}

func (s *Store) delete(key string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// scan walks all documents under a prefix, decoding each into a fresh T and
// keeping the ones the filter accepts.
func scan[T any](s *Store, prefix string, keep func(T) bool) ([]T, error) {
	out := make([]T, 0)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var v T
				if err := json.Unmarshal(val, &v); err != nil {
					return err
				}
				if keep(v) {
					out = append(out, v)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return out, err
}

func (s *Store) Entry(id string) (moneybook.LedgerEntry, error) {
	var e moneybook.LedgerEntry
	if err := s.get(prefixEntry+id, &e); err != nil {
		return moneybook.LedgerEntry{}, err
	}
	return e, nil
}

func (s *Store) PutEntry(e moneybook.LedgerEntry) error { return s.put(prefixEntry+e.ID, e) }

func (s *Store) DeleteEntry(id string) error { return s.delete(prefixEntry + id) }

func (s *Store) Entries() ([]moneybook.LedgerEntry, error) {
	return s.scanEntries(func(moneybook.LedgerEntry) bool { return true })
}

func (s *Store) EntriesByAccount(accountID string) ([]moneybook.LedgerEntry, error) {
	return s.scanEntries(func(e moneybook.LedgerEntry) bool { return e.AccountID == accountID })
}

func (s *Store) EntriesByBudget(budgetID string) ([]moneybook.LedgerEntry, error) {
	return s.scanEntries(func(e moneybook.LedgerEntry) bool { return e.BudgetID == budgetID })
}

func (s *Store) EntriesByTransaction(transactionID string) ([]moneybook.LedgerEntry, error) {
	return s.scanEntries(func(e moneybook.LedgerEntry) bool { return e.TransactionID == transactionID })
}

func (s *Store) EntriesUpdatedAfter(t time.Time) ([]moneybook.LedgerEntry, error) {
	return s.scanEntries(func(e moneybook.LedgerEntry) bool { return e.UpdatedAt.After(t) })
}

func (s *Store) scanEntries(keep func(moneybook.LedgerEntry) bool) ([]moneybook.LedgerEntry, error) {
	out, err := scan(s, prefixEntry, keep)
	if err != nil {
		return nil, err
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
	return out, nil
}

func (s *Store) Account(id string) (moneybook.Account, error) {
	var a moneybook.Account
	if err := s.get(prefixAccount+id, &a); err != nil {
		return moneybook.Account{}, err
	}
	return a, nil
}

func (s *Store) PutAccount(a moneybook.Account) error { return s.put(prefixAccount+a.ID, a) }

func (s *Store) DeleteAccount(id string) error { return s.delete(prefixAccount + id) }

func (s *Store) Accounts() ([]moneybook.Account, error) {
	out, err := scan(s, prefixAccount, func(moneybook.Account) bool { return true })
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) AccountsUpdatedAfter(t time.Time) ([]moneybook.Account, error) {
	return scan(s, prefixAccount, func(a moneybook.Account) bool { return a.UpdatedAt.After(t) })
}

func (s *Store) Budget(id string) (moneybook.Budget, error) {
	var b moneybook.Budget
	if err := s.get(prefixBudget+id, &b); err != nil {
		return moneybook.Budget{}, err
	}
	return b, nil
}

func (s *Store) PutBudget(b moneybook.Budget) error { return s.put(prefixBudget+b.ID, b) }

func (s *Store) DeleteBudget(id string) error { return s.delete(prefixBudget + id) }

func (s *Store) Budgets() ([]moneybook.Budget, error) {
	out, err := scan(s, prefixBudget, func(moneybook.Budget) bool { return true })
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) BudgetsUpdatedAfter(t time.Time) ([]moneybook.Budget, error) {
	return scan(s, prefixBudget, func(b moneybook.Budget) bool { return b.UpdatedAt.After(t) })
}

func (s *Store) Rate(from, to string, on moneybook.Date) (moneybook.ExchangeRate, error) {
	var r moneybook.ExchangeRate
	key := prefixRate + moneybook.ExchangeRate{From: from, To: to, Date: on}.Key()
	if err := s.get(key, &r); err != nil {
		return moneybook.ExchangeRate{}, err
	}
	return r, nil
}

func (s *Store) PutRate(r moneybook.ExchangeRate) error { return s.put(prefixRate+r.Key(), r) }

func (s *Store) RatesFor(from, to string) ([]moneybook.ExchangeRate, error) {
	out, err := scan(s, prefixRate+from+"/"+to+"/", func(moneybook.ExchangeRate) bool { return true })
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *Store) Meta(key string) (string, error) {
	var v string
	if err := s.get(prefixMeta+key, &v); err != nil {
		return "", err
	}
	return v, nil
}

func (s *Store) PutMeta(key, value string) error { return s.put(prefixMeta+key, value) }
