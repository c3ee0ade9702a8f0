package moneybook

import (
	"errors"
	"time"
)

// ErrNotFound is returned by stores when no record exists for a key.
var ErrNotFound = errors.New("not found")

// Meta keys used by the ledger service and the sync engine.
const (
	MetaDeviceID = "device_id"
	MetaLastSync = "last_sync"
)

// Store is the local persistence contract: key-value/document semantics per
// entity type with secondary lookups on account_id, budget_id,
// transaction_id and updated_at. Implementations must be safe for
// concurrent readers; mutations are serialized by the callers (one logical
// writer per replica).
//
// Put operations are full-document overwrites. Lookup methods return
// ErrNotFound (possibly wrapped) when the key does not resolve.
type Store interface {
	Entry(id string) (LedgerEntry, error)
	PutEntry(e LedgerEntry) error
	DeleteEntry(id string) error
	Entries() ([]LedgerEntry, error)
	EntriesByAccount(accountID string) ([]LedgerEntry, error)
	EntriesByBudget(budgetID string) ([]LedgerEntry, error)
	EntriesByTransaction(transactionID string) ([]LedgerEntry, error)
	EntriesUpdatedAfter(t time.Time) ([]LedgerEntry, error)

	Account(id string) (Account, error)
	PutAccount(a Account) error
	DeleteAccount(id string) error
	Accounts() ([]Account, error)
	AccountsUpdatedAfter(t time.Time) ([]Account, error)

	Budget(id string) (Budget, error)
	PutBudget(b Budget) error
	DeleteBudget(id string) error
	Budgets() ([]Budget, error)
	BudgetsUpdatedAfter(t time.Time) ([]Budget, error)

	Rate(from, to string, on Date) (ExchangeRate, error)
	PutRate(r ExchangeRate) error
	RatesFor(from, to string) ([]ExchangeRate, error)

	Meta(key string) (string, error)
	PutMeta(key, value string) error

	Close() error
}
