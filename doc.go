// Package moneybook is the accounting and synchronization core of a
// local-first personal-finance ledger.
//
// It records balanced multi-currency transactions as sets of ledger
// entries (one signed leg per account), computes balances over time,
// and reconciles divergent copies of the ledger across devices with a
// last-write-wins scheme keyed by update timestamps.
//
// Every amount is carried three times: in the display currency the user
// typed it in, in the owning account's native currency, and optionally
// in the attributed budget's currency. The conversion rates are frozen
// at creation time so historical reports stay stable even if the rate
// history is edited later.
//
// The package is written against the Store interface; badgerstore
// provides the persistent implementation and MemStore a volatile one.
package moneybook
