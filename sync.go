package moneybook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// ErrSyncInFlight is returned when Sync is called while a cycle is already
// running; sync is not reentrant.
var ErrSyncInFlight = errors.New("sync already in flight")

// Collection names one entity type on the remote replica.
type Collection string

const (
	CollectionEntries  Collection = "entries"
	CollectionAccounts Collection = "accounts"
	CollectionBudgets  Collection = "budgets"
)

var allCollections = []Collection{CollectionEntries, CollectionAccounts, CollectionBudgets}

// Remote is the document-store replica reached over the network: one
// document per entity, full-document overwrites, and a query on the
// updated_at field.
type Remote interface {
	Get(ctx context.Context, collection Collection, id string) (json.RawMessage, error)
	Set(ctx context.Context, collection Collection, id string, doc any) error
	// Query returns all documents of the collection whose updated_at is
	// strictly after the given time.
	Query(ctx context.Context, collection Collection, updatedAfter time.Time) ([]json.RawMessage, error)
}

// SyncState is the externally visible state of the sync engine.
type SyncState string

const (
	SyncIdle    SyncState = "idle"
	SyncSyncing SyncState = "syncing"
	SyncSynced  SyncState = "synced"
	SyncError   SyncState = "error"
)

// SyncStatus is a snapshot of the engine's state for a status surface.
type SyncStatus struct {
	State     SyncState
	LastSync  time.Time
	LastError string
}

// SyncStats are the counts reported by one sync cycle. A conflict is
// counted whenever both sides held a record and the two differed,
// whichever side won.
type SyncStats struct {
	Uploaded   int
	Downloaded int
	Conflicts  int
	Errors     int
}

// SyncEngine reconciles the local entry set with a remote replica using
// last-write-wins resolution on updated_at. Per-record sync is independent;
// there is no multi-record transaction boundary at the remote, so the legs
// of one transaction may land at different times.
type SyncEngine struct {
	store  Store
	remote Remote
	log    *zap.Logger

	inFlight atomic.Bool

	mu       sync.Mutex // guards the status fields
	state    SyncState
	lastSync time.Time
	lastErr  string
}

// NewSyncEngine creates a sync engine. A nil logger defaults to a no-op.
func NewSyncEngine(store Store, remote Remote, log *zap.Logger) *SyncEngine {
	if log == nil {
		log = zap.NewNop()
	}
	return &SyncEngine{store: store, remote: remote, log: log, state: SyncIdle}
}

// Status returns a snapshot of the engine state.
func (s *SyncEngine) Status() SyncStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SyncStatus{State: s.state, LastSync: s.lastSync, LastError: s.lastErr}
}

func (s *SyncEngine) setState(state SyncState, lastErr string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.lastErr = lastErr
}

// localWins reports whether the local record wins the last-write-wins
// resolution. It is a pure function of the two updated_at values; an exact
// tie goes to the remote, a deterministic but arbitrary choice.
func localWins(localUpdated, remoteUpdated time.Time) bool {
	return localUpdated.After(remoteUpdated)
}

// Sync runs one reconciliation cycle: upload everything changed locally
// since the last cycle, download remote changes, and resolve records
// changed on both sides one by one. Record-level failures are tallied in
// Errors and do not abort the rest of the batch; the last-sync cutoff only
// advances on a clean cycle so failed records are retried next time.
func (s *SyncEngine) Sync(ctx context.Context) (SyncStats, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return SyncStats{}, ErrSyncInFlight
	}
	defer s.inFlight.Store(false)

	s.setState(SyncSyncing, "")
	start := time.Now().UTC().Truncate(time.Millisecond)
	since := s.lastSyncTime()

	var stats SyncStats
	// Snapshot the remote change set before uploading anything, so a record
	// changed on both sides is decided by resolution, not by upload order.
	changes := s.fetchRemote(ctx, since, &stats)
	s.upload(ctx, since, changes, &stats)
	for _, col := range allCollections {
		for _, doc := range changes[col] {
			if err := s.reconcile(ctx, col, doc, &stats); err != nil {
				stats.Errors++
				s.log.Warn("reconcile failed", zap.String("collection", string(col)), zap.Error(err))
			}
		}
	}

	if stats.Errors > 0 {
		msg := fmt.Sprintf("%d items failed to sync", stats.Errors)
		s.setState(SyncError, msg)
		s.log.Warn("sync finished with errors",
			zap.Int("uploaded", stats.Uploaded),
			zap.Int("downloaded", stats.Downloaded),
			zap.Int("conflicts", stats.Conflicts),
			zap.Int("errors", stats.Errors))
		return stats, nil
	}

	if err := s.store.PutMeta(MetaLastSync, start.Format(time.RFC3339Nano)); err != nil {
		s.setState(SyncError, err.Error())
		return stats, fmt.Errorf("advance last sync: %w", err)
	}
	s.mu.Lock()
	s.lastSync = start
	s.mu.Unlock()
	s.setState(SyncSynced, "")
	s.log.Info("sync complete",
		zap.Int("uploaded", stats.Uploaded),
		zap.Int("downloaded", stats.Downloaded),
		zap.Int("conflicts", stats.Conflicts))
	return stats, nil
}

func (s *SyncEngine) lastSyncTime() time.Time {
	v, err := s.store.Meta(MetaLastSync)
	if err != nil {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return t
}

// fetchRemote queries each collection for documents changed since the
// cutoff. A failed query is tallied and the collection skipped for this
// cycle.
func (s *SyncEngine) fetchRemote(ctx context.Context, since time.Time, stats *SyncStats) map[Collection][]json.RawMessage {
	changes := make(map[Collection][]json.RawMessage, len(allCollections))
	for _, col := range allCollections {
		docs, err := s.remote.Query(ctx, col, since)
		if err != nil {
			stats.Errors++
			s.log.Warn("query failed", zap.String("collection", string(col)), zap.Error(err))
			continue
		}
		changes[col] = docs
	}
	return changes
}

// contestedIDs extracts the document ids of a remote change set.
func contestedIDs(docs []json.RawMessage) map[string]bool {
	ids := make(map[string]bool, len(docs))
	for _, doc := range docs {
		var head struct {
			ID string `json:"id"`
		}
		if json.Unmarshal(doc, &head) == nil && head.ID != "" {
			ids[head.ID] = true
		}
	}
	return ids
}

// upload pushes every locally changed record to the remote as a
// full-document overwrite. Records also changed on the remote side are
// left to resolution instead.
func (s *SyncEngine) upload(ctx context.Context, since time.Time, changes map[Collection][]json.RawMessage, stats *SyncStats) {
	entries, err := s.store.EntriesUpdatedAfter(since)
	if err != nil {
		stats.Errors++
	} else {
		contested := contestedIDs(changes[CollectionEntries])
		for _, e := range entries {
			if contested[e.ID] {
				continue
			}
			s.set(ctx, CollectionEntries, e.ID, e, stats)
		}
	}
	accounts, err := s.store.AccountsUpdatedAfter(since)
	if err != nil {
		stats.Errors++
	} else {
		contested := contestedIDs(changes[CollectionAccounts])
		for _, a := range accounts {
			if contested[a.ID] {
				continue
			}
			s.set(ctx, CollectionAccounts, a.ID, a, stats)
		}
	}
	budgets, err := s.store.BudgetsUpdatedAfter(since)
	if err != nil {
		stats.Errors++
	} else {
		contested := contestedIDs(changes[CollectionBudgets])
		for _, b := range budgets {
			if contested[b.ID] {
				continue
			}
			s.set(ctx, CollectionBudgets, b.ID, b, stats)
		}
	}
}

func (s *SyncEngine) set(ctx context.Context, col Collection, id string, doc any, stats *SyncStats) {
	if err := s.remote.Set(ctx, col, id, doc); err != nil {
		stats.Errors++
		s.log.Warn("upload failed", zap.String("collection", string(col)), zap.String("id", id), zap.Error(err))
		return
	}
	stats.Uploaded++
}

// reconcile resolves one remote document against the local copy. Decoding
// is per-collection and exhaustive: an unknown collection is a programming
// error, not data to merge blindly.
func (s *SyncEngine) reconcile(ctx context.Context, col Collection, doc json.RawMessage, stats *SyncStats) error {
	switch col {
	case CollectionEntries:
		var remote LedgerEntry
		if err := json.Unmarshal(doc, &remote); err != nil {
			return fmt.Errorf("decode entry: %w", err)
		}
		local, err := s.store.Entry(remote.ID)
		if errors.Is(err, ErrNotFound) {
			stats.Downloaded++
			return s.store.PutEntry(remote)
		}
		if err != nil {
			return err
		}
		return s.resolveRecord(ctx, col, remote.ID, local, remote, local.UpdatedAt, remote.UpdatedAt, stats, func() error {
			return s.store.PutEntry(remote)
		})
	case CollectionAccounts:
		var remote Account
		if err := json.Unmarshal(doc, &remote); err != nil {
			return fmt.Errorf("decode account: %w", err)
		}
		local, err := s.store.Account(remote.ID)
		if errors.Is(err, ErrNotFound) {
			stats.Downloaded++
			return s.store.PutAccount(remote)
		}
		if err != nil {
			return err
		}
		return s.resolveRecord(ctx, col, remote.ID, local, remote, local.UpdatedAt, remote.UpdatedAt, stats, func() error {
			return s.store.PutAccount(remote)
		})
	case CollectionBudgets:
		var remote Budget
		if err := json.Unmarshal(doc, &remote); err != nil {
			return fmt.Errorf("decode budget: %w", err)
		}
		local, err := s.store.Budget(remote.ID)
		if errors.Is(err, ErrNotFound) {
			stats.Downloaded++
			return s.store.PutBudget(remote)
		}
		if err != nil {
			return err
		}
		return s.resolveRecord(ctx, col, remote.ID, local, remote, local.UpdatedAt, remote.UpdatedAt, stats, func() error {
			return s.store.PutBudget(remote)
		})
	default:
		return fmt.Errorf("unknown collection %q", col)
	}
}

// resolveRecord applies last-write-wins between a local and a remote copy
// of the same record. Local wins strictly newer: the local copy is pushed
// back to the remote. Otherwise the remote copy overwrites the local one.
// _version and _device_id are diagnostics only and never take part in the
// decision.
func (s *SyncEngine) resolveRecord(ctx context.Context, col Collection, id string, local, remote any, localUpdated, remoteUpdated time.Time, stats *SyncStats, overwriteLocal func() error) error {
	if sameDoc(local, remote) {
		return nil
	}
	stats.Conflicts++
	if localWins(localUpdated, remoteUpdated) {
		s.log.Debug("conflict: local wins", zap.String("collection", string(col)), zap.String("id", id))
		if err := s.remote.Set(ctx, col, id, local); err != nil {
			return fmt.Errorf("re-upload %s/%s: %w", col, id, err)
		}
		stats.Uploaded++
		return nil
	}
	s.log.Debug("conflict: remote wins", zap.String("collection", string(col)), zap.String("id", id))
	if err := overwriteLocal(); err != nil {
		return fmt.Errorf("overwrite %s/%s: %w", col, id, err)
	}
	stats.Downloaded++
	return nil
}

// sameDoc compares two records by their canonical JSON form.
func sameDoc(a, b any) bool {
	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	return errA == nil && errB == nil && bytes.Equal(ja, jb)
}
