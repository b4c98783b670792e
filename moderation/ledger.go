package moderation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/chatwarden/warden/moderation/userstore"
)

// Ledger tracks per-user reputation on top of a plain get/put UserStore.
//
// All mutations of one user's record serialize on a per-user lock, so
// concurrent read-modify-write cycles never lose an update; different users
// never block each other. Store failures surface as errors so callers can
// skip dependent actions instead of acting on stale or default data.
type Ledger struct {
	Store    userstore.UserStore
	Baseline int

	locks *xsync.MapOf[string, *sync.Mutex]
}

func NewLedger(store userstore.UserStore, baseline int) *Ledger {
	return &Ledger{
		Store:    store,
		Baseline: baseline,
		locks:    xsync.NewMapOf[string, *sync.Mutex](),
	}
}

func (l *Ledger) lockUser(userID string) func() {
	mu, _ := l.locks.LoadOrStore(userID, &sync.Mutex{})
	mu.Lock()
	return mu.Unlock
}

// reads or creates the record; caller must hold the user lock
func (l *Ledger) loadOrCreate(ctx context.Context, userID string) (*userstore.UserRecord, bool, error) {
	rec, err := l.Store.GetUser(ctx, userID)
	if err != nil {
		return nil, false, fmt.Errorf("reading user record: %w", err)
	}
	if rec != nil {
		return rec, false, nil
	}
	return &userstore.UserRecord{
		UserID: userID,
		Rating: l.Baseline,
	}, true, nil
}

// Get returns the user's current rating, creating the record at the baseline
// if absent. A pure read: never applies a delta.
func (l *Ledger) Get(ctx context.Context, userID string) (int, error) {
	unlock := l.lockUser(userID)
	defer unlock()

	rec, created, err := l.loadOrCreate(ctx, userID)
	if err != nil {
		return 0, err
	}
	if created {
		if err := l.Store.PutUser(ctx, rec); err != nil {
			return 0, fmt.Errorf("persisting user record: %w", err)
		}
	}
	return rec.Rating, nil
}

// Adjust atomically adds delta to the user's rating and returns the new value.
func (l *Ledger) Adjust(ctx context.Context, userID string, delta int) (int, error) {
	unlock := l.lockUser(userID)
	defer unlock()

	rec, _, err := l.loadOrCreate(ctx, userID)
	if err != nil {
		return 0, err
	}
	rec.Rating += delta
	if err := l.Store.PutUser(ctx, rec); err != nil {
		return 0, fmt.Errorf("persisting user record: %w", err)
	}
	return rec.Rating, nil
}

// ApplyViolation applies the penalty delta, bumps the violation count, and
// records the flagged content, all under one lock and one store write.
// Returns the updated record.
func (l *Ledger) ApplyViolation(ctx context.Context, userID string, penalty int, text string) (*userstore.UserRecord, error) {
	unlock := l.lockUser(userID)
	defer unlock()

	rec, _, err := l.loadOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	rec.Rating -= penalty
	rec.ViolationCount++
	rec.LastViolationText = text
	rec.LastViolationAt = &now
	if err := l.Store.PutUser(ctx, rec); err != nil {
		return nil, fmt.Errorf("persisting user record: %w", err)
	}
	return rec, nil
}

// Record returns the full user record (admin inspection).
func (l *Ledger) Record(ctx context.Context, userID string) (*userstore.UserRecord, error) {
	unlock := l.lockUser(userID)
	defer unlock()
	rec, _, err := l.loadOrCreate(ctx, userID)
	return rec, err
}
