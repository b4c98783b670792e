package moderation

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
)

// SanctionManager holds the per-user mute state machine: Normal until a
// rating adjustment leaves the user at or below zero, then Muted until the
// release timer fires, revokes the restriction, and restores part of the
// rating.
//
// Mute state held here is authoritative: the manager never re-derives it from
// the gateway's current role listing, which avoids split-brain when a
// restriction is removed externally mid-window.
type SanctionManager struct {
	Logger  *slog.Logger
	Gateway ChatGateway
	Ledger  *Ledger

	Duration     time.Duration
	RestoreBonus int
	NoticeTTL    time.Duration

	mutes *xsync.MapOf[string, *muteEntry]
	locks *xsync.MapOf[string, *sync.Mutex]
}

type muteEntry struct {
	ExpiresAt time.Time
	GuildID   string
	ChannelID string

	timer *time.Timer
}

func NewSanctionManager(logger *slog.Logger, gateway ChatGateway, ledger *Ledger, duration time.Duration, restoreBonus int) *SanctionManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &SanctionManager{
		Logger:       logger.With("system", "sanctions"),
		Gateway:      gateway,
		Ledger:       ledger,
		Duration:     duration,
		RestoreBonus: restoreBonus,
		NoticeTTL:    5 * time.Second,
		mutes:        xsync.NewMapOf[string, *muteEntry](),
		locks:        xsync.NewMapOf[string, *sync.Mutex](),
	}
}

// lockUser serializes Engage and Release for one user. Without it a manual
// unmute landing mid-Engage could strip a restriction before it is applied,
// leaving the user restricted with no release timer to undo it.
func (m *SanctionManager) lockUser(userID string) func() {
	mu, _ := m.locks.LoadOrStore(userID, &sync.Mutex{})
	mu.Lock()
	return mu.Unlock
}

// Muted reports whether the user currently holds an active mute.
func (m *SanctionManager) Muted(userID string) bool {
	_, ok := m.mutes.Load(userID)
	return ok
}

// MuteExpiry returns when the user's active mute ends, if any.
func (m *SanctionManager) MuteExpiry(userID string) (time.Time, bool) {
	entry, ok := m.mutes.Load(userID)
	if !ok {
		return time.Time{}, false
	}
	return entry.ExpiresAt, true
}

// Engage transitions the user to Muted: applies the platform restriction,
// schedules the release timer, and emits a notice.
//
// A user already Muted is left alone (no stacked mute periods, no duplicate
// enforcement). If the gateway refuses the restriction the user stays Normal,
// so the later restoration bonus can never fire for a mute that never took
// effect.
func (m *SanctionManager) Engage(ctx context.Context, userID, guildID, channelID string) error {
	unlock := m.lockUser(userID)
	defer unlock()

	if _, ok := m.mutes.Load(userID); ok {
		return nil
	}

	if err := m.Gateway.ApplyRestriction(ctx, userID, guildID); err != nil {
		enforcementErrorCount.WithLabelValues("apply").Inc()
		m.Logger.Error("failed to apply restriction, leaving user unmuted", "user", userID, "err", err)
		return fmt.Errorf("applying restriction: %w", err)
	}

	// published only after enforcement succeeded; Release finds nothing to
	// undo before this point
	entry := &muteEntry{
		ExpiresAt: time.Now().Add(m.Duration),
		GuildID:   guildID,
		ChannelID: channelID,
	}
	entry.timer = time.AfterFunc(m.Duration, func() {
		m.Release(context.Background(), userID)
	})
	m.mutes.Store(userID, entry)
	muteEngagedCount.Inc()
	m.Logger.Info("user muted", "user", userID, "guild", guildID, "duration", m.Duration)

	if err := m.Gateway.SendNotice(ctx, channelID, fmt.Sprintf("🔇 %s has been muted for misbehaving (back in %s)", userID, m.Duration), m.NoticeTTL); err != nil {
		m.Logger.Warn("failed to send mute notice", "user", userID, "err", err)
	}
	return nil
}

// Release transitions the user back to Normal: revokes the restriction,
// applies the restoration bonus once, and emits a notice. Idempotent: a
// duplicate timer fire or a concurrent manual unmute finds no entry and does
// nothing.
func (m *SanctionManager) Release(ctx context.Context, userID string) {
	unlock := m.lockUser(userID)
	defer unlock()

	entry, loaded := m.mutes.LoadAndDelete(userID)
	if !loaded {
		return
	}
	if entry.timer != nil {
		entry.timer.Stop()
	}

	if err := m.Gateway.RevokeRestriction(ctx, userID, entry.GuildID); err != nil {
		// restriction may already be gone (eg, removed by a human); the mute
		// was served either way, so restoration still applies
		enforcementErrorCount.WithLabelValues("revoke").Inc()
		m.Logger.Warn("failed to revoke restriction", "user", userID, "err", err)
	}

	newRating, err := m.Ledger.Adjust(ctx, userID, m.RestoreBonus)
	if err != nil {
		m.Logger.Error("failed to restore rating after mute", "user", userID, "err", err)
	} else {
		m.Logger.Info("user unmuted", "user", userID, "rating", newRating)
	}
	muteReleasedCount.Inc()

	if err := m.Gateway.SendNotice(ctx, entry.ChannelID, fmt.Sprintf("🔊 %s is no longer muted", userID), m.NoticeTTL); err != nil {
		m.Logger.Warn("failed to send unmute notice", "user", userID, "err", err)
	}
}

// Shutdown stops all pending release timers without releasing anyone. Mute
// state is in-process; restarting the daemon currently drops active mutes.
func (m *SanctionManager) Shutdown() {
	m.mutes.Range(func(userID string, entry *muteEntry) bool {
		if entry.timer != nil {
			entry.timer.Stop()
		}
		m.mutes.Delete(userID)
		return true
	})
}
