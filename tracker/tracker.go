// Package tracker holds the authoritative in-memory ledger of which
// users currently carry a substitute identity and what their original
// identity was. It converts presence transitions into substitute and
// restore actions against the platform connector.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/S-Foxx/VN-Bot/metrics"
)

var (
	ErrNotTracked  = errors.New("user is not currently tracked")
	ErrApplyFailed = errors.New("connector could not apply identity change")
)

// Connector applies display-identity changes on the chat platform.
// A nil identity clears any override so the platform falls back to the
// user's unmodified account name.
type Connector interface {
	ApplyIdentity(ctx context.Context, guildID, userID int64, identity *string) error
}

// Generator produces substitute identity strings. It must not fail;
// degraded modes are its own concern.
type Generator interface {
	Generate(guildID int64) string
}

const shardCount = 32

type record struct {
	original string
	fallback string
	guildID  int64
}

// Tracker is safe for concurrent use. Transitions for the same user are
// serialized through a shard mutex keyed by user ID; different users
// only contend when they hash to the same shard.
//
// The ledger is process-local and never persisted: a restart forgets
// every substitution, and those users keep their substitute identity
// until they next leave or an operator restores them manually.
type Tracker struct {
	connector Connector
	generator Generator

	shards [shardCount]sync.Mutex

	mu      sync.RWMutex
	records map[int64]record
}

func New(connector Connector, generator Generator) *Tracker {
	return &Tracker{
		connector: connector,
		generator: generator,
		records:   make(map[int64]record),
	}
}

func (t *Tracker) shard(userID int64) *sync.Mutex {
	return &t.shards[uint64(userID)%shardCount]
}

// OnJoin handles an absent-to-present transition: it captures the
// user's current display identity, generates a substitute and asks the
// connector to apply it. The ledger entry is written before the
// connector call is issued, so a leave observed mid-apply still finds
// the original to restore; a connector failure is reported but never
// rolls the entry back. A join for an already tracked user is a no-op.
func (t *Tracker) OnJoin(ctx context.Context, userID, guildID int64, displayIdentity, accountName string) error {
	lock := t.shard(userID)
	lock.Lock()

	t.mu.Lock()
	if _, tracked := t.records[userID]; tracked {
		t.mu.Unlock()
		lock.Unlock()
		slog.Debug("tracker: Ignoring join for already tracked user", "user_id", userID)
		return nil
	}
	t.records[userID] = record{
		original: displayIdentity,
		fallback: accountName,
		guildID:  guildID,
	}
	t.mu.Unlock()
	metrics.TrackedUsers.Inc()
	metrics.SubstitutionsTotal.Inc()

	substitute := t.generator.Generate(guildID)
	lock.Unlock()

	slog.Info("tracker: Substituting identity", "user_id", userID, "guild_id", guildID,
		"original", displayIdentity, "substitute", substitute)

	// The connector call happens outside the shard lock: bookkeeping
	// must stay responsive even when the platform is slow.
	if err := t.connector.ApplyIdentity(ctx, guildID, userID, &substitute); err != nil {
		metrics.ApplyFailuresTotal.WithLabelValues("substitute").Inc()
		slog.Warn("tracker: Failed to apply substitute identity", "error", err,
			"user_id", userID, "guild_id", guildID)
		return fmt.Errorf("%w: %v", ErrApplyFailed, err)
	}
	return nil
}

// OnLeave handles a present-to-absent transition: it pops the ledger
// entry and asks the connector to restore the original identity. A
// leave for an untracked user is a no-op.
func (t *Tracker) OnLeave(ctx context.Context, userID int64) error {
	rec, tracked := t.pop(userID)
	if !tracked {
		slog.Debug("tracker: Ignoring leave for untracked user", "user_id", userID)
		return nil
	}
	return t.restore(ctx, userID, rec)
}

// ForceRestore removes a user's ledger entry and restores their
// identity immediately, outside any presence transition. Returns the
// restored original identity, or ErrNotTracked when there is nothing
// to restore; no connector call is made in that case.
func (t *Tracker) ForceRestore(ctx context.Context, userID int64) (string, error) {
	rec, tracked := t.pop(userID)
	if !tracked {
		return "", ErrNotTracked
	}
	if err := t.restore(ctx, userID, rec); err != nil {
		return rec.original, err
	}
	return rec.original, nil
}

// Tracked returns the number of users currently substituted
func (t *Tracker) Tracked() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.records)
}

// Original reports the captured original identity for a user, if any
func (t *Tracker) Original(userID int64) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	rec, tracked := t.records[userID]
	return rec.original, tracked
}

func (t *Tracker) pop(userID int64) (record, bool) {
	lock := t.shard(userID)
	lock.Lock()
	defer lock.Unlock()

	t.mu.Lock()
	defer t.mu.Unlock()
	rec, tracked := t.records[userID]
	if !tracked {
		return record{}, false
	}
	delete(t.records, userID)
	metrics.TrackedUsers.Dec()
	metrics.RestoresTotal.Inc()
	return rec, true
}

func (t *Tracker) restore(ctx context.Context, userID int64, rec record) error {
	// Restoring to the account name itself is expressed as clearing the
	// override; re-applying an identical override would be a no-op and
	// the clear form survives platform auto-naming drift.
	var identity *string
	if rec.original != rec.fallback {
		original := rec.original
		identity = &original
	}

	slog.Info("tracker: Restoring identity", "user_id", userID, "guild_id", rec.guildID,
		"original", rec.original, "clear", identity == nil)

	if err := t.connector.ApplyIdentity(ctx, rec.guildID, userID, identity); err != nil {
		metrics.ApplyFailuresTotal.WithLabelValues("restore").Inc()
		slog.Warn("tracker: Failed to restore identity", "error", err,
			"user_id", userID, "guild_id", rec.guildID)
		return fmt.Errorf("%w: %v", ErrApplyFailed, err)
	}
	return nil
}
