// Package admin is the permission-gated façade over the nickname pool
// and the presence tracker. It carries no state of its own; every
// operation is a policy check in front of storage or tracker.
package admin

import (
	"context"
	"errors"

	"github.com/S-Foxx/VN-Bot/storage"
)

// ErrNotPermitted is returned when the actor lacks the nickname
// management privilege required for the operation.
var ErrNotPermitted = errors.New("missing nickname management privilege")

// Actor describes who is performing an administrative operation and
// which platform privileges they hold. Owner checks are made against
// the stored guild record, not against Actor fields.
type Actor struct {
	UserID             int64
	CanManageNicknames bool
}

// Store is the subset of *storage.Storage the façade needs.
type Store interface {
	GetGuild(guildID int64) (*storage.Guild, error)
	AddNickname(guildID int64, rawText string, createdBy int64) (*storage.Nickname, error)
	RemoveNickname(guildID int64, rawText string, requesterID int64) (string, error)
	ListNicknames(guildID int64) ([]storage.Nickname, error)
	SearchNicknames(guildID int64, term string) ([]storage.Nickname, error)
	CountNicknames(guildID int64) (int64, error)
}

// Ledger is the subset of *tracker.Tracker the façade needs.
type Ledger interface {
	ForceRestore(ctx context.Context, userID int64) (string, error)
	Tracked() int
}

type Service struct {
	store  Store
	ledger Ledger
}

func New(store Store, ledger Ledger) *Service {
	return &Service{store: store, ledger: ledger}
}

// AddNickname adds a nickname template; requires the nickname
// management privilege.
func (s *Service) AddNickname(actor Actor, guildID int64, rawText string) (*storage.Nickname, error) {
	if !actor.CanManageNicknames {
		return nil, ErrNotPermitted
	}
	return s.store.AddNickname(guildID, rawText, actor.UserID)
}

// RemoveNickname soft-deletes a nickname template. The owner check
// lives in the store, which knows the guild's current owner.
func (s *Service) RemoveNickname(actor Actor, guildID int64, rawText string) (string, error) {
	return s.store.RemoveNickname(guildID, rawText, actor.UserID)
}

// ListNicknames is open to everyone in the guild
func (s *Service) ListNicknames(guildID int64) ([]storage.Nickname, error) {
	return s.store.ListNicknames(guildID)
}

// SearchNicknames is restricted to the guild owner
func (s *Service) SearchNicknames(actor Actor, guildID int64, term string) ([]storage.Nickname, error) {
	if err := s.requireOwner(actor, guildID); err != nil {
		return nil, err
	}
	return s.store.SearchNicknames(guildID, term)
}

// ForceRestore pops a user's presence record and restores their
// original identity, reporting what was restored.
func (s *Service) ForceRestore(ctx context.Context, userID int64) (string, error) {
	return s.ledger.ForceRestore(ctx, userID)
}

// Status is a point-in-time health snapshot for one guild.
type Status struct {
	TrackedUsers int
	PoolSize     int64
	StoreOK      bool
}

// GuildStatus reports tracked users and pool health. A store failure is
// reflected in StoreOK rather than returned, so status stays available
// when the database is down.
func (s *Service) GuildStatus(guildID int64) Status {
	status := Status{TrackedUsers: s.ledger.Tracked()}
	count, err := s.store.CountNicknames(guildID)
	if err == nil {
		status.StoreOK = true
		status.PoolSize = count
	}
	return status
}

// RequireOwner reports whether the actor owns the guild, for callers
// gating their own operations (e.g. the health report).
func (s *Service) RequireOwner(actor Actor, guildID int64) error {
	return s.requireOwner(actor, guildID)
}

func (s *Service) requireOwner(actor Actor, guildID int64) error {
	guild, err := s.store.GetGuild(guildID)
	if err != nil {
		return err
	}
	if guild.OwnerID != actor.UserID {
		return storage.ErrNotOwner
	}
	return nil
}
