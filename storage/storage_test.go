package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testGuildID = int64(1001)
	testOwnerID = int64(42)
	testUserID  = int64(7)
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()

	s, err := New(filepath.Join(t.TempDir(), "test.sqlite"))
	require.NoError(t, err)
	return s
}

func newTestGuild(t *testing.T, s *Storage) *Guild {
	t.Helper()

	guild, err := s.EnsureGuild(testGuildID, "Test Guild", testOwnerID)
	require.NoError(t, err)
	return guild
}

func TestEnsureGuild(t *testing.T) {
	s := newTestStorage(t)

	t.Run("creates guild on first observation", func(t *testing.T) {
		guild, err := s.EnsureGuild(testGuildID, "Test Guild", testOwnerID)
		require.NoError(t, err)
		assert.Equal(t, testGuildID, guild.ID)
		assert.Equal(t, "Test Guild", guild.Name)
		assert.Equal(t, testOwnerID, guild.OwnerID)
	})

	t.Run("re-registration with identical data succeeds", func(t *testing.T) {
		_, err := s.EnsureGuild(testGuildID, "Test Guild", testOwnerID)
		require.NoError(t, err)
	})

	t.Run("updates name and owner in place", func(t *testing.T) {
		_, err := s.EnsureGuild(testGuildID, "Renamed Guild", int64(99))
		require.NoError(t, err)

		guild, err := s.GetGuild(testGuildID)
		require.NoError(t, err)
		assert.Equal(t, "Renamed Guild", guild.Name)
		assert.Equal(t, int64(99), guild.OwnerID)
	})
}

func TestGetGuild(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.GetGuild(testGuildID)
	assert.ErrorIs(t, err, ErrGuildNotFound)
}

func TestAddNickname(t *testing.T) {
	s := newTestStorage(t)
	newTestGuild(t, s)

	t.Run("trims and stores the nickname", func(t *testing.T) {
		nick, err := s.AddNickname(testGuildID, "  Subject  ", testUserID)
		require.NoError(t, err)
		assert.Equal(t, "Subject", nick.Nickname)
		assert.True(t, nick.IsActive)
		assert.Equal(t, testUserID, nick.CreatedBy)
	})

	t.Run("rejects empty after trim", func(t *testing.T) {
		_, err := s.AddNickname(testGuildID, "   ", testUserID)
		assert.ErrorIs(t, err, ErrInvalidNickname)
	})

	t.Run("rejects case-insensitive duplicates", func(t *testing.T) {
		_, err := s.AddNickname(testGuildID, "subject", testUserID)
		assert.ErrorIs(t, err, ErrDuplicateNickname)

		_, err = s.AddNickname(testGuildID, "SUBJECT", testUserID)
		assert.ErrorIs(t, err, ErrDuplicateNickname)
	})

	t.Run("uniqueness is scoped per guild", func(t *testing.T) {
		_, err := s.EnsureGuild(testGuildID+1, "Other Guild", testOwnerID)
		require.NoError(t, err)

		_, err = s.AddNickname(testGuildID+1, "Subject", testUserID)
		require.NoError(t, err)
	})
}

func TestRemoveNickname(t *testing.T) {
	s := newTestStorage(t)
	newTestGuild(t, s)

	_, err := s.AddNickname(testGuildID, "Subject", testUserID)
	require.NoError(t, err)

	t.Run("rejects non-owner and keeps the entry active", func(t *testing.T) {
		_, err := s.RemoveNickname(testGuildID, "Subject", testUserID)
		assert.ErrorIs(t, err, ErrNotOwner)

		nicknames, err := s.ListNicknames(testGuildID)
		require.NoError(t, err)
		assert.Len(t, nicknames, 1)
	})

	t.Run("rejects unknown guild", func(t *testing.T) {
		_, err := s.RemoveNickname(int64(5555), "Subject", testOwnerID)
		assert.ErrorIs(t, err, ErrGuildNotFound)
	})

	t.Run("rejects unknown nickname", func(t *testing.T) {
		_, err := s.RemoveNickname(testGuildID, "Ghost", testOwnerID)
		assert.ErrorIs(t, err, ErrNicknameNotFound)
	})

	t.Run("owner removes case-insensitively", func(t *testing.T) {
		removed, err := s.RemoveNickname(testGuildID, "  sUbJeCt ", testOwnerID)
		require.NoError(t, err)
		assert.Equal(t, "Subject", removed)

		nicknames, err := s.ListNicknames(testGuildID)
		require.NoError(t, err)
		assert.Empty(t, nicknames)
	})

	t.Run("removed nickname can be added again", func(t *testing.T) {
		_, err := s.AddNickname(testGuildID, "Subject", testUserID)
		require.NoError(t, err)
	})
}

func TestListNicknames(t *testing.T) {
	s := newTestStorage(t)
	newTestGuild(t, s)

	for _, name := range []string{"Operator", "Naib", "Subject"} {
		_, err := s.AddNickname(testGuildID, name, testUserID)
		require.NoError(t, err)
	}

	nicknames, err := s.ListNicknames(testGuildID)
	require.NoError(t, err)
	require.Len(t, nicknames, 3)

	// ordered by text ascending
	assert.Equal(t, "Naib", nicknames[0].Nickname)
	assert.Equal(t, "Operator", nicknames[1].Nickname)
	assert.Equal(t, "Subject", nicknames[2].Nickname)
}

func TestRandomNickname(t *testing.T) {
	s := newTestStorage(t)
	newTestGuild(t, s)

	t.Run("returns nil for an empty pool", func(t *testing.T) {
		nick, err := s.RandomNickname(testGuildID)
		require.NoError(t, err)
		assert.Nil(t, nick)
	})

	t.Run("returns a member of the active pool", func(t *testing.T) {
		for _, name := range []string{"Subject", "Operator"} {
			_, err := s.AddNickname(testGuildID, name, testUserID)
			require.NoError(t, err)
		}

		for i := 0; i < 20; i++ {
			nick, err := s.RandomNickname(testGuildID)
			require.NoError(t, err)
			require.NotNil(t, nick)
			assert.Contains(t, []string{"Subject", "Operator"}, nick.Nickname)
		}
	})

	t.Run("never returns a removed nickname", func(t *testing.T) {
		_, err := s.RemoveNickname(testGuildID, "Operator", testOwnerID)
		require.NoError(t, err)

		for i := 0; i < 50; i++ {
			nick, err := s.RandomNickname(testGuildID)
			require.NoError(t, err)
			require.NotNil(t, nick)
			assert.Equal(t, "Subject", nick.Nickname)
		}
	})
}

func TestSearchNicknames(t *testing.T) {
	s := newTestStorage(t)
	newTestGuild(t, s)

	for _, name := range []string{"Subject", "Sub Zero", "Operator"} {
		_, err := s.AddNickname(testGuildID, name, testUserID)
		require.NoError(t, err)
	}

	matches, err := s.SearchNicknames(testGuildID, "SUB")
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "Sub Zero", matches[0].Nickname)
	assert.Equal(t, "Subject", matches[1].Nickname)

	matches, err = s.SearchNicknames(testGuildID, "ghost")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestCountNicknames(t *testing.T) {
	s := newTestStorage(t)
	newTestGuild(t, s)

	count, err := s.CountNicknames(testGuildID)
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = s.AddNickname(testGuildID, "Subject", testUserID)
	require.NoError(t, err)
	_, err = s.AddNickname(testGuildID, "Operator", testUserID)
	require.NoError(t, err)

	count, err = s.CountNicknames(testGuildID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	_, err = s.RemoveNickname(testGuildID, "Operator", testOwnerID)
	require.NoError(t, err)

	count, err = s.CountNicknames(testGuildID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
