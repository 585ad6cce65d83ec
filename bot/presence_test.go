package bot

import (
	"context"
	"sync"
	"testing"

	"github.com/mymmrac/telego"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/S-Foxx/VN-Bot/tracker"
)

type fakeConnector struct {
	mu    sync.Mutex
	calls int
}

func (c *fakeConnector) ApplyIdentity(context.Context, int64, int64, *string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return nil
}

type fakeGenerator struct{}

func (fakeGenerator) Generate(int64) string { return "Subject 042" }

func newTestBot() (*Bot, *fakeConnector) {
	conn := &fakeConnector{}
	return &Bot{tracker: tracker.New(conn, fakeGenerator{})}, conn
}

func memberUpdate(chatID int64, user telego.User, oldMember, newMember telego.ChatMember) telego.Update {
	return telego.Update{
		ChatMember: &telego.ChatMemberUpdated{
			Chat:          telego.Chat{ID: chatID, Type: telego.ChatTypeSupergroup},
			From:          user,
			OldChatMember: oldMember,
			NewChatMember: newMember,
		},
	}
}

func TestPresent(t *testing.T) {
	tests := []struct {
		name   string
		member telego.ChatMember
		want   bool
	}{
		{"owner", &telego.ChatMemberOwner{User: telego.User{ID: 1}}, true},
		{"administrator", &telego.ChatMemberAdministrator{User: telego.User{ID: 1}}, true},
		{"member", &telego.ChatMemberMember{User: telego.User{ID: 1}}, true},
		{"restricted but still member", &telego.ChatMemberRestricted{User: telego.User{ID: 1}, IsMember: true}, true},
		{"restricted and removed", &telego.ChatMemberRestricted{User: telego.User{ID: 1}, IsMember: false}, false},
		{"left", &telego.ChatMemberLeft{User: telego.User{ID: 1}}, false},
		{"banned", &telego.ChatMemberBanned{User: telego.User{ID: 1}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, present(tt.member))
		})
	}
}

func TestCurrentTitle(t *testing.T) {
	assert.Equal(t, "Warden",
		currentTitle(&telego.ChatMemberAdministrator{User: telego.User{ID: 1}, CustomTitle: "Warden"}))
	assert.Equal(t, "Chief",
		currentTitle(&telego.ChatMemberOwner{User: telego.User{ID: 1}, CustomTitle: "Chief"}))
	assert.Empty(t, currentTitle(&telego.ChatMemberMember{User: telego.User{ID: 1}}))
}

func TestChatMemberHandlerFiresOnEdgesOnly(t *testing.T) {
	user := telego.User{ID: 7, FirstName: "Alice"}
	chatID := int64(1001)

	t.Run("absent to present substitutes", func(t *testing.T) {
		b, conn := newTestBot()
		b.chatMemberHandler(nil, memberUpdate(chatID, user,
			&telego.ChatMemberLeft{User: user},
			&telego.ChatMemberMember{User: user}))

		assert.Equal(t, 1, b.tracker.Tracked())
		assert.Equal(t, 1, conn.calls)
	})

	t.Run("present to absent restores", func(t *testing.T) {
		b, conn := newTestBot()
		b.chatMemberHandler(nil, memberUpdate(chatID, user,
			&telego.ChatMemberLeft{User: user},
			&telego.ChatMemberMember{User: user}))
		b.chatMemberHandler(nil, memberUpdate(chatID, user,
			&telego.ChatMemberMember{User: user},
			&telego.ChatMemberLeft{User: user}))

		assert.Zero(t, b.tracker.Tracked())
		assert.Equal(t, 2, conn.calls)
	})

	t.Run("role change while present is ignored", func(t *testing.T) {
		b, conn := newTestBot()
		b.chatMemberHandler(nil, memberUpdate(chatID, user,
			&telego.ChatMemberMember{User: user},
			&telego.ChatMemberAdministrator{User: user}))

		assert.Zero(t, b.tracker.Tracked())
		assert.Zero(t, conn.calls)
	})

	t.Run("ban of an absent user is ignored", func(t *testing.T) {
		b, conn := newTestBot()
		b.chatMemberHandler(nil, memberUpdate(chatID, user,
			&telego.ChatMemberLeft{User: user},
			&telego.ChatMemberBanned{User: user}))

		assert.Zero(t, b.tracker.Tracked())
		assert.Zero(t, conn.calls)
	})

	t.Run("bot accounts are filtered out", func(t *testing.T) {
		botUser := telego.User{ID: 8, FirstName: "Beep", IsBot: true}
		b, conn := newTestBot()
		b.chatMemberHandler(nil, memberUpdate(chatID, botUser,
			&telego.ChatMemberLeft{User: botUser},
			&telego.ChatMemberMember{User: botUser}))

		assert.Zero(t, b.tracker.Tracked())
		assert.Zero(t, conn.calls)
	})

	t.Run("admin join captures the existing custom title", func(t *testing.T) {
		b, _ := newTestBot()
		b.chatMemberHandler(nil, memberUpdate(chatID, user,
			&telego.ChatMemberLeft{User: user},
			&telego.ChatMemberAdministrator{User: user, CustomTitle: "Warden"}))

		original, tracked := b.tracker.Original(user.ID)
		require.True(t, tracked)
		assert.Equal(t, "Warden", original)
	})
}

func TestCommandArg(t *testing.T) {
	assert.Equal(t, "Subject", commandArg("/add_nickname Subject"))
	assert.Equal(t, "Sub Zero", commandArg("/add_nickname  Sub Zero "))
	assert.Empty(t, commandArg("/add_nickname"))
}
