package bot

import (
	"log/slog"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"
	tu "github.com/mymmrac/telego/telegoutil"
)

// guildRegisterMiddleware keeps the guild table current: any group
// message ensures a row exists for the chat, refreshing its name and
// owner when they change.
func (b *Bot) guildRegisterMiddleware(bot *telego.Bot, update telego.Update, next th.Handler) {
	if update.Message != nil && isGroupChat(update.Message.Chat) {
		b.registerGuild(update.Message.Chat)
	}
	if update.MyChatMember != nil && isGroupChat(update.MyChatMember.Chat) {
		b.registerGuild(update.MyChatMember.Chat)
	}

	next(bot, update)
}

func isGroupChat(chat telego.Chat) bool {
	return chat.Type == telego.ChatTypeGroup || chat.Type == telego.ChatTypeSupergroup
}

func (b *Bot) registerGuild(chat telego.Chat) {
	ownerID, err := b.chatOwner(chat.ID)
	if err != nil {
		slog.Warn("bot: Cannot determine chat owner, skipping guild registration",
			"error", err, "chat_id", chat.ID)
		return
	}

	if _, err := b.storage.EnsureGuild(chat.ID, chat.Title, ownerID); err != nil {
		slog.Error("bot: Failed to register guild", "error", err, "chat_id", chat.ID)
	}
}

func (b *Bot) chatOwner(chatID int64) (int64, error) {
	admins, err := b.api.GetChatAdministrators(&telego.GetChatAdministratorsParams{
		ChatID: tu.ID(chatID),
	})
	if err != nil {
		return 0, err
	}
	for _, member := range admins {
		if member.MemberStatus() == telego.MemberStatusCreator {
			return member.MemberUser().ID, nil
		}
	}
	return 0, nil
}
