package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mymmrac/telego"

	"github.com/S-Foxx/VN-Bot/admin"
	"github.com/S-Foxx/VN-Bot/storage"
	"github.com/S-Foxx/VN-Bot/tracker"
)

func (b *Bot) statusHandler(_ *telego.Bot, update telego.Update) {
	slog.Info("bot: /status")

	chatID := update.Message.Chat.ID
	status := b.admin.GuildStatus(chatID)

	text := fmt.Sprintf("Tracking %d users with substitute identities.\n", status.TrackedUsers)
	if status.StoreOK {
		text += fmt.Sprintf("Database connected, %d nicknames available.", status.PoolSize)
	} else {
		text += "Database unavailable, running on fallback nicknames."
	}
	b.sendMessage(chatID, escapeMarkdownV2(text))
}

func (b *Bot) restoreHandler(_ *telego.Bot, update telego.Update) {
	slog.Info("bot: /restore")

	chatID := update.Message.Chat.ID

	// Reply to someone's message to restore them, otherwise yourself
	target := update.Message.From
	if update.Message.ReplyToMessage != nil && update.Message.ReplyToMessage.From != nil {
		target = update.Message.ReplyToMessage.From
	}
	if target == nil {
		return
	}

	original, err := b.admin.ForceRestore(context.Background(), target.ID)
	switch {
	case errors.Is(err, tracker.ErrNotTracked):
		b.sendMessage(chatID, escapeMarkdownV2(
			fmt.Sprintf("%s is not currently tracked.", target.FirstName)))
	case errors.Is(err, tracker.ErrApplyFailed):
		b.sendMessage(chatID, escapeMarkdownV2(
			fmt.Sprintf("Stopped tracking %s, but the identity change was rejected by the platform.", target.FirstName)))
	case err != nil:
		slog.Error("bot: Failed to restore identity", "error", err, "user_id", target.ID)
		b.sendMessage(chatID, escapeMarkdownV2("An error occurred while restoring the identity."))
	case original == "":
		b.sendMessage(chatID, escapeMarkdownV2(
			fmt.Sprintf("Restored %s's identity.", target.FirstName)))
	default:
		b.sendMessage(chatID, escapeMarkdownV2(
			fmt.Sprintf("Restored %s's identity to '%s'.", target.FirstName, original)))
	}
}

func (b *Bot) addNicknameHandler(_ *telego.Bot, update telego.Update) {
	slog.Info("bot: /add_nickname")

	chatID := update.Message.Chat.ID
	arg := commandArg(update.Message.Text)
	if arg == "" {
		b.sendMessage(chatID, escapeMarkdownV2("Usage: /add_nickname <nickname>"))
		return
	}

	actor := b.actorFor(chatID, update.Message.From.ID)
	nick, err := b.admin.AddNickname(actor, chatID, arg)
	switch {
	case errors.Is(err, admin.ErrNotPermitted):
		b.sendMessage(chatID, escapeMarkdownV2("You need to be a chat administrator to add nicknames."))
	case errors.Is(err, storage.ErrInvalidNickname):
		b.sendMessage(chatID, escapeMarkdownV2("The nickname cannot be empty."))
	case errors.Is(err, storage.ErrDuplicateNickname):
		b.sendMessage(chatID, escapeMarkdownV2(
			fmt.Sprintf("Nickname '%s' already exists.", arg)))
	case err != nil:
		slog.Error("bot: Failed to add nickname", "error", err, "chat_id", chatID)
		b.sendMessage(chatID, escapeMarkdownV2("Database error. Try again later."))
	default:
		b.sendMessage(chatID, escapeMarkdownV2(
			fmt.Sprintf("Added nickname: %s", nick.Nickname)))
	}
}

func (b *Bot) removeNicknameHandler(_ *telego.Bot, update telego.Update) {
	slog.Info("bot: /remove_nickname")

	chatID := update.Message.Chat.ID
	arg := commandArg(update.Message.Text)
	if arg == "" {
		b.sendMessage(chatID, escapeMarkdownV2("Usage: /remove_nickname <nickname>"))
		return
	}

	actor := admin.Actor{UserID: update.Message.From.ID}
	removed, err := b.admin.RemoveNickname(actor, chatID, arg)
	switch {
	case errors.Is(err, storage.ErrNotOwner):
		b.sendMessage(chatID, escapeMarkdownV2("Only the chat owner can remove nicknames."))
	case errors.Is(err, storage.ErrGuildNotFound):
		b.sendMessage(chatID, escapeMarkdownV2("This chat is not registered yet."))
	case errors.Is(err, storage.ErrNicknameNotFound):
		b.sendMessage(chatID, escapeMarkdownV2(
			fmt.Sprintf("Nickname '%s' not found.", arg)))
	case err != nil:
		slog.Error("bot: Failed to remove nickname", "error", err, "chat_id", chatID)
		b.sendMessage(chatID, escapeMarkdownV2("Database error. Try again later."))
	default:
		b.sendMessage(chatID, escapeMarkdownV2(
			fmt.Sprintf("Nickname '%s' removed.", removed)))
	}
}

func (b *Bot) listNicknamesHandler(_ *telego.Bot, update telego.Update) {
	slog.Info("bot: /list_nicknames")

	chatID := update.Message.Chat.ID
	nicknames, err := b.admin.ListNicknames(chatID)
	if err != nil {
		slog.Error("bot: Failed to list nicknames", "error", err, "chat_id", chatID)
		b.sendMessage(chatID, escapeMarkdownV2("Database error. Try again later."))
		return
	}

	if len(nicknames) == 0 {
		b.sendMessage(chatID, escapeMarkdownV2(
			"No nicknames configured for this chat. Use /add_nickname to add some!"))
		return
	}

	text := fmt.Sprintf("Nicknames (%d total):\n%s\n\nThey appear in chat as: Nickname 001",
		len(nicknames), formatNicknameList(nicknames))
	b.sendMessage(chatID, escapeMarkdownV2(text))
}

func (b *Bot) findNicknameHandler(_ *telego.Bot, update telego.Update) {
	slog.Info("bot: /find_nickname")

	chatID := update.Message.Chat.ID
	arg := commandArg(update.Message.Text)
	if arg == "" {
		b.sendMessage(chatID, escapeMarkdownV2("Usage: /find_nickname <search term>"))
		return
	}

	actor := admin.Actor{UserID: update.Message.From.ID}
	matches, err := b.admin.SearchNicknames(actor, chatID, arg)
	switch {
	case errors.Is(err, storage.ErrNotOwner):
		b.sendMessage(chatID, escapeMarkdownV2("Only the chat owner can search nicknames."))
		return
	case err != nil:
		slog.Error("bot: Failed to search nicknames", "error", err, "chat_id", chatID)
		b.sendMessage(chatID, escapeMarkdownV2("Database error. Try again later."))
		return
	}

	if len(matches) == 0 {
		b.sendMessage(chatID, escapeMarkdownV2(
			fmt.Sprintf("No nicknames found containing '%s'.", arg)))
		return
	}

	text := fmt.Sprintf("Found %d nickname(s) containing '%s':\n%s",
		len(matches), arg, formatNicknameList(matches))
	b.sendMessage(chatID, escapeMarkdownV2(text))
}

func (b *Bot) healthHandler(_ *telego.Bot, update telego.Update) {
	slog.Info("bot: /bot_health")

	chatID := update.Message.Chat.ID
	actor := admin.Actor{UserID: update.Message.From.ID}
	if err := b.admin.RequireOwner(actor, chatID); err != nil {
		b.sendMessage(chatID, escapeMarkdownV2("Only the chat owner can check bot health."))
		return
	}

	status := b.admin.GuildStatus(chatID)
	dbLine := "Database: unavailable (fallback nicknames in use)"
	if status.StoreOK {
		dbLine = fmt.Sprintf("Database: connected, %d nicknames configured", status.PoolSize)
	}
	text := fmt.Sprintf("Bot health report:\n%s\nPresence tracking: %d users substituted\n"+
		"Note: tracking state is in-memory and lost on restart.",
		dbLine, status.TrackedUsers)
	b.sendMessage(chatID, escapeMarkdownV2(text))
}

func (b *Bot) helpHandler(_ *telego.Bot, update telego.Update) {
	slog.Info("bot: /help")

	b.sendMessage(update.Message.Chat.ID, escapeMarkdownV2(
		"Join the chat to get a temporary nickname, leave to get your name back.\n\n"+
			"Commands:\n"+
			"/status - tracked users and pool size\n"+
			"/restore - restore your identity (reply to restore someone else)\n"+
			"/add_nickname <name> - add a nickname template (admins)\n"+
			"/remove_nickname <name> - remove a template (owner)\n"+
			"/list_nicknames - list templates\n"+
			"/find_nickname <term> - search templates (owner)\n"+
			"/bot_health - health report (owner)"))
}
