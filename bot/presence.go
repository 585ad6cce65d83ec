package bot

import (
	"context"
	"log/slog"

	"github.com/mymmrac/telego"
)

// present reports whether a chat member status counts as "present in
// the chat". Restricted members are present only while still members.
func present(member telego.ChatMember) bool {
	switch member.MemberStatus() {
	case telego.MemberStatusCreator, telego.MemberStatusAdministrator, telego.MemberStatusMember:
		return true
	case telego.MemberStatusRestricted:
		restricted, ok := member.(*telego.ChatMemberRestricted)
		return ok && restricted.IsMember
	default:
		return false
	}
}

// currentTitle extracts the member's current display override. Only
// privileged members can carry one; everyone else is on the platform
// fallback, represented as the empty string.
func currentTitle(member telego.ChatMember) string {
	switch m := member.(type) {
	case *telego.ChatMemberOwner:
		return m.CustomTitle
	case *telego.ChatMemberAdministrator:
		return m.CustomTitle
	default:
		return ""
	}
}

// chatMemberHandler feeds membership transitions into the tracker.
// Only the edges absent->present and present->absent fire; role or
// permission changes while present (or while absent) are ignored, as
// are transitions of bot accounts.
func (b *Bot) chatMemberHandler(_ *telego.Bot, update telego.Update) {
	event := update.ChatMember
	user := event.NewChatMember.MemberUser()
	if user.IsBot {
		slog.Debug("bot: Ignoring membership transition of bot account", "user_id", user.ID)
		return
	}

	was := present(event.OldChatMember)
	is := present(event.NewChatMember)
	ctx := context.Background()

	switch {
	case !was && is:
		slog.Info("bot: User joined", "user_id", user.ID, "chat_id", event.Chat.ID, "username", user.Username)
		err := b.tracker.OnJoin(ctx, user.ID, event.Chat.ID, currentTitle(event.NewChatMember), "")
		if err != nil {
			slog.Warn("bot: Substitution side effect failed", "error", err,
				"user_id", user.ID, "chat_id", event.Chat.ID)
		}
	case was && !is:
		slog.Info("bot: User left", "user_id", user.ID, "chat_id", event.Chat.ID, "username", user.Username)
		if err := b.tracker.OnLeave(ctx, user.ID); err != nil {
			slog.Warn("bot: Restore side effect failed", "error", err,
				"user_id", user.ID, "chat_id", event.Chat.ID)
		}
	default:
		slog.Debug("bot: Ignoring in-place membership change",
			"user_id", user.ID, "chat_id", event.Chat.ID,
			"old_status", event.OldChatMember.MemberStatus(),
			"new_status", event.NewChatMember.MemberStatus())
	}
}
