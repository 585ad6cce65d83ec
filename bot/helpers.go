package bot

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"github.com/S-Foxx/VN-Bot/admin"
	"github.com/S-Foxx/VN-Bot/storage"
)

// maxListedNicknames caps a single /list_nicknames reply; the rest is
// summarized as a count.
const maxListedNicknames = 20

// commandArg returns the text after the command itself, trimmed
func commandArg(text string) string {
	parts := strings.SplitN(text, " ", 2)
	if len(parts) < 2 {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// actorFor resolves the requester's privileges in the chat. When the
// member lookup fails the actor keeps its user ID but no privileges,
// so gated operations fail closed.
func (b *Bot) actorFor(chatID, userID int64) admin.Actor {
	member, err := b.api.GetChatMember(&telego.GetChatMemberParams{
		ChatID: tu.ID(chatID),
		UserID: userID,
	})
	if err != nil {
		slog.Warn("bot: Cannot resolve chat member privileges", "error", err,
			"chat_id", chatID, "user_id", userID)
		return admin.Actor{UserID: userID}
	}

	status := member.MemberStatus()
	return admin.Actor{
		UserID:             userID,
		CanManageNicknames: status == telego.MemberStatusCreator || status == telego.MemberStatusAdministrator,
	}
}

// formatNicknameList renders numbered nickname rows, capped at
// maxListedNicknames with a trailing summary line.
func formatNicknameList(nicknames []storage.Nickname) string {
	var lines []string
	for i, nick := range nicknames {
		if i == maxListedNicknames {
			lines = append(lines, fmt.Sprintf("...and %d more", len(nicknames)-maxListedNicknames))
			break
		}
		lines = append(lines, fmt.Sprintf("%2d. %s", i+1, nick.Nickname))
	}
	return strings.Join(lines, "\n")
}

func escapeMarkdownV2(text string) string {
	specialChars := []string{
		"_", "*", "[", "]", "(", ")", "~", "`", ">", "#", "+", "-", "=", "|", "{", "}", ".", "!", "&", "<",
	}

	for _, char := range specialChars {
		text = strings.ReplaceAll(text, char, "\\"+char)
	}
	return text
}

func (b *Bot) sendMessage(chatID int64, text string) {
	message := tu.Message(tu.ID(chatID), text)
	message.ParseMode = "MarkdownV2"

	_, err := b.api.SendMessage(message)
	if err != nil {
		// Check if it's a rate limit error
		if strings.Contains(err.Error(), "Too Many Requests") {
			parts := strings.Split(err.Error(), "retry after: ")
			if len(parts) == 2 {
				var retryAfter int
				if _, _ = fmt.Sscanf(parts[1], "%d", &retryAfter); retryAfter > 0 {
					slog.Info("bot: Rate limit hit, waiting", "seconds", retryAfter)
					time.Sleep(time.Duration(retryAfter) * time.Second)
					_, retryErr := b.api.SendMessage(message)
					if retryErr != nil {
						err = retryErr
					} else {
						err = nil
					}
				}
			}
		}
		if err != nil {
			slog.Error("bot: Failed to send message", "error", err, "chat_id", chatID, "text_length", len(text))
		}
	}
}
