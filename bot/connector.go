package bot

import (
	"context"
	"fmt"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
)

// Connector applies display identities through chat admin custom
// titles. The platform only accepts titles for administrators, so
// chats where the bot cannot manage the target surface the platform
// error to the tracker instead of succeeding silently.
type Connector struct {
	api *telego.Bot
}

func NewConnector(api *telego.Bot) *Connector {
	return &Connector{api: api}
}

// ApplyIdentity sets the user's custom title, or clears it when
// identity is nil so the platform falls back to the account name.
func (c *Connector) ApplyIdentity(_ context.Context, guildID, userID int64, identity *string) error {
	title := ""
	if identity != nil {
		title = *identity
	}

	err := c.api.SetChatAdministratorCustomTitle(&telego.SetChatAdministratorCustomTitleParams{
		ChatID:      tu.ID(guildID),
		UserID:      userID,
		CustomTitle: title,
	})
	if err != nil {
		return fmt.Errorf("set custom title: %w", err)
	}
	return nil
}
