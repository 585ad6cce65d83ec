package bot

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/mymmrac/telego"
	th "github.com/mymmrac/telego/telegohandler"

	"github.com/S-Foxx/VN-Bot/admin"
	"github.com/S-Foxx/VN-Bot/storage"
	"github.com/S-Foxx/VN-Bot/tracker"
)

var (
	ErrGetMe          = errors.New("cannot retrieve api user")
	ErrUpdatesChannel = errors.New("cannot get updates channel")
	ErrHandlerInit    = errors.New("cannot initialize handler")
)

type Bot struct {
	api     *telego.Bot
	storage *storage.Storage
	tracker *tracker.Tracker
	admin   *admin.Service
	handler *th.BotHandler
}

// New wires the bot: the telego API client, the presence tracker backed
// by the custom-title connector, and the administrative façade over the
// nickname store.
func New(token string, store *storage.Storage, generator tracker.Generator) (*Bot, error) {
	api, err := telego.NewBot(token)
	if err != nil {
		slog.Error("bot: Failed to create API client", "error", err)
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}

	trk := tracker.New(NewConnector(api), generator)

	return &Bot{
		api:     api,
		storage: store,
		tracker: trk,
		admin:   admin.New(store, trk),
	}, nil
}

// Start begins long polling and dispatching updates. It returns after
// the update loop is running; use Stop to shut it down.
func (b *Bot) Start() error {
	botUser, err := b.api.GetMe()
	if err != nil {
		slog.Error("bot: Cannot retrieve api user", "error", err)
		return ErrGetMe
	}

	slog.Info("bot: Running as", "id", botUser.ID, "username", botUser.Username, "name", botUser.FirstName)

	// chat_member updates are only delivered when explicitly requested
	updates, err := b.api.UpdatesViaLongPolling(&telego.GetUpdatesParams{
		AllowedUpdates: []string{"message", "chat_member", "my_chat_member"},
	})
	if err != nil {
		slog.Error("bot: Cannot get update channel", "error", err)
		return ErrUpdatesChannel
	}

	bh, err := th.NewBotHandler(b.api, updates)
	if err != nil {
		slog.Error("bot: Cannot initialize bot handler", "error", err)
		return ErrHandlerInit
	}
	b.handler = bh

	bh.Use(b.guildRegisterMiddleware)

	bh.Handle(b.chatMemberHandler, anyChatMember)
	bh.Handle(b.statusHandler, th.CommandEqual("status"))
	bh.Handle(b.restoreHandler, th.CommandEqual("restore"))
	bh.Handle(b.addNicknameHandler, th.CommandEqual("add_nickname"))
	bh.Handle(b.removeNicknameHandler, th.CommandEqual("remove_nickname"))
	bh.Handle(b.listNicknamesHandler, th.CommandEqual("list_nicknames"))
	bh.Handle(b.findNicknameHandler, th.CommandEqual("find_nickname"))
	bh.Handle(b.healthHandler, th.CommandEqual("bot_health"))
	bh.Handle(b.helpHandler, th.AnyCommand())

	go bh.Start()

	return nil
}

// Stop halts update dispatch and long polling
func (b *Bot) Stop() {
	if b.handler != nil {
		b.handler.Stop()
	}
	b.api.StopLongPolling()
}

func anyChatMember(update telego.Update) bool {
	return update.ChatMember != nil
}
