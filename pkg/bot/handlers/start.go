package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/smith3v/tg-link-curator/pkg/bot/transport"
	"github.com/smith3v/tg-link-curator/pkg/logger"
	"github.com/smith3v/tg-link-curator/pkg/ui"
)

func (h *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !validMessage(update) {
		logger.Error("invalid update in HandleStart")
		return
	}
	tg := transport.NewTelegram(b)
	chatID := update.Message.Chat.ID

	if err := h.store.RegisterUser(ctx, userFrom(update.Message.From)); err != nil {
		logger.Error("failed to register user", "user_id", update.Message.From.ID, "error", err)
		reply(ctx, tg, chatID, ui.MsgGenericFailure)
		return
	}
	logger.Debug("user started the bot", "user_id", update.Message.From.ID)
	reply(ctx, tg, chatID, ui.MsgGreeting)
}

func (h *Handlers) HandleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !validMessage(update) {
		logger.Error("invalid update in HandleHelp")
		return
	}
	reply(ctx, transport.NewTelegram(b), update.Message.Chat.ID, ui.HelpText)
}
