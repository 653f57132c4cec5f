package handlers

import (
	"context"
	"errors"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/smith3v/tg-link-curator/pkg/bot/moderation"
	"github.com/smith3v/tg-link-curator/pkg/bot/transport"
	"github.com/smith3v/tg-link-curator/pkg/logger"
	"github.com/smith3v/tg-link-curator/pkg/ui"
)

// HandleModerationCallback applies an Approve/Decline button press and
// replaces the moderation message with the outcome.
func (h *Handlers) HandleModerationCallback(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update == nil || update.CallbackQuery == nil {
		logger.Error("invalid update in HandleModerationCallback")
		return
	}
	tg := transport.NewTelegram(b)
	cq := update.CallbackQuery

	cb, err := ui.ParseModerationCallback(cq.Data)
	if err != nil {
		logger.Warn("malformed moderation callback", "data", cq.Data, "error", err)
		answer(ctx, tg, cq.ID, ui.MsgUnknownCommand)
		return
	}

	svc := moderation.NewService(h.store, tg, h.adminID)
	result, err := svc.Decide(ctx, moderation.Decision{ActorID: cq.From.ID, Callback: cb})
	switch {
	case errors.Is(err, moderation.ErrNotAllowed):
		answer(ctx, tg, cq.ID, ui.MsgNotAllowed)
		return
	case errors.Is(err, moderation.ErrStale):
		answer(ctx, tg, cq.ID, ui.MsgRequestGone)
		editCallbackMessage(ctx, tg, cq, ui.MsgRequestGone)
		return
	case err != nil:
		logger.Error("failed to apply moderation decision", "data", cq.Data, "error", err)
		answer(ctx, tg, cq.ID, ui.MsgGenericFailure)
		return
	}

	answer(ctx, tg, cq.ID, ui.MsgActionProcessed)
	editCallbackMessage(ctx, tg, cq, ui.RenderResolved(result.Action, result.URL))
}

func answer(ctx context.Context, tg *transport.Telegram, callbackID, text string) {
	if err := tg.AnswerCallback(ctx, callbackID, text); err != nil {
		logger.Error("failed to answer callback query", "error", err)
	}
}

func editCallbackMessage(ctx context.Context, tg *transport.Telegram, cq *models.CallbackQuery, text string) {
	msg := cq.Message.Message
	if msg == nil {
		logger.Warn("moderation message is not accessible", "callback_id", cq.ID)
		return
	}
	if err := tg.EditText(ctx, msg.Chat.ID, msg.ID, text); err != nil {
		logger.Error("failed to edit moderation message", "chat_id", msg.Chat.ID, "message_id", msg.ID, "error", err)
	}
}
