package handlers

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/smith3v/tg-link-curator/pkg/bot/conversation"
	"github.com/smith3v/tg-link-curator/pkg/bot/submission"
	"github.com/smith3v/tg-link-curator/pkg/bot/transport"
	"github.com/smith3v/tg-link-curator/pkg/logger"
	"github.com/smith3v/tg-link-curator/pkg/ui"
)

func (h *Handlers) HandleAdd(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !validMessage(update) {
		logger.Error("invalid update in HandleAdd")
		return
	}
	tg := transport.NewTelegram(b)
	from := update.Message.From

	if err := h.store.RegisterUser(ctx, userFrom(from)); err != nil {
		logger.Error("failed to register user", "user_id", from.ID, "error", err)
		reply(ctx, tg, update.Message.Chat.ID, ui.MsgGenericFailure)
		return
	}
	h.conversations.Begin(from.ID)
	reply(ctx, tg, update.Message.Chat.ID, ui.MsgAddPrompt)
}

func (h *Handlers) HandleCancel(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !validMessage(update) {
		logger.Error("invalid update in HandleCancel")
		return
	}
	text := ui.MsgNothingToCancel
	if h.conversations.Reset(update.Message.From.ID) {
		text = ui.MsgCancelled
	}
	reply(ctx, transport.NewTelegram(b), update.Message.Chat.ID, text)
}

// DefaultHandler handles every text message that is not a registered
// command: keywords and links while collecting, keyword lookups otherwise.
func (h *Handlers) DefaultHandler(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !validMessage(update) {
		logger.Debug("ignoring update without a text message")
		return
	}
	tg := transport.NewTelegram(b)
	msg := update.Message

	if strings.HasPrefix(strings.TrimSpace(msg.Text), "/") {
		reply(ctx, tg, msg.Chat.ID, ui.MsgUnknownCommand)
		return
	}

	outcome := h.conversations.Receive(msg.From.ID, msg.Text)
	switch outcome.Intent {
	case conversation.IntentIgnore:
		return
	case conversation.IntentQuery:
		h.lookup(ctx, tg, msg.Chat.ID, outcome.Text)
	case conversation.IntentLinkWithoutBegin:
		reply(ctx, tg, msg.Chat.ID, ui.MsgUseAddFirst)
	case conversation.IntentNeedKeyword:
		reply(ctx, tg, msg.Chat.ID, ui.MsgNeedKeyword)
	case conversation.IntentKeywordAdded:
		reply(ctx, tg, msg.Chat.ID, ui.KeywordAdded(outcome.Text))
	case conversation.IntentFinalize:
		h.finalize(ctx, tg, msg, outcome)
	}
}

func (h *Handlers) finalize(ctx context.Context, tg *transport.Telegram, msg *models.Message, outcome conversation.Outcome) {
	svc := submission.NewService(h.store, tg, h.adminID)
	submitter := submission.Submitter{
		UserID: msg.From.ID,
		ChatID: msg.Chat.ID,
		Name:   ui.DisplayName(msg.From),
	}
	if _, err := svc.Finalize(ctx, submitter, outcome.Text, outcome.Keywords); err != nil {
		logger.Error("failed to finalize submission", "user_id", msg.From.ID, "error", err)
		reply(ctx, tg, msg.Chat.ID, ui.MsgGenericFailure)
		return
	}
	h.conversations.Complete(msg.From.ID)
}
