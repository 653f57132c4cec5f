package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/smith3v/tg-link-curator/pkg/bot/export"
	"github.com/smith3v/tg-link-curator/pkg/bot/query"
	"github.com/smith3v/tg-link-curator/pkg/bot/transport"
	"github.com/smith3v/tg-link-curator/pkg/logger"
	"github.com/smith3v/tg-link-curator/pkg/ui"
)

func (h *Handlers) lookup(ctx context.Context, tg *transport.Telegram, chatID int64, keyword string) {
	urls, err := query.NewService(h.store).Lookup(ctx, keyword)
	switch {
	case errors.Is(err, query.ErrNoResults):
		reply(ctx, tg, chatID, ui.MsgNoResults)
		return
	case err != nil:
		logger.Error("keyword lookup failed", "keyword", keyword, "error", err)
		reply(ctx, tg, chatID, ui.MsgGenericFailure)
		return
	}
	h.sendPages(ctx, tg, chatID, ui.LookupHeader(keyword), urls)
}

func (h *Handlers) HandleMyLinks(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !validMessage(update) {
		logger.Error("invalid update in HandleMyLinks")
		return
	}
	tg := transport.NewTelegram(b)
	chatID := update.Message.Chat.ID

	urls, err := query.NewService(h.store).MyLinks(ctx, update.Message.From.ID)
	switch {
	case errors.Is(err, query.ErrNoResults):
		reply(ctx, tg, chatID, ui.MsgNoOwnLinks)
		return
	case err != nil:
		logger.Error("failed to list user links", "user_id", update.Message.From.ID, "error", err)
		reply(ctx, tg, chatID, ui.MsgGenericFailure)
		return
	}
	h.sendPages(ctx, tg, chatID, ui.MyLinksHeader, urls)
}

func (h *Handlers) sendPages(ctx context.Context, tg *transport.Telegram, chatID int64, header string, urls []string) {
	for _, chunk := range query.Paginate(header, urls, h.chunkLimit) {
		if err := tg.SendText(ctx, chatID, chunk); err != nil {
			logger.Error("failed to send result page", "chat_id", chatID, "error", err)
			return
		}
	}
}

func (h *Handlers) HandleExport(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !validMessage(update) {
		logger.Error("invalid update in HandleExport")
		return
	}
	tg := transport.NewTelegram(b)
	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	links, err := h.store.FindLinksByUser(ctx, userID)
	if err != nil {
		logger.Error("failed to fetch links for export", "user_id", userID, "error", err)
		reply(ctx, tg, chatID, ui.MsgGenericFailure)
		return
	}
	if len(links) == 0 {
		reply(ctx, tg, chatID, ui.MsgNoOwnLinks)
		return
	}

	data, err := export.BuildExportCSV(links)
	if err != nil {
		logger.Error("failed to build export CSV", "user_id", userID, "error", err)
		reply(ctx, tg, chatID, ui.MsgGenericFailure)
		return
	}

	caption := fmt.Sprintf("Your links export (%d links).", len(links))
	if err := tg.SendDocument(ctx, chatID, export.ExportFilename(h.now()), data, caption); err != nil {
		logger.Error("failed to send export document", "user_id", userID, "error", err)
		reply(ctx, tg, chatID, ui.MsgGenericFailure)
	}
}
