// Package handlers wires Telegram updates to the conversation, submission,
// moderation and query workflows.
package handlers

import (
	"context"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/smith3v/tg-link-curator/pkg/bot/conversation"
	"github.com/smith3v/tg-link-curator/pkg/bot/query"
	"github.com/smith3v/tg-link-curator/pkg/bot/transport"
	"github.com/smith3v/tg-link-curator/pkg/db"
	"github.com/smith3v/tg-link-curator/pkg/logger"
	"github.com/smith3v/tg-link-curator/pkg/metrics"
)

type Handlers struct {
	store         *db.Store
	conversations *conversation.Manager
	queue         *conversation.Queue
	adminID       int64
	chunkLimit    int
	now           func() time.Time
}

func New(store *db.Store, conversations *conversation.Manager, queue *conversation.Queue, adminID int64) *Handlers {
	return &Handlers{
		store:         store,
		conversations: conversations,
		queue:         queue,
		adminID:       adminID,
		chunkLimit:    query.DefaultChunkLimit,
		now:           time.Now,
	}
}

// Serial routes the update through the per-user queue so that one user's
// updates are handled one at a time, in arrival order.
func (h *Handlers) Serial(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		userID, ok := senderID(update)
		if !ok {
			next(ctx, b, update)
			return
		}
		h.queue.Submit(userID, func() {
			next(ctx, b, update)
		})
	}
}

func senderID(update *models.Update) (int64, bool) {
	switch {
	case update == nil:
		return 0, false
	case update.Message != nil && update.Message.From != nil:
		return update.Message.From.ID, true
	case update.CallbackQuery != nil:
		return update.CallbackQuery.From.ID, true
	default:
		return 0, false
	}
}

func validMessage(update *models.Update) bool {
	return update != nil && update.Message != nil && update.Message.From != nil && update.Message.Chat.ID != 0
}

func reply(ctx context.Context, tg *transport.Telegram, chatID int64, text string) {
	if err := tg.SendText(ctx, chatID, text); err != nil {
		metrics.NotificationFailures.WithLabelValues("reply").Inc()
		logger.Error("failed to send reply", "chat_id", chatID, "error", err)
	}
}

func userFrom(u *models.User) db.User {
	return db.User{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}
