// Package submission turns collected keywords and a link into a pending
// submission and a moderation request for the administrator.
package submission

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot/models"
	"github.com/smith3v/tg-link-curator/pkg/db"
	"github.com/smith3v/tg-link-curator/pkg/logger"
	"github.com/smith3v/tg-link-curator/pkg/metrics"
	"github.com/smith3v/tg-link-curator/pkg/ui"
)

type Store interface {
	UpsertPending(ctx context.Context, userID int64, url string, keywords []string) (*db.PendingSubmission, error)
}

type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string) error
	SendKeyboard(ctx context.Context, chatID int64, text string, keyboard *models.InlineKeyboardMarkup) error
}

// Submitter identifies who sent the link and where to confirm.
type Submitter struct {
	UserID int64
	ChatID int64
	Name   string
}

type Service struct {
	store     Store
	messenger Messenger
	adminID   int64
}

func NewService(store Store, messenger Messenger, adminID int64) *Service {
	return &Service{store: store, messenger: messenger, adminID: adminID}
}

// Finalize stores the submission and notifies both sides. Only storage
// failures are returned; undelivered messages are logged and dropped.
func (s *Service) Finalize(ctx context.Context, submitter Submitter, url string, keywords []string) (*db.PendingSubmission, error) {
	pending, err := s.store.UpsertPending(ctx, submitter.UserID, url, keywords)
	if err != nil {
		metrics.Submissions.WithLabelValues(metrics.OutcomeFailed).Inc()
		return nil, fmt.Errorf("store submission: %w", err)
	}
	metrics.Submissions.WithLabelValues(metrics.OutcomeAccepted).Inc()
	logger.Info("link submitted",
		"user_id", submitter.UserID,
		"submission_id", pending.ID,
		"url", pending.URL,
		"keywords", len(pending.Keywords),
	)

	text, keyboard, err := ui.RenderModerationRequest(pending.ID, submitter.UserID, submitter.Name, pending.URL, pending.Keywords)
	if err != nil {
		logger.Error("failed to render moderation request", "submission_id", pending.ID, "error", err)
	} else if err := s.messenger.SendKeyboard(ctx, s.adminID, text, keyboard); err != nil {
		metrics.NotificationFailures.WithLabelValues("moderation_request").Inc()
		logger.Error("failed to send moderation request", "admin_id", s.adminID, "submission_id", pending.ID, "error", err)
	}

	if err := s.messenger.SendText(ctx, submitter.ChatID, ui.MsgSubmitted); err != nil {
		metrics.NotificationFailures.WithLabelValues("submission_confirmation").Inc()
		logger.Error("failed to confirm submission", "user_id", submitter.UserID, "error", err)
	}
	return pending, nil
}
