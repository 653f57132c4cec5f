// Package moderation applies administrator decisions to pending submissions.
package moderation

import (
	"context"
	"errors"
	"fmt"

	"github.com/smith3v/tg-link-curator/pkg/db"
	"github.com/smith3v/tg-link-curator/pkg/logger"
	"github.com/smith3v/tg-link-curator/pkg/metrics"
	"github.com/smith3v/tg-link-curator/pkg/ui"
)

var (
	// ErrStale means the submission was already resolved or never existed.
	ErrStale      = errors.New("moderation request no longer exists")
	ErrNotAllowed = errors.New("actor is not the administrator")
)

type Store interface {
	FindPending(ctx context.Context, userID int64) (*db.PendingSubmission, error)
	FindPendingByID(ctx context.Context, id string) (*db.PendingSubmission, error)
	PromoteToLink(ctx context.Context, pending *db.PendingSubmission) (*db.Link, error)
	DeletePending(ctx context.Context, id string) error
}

type Notifier interface {
	SendText(ctx context.Context, chatID int64, text string) error
}

type Decision struct {
	ActorID  int64
	Callback ui.ModerationCallback
}

// Result describes an applied decision.
type Result struct {
	Action       ui.Action
	SubmissionID string
	SubmitterID  int64
	URL          string
}

type Service struct {
	store    Store
	notifier Notifier
	adminID  int64
}

func NewService(store Store, notifier Notifier, adminID int64) *Service {
	return &Service{store: store, notifier: notifier, adminID: adminID}
}

// Decide approves or declines the submission named by the callback. A
// submission is resolved at most once; later attempts return ErrStale.
func (s *Service) Decide(ctx context.Context, d Decision) (*Result, error) {
	action := d.Callback.Action.String()
	if d.ActorID != s.adminID {
		logger.Warn("moderation attempt by non-admin", "actor_id", d.ActorID, "action", action)
		return nil, ErrNotAllowed
	}

	pending, err := s.resolve(ctx, d.Callback)
	if err != nil {
		return nil, s.fail(action, err)
	}

	result := &Result{
		Action:       d.Callback.Action,
		SubmissionID: pending.ID,
		SubmitterID:  pending.UserID,
		URL:          pending.URL,
	}

	var notice string
	switch d.Callback.Action {
	case ui.ActionApprove:
		link, err := s.store.PromoteToLink(ctx, pending)
		if err != nil {
			return nil, s.fail(action, err)
		}
		result.URL = link.URL
		notice = ui.ApprovedNotice(link.URL)
	case ui.ActionDecline:
		if err := s.store.DeletePending(ctx, pending.ID); err != nil {
			return nil, s.fail(action, err)
		}
		notice = ui.DeclinedNotice(pending.URL)
	default:
		return nil, fmt.Errorf("unknown moderation action %q", d.Callback.Action)
	}

	metrics.ModerationDecisions.WithLabelValues(action, metrics.OutcomeApplied).Inc()
	logger.Info("moderation decision applied",
		"action", action,
		"submission_id", result.SubmissionID,
		"submitter_id", result.SubmitterID,
		"url", result.URL,
	)

	if err := s.notifier.SendText(ctx, result.SubmitterID, notice); err != nil {
		metrics.NotificationFailures.WithLabelValues("moderation_outcome").Inc()
		logger.Error("failed to notify submitter", "submitter_id", result.SubmitterID, "error", err)
	}
	return result, nil
}

func (s *Service) resolve(ctx context.Context, cb ui.ModerationCallback) (*db.PendingSubmission, error) {
	if cb.SubmissionID != "" {
		return s.store.FindPendingByID(ctx, cb.SubmissionID)
	}
	return s.store.FindPending(ctx, cb.SubjectUserID)
}

func (s *Service) fail(action string, err error) error {
	if errors.Is(err, db.ErrPendingNotFound) {
		metrics.ModerationDecisions.WithLabelValues(action, metrics.OutcomeStale).Inc()
		return ErrStale
	}
	metrics.ModerationDecisions.WithLabelValues(action, metrics.OutcomeFailed).Inc()
	return fmt.Errorf("%s submission: %w", action, err)
}
