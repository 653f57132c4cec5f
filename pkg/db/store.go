package db

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultOpTimeout = 5 * time.Second

// Store is the persistence layer for users, approved links and pending
// submissions. Every call runs under its own timeout.
type Store struct {
	db      *gorm.DB
	timeout time.Duration
	now     func() time.Time
}

func NewStore(gdb *gorm.DB, timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = defaultOpTimeout
	}
	return &Store{db: gdb, timeout: timeout, now: time.Now}
}

func (s *Store) withTimeout(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	return s.db.WithContext(ctx), cancel
}

// RegisterUser inserts the user only if the ID is unknown.
func (s *Store) RegisterUser(ctx context.Context, user User) error {
	tx, cancel := s.withTimeout(ctx)
	defer cancel()

	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(&user).Error
	return wrapErr("register user", err)
}

func (s *Store) FindUser(ctx context.Context, id int64) (*User, error) {
	tx, cancel := s.withTimeout(ctx)
	defer cancel()

	var user User
	if err := tx.First(&user, "id = ?", id).Error; err != nil {
		return nil, wrapErr("find user", err)
	}
	return &user, nil
}

// UpsertPending creates or extends the pending submission for (userID, url).
// Keywords are unioned with what is already stored and never removed.
func (s *Store) UpsertPending(ctx context.Context, userID int64, url string, keywords []string) (*PendingSubmission, error) {
	merged := MergeKeywords(nil, keywords...)
	if len(merged) == 0 {
		return nil, ErrNoKeywords
	}

	tx, cancel := s.withTimeout(ctx)
	defer cancel()

	var pending PendingSubmission
	err := tx.Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND url = ?", userID, url).
			First(&pending).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			pending = PendingSubmission{
				ID:       uuid.NewString(),
				UserID:   userID,
				URL:      url,
				Keywords: datatypes.NewJSONSlice(merged),
				Status:   StatusPending,
			}
			return tx.Create(&pending).Error
		case err != nil:
			return err
		}

		pending.Keywords = datatypes.NewJSONSlice(MergeKeywords(pending.Keywords, merged...))
		pending.Status = StatusPending
		return tx.Save(&pending).Error
	})
	if err != nil {
		return nil, wrapErr("upsert pending", err)
	}
	return &pending, nil
}

// FindPending returns the oldest pending submission of the user.
func (s *Store) FindPending(ctx context.Context, userID int64) (*PendingSubmission, error) {
	tx, cancel := s.withTimeout(ctx)
	defer cancel()

	var pending PendingSubmission
	err := tx.Where("user_id = ? AND status = ?", userID, StatusPending).
		Order("created_at ASC, id ASC").
		First(&pending).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPendingNotFound
	}
	if err != nil {
		return nil, wrapErr("find pending", err)
	}
	return &pending, nil
}

func (s *Store) FindPendingByID(ctx context.Context, id string) (*PendingSubmission, error) {
	tx, cancel := s.withTimeout(ctx)
	defer cancel()

	var pending PendingSubmission
	err := tx.Where("id = ?", id).First(&pending).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPendingNotFound
	}
	if err != nil {
		return nil, wrapErr("find pending by id", err)
	}
	return &pending, nil
}

// PromoteToLink approves a pending submission: the link row is upserted with
// the submitter as owner, keywords are unioned in, and the pending row is
// deleted, all in one transaction. ErrPendingNotFound means somebody else
// resolved it first.
func (s *Store) PromoteToLink(ctx context.Context, pending *PendingSubmission) (*Link, error) {
	if pending == nil {
		return nil, ErrPendingNotFound
	}
	tx, cancel := s.withTimeout(ctx)
	defer cancel()

	var link Link
	err := tx.Transaction(func(tx *gorm.DB) error {
		var current PendingSubmission
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", pending.ID).
			First(&current).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPendingNotFound
		}
		if err != nil {
			return err
		}

		now := s.now().UTC()
		link = Link{URL: current.URL, UserID: current.UserID, CreatedAt: now, UpdatedAt: now}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "url"}},
			DoUpdates: clause.AssignmentColumns([]string{"user_id", "updated_at"}),
		}).Create(&link).Error; err != nil {
			return err
		}

		keywords := MergeKeywords(nil, current.Keywords...)
		rows := make([]LinkKeyword, 0, len(keywords))
		for _, kw := range keywords {
			rows = append(rows, LinkKeyword{LinkURL: current.URL, Keyword: kw})
		}
		if len(rows) > 0 {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
				return err
			}
		}

		res := tx.Where("id = ?", current.ID).Delete(&PendingSubmission{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrPendingNotFound
		}

		return tx.Preload("Keywords", orderKeywords).First(&link, "url = ?", current.URL).Error
	})
	if err != nil {
		return nil, wrapErr("promote pending", err)
	}
	return &link, nil
}

// DeletePending removes a single pending submission by ID.
func (s *Store) DeletePending(ctx context.Context, id string) error {
	tx, cancel := s.withTimeout(ctx)
	defer cancel()

	res := tx.Where("id = ?", id).Delete(&PendingSubmission{})
	if res.Error != nil {
		return wrapErr("delete pending", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrPendingNotFound
	}
	return nil
}

// DeletePendingForUser removes every pending submission of the user.
func (s *Store) DeletePendingForUser(ctx context.Context, userID int64) error {
	tx, cancel := s.withTimeout(ctx)
	defer cancel()

	res := tx.Where("user_id = ?", userID).Delete(&PendingSubmission{})
	if res.Error != nil {
		return wrapErr("delete pending for user", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrPendingNotFound
	}
	return nil
}

// FindLinksByKeyword returns approved links tagged with exactly keyword,
// ordered by URL.
func (s *Store) FindLinksByKeyword(ctx context.Context, keyword string) ([]Link, error) {
	tx, cancel := s.withTimeout(ctx)
	defer cancel()

	var links []Link
	err := tx.Preload("Keywords", orderKeywords).
		Where("url IN (?)", tx.Model(&LinkKeyword{}).Select("link_url").Where("keyword = ?", keyword)).
		Order("url ASC").
		Find(&links).Error
	if err != nil {
		return nil, wrapErr("find links by keyword", err)
	}
	return links, nil
}

// FindLinksByUser returns the approved links owned by userID, ordered by URL.
func (s *Store) FindLinksByUser(ctx context.Context, userID int64) ([]Link, error) {
	tx, cancel := s.withTimeout(ctx)
	defer cancel()

	var links []Link
	err := tx.Preload("Keywords", orderKeywords).
		Where("user_id = ?", userID).
		Order("url ASC").
		Find(&links).Error
	if err != nil {
		return nil, wrapErr("find links by user", err)
	}
	return links, nil
}

func orderKeywords(tx *gorm.DB) *gorm.DB {
	return tx.Order("keyword ASC")
}
