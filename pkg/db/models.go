package db

import (
	"time"

	"gorm.io/datatypes"
)

const StatusPending = "pending"

type User struct {
	ID        int64 `gorm:"primaryKey;autoIncrement:false"` // Telegram user ID
	Username  string
	FirstName string
	LastName  string
	CreatedAt time.Time
}

// Link is an approved link. The URL is the global key; keywords live in
// LinkKeyword rows so the set can be matched by equality.
type Link struct {
	URL       string        `gorm:"primaryKey"`
	UserID    int64         `gorm:"index;not null"`
	Keywords  []LinkKeyword `gorm:"foreignKey:LinkURL;references:URL;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type LinkKeyword struct {
	LinkURL string `gorm:"primaryKey"`
	Keyword string `gorm:"primaryKey;index"`
}

type PendingSubmission struct {
	ID        string                      `gorm:"primaryKey;size:36"`
	UserID    int64                       `gorm:"not null;uniqueIndex:idx_pending_user_url"`
	URL       string                      `gorm:"not null;uniqueIndex:idx_pending_user_url"`
	Keywords  datatypes.JSONSlice[string] `gorm:"not null"`
	Status    string                      `gorm:"not null;default:pending"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// KeywordList returns the link's keywords in storage order.
func (l Link) KeywordList() []string {
	out := make([]string, 0, len(l.Keywords))
	for _, kw := range l.Keywords {
		out = append(out, kw.Keyword)
	}
	return out
}

func allModels() []any {
	return []any{&User{}, &Link{}, &LinkKeyword{}, &PendingSubmission{}}
}

// MergeKeywords appends the keywords from extra that are not already in base,
// keeping first-seen order. Blank keywords are dropped.
func MergeKeywords(base []string, extra ...string) []string {
	seen := make(map[string]struct{}, len(base)+len(extra))
	out := make([]string, 0, len(base)+len(extra))
	for _, list := range [][]string{base, extra} {
		for _, kw := range list {
			if kw == "" {
				continue
			}
			if _, ok := seen[kw]; ok {
				continue
			}
			seen[kw] = struct{}{}
			out = append(out, kw)
		}
	}
	return out
}
