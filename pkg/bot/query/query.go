// Package query answers keyword lookups and "my links" listings.
package query

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/smith3v/tg-link-curator/pkg/db"
	"github.com/smith3v/tg-link-curator/pkg/logger"
	"github.com/smith3v/tg-link-curator/pkg/metrics"
)

// DefaultChunkLimit keeps each message under Telegram's 4096 character cap.
const DefaultChunkLimit = 4000

var ErrNoResults = errors.New("no links found")

type Store interface {
	FindLinksByKeyword(ctx context.Context, keyword string) ([]db.Link, error)
	FindLinksByUser(ctx context.Context, userID int64) ([]db.Link, error)
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Lookup returns the URLs of approved links tagged with exactly keyword.
func (s *Service) Lookup(ctx context.Context, keyword string) ([]string, error) {
	links, err := s.store.FindLinksByKeyword(ctx, keyword)
	if err != nil {
		metrics.KeywordLookups.WithLabelValues(metrics.OutcomeFailed).Inc()
		return nil, fmt.Errorf("lookup %q: %w", keyword, err)
	}
	if len(links) == 0 {
		metrics.KeywordLookups.WithLabelValues(metrics.OutcomeMiss).Inc()
		logger.Debug("keyword lookup missed", "keyword", keyword)
		return nil, ErrNoResults
	}
	metrics.KeywordLookups.WithLabelValues(metrics.OutcomeHit).Inc()
	return urls(links), nil
}

func (s *Service) MyLinks(ctx context.Context, userID int64) ([]string, error) {
	links, err := s.store.FindLinksByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list links of %d: %w", userID, err)
	}
	if len(links) == 0 {
		return nil, ErrNoResults
	}
	return urls(links), nil
}

// Paginate renders header followed by numbered URLs and splits the result
// into chunks of at most limit characters. Splits happen only between
// lines; a line longer than limit is emitted as its own chunk.
func Paginate(header string, urls []string, limit int) []string {
	if limit <= 0 {
		limit = DefaultChunkLimit
	}

	var (
		chunks  []string
		current strings.Builder
		size    int
	)
	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
			size = 0
		}
	}
	add := func(line string) {
		n := utf8.RuneCountInString(line)
		sep := 0
		if size > 0 {
			sep = 1
		}
		if size > 0 && size+sep+n > limit {
			flush()
			sep = 0
		}
		if sep == 1 {
			current.WriteByte('\n')
		}
		current.WriteString(line)
		size += sep + n
		if size >= limit {
			flush()
		}
	}

	if header != "" {
		add(header)
	}
	for i, u := range urls {
		add(fmt.Sprintf("%d. %s", i+1, u))
	}
	flush()
	return chunks
}

func urls(links []db.Link) []string {
	out := make([]string, 0, len(links))
	for _, link := range links {
		out = append(out, link.URL)
	}
	return out
}
