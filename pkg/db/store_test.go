package db

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func openTestStore(t *testing.T) (*gorm.DB, *Store) {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	gdb, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{Logger: gormlogger.Discard})
	if err != nil {
		t.Fatalf("failed to open sqlite database: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("failed to access underlying DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	t.Cleanup(func() {
		if err := sqlDB.Close(); err != nil {
			t.Fatalf("failed to close database: %v", err)
		}
	})
	return gdb, NewStore(gdb, time.Second)
}

func TestRegisterUserFirstWriteWins(t *testing.T) {
	gdb, store := openTestStore(t)
	ctx := context.Background()

	if err := store.RegisterUser(ctx, User{ID: 7, Username: "first", FirstName: "Ann"}); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if err := store.RegisterUser(ctx, User{ID: 7, Username: "second", FirstName: "Bob"}); err != nil {
		t.Fatalf("second register failed: %v", err)
	}

	var count int64
	if err := gdb.Model(&User{}).Where("id = ?", 7).Count(&count).Error; err != nil {
		t.Fatalf("failed to count users: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one user record, got %d", count)
	}

	user, err := store.FindUser(ctx, 7)
	if err != nil {
		t.Fatalf("failed to load user: %v", err)
	}
	if user.Username != "first" || user.FirstName != "Ann" {
		t.Fatalf("expected original profile to be preserved, got %+v", user)
	}
}

func TestUpsertPendingUnionsKeywords(t *testing.T) {
	gdb, store := openTestStore(t)
	ctx := context.Background()

	first, err := store.UpsertPending(ctx, 1, "https://example.com", []string{"news", "tech", "news"})
	if err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}
	second, err := store.UpsertPending(ctx, 1, "https://example.com", []string{"tech", "go"})
	if err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	if first.ID != second.ID {
		t.Fatalf("expected the same submission to be reused, got %q and %q", first.ID, second.ID)
	}
	want := []string{"news", "tech", "go"}
	if !reflect.DeepEqual([]string(second.Keywords), want) {
		t.Fatalf("expected keywords %v, got %v", want, second.Keywords)
	}

	var count int64
	if err := gdb.Model(&PendingSubmission{}).Count(&count).Error; err != nil {
		t.Fatalf("failed to count pending: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one pending record, got %d", count)
	}

	loaded, err := store.FindPendingByID(ctx, first.ID)
	if err != nil {
		t.Fatalf("failed to reload pending: %v", err)
	}
	if !reflect.DeepEqual([]string(loaded.Keywords), want) || loaded.Status != StatusPending {
		t.Fatalf("unexpected stored pending: %+v", loaded)
	}
}

func TestUpsertPendingRejectsEmptyKeywords(t *testing.T) {
	gdb, store := openTestStore(t)

	_, err := store.UpsertPending(context.Background(), 1, "https://example.com", []string{"", ""})
	if !errors.Is(err, ErrNoKeywords) {
		t.Fatalf("expected ErrNoKeywords, got %v", err)
	}

	var count int64
	if err := gdb.Model(&PendingSubmission{}).Count(&count).Error; err != nil {
		t.Fatalf("failed to count pending: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no pending records, got %d", count)
	}
}

func TestPromoteToLinkMakesLinkSearchable(t *testing.T) {
	_, store := openTestStore(t)
	ctx := context.Background()

	pending, err := store.UpsertPending(ctx, 10, "https://example.com", []string{"news", "tech"})
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	link, err := store.PromoteToLink(ctx, pending)
	if err != nil {
		t.Fatalf("promote failed: %v", err)
	}
	if link.URL != "https://example.com" || link.UserID != 10 {
		t.Fatalf("unexpected link: %+v", link)
	}

	byUser, err := store.FindLinksByUser(ctx, 10)
	if err != nil {
		t.Fatalf("find by user failed: %v", err)
	}
	if len(byUser) != 1 || byUser[0].URL != "https://example.com" {
		t.Fatalf("expected link for user, got %+v", byUser)
	}
	for _, kw := range []string{"news", "tech"} {
		links, err := store.FindLinksByKeyword(ctx, kw)
		if err != nil {
			t.Fatalf("find by keyword %q failed: %v", kw, err)
		}
		if len(links) != 1 || links[0].URL != "https://example.com" {
			t.Fatalf("expected link for keyword %q, got %+v", kw, links)
		}
	}

	if _, err := store.FindPending(ctx, 10); !errors.Is(err, ErrPendingNotFound) {
		t.Fatalf("expected pending to be removed, got %v", err)
	}
	if _, err := store.PromoteToLink(ctx, pending); !errors.Is(err, ErrPendingNotFound) {
		t.Fatalf("expected second promote to report missing pending, got %v", err)
	}
}

func TestPromoteToLinkUnionsExistingKeywords(t *testing.T) {
	_, store := openTestStore(t)
	ctx := context.Background()

	first, err := store.UpsertPending(ctx, 1, "https://go.dev", []string{"go", "lang"})
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if _, err := store.PromoteToLink(ctx, first); err != nil {
		t.Fatalf("promote failed: %v", err)
	}

	second, err := store.UpsertPending(ctx, 2, "https://go.dev", []string{"docs", "go"})
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	link, err := store.PromoteToLink(ctx, second)
	if err != nil {
		t.Fatalf("promote failed: %v", err)
	}

	want := []string{"docs", "go", "lang"}
	if got := link.KeywordList(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected keywords %v, got %v", want, got)
	}
	if link.UserID != 2 {
		t.Fatalf("expected ownership to move to user 2, got %d", link.UserID)
	}
	if links, err := store.FindLinksByKeyword(ctx, "lang"); err != nil || len(links) != 1 {
		t.Fatalf("expected original keyword to survive, got %+v (err %v)", links, err)
	}
}

func TestDeletePending(t *testing.T) {
	_, store := openTestStore(t)
	ctx := context.Background()

	pending, err := store.UpsertPending(ctx, 3, "https://example.com", []string{"news"})
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if err := store.DeletePending(ctx, pending.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := store.DeletePending(ctx, pending.ID); !errors.Is(err, ErrPendingNotFound) {
		t.Fatalf("expected ErrPendingNotFound on second delete, got %v", err)
	}

	if links, err := store.FindLinksByUser(ctx, 3); err != nil || len(links) != 0 {
		t.Fatalf("declined submission must not produce links, got %+v (err %v)", links, err)
	}
	if links, err := store.FindLinksByKeyword(ctx, "news"); err != nil || len(links) != 0 {
		t.Fatalf("declined submission must not be searchable, got %+v (err %v)", links, err)
	}
}

func TestDeletePendingForUser(t *testing.T) {
	_, store := openTestStore(t)
	ctx := context.Background()

	for _, url := range []string{"https://a.example", "https://b.example"} {
		if _, err := store.UpsertPending(ctx, 4, url, []string{"x"}); err != nil {
			t.Fatalf("upsert failed: %v", err)
		}
	}
	if err := store.DeletePendingForUser(ctx, 4); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := store.FindPending(ctx, 4); !errors.Is(err, ErrPendingNotFound) {
		t.Fatalf("expected no pending left, got %v", err)
	}
}

func TestFindLinksByKeywordExactMatch(t *testing.T) {
	_, store := openTestStore(t)
	ctx := context.Background()

	for i, url := range []string{"https://b.example", "https://a.example"} {
		pending, err := store.UpsertPending(ctx, int64(i+1), url, []string{"news"})
		if err != nil {
			t.Fatalf("upsert failed: %v", err)
		}
		if _, err := store.PromoteToLink(ctx, pending); err != nil {
			t.Fatalf("promote failed: %v", err)
		}
	}

	links, err := store.FindLinksByKeyword(ctx, "news")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if len(links) != 2 || links[0].URL != "https://a.example" || links[1].URL != "https://b.example" {
		t.Fatalf("expected both links ordered by URL, got %+v", links)
	}

	for _, miss := range []string{"News", "new", "sports"} {
		links, err := store.FindLinksByKeyword(ctx, miss)
		if err != nil {
			t.Fatalf("lookup %q failed: %v", miss, err)
		}
		if len(links) != 0 {
			t.Fatalf("expected no match for %q, got %+v", miss, links)
		}
	}
}

func TestStorageErrorsAreWrapped(t *testing.T) {
	gdb, store := openTestStore(t)
	if err := Close(gdb); err != nil {
		t.Fatalf("failed to close database: %v", err)
	}

	_, err := store.FindLinksByUser(context.Background(), 1)
	if !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
}

func TestMergeKeywords(t *testing.T) {
	got := MergeKeywords([]string{"a", "b"}, "b", "", "c", "a")
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
