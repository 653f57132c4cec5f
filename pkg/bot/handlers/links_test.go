package handlers

import (
	"context"
	"strings"
	"testing"

	"github.com/smith3v/tg-link-curator/pkg/db"
	"github.com/smith3v/tg-link-curator/pkg/ui"
)

func seedLink(t *testing.T, store *db.Store, userID int64, url string, keywords ...string) {
	t.Helper()
	ctx := context.Background()
	pending, err := store.UpsertPending(ctx, userID, url, keywords)
	if err != nil {
		t.Fatalf("failed to seed pending: %v", err)
	}
	if _, err := store.PromoteToLink(ctx, pending); err != nil {
		t.Fatalf("failed to seed link: %v", err)
	}
}

func TestKeywordLookup(t *testing.T) {
	h, store := newTestHandlers(t)
	seedLink(t, store, 401, "https://b.example", "news")
	seedLink(t, store, 402, "https://a.example", "news")
	client := newMockClient()
	b := newTestTelegramBot(t, client)

	h.DefaultHandler(context.Background(), b, newTestUpdate("news", 403))

	want := ui.LookupHeader("news") + "\n1. https://a.example\n2. https://b.example"
	if got := client.lastMessageText(t); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	preview, _ := multipartField(t, client.requestsTo("sendMessage")[0], "link_preview_options")
	if !strings.Contains(preview, `"is_disabled":true`) {
		t.Fatalf("expected link previews to be disabled, got %s", preview)
	}
}

func TestKeywordLookupNoResults(t *testing.T) {
	h, _ := newTestHandlers(t)
	client := newMockClient()
	b := newTestTelegramBot(t, client)

	h.DefaultHandler(context.Background(), b, newTestUpdate("sports", 404))

	if got := client.lastMessageText(t); got != ui.MsgNoResults {
		t.Fatalf("expected no results reply, got %q", got)
	}
}

func TestKeywordLookupIsPaginated(t *testing.T) {
	h, store := newTestHandlers(t)
	seedLink(t, store, 405, "https://one.example", "many")
	seedLink(t, store, 405, "https://two.example", "many")
	h.chunkLimit = 30
	client := newMockClient()
	b := newTestTelegramBot(t, client)

	h.DefaultHandler(context.Background(), b, newTestUpdate("many", 406))

	texts := client.sentTexts(t)
	if len(texts) < 2 {
		t.Fatalf("expected several pages, got %q", texts)
	}
	for _, text := range texts {
		if len([]rune(text)) > 30 && strings.Contains(text, "\n") {
			t.Fatalf("page exceeds limit: %q", text)
		}
	}
}

func TestHandleMyLinks(t *testing.T) {
	h, store := newTestHandlers(t)
	seedLink(t, store, 407, "https://mine.example", "x")
	seedLink(t, store, 408, "https://other.example", "x")
	client := newMockClient()
	b := newTestTelegramBot(t, client)
	ctx := context.Background()

	h.HandleMyLinks(ctx, b, newTestUpdate("/mylinks", 407))
	if got, want := client.lastMessageText(t), ui.MyLinksHeader+"\n1. https://mine.example"; got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}

	h.HandleMyLinks(ctx, b, newTestUpdate("/mylinks", 409))
	if got := client.lastMessageText(t); got != ui.MsgNoOwnLinks {
		t.Fatalf("expected empty listing reply, got %q", got)
	}
}

func TestHandleExportSendsDocument(t *testing.T) {
	h, store := newTestHandlers(t)
	seedLink(t, store, 410, "https://a.example", "news", "tech")
	seedLink(t, store, 410, "https://b.example", "go")
	client := newMockClient()
	b := newTestTelegramBot(t, client)

	h.HandleExport(context.Background(), b, newTestUpdate("/export", 410))

	docs := client.requestsTo("sendDocument")
	if len(docs) != 1 {
		t.Fatalf("expected one document, got %d", len(docs))
	}
	caption, _ := multipartField(t, docs[0], "caption")
	if caption != "Your links export (2 links)." {
		t.Fatalf("unexpected caption: %q", caption)
	}
	content, filename := multipartField(t, docs[0], "document")
	if !strings.HasPrefix(filename, "links-") || !strings.HasSuffix(filename, ".csv") {
		t.Fatalf("unexpected filename: %q", filename)
	}
	if !strings.Contains(content, "https://a.example,news;tech\r\n") {
		t.Fatalf("unexpected CSV content: %q", content)
	}
}

func TestHandleExportWithoutLinks(t *testing.T) {
	h, _ := newTestHandlers(t)
	client := newMockClient()
	b := newTestTelegramBot(t, client)

	h.HandleExport(context.Background(), b, newTestUpdate("/export", 411))

	if got := client.lastMessageText(t); got != ui.MsgNoOwnLinks {
		t.Fatalf("expected empty export reply, got %q", got)
	}
	if docs := client.requestsTo("sendDocument"); len(docs) != 0 {
		t.Fatalf("expected no document, got %d", len(docs))
	}
}
