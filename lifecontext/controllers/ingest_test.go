package controllers

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"lifecontext/lifecontext/crawler"
	"lifecontext/lifecontext/sources/psql/models"
	"lifecontext/lifecontext/utils/logging"
)

// --- Fakes ---

type fakeStore struct {
	inserted []models.WebData
	err      error
}

func (s *fakeStore) Insert(_ context.Context, title, url, content, source, tags, contentHash, changeType string, capturedAt time.Time) (uint, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.inserted = append(s.inserted, models.WebData{
		Title: title, URL: url, Content: content, Source: source,
		Tags: tags, ContentHash: contentHash, ChangeType: changeType, CapturedAt: capturedAt,
	})
	return uint(len(s.inserted)), nil
}

func (s *fakeStore) Recent(_ context.Context, limit int, source string) ([]models.WebData, error) {
	return s.inserted, nil
}

type fakeSeen struct {
	seen bool
	err  error
}

func (f *fakeSeen) Seen(context.Context, string, string) (bool, error) {
	return f.seen, f.err
}

type fakeArchive struct {
	keys []string
	err  error
}

func (f *fakeArchive) ArchiveWebData(_ context.Context, p crawler.CrawlPayload, contentHash string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	key := "webdata/" + contentHash + ".json"
	f.keys = append(f.keys, key)
	return key, nil
}

func ingestPayload(content string) crawler.CrawlPayload {
	return crawler.CrawlPayload{
		Title:      "Page",
		URL:        "https://example.com/p",
		Content:    crawler.PayloadContent{Title: "Page", Content: content},
		Source:     crawler.SourceIncremental,
		Tags:       []string{"go", "web"},
		Timestamp:  "2025-06-01T10:00:00Z",
		ChangeType: crawler.ChangeDOMMutation,
	}
}

// --- Tests ---

func TestIngestStoresPayload(t *testing.T) {
	logging.InitLogger()
	store := &fakeStore{}
	archive := &fakeArchive{}
	c := NewIngestController(store, &fakeSeen{}, archive)

	content := strings.Repeat("captured page content ", 4)
	res, err := c.Ingest(context.Background(), ingestPayload(content))
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if res.Status != "ok" || res.ID != 1 || res.Duplicate {
		t.Errorf("response = %+v", res)
	}

	row := store.inserted[0]
	if row.Tags != "go,web" {
		t.Errorf("tags joined wrong: %q", row.Tags)
	}
	if row.ContentHash != crawler.Hash(content) {
		t.Errorf("content hash mismatch: %q", row.ContentHash)
	}
	if !row.CapturedAt.Equal(time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("capturedAt = %v", row.CapturedAt)
	}
	if len(archive.keys) != 1 {
		t.Errorf("capture not archived: %v", archive.keys)
	}
}

func TestIngestRejectsShortContent(t *testing.T) {
	logging.InitLogger()
	store := &fakeStore{}
	c := NewIngestController(store, nil, nil)

	_, err := c.Ingest(context.Background(), ingestPayload("way too short"))
	if !errors.Is(err, ErrContentTooShort) {
		t.Fatalf("err = %v, want ErrContentTooShort", err)
	}
	if len(store.inserted) != 0 {
		t.Error("short content must not be stored")
	}
}

func TestIngestDuplicateSkipped(t *testing.T) {
	logging.InitLogger()
	store := &fakeStore{}
	c := NewIngestController(store, &fakeSeen{seen: true}, nil)

	res, err := c.Ingest(context.Background(), ingestPayload(strings.Repeat("x", 60)))
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if !res.Duplicate || res.Status != "duplicate" {
		t.Errorf("response = %+v", res)
	}
	if len(store.inserted) != 0 {
		t.Error("duplicate must not be stored")
	}
}

func TestIngestCacheOutageFailsOpen(t *testing.T) {
	logging.InitLogger()
	store := &fakeStore{}
	c := NewIngestController(store, &fakeSeen{err: errors.New("redis down")}, nil)

	res, err := c.Ingest(context.Background(), ingestPayload(strings.Repeat("y", 60)))
	if err != nil {
		t.Fatalf("cache outage must not fail ingest: %v", err)
	}
	if res.Status != "ok" || len(store.inserted) != 1 {
		t.Error("capture dropped during cache outage")
	}
}

func TestIngestArchiveFailureTolerated(t *testing.T) {
	logging.InitLogger()
	store := &fakeStore{}
	c := NewIngestController(store, nil, &fakeArchive{err: errors.New("minio down")})

	res, err := c.Ingest(context.Background(), ingestPayload(strings.Repeat("z", 60)))
	if err != nil || res.Status != "ok" {
		t.Errorf("archive failure must not fail ingest: %v %+v", err, res)
	}
}

func TestIngestBadTimestampFallsBackToNow(t *testing.T) {
	logging.InitLogger()
	store := &fakeStore{}
	c := NewIngestController(store, nil, nil)

	p := ingestPayload(strings.Repeat("w", 60))
	p.Timestamp = "not-a-time"
	before := time.Now()
	if _, err := c.Ingest(context.Background(), p); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if store.inserted[0].CapturedAt.Before(before) {
		t.Errorf("capturedAt not defaulted: %v", store.inserted[0].CapturedAt)
	}
}

func TestIngestStoreError(t *testing.T) {
	logging.InitLogger()
	c := NewIngestController(&fakeStore{err: errors.New("db down")}, nil, nil)
	if _, err := c.Ingest(context.Background(), ingestPayload(strings.Repeat("v", 60))); err == nil {
		t.Error("store failure must surface")
	}
}
