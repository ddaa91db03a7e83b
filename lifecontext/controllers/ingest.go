package controllers

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"lifecontext/lifecontext/crawler"
	"lifecontext/lifecontext/sources/psql/models"
	"lifecontext/lifecontext/utils/logging"
	"lifecontext/lifecontext/utils/types"
)

// ErrContentTooShort rejects payloads below the capture floor; the pipeline
// never sends them, so receiving one means a misbehaving client.
var ErrContentTooShort = errors.New("content too short")

// WebDataStore is the persistence slice the controller needs.
type WebDataStore interface {
	Insert(ctx context.Context, title, url, content, source, tags, contentHash, changeType string, capturedAt time.Time) (uint, error)
	Recent(ctx context.Context, limit int, source string) ([]models.WebData, error)
}

// SeenChecker is the cross-tab dedup cache; nil-able.
type SeenChecker interface {
	Seen(ctx context.Context, url, contentHash string) (bool, error)
}

// Archiver stores the raw capture for later reprocessing; nil-able.
type Archiver interface {
	ArchiveWebData(ctx context.Context, p crawler.CrawlPayload, contentHash string) (string, error)
}

// IngestController receives crawl payloads from the relay.
type IngestController struct {
	store   WebDataStore
	cache   SeenChecker
	archive Archiver
}

func NewIngestController(store WebDataStore, cache SeenChecker, archive Archiver) *IngestController {
	return &IngestController{store: store, cache: cache, archive: archive}
}

func (c *IngestController) Ingest(ctx context.Context, p crawler.CrawlPayload) (*types.IngestResponse, error) {
	content := p.Content.Content
	if utf8.RuneCountInString(content) < crawler.MinContentLength {
		return nil, ErrContentTooShort
	}
	contentHash := crawler.Hash(content)

	if c.cache != nil {
		dup, err := c.cache.Seen(ctx, p.URL, contentHash)
		if err != nil {
			// Dedup is best effort: a cache outage must not drop captures.
			logging.ErrorLogger.Error("dedup cache lookup failed", zap.Error(err))
		} else if dup {
			logging.AppLogger.Info("duplicate capture skipped",
				zap.String("url", p.URL),
				zap.String("hash", contentHash),
			)
			return &types.IngestResponse{Status: "duplicate", Duplicate: true}, nil
		}
	}

	capturedAt, err := time.Parse(time.RFC3339, p.Timestamp)
	if err != nil {
		capturedAt = time.Now()
	}
	id, err := c.store.Insert(ctx, p.Title, p.URL, content, p.Source,
		strings.Join(p.Tags, ","), contentHash, p.ChangeType, capturedAt)
	if err != nil {
		return nil, err
	}

	if c.archive != nil {
		if key, err := c.archive.ArchiveWebData(ctx, p, contentHash); err != nil {
			logging.ErrorLogger.Error("archive failed", zap.String("url", p.URL), zap.Error(err))
		} else {
			logging.AppLogger.Info("capture archived", zap.String("key", key))
		}
	}

	logging.AppLogger.Info("web data ingested",
		zap.Uint("id", id),
		zap.String("url", p.URL),
		zap.String("source", p.Source),
	)
	return &types.IngestResponse{Status: "ok", ID: id}, nil
}

// Recent serves the dashboard timeline.
func (c *IngestController) Recent(ctx context.Context, limit int, source string) ([]models.WebData, error) {
	return c.store.Recent(ctx, limit, source)
}
