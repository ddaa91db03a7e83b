package relay

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"lifecontext/lifecontext/crawler"
	"lifecontext/lifecontext/utils/logging"
)

// ChannelUploader sends crawl payloads to the background relay over the
// message channel. It implements crawler.Uploader. The delivery result is
// logged only, the page side never retries on its own.
type ChannelUploader struct {
	ch Channel
}

func NewChannelUploader(ch Channel) *ChannelUploader {
	return &ChannelUploader{ch: ch}
}

func (u *ChannelUploader) Upload(ctx context.Context, p crawler.CrawlPayload) error {
	raw, err := json.Marshal(UploadRequest{Payload: p})
	if err != nil {
		return err
	}
	resp, err := u.ch.Request(ctx, Message{Type: MsgUploadWebData, Payload: raw})
	if err != nil {
		return err
	}
	var res Result
	if err := json.Unmarshal(resp, &res); err != nil {
		return fmt.Errorf("decode delivery result: %w", err)
	}
	if !res.OK {
		return fmt.Errorf("delivery failed: %s", res.Error)
	}
	logging.CrawlLogger.Info("payload delivered",
		zap.Bool("corsFallback", res.CORSFallback),
		zap.Any("status", res.Status),
	)
	return nil
}
