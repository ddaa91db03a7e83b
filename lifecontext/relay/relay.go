package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"

	"go.uber.org/zap"

	"lifecontext/lifecontext/metrics"
	"lifecontext/lifecontext/utils/logging"
)

// Endpoints are the ingestion API URLs the relay delivers to.
type Endpoints struct {
	Upload     string // POST, CrawlPayload
	Chat       string // POST, non-streaming completion
	ChatStream string // POST, text/event-stream
}

// Relay is the background side of the channel: it owns the actual network
// calls so page-side code never fetches cross-origin itself. It holds no
// per-request state, every message is handled independently.
type Relay struct {
	endpoints Endpoints
	deliverer *Deliverer
	client    *http.Client
	notify    Channel

	successCount atomic.Int64
	errorCount   atomic.Int64
}

func New(endpoints Endpoints, client *http.Client, notify Channel) *Relay {
	if client == nil {
		client = http.DefaultClient
	}
	return &Relay{
		endpoints: endpoints,
		deliverer: NewDeliverer(client),
		client:    client,
		notify:    notify,
	}
}

// Register installs the background-side handlers on the bus.
func (r *Relay) Register(bus *Bus) {
	bus.Handle(MsgUploadWebData, r.handleUpload)
	bus.Handle(MsgSendChatMessage, r.handleChat)
	bus.Handle(MsgSendStreamChatMessage, r.handleStreamChat)
}

// Counters returns the aggregate delivery counters surfaced for human
// inspection.
func (r *Relay) Counters() (success, failure int64) {
	return r.successCount.Load(), r.errorCount.Load()
}

func (r *Relay) handleUpload(ctx context.Context, msg Message) (any, error) {
	var req UploadRequest
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		return nil, fmt.Errorf("decode upload payload: %w", err)
	}
	res := r.deliverer.Deliver(ctx, r.endpoints.Upload, req.Payload)
	switch {
	case res.OK && res.CORSFallback:
		r.successCount.Add(1)
		metrics.UploadsTotal.WithLabelValues("fallback").Inc()
	case res.OK:
		r.successCount.Add(1)
		metrics.UploadsTotal.WithLabelValues("success").Inc()
	default:
		r.errorCount.Add(1)
		metrics.UploadsTotal.WithLabelValues("error").Inc()
	}
	return res, nil
}

func (r *Relay) handleChat(ctx context.Context, msg Message) (any, error) {
	var req ChatMessageRequest
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		return nil, fmt.Errorf("decode chat payload: %w", err)
	}
	return r.deliverer.Deliver(ctx, r.endpoints.Chat, req.Payload), nil
}

// handleStreamChat proxies a streaming chat call, forwarding each parsed
// chunk to the page as a STREAM_CHUNK notification, then resolves once the
// stream ends. On any streaming failure it falls back to one non-streaming
// POST to the sibling endpoint.
func (r *Relay) handleStreamChat(ctx context.Context, msg Message) (any, error) {
	var req ChatMessageRequest
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		return nil, fmt.Errorf("decode chat payload: %w", err)
	}
	sink := func(chunk json.RawMessage) {
		body, err := json.Marshal(StreamChunk{SessionID: req.Payload.SessionID, Data: chunk})
		if err != nil {
			return
		}
		if err := r.notify.Notify(Message{Type: MsgStreamChunk, Payload: body}); err != nil {
			logging.ErrorLogger.Error("stream chunk notify failed", zap.Error(err))
		}
	}
	status, err := streamSSE(ctx, r.client, r.endpoints.ChatStream, req.Payload, sink)
	if err != nil {
		logging.ErrorLogger.Error("chat stream failed, falling back to single response",
			zap.Error(err),
		)
		return r.deliverer.Deliver(ctx, r.endpoints.Chat, req.Payload), nil
	}
	return Result{OK: true, Data: nil, Status: &status, CORSFallback: false}, nil
}
