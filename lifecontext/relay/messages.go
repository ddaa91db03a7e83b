package relay

import (
	"encoding/json"

	"lifecontext/lifecontext/crawler"
)

// Message types carried over the page <-> background channel. The shapes
// here are the wire contract and must stay stable.
const (
	MsgUploadWebData         = "UPLOAD_WEB_DATA"
	MsgSendChatMessage       = "SEND_CHAT_MESSAGE"
	MsgSendStreamChatMessage = "SEND_STREAM_CHAT_MESSAGE"
	MsgToggleCrawl           = "TOGGLE_CRAWL"
	MsgGetCrawlStatus        = "GET_CRAWL_STATUS"
	MsgManualCrawl           = "MANUAL_CRAWL"
	MsgGetDOMStatus          = "GET_DOM_STATUS"
	MsgUpdateDOMConfig       = "UPDATE_DOM_CONFIG"
	MsgStreamChunk           = "STREAM_CHUNK"
)

// Message is one request (or notification) on the channel. Payload, Enabled
// and Config are populated per message type; unused fields stay empty.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Enabled *bool           `json:"enabled,omitempty"`
	Config  json.RawMessage `json:"config,omitempty"`
}

// UploadRequest is the payload of UPLOAD_WEB_DATA.
type UploadRequest struct {
	Payload crawler.CrawlPayload `json:"payload"`
}

// ChatMessageRequest is the payload of SEND_CHAT_MESSAGE and
// SEND_STREAM_CHAT_MESSAGE.
type ChatMessageRequest struct {
	Payload ChatQuery `json:"payload"`
}

type ChatQuery struct {
	Query     string `json:"query"`
	Context   string `json:"context,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	UserID    string `json:"user_id,omitempty"`
}

// SuccessResponse answers TOGGLE_CRAWL, MANUAL_CRAWL and UPDATE_DOM_CONFIG.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// CrawlStatusResponse answers GET_CRAWL_STATUS.
type CrawlStatusResponse struct {
	Enabled bool `json:"enabled"`
}

// StreamChunk is a STREAM_CHUNK notification body forwarded to the page.
type StreamChunk struct {
	SessionID string          `json:"session_id,omitempty"`
	Data      json.RawMessage `json:"data"`
}
