package types

// ChatRequest is the body of the chat generate endpoints. Query carries the
// user's message; Context is optional page context captured by the widget.
type ChatRequest struct {
	Query     string `json:"query"`
	Context   string `json:"context,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	UserID    string `json:"user_id,omitempty"`
}

type ChatResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
}

// ChatStreamChunk is one SSE data line of the streaming endpoint.
type ChatStreamChunk struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
	Done      bool   `json:"done"`
}

// For session/thread summary in the dashboard threads panel.
// LastActivity: RFC3339 string
type ChatSessionSummary struct {
	SessionID       string `json:"session_id"`
	LastMessage     string `json:"last_message"`
	LastMessageRole string `json:"last_message_role"`
	LastActivity    string `json:"last_activity"`
}
