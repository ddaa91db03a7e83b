package controllers

import (
	"bufio"
	"context"
	"encoding/json"
	"strings"
	"time"

	"lifecontext/lifecontext/config"
	"lifecontext/lifecontext/sources/psql/dao"
	httputils "lifecontext/lifecontext/utils/http"
	"lifecontext/lifecontext/utils/types"
)

type ChatController struct {
	chatDAO *dao.ChatMessageDAO
	baseURL string
	model   string
}

func NewChatController(chatDAO *dao.ChatMessageDAO, cfg config.Config) *ChatController {
	return &ChatController{
		chatDAO: chatDAO,
		baseURL: cfg.LLMBaseURL,
		model:   cfg.LLMModel,
	}
}

// userContent folds optional page context into the stored user turn so the
// model sees what the user was looking at.
func userContent(req types.ChatRequest) string {
	if strings.TrimSpace(req.Context) == "" {
		return req.Query
	}
	return "Page context:\n" + req.Context + "\n\n" + req.Query
}

func (c *ChatController) Chat(ctx context.Context, req types.ChatRequest) (*types.ChatResponse, error) {
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = c.chatDAO.CreateSessionID()
	}
	_, err := c.chatDAO.SaveMessage(ctx, sessionID, req.UserID, "user", userContent(req))
	if err != nil {
		return nil, err
	}
	history, err := c.chatDAO.GetChatHistoryBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	llmReq := map[string]interface{}{
		"model":    c.model,
		"messages": history,
		"stream":   false,
	}
	var llmResp struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	}
	err = httputils.PostJSON(c.baseURL+"/api/chat", llmReq, &llmResp)
	if err != nil {
		return nil, err
	}
	content := llmResp.Message.Content
	_, err = c.chatDAO.SaveMessage(ctx, sessionID, req.UserID, "assistant", content)
	if err != nil {
		return nil, err
	}
	return &types.ChatResponse{Response: content, SessionID: sessionID}, nil
}

// ChatStream streams completion deltas on the returned channel. The error
// channel reports at most one terminal failure.
func (c *ChatController) ChatStream(ctx context.Context, req types.ChatRequest) (string, chan string, chan error) {
	errCh := make(chan error, 1)
	ch := make(chan string)

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = c.chatDAO.CreateSessionID()
	}
	_, err := c.chatDAO.SaveMessage(ctx, sessionID, req.UserID, "user", userContent(req))
	if err != nil {
		errCh <- err
		close(ch)
		close(errCh)
		return sessionID, ch, errCh
	}
	history, err := c.chatDAO.GetChatHistoryBySession(ctx, sessionID)
	if err != nil {
		errCh <- err
		close(ch)
		close(errCh)
		return sessionID, ch, errCh
	}
	llmReq := map[string]interface{}{
		"model":    c.model,
		"messages": history,
		"stream":   true,
	}
	body, err := httputils.PostStream(c.baseURL+"/api/chat", llmReq)
	if err != nil {
		errCh <- err
		close(ch)
		close(errCh)
		return sessionID, ch, errCh
	}

	go func() {
		defer close(ch)
		defer close(errCh)
		defer body.Close()
		scanner := bufio.NewScanner(body)
		var fullContent string
		for scanner.Scan() {
			line := scanner.Text()
			if line == "" {
				continue
			}
			var chunk struct {
				Message struct {
					Content string `json:"content"`
				} `json:"message"`
				Done bool `json:"done"`
			}
			if err := json.Unmarshal([]byte(line), &chunk); err != nil {
				errCh <- err
				return
			}
			if chunk.Done {
				saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_, err := c.chatDAO.SaveMessage(saveCtx, sessionID, req.UserID, "assistant", fullContent)
				if err != nil {
					errCh <- err
				}
				return
			}
			delta := chunk.Message.Content
			fullContent += delta
			ch <- delta
		}
		if err := scanner.Err(); err != nil {
			errCh <- err
		}
	}()

	return sessionID, ch, errCh
}

func (c *ChatController) ListSessions(ctx context.Context, userID string) ([]types.ChatSessionSummary, error) {
	return c.chatDAO.ListSessions(ctx, userID)
}

func (c *ChatController) GetMessagesForSession(ctx context.Context, userID, sessionID string) (any, error) {
	return c.chatDAO.GetMessagesForSession(ctx, userID, sessionID)
}

func (c *ChatController) DeleteSession(ctx context.Context, userID, sessionID string) error {
	return c.chatDAO.DeleteSession(ctx, userID, sessionID)
}
