package dao

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"lifecontext/lifecontext/sources/psql/models"
	"lifecontext/lifecontext/utils/types"
)

var ErrSessionNotFound = errors.New("session not found or forbidden")

type ChatMessageDAO struct {
	DB *pgxpool.Pool
}

func NewChatMessageDAO(db *pgxpool.Pool) *ChatMessageDAO {
	return &ChatMessageDAO{DB: db}
}

func (dao *ChatMessageDAO) CreateSessionID() string {
	return uuid.New().String()
}

func (dao *ChatMessageDAO) SaveMessage(ctx context.Context, sessionID, userID, role, content string) (*models.ChatMessage, error) {
	query := `INSERT INTO chat_messages (session_id, user_id, role, content, timestamp)
		VALUES ($1, $2, $3, $4, NOW()) RETURNING id, session_id, user_id, role, content, timestamp`
	row := dao.DB.QueryRow(ctx, query, sessionID, userID, role, content)
	var msg models.ChatMessage
	err := row.Scan(&msg.ID, &msg.SessionID, &msg.UserID, &msg.Role, &msg.Content, &msg.Timestamp)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (dao *ChatMessageDAO) GetChatHistoryBySession(ctx context.Context, sessionID string) ([]map[string]string, error) {
	query := "SELECT role, content FROM chat_messages WHERE session_id = $1 ORDER BY timestamp ASC"
	rows, err := dao.DB.Query(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var history []map[string]string
	for rows.Next() {
		var role, content string
		err := rows.Scan(&role, &content)
		if err != nil {
			return nil, err
		}
		history = append(history, map[string]string{"role": role, "content": content})
	}
	return history, rows.Err()
}

func (dao *ChatMessageDAO) ListSessions(ctx context.Context, userID string) ([]types.ChatSessionSummary, error) {
	query := `SELECT DISTINCT ON (session_id) session_id, content, role, timestamp
		FROM chat_messages WHERE user_id = $1
		ORDER BY session_id, timestamp DESC`
	rows, err := dao.DB.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var sessions []types.ChatSessionSummary
	for rows.Next() {
		var s types.ChatSessionSummary
		var ts time.Time
		if err := rows.Scan(&s.SessionID, &s.LastMessage, &s.LastMessageRole, &ts); err != nil {
			return nil, err
		}
		s.LastActivity = ts.Format(time.RFC3339)
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func (dao *ChatMessageDAO) GetMessagesForSession(ctx context.Context, userID, sessionID string) ([]models.ChatMessage, error) {
	query := `SELECT id, session_id, user_id, role, content, timestamp
		FROM chat_messages WHERE session_id = $1 AND user_id = $2 ORDER BY timestamp ASC`
	rows, err := dao.DB.Query(ctx, query, sessionID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var msgs []models.ChatMessage
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.SessionID, &m.UserID, &m.Role, &m.Content, &m.Timestamp); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	if len(msgs) == 0 {
		return nil, ErrSessionNotFound
	}
	return msgs, rows.Err()
}

func (dao *ChatMessageDAO) DeleteSession(ctx context.Context, userID, sessionID string) error {
	tag, err := dao.DB.Exec(ctx, "DELETE FROM chat_messages WHERE session_id = $1 AND user_id = $2", sessionID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}
