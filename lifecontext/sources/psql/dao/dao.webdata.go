package dao

import (
	"context"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"lifecontext/lifecontext/sources/psql/models"
)

type WebDataDAO struct {
	DB *pgxpool.Pool
}

func NewWebDataDAO(db *pgxpool.Pool) *WebDataDAO {
	return &WebDataDAO{DB: db}
}

func (dao *WebDataDAO) Insert(ctx context.Context, title, url, content, source, tags, contentHash, changeType string, capturedAt time.Time) (uint, error) {
	query := `INSERT INTO web_data (title, url, content, source, tags, content_hash, change_type, captured_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW()) RETURNING id`
	var id uint
	err := dao.DB.QueryRow(ctx, query, title, url, content, source, tags, contentHash, changeType, capturedAt).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Recent returns the newest captures, optionally filtered by source, for
// the dashboard timeline.
func (dao *WebDataDAO) Recent(ctx context.Context, limit int, source string) ([]models.WebData, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query := `SELECT id, title, url, content, source, tags, content_hash, change_type, captured_at, created_at
		FROM web_data`
	args := []any{}
	if source != "" {
		query += ` WHERE source = $1`
		args = append(args, source)
	}
	query += ` ORDER BY created_at DESC LIMIT ` + strconv.Itoa(limit)

	rows, err := dao.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.WebData
	for rows.Next() {
		var w models.WebData
		err := rows.Scan(&w.ID, &w.Title, &w.URL, &w.Content, &w.Source, &w.Tags, &w.ContentHash, &w.ChangeType, &w.CapturedAt, &w.CreatedAt)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}
