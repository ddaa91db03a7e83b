package models

import (
	"time"
)

// WebData is one ingested crawl payload.
type WebData struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Title       string    `json:"title" gorm:"type:varchar(1024)"`
	URL         string    `json:"url" gorm:"type:text;index;not null"`
	Content     string    `json:"content" gorm:"type:text;not null"`
	Source      string    `json:"source" gorm:"type:varchar(64);index"`
	Tags        string    `json:"tags" gorm:"type:text"`
	ContentHash string    `json:"content_hash" gorm:"type:varchar(16);index"`
	ChangeType  string    `json:"change_type" gorm:"type:varchar(32)"`
	CapturedAt  time.Time `json:"captured_at"`
	CreatedAt   time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}
