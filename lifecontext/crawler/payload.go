package crawler

import (
	"strings"
	"time"
)

const (
	SourceInitial     = "web-crawler-initial"
	SourceIncremental = "web-crawler-incremental"

	ChangeInitialLoad = "initial-load"
	ChangeDOMMutation = "dom-mutation"
)

// MinContentLength is the floor below which extracted content is discarded,
// never uploaded.
const MinContentLength = 50

type PayloadContent struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// CrawlPayload is the unit delivered to the ingestion endpoint.
type CrawlPayload struct {
	Title      string         `json:"title"`
	URL        string         `json:"url"`
	Content    PayloadContent `json:"content"`
	Source     string         `json:"source"`
	Tags       []string       `json:"tags"`
	Timestamp  string         `json:"timestamp"`
	ChangeType string         `json:"changeType"`
}

// ParseKeywords splits a <meta name="keywords"> value on ASCII and CJK
// commas, trimming entries and dropping empties. Always returns a non-nil
// slice so the payload serializes tags as [].
func ParseKeywords(meta string) []string {
	tags := []string{}
	for _, part := range strings.FieldsFunc(meta, func(r rune) bool {
		return r == ',' || r == '，'
	}) {
		if t := strings.TrimSpace(part); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// NewPayload captures the document state at call time. The URL is read live
// from the document, never cached from an earlier stage.
func NewPayload(doc Document, content, source, changeType string, now time.Time) CrawlPayload {
	title := doc.Title()
	return CrawlPayload{
		Title: title,
		URL:   doc.URL(),
		Content: PayloadContent{
			Title:   title,
			Content: content,
		},
		Source:     source,
		Tags:       ParseKeywords(doc.MetaKeywords()),
		Timestamp:  now.UTC().Format(time.RFC3339),
		ChangeType: changeType,
	}
}
