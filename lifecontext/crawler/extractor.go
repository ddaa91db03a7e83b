package crawler

import (
	"strings"
	"unicode/utf8"
)

// DefaultObservedSelectors is the priority-ordered list of regions likely to
// hold the page's real content. It doubles as the allow list for the
// significance classifier.
var DefaultObservedSelectors = []string{
	"article",
	"main",
	"[role=\"main\"]",
	".content",
	".main-content",
	".post-content",
	"#content",
	"#main",
}

// DefaultIgnoredSelectors deny-lists chrome and noise regions.
var DefaultIgnoredSelectors = []string{
	"script",
	"style",
	"noscript",
	"nav",
	"header",
	"footer",
	".ad",
	".ads",
	".advertisement",
	".sidebar",
	"#comments",
}

// Extractor flattens a page into a plain text blob. Structure is discarded
// deliberately: the result only needs to be comparable between consecutive
// extractions.
type Extractor struct {
	selectors []string
}

func NewExtractor(selectors []string) *Extractor {
	if len(selectors) == 0 {
		selectors = DefaultObservedSelectors
	}
	return &Extractor{selectors: selectors}
}

func (e *Extractor) SetSelectors(selectors []string) {
	if len(selectors) > 0 {
		e.selectors = selectors
	}
}

// Extract walks the selector list in priority order, collecting every
// matching region whose trimmed text is long enough, then falls back to the
// full body text when nothing matched.
func (e *Extractor) Extract(doc Document) string {
	var sb strings.Builder
	for _, sel := range e.selectors {
		for _, n := range doc.QueryAll(sel) {
			t := strings.TrimSpace(n.Text())
			if utf8.RuneCountInString(t) > elementTextThreshold {
				sb.WriteString(t)
				sb.WriteString("\n")
			}
		}
	}
	out := strings.TrimSpace(sb.String())
	if out == "" {
		out = doc.BodyText()
	}
	return strings.TrimSpace(out)
}
