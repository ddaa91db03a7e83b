package crawler

import "sync"

// Session is the explicit per-page context shared by every component of the
// pipeline. It replaces ambient page-global flags: one instance is created
// per page load and passed into each constructor.
type Session struct {
	Location Location

	mu      sync.RWMutex
	enabled bool
	skip    bool
}

// NewSession evaluates the skip policy once; the decision is immutable for
// the page's lifetime.
func NewSession(loc Location, frontendHost, frontendPort string, crawlEnabled bool) *Session {
	return &Session{
		Location: loc,
		enabled:  crawlEnabled,
		skip:     ShouldSkip(frontendHost, frontendPort, loc),
	}
}

// ShouldSkip reports whether this page is the product's own frontend. Once
// true, no code path in this page load re-enables crawling.
func (s *Session) ShouldSkip() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.skip
}

func (s *Session) CrawlEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.enabled
}

// SetCrawlEnabled flips the page-level crawl flag (TOGGLE_CRAWL).
func (s *Session) SetCrawlEnabled(enabled bool) {
	s.mu.Lock()
	s.enabled = enabled
	s.mu.Unlock()
}
