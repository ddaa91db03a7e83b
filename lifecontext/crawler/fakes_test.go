package crawler

import (
	"context"
	"sync"
)

// --- Shared fakes ---

// fakeNode is a hand-built DOM node for classifier and extractor tests.
type fakeNode struct {
	element  bool
	matches  map[string]bool // selector -> Matches/Closest result
	text     string
	children []Node
	panicOn  string // selector that makes Closest panic
}

func (n *fakeNode) IsElement() bool { return n.element }

func (n *fakeNode) Matches(selector string) bool {
	return n.matches[selector]
}

func (n *fakeNode) Closest(selector string) bool {
	if n.panicOn != "" && selector == n.panicOn {
		panic("invalid selector: " + selector)
	}
	return n.matches[selector]
}

func (n *fakeNode) Text() string { return n.text }

func (n *fakeNode) Children() []Node { return n.children }

// fakeDoc is a scripted Document: QueryAll answers from a selector table.
type fakeDoc struct {
	title    string
	url      string
	body     string
	keywords string
	regions  map[string][]Node
}

func (d *fakeDoc) Title() string { return d.title }

func (d *fakeDoc) URL() string { return d.url }

func (d *fakeDoc) QueryAll(selector string) []Node { return d.regions[selector] }

func (d *fakeDoc) BodyText() string { return d.body }

func (d *fakeDoc) MetaKeywords() string { return d.keywords }

// fakeDoc doubles as its own DocumentSource; tests mutate its fields
// between crawls to simulate a changing page.
func (d *fakeDoc) Document() (Document, error) { return d, nil }

// switchingSource returns whichever document the test has installed,
// standing in for a live page that re-renders between crawl attempts.
type switchingSource struct {
	mu  sync.Mutex
	doc Document
	err error
}

func (s *switchingSource) set(doc Document) {
	s.mu.Lock()
	s.doc = doc
	s.mu.Unlock()
}

func (s *switchingSource) Document() (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.doc, nil
}

// fakeSource hands the captured handler back to the test so it can inject
// mutation batches directly.
type fakeSource struct {
	mu           sync.Mutex
	handler      func(batch []MutationRecord)
	observeCalls int
	disconnects  int
}

func (s *fakeSource) Observe(handler func(batch []MutationRecord)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = handler
	s.observeCalls++
	return nil
}

func (s *fakeSource) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = nil
	s.disconnects++
}

func (s *fakeSource) emit(batch []MutationRecord) {
	s.mu.Lock()
	h := s.handler
	s.mu.Unlock()
	if h != nil {
		h(batch)
	}
}

// fakeUploader records every payload it receives.
type fakeUploader struct {
	mu       sync.Mutex
	payloads []CrawlPayload
	err      error
}

func (u *fakeUploader) Upload(_ context.Context, p CrawlPayload) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.err != nil {
		return u.err
	}
	u.payloads = append(u.payloads, p)
	return nil
}

func (u *fakeUploader) uploaded() []CrawlPayload {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]CrawlPayload(nil), u.payloads...)
}
