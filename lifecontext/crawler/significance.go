package crawler

import (
	"strings"
	"sync"
	"unicode/utf8"
)

const (
	elementTextThreshold  = 20
	charDataTextThreshold = 10
)

// Classifier decides whether a mutation is worth a re-crawl. The deny list
// wins over the allow list, the allow list wins over the text heuristic.
type Classifier struct {
	mu       sync.RWMutex
	observed []string
	ignored  []string
}

func NewClassifier(observed, ignored []string) *Classifier {
	return &Classifier{observed: observed, ignored: ignored}
}

// SetSelectors replaces the allow/deny lists. A nil slice keeps the current
// list untouched.
func (c *Classifier) SetSelectors(observed, ignored []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if observed != nil {
		c.observed = observed
	}
	if ignored != nil {
		c.ignored = ignored
	}
}

func (c *Classifier) Selectors() (observed, ignored []string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.observed...), append([]string(nil), c.ignored...)
}

// IsSignificant reduces one mutation record to a verdict. characterData
// records are judged purely on trimmed text length, with a looser threshold
// than elements: a lone text node rarely carries container context.
func (c *Classifier) IsSignificant(rec MutationRecord) bool {
	switch rec.Kind {
	case MutationCharacterData:
		return utf8.RuneCountInString(strings.TrimSpace(rec.Text)) > charDataTextThreshold
	case MutationChildList:
		for _, n := range rec.AddedNodes {
			if c.isSignificantNode(n) {
				return true
			}
		}
	}
	return false
}

func (c *Classifier) isSignificantNode(n Node) bool {
	if n == nil || !n.IsElement() {
		return false
	}
	c.mu.RLock()
	observed := c.observed
	ignored := c.ignored
	c.mu.RUnlock()

	for _, sel := range ignored {
		if safeClosest(n, sel) {
			return false
		}
	}
	for _, sel := range observed {
		if safeClosest(n, sel) {
			return true
		}
	}
	if utf8.RuneCountInString(strings.TrimSpace(n.Text())) > elementTextThreshold {
		return true
	}
	for _, child := range n.Children() {
		if c.isSignificantNode(child) {
			return true
		}
	}
	return false
}

// safeClosest shields the observer loop from selector engines that panic on
// unparseable selectors; those simply never match.
func safeClosest(n Node, selector string) (matched bool) {
	defer func() {
		if recover() != nil {
			matched = false
		}
	}()
	return n.Closest(selector)
}
