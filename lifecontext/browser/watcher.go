package browser

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"lifecontext/lifecontext/crawler"
	"lifecontext/lifecontext/utils/logging"
)

// DefaultPollInterval is how often the watcher re-snapshots the page.
const DefaultPollInterval = 500 * time.Millisecond

// SnapshotProvider abstracts the live page so the watcher is testable
// without a browser.
type SnapshotProvider interface {
	Snapshot() (*SnapshotDocument, error)
}

type regionState struct {
	count int
	text  string
}

// SnapshotWatcher implements crawler.MutationSource over a polling loop:
// consecutive snapshots are diffed region-by-region and the differences are
// emitted as mutation records. A count change in a region is structural
// (childList with the region's nodes); a text-only change is characterData.
type SnapshotWatcher struct {
	provider  SnapshotProvider
	interval  time.Duration
	selectors []string

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	wg      sync.WaitGroup
	prev    map[string]regionState
}

func NewSnapshotWatcher(provider SnapshotProvider, interval time.Duration, selectors []string) *SnapshotWatcher {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if len(selectors) == 0 {
		selectors = crawler.DefaultObservedSelectors
	}
	// The body region catches churn outside any observed container, the
	// closest analog to observing document.body with subtree:true.
	selectors = append(append([]string(nil), selectors...), "body")
	return &SnapshotWatcher{
		provider:  provider,
		interval:  interval,
		selectors: selectors,
	}
}

func (w *SnapshotWatcher) Observe(handler func(batch []crawler.MutationRecord)) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}
	baseline, err := w.provider.Snapshot()
	if err != nil {
		return err
	}
	w.prev = w.capture(baseline)
	w.stop = make(chan struct{})
	w.running = true
	w.wg.Add(1)
	go w.loop(w.stop, handler)
	return nil
}

// Disconnect stops delivery synchronously: it joins the poll loop, so by
// the time it returns no handler call is running and none will fire. Must
// not be called from inside the handler.
func (w *SnapshotWatcher) Disconnect() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	close(w.stop)
	w.running = false
	w.mu.Unlock()
	w.wg.Wait()
}

func (w *SnapshotWatcher) loop(stop chan struct{}, handler func(batch []crawler.MutationRecord)) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			doc, err := w.provider.Snapshot()
			if err != nil {
				logging.ErrorLogger.Error("page snapshot failed", zap.Error(err))
				continue
			}
			cur := w.capture(doc)
			batch := w.diff(doc, cur)
			w.mu.Lock()
			if !w.running {
				w.mu.Unlock()
				return
			}
			w.prev = cur
			w.mu.Unlock()
			if len(batch) > 0 {
				handler(batch)
			}
		}
	}
}

func (w *SnapshotWatcher) capture(doc *SnapshotDocument) map[string]regionState {
	state := make(map[string]regionState, len(w.selectors))
	for _, sel := range w.selectors {
		nodes := safeQueryAll(doc, sel)
		var text string
		if sel == "body" {
			text = doc.BodyText()
		} else {
			for _, n := range nodes {
				text += n.Text()
			}
		}
		state[sel] = regionState{count: len(nodes), text: text}
	}
	return state
}

func (w *SnapshotWatcher) diff(doc *SnapshotDocument, cur map[string]regionState) []crawler.MutationRecord {
	w.mu.Lock()
	prev := w.prev
	w.mu.Unlock()

	var batch []crawler.MutationRecord
	for _, sel := range w.selectors {
		p, c := prev[sel], cur[sel]
		switch {
		case c.count != p.count:
			batch = append(batch, crawler.MutationRecord{
				Kind:       crawler.MutationChildList,
				AddedNodes: safeQueryAll(doc, sel),
			})
		case c.text != p.text:
			batch = append(batch, crawler.MutationRecord{
				Kind: crawler.MutationCharacterData,
				Text: c.text,
			})
		}
	}
	return batch
}

func safeQueryAll(doc *SnapshotDocument, selector string) (nodes []crawler.Node) {
	defer func() {
		if recover() != nil {
			nodes = nil
		}
	}()
	return doc.QueryAll(selector)
}
