package crawler

import (
	"context"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"lifecontext/lifecontext/utils/logging"
)

// DefaultSettleDelay is the fixed wait after page load before the very
// first crawl attempt, giving client-side rendering time to finish.
const DefaultSettleDelay = 2 * time.Second

// Uploader hands a finished payload to the background relay. The manager
// logs errors and never retries: the next qualifying mutation is the retry.
type Uploader interface {
	Upload(ctx context.Context, p CrawlPayload) error
}

// Status mirrors the GET_DOM_STATUS response shape.
type Status struct {
	IsObserving   bool  `json:"isObserving"`
	ThrottleDelay int64 `json:"throttleDelay"`
	LastCrawlTime int64 `json:"lastCrawlTime"`
}

// ConfigUpdate carries a partial runtime reconfiguration; omitted fields
// keep their current values. Selector syntax is not validated, invalid
// selectors simply never match.
type ConfigUpdate struct {
	ThrottleDelayMs   *int64   `json:"throttleDelay,omitempty"`
	ObservedSelectors []string `json:"observedSelectors,omitempty"`
	IgnoredSelectors  []string `json:"ignoredSelectors,omitempty"`
}

// ManagerOptions tune a Manager at construction; zero values pick defaults.
type ManagerOptions struct {
	ThrottleDelay     time.Duration
	SettleDelay       time.Duration
	ObservedSelectors []string
	IgnoredSelectors  []string
}

// Manager orchestrates the mutation source, significance classifier,
// throttle, extractor and uploader for one page. Two states only: Idle and
// Observing. A visibility-driven pause fully tears down the observer and
// re-creates it, there is no suspended state.
type Manager struct {
	session    *Session
	docs       DocumentSource
	source     MutationSource
	uploader   Uploader
	classifier *Classifier
	throttle   *Throttle
	extractor  *Extractor
	settle     time.Duration

	mu          sync.Mutex
	observing   bool
	contentHash string

	tasks  chan string
	closed chan struct{}
	once   sync.Once
}

func NewManager(session *Session, docs DocumentSource, source MutationSource, uploader Uploader, opts ManagerOptions) *Manager {
	observed := opts.ObservedSelectors
	if len(observed) == 0 {
		observed = DefaultObservedSelectors
	}
	ignored := opts.IgnoredSelectors
	if len(ignored) == 0 {
		ignored = DefaultIgnoredSelectors
	}
	settle := opts.SettleDelay
	if settle <= 0 {
		settle = DefaultSettleDelay
	}
	m := &Manager{
		session:    session,
		docs:       docs,
		source:     source,
		uploader:   uploader,
		classifier: NewClassifier(observed, ignored),
		throttle:   NewThrottle(opts.ThrottleDelay),
		extractor:  NewExtractor(observed),
		settle:     settle,
		tasks:      make(chan string),
		closed:     make(chan struct{}),
	}
	go m.crawlLoop()
	return m
}

// crawlLoop is the single background worker running crawl attempts. Max one
// in flight: submissions arriving while a crawl runs are dropped, they were
// only ever throttle-gated attempts, not queued work.
func (m *Manager) crawlLoop() {
	for {
		select {
		case changeType := <-m.tasks:
			m.performCrawl(context.Background(), SourceIncremental, changeType)
		case <-m.closed:
			return
		}
	}
}

// Init attaches the mutation source. No-op when the page is skipped, when
// crawling is disabled, or when already observing.
func (m *Manager) Init() {
	if m.session.ShouldSkip() || !m.session.CrawlEnabled() {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.observing {
		return
	}
	if err := m.source.Observe(m.onMutations); err != nil {
		logging.ErrorLogger.Error("mutation source attach failed", zap.Error(err))
		return
	}
	m.observing = true
	logging.AppLogger.Info("dom crawler observing",
		zap.String("host", m.session.Location.Hostname),
		zap.Duration("throttle", m.throttle.Delay()),
	)
}

// Stop disconnects the mutation source synchronously; no further batch is
// delivered after it returns. Idempotent. In-flight uploads are not
// cancelled, their results are ignored.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.observing {
		return
	}
	m.source.Disconnect()
	m.observing = false
	logging.AppLogger.Info("dom crawler stopped", zap.String("host", m.session.Location.Hostname))
}

// Close ends the background worker. The manager must not be used after.
func (m *Manager) Close() {
	m.once.Do(func() { close(m.closed) })
}

func (m *Manager) IsObserving() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.observing
}

func (m *Manager) Status() Status {
	m.mu.Lock()
	observing := m.observing
	m.mu.Unlock()
	var last int64
	if t := m.throttle.Last(); !t.IsZero() {
		last = t.UnixMilli()
	}
	return Status{
		IsObserving:   observing,
		ThrottleDelay: m.throttle.Delay().Milliseconds(),
		LastCrawlTime: last,
	}
}

// UpdateConfig applies a partial reconfiguration in place, at any time.
func (m *Manager) UpdateConfig(cfg ConfigUpdate) {
	if cfg.ThrottleDelayMs != nil {
		m.throttle.Configure(time.Duration(*cfg.ThrottleDelayMs) * time.Millisecond)
	}
	m.classifier.SetSelectors(cfg.ObservedSelectors, cfg.IgnoredSelectors)
	if len(cfg.ObservedSelectors) > 0 {
		m.extractor.SetSelectors(cfg.ObservedSelectors)
	}
}

// onMutations reduces a batch to a single significance verdict and, when
// significant, schedules a crawl. It must return quickly: crawl work runs
// detached so a slow upload never blocks mutation delivery.
func (m *Manager) onMutations(batch []MutationRecord) {
	significant := 0
	for _, rec := range batch {
		if m.classifier.IsSignificant(rec) {
			significant++
		}
	}
	if significant == 0 {
		return
	}
	logging.CrawlLogger.Info("significant mutation batch",
		zap.Int("records", len(batch)),
		zap.Int("significant", significant),
	)
	m.scheduleCrawl()
}

// scheduleCrawl applies the throttle gate and submits a detached crawl
// task. The send is non-blocking: if the worker is busy the submission is
// dropped, not queued.
func (m *Manager) scheduleCrawl() {
	if !m.throttle.TryAcquire(time.Now()) {
		return
	}
	select {
	case m.tasks <- ChangeDOMMutation:
	default:
	}
}

// RunInitialCrawl waits out the settle delay and performs the one-time
// initial-load capture. Cancelling ctx abandons the attempt.
func (m *Manager) RunInitialCrawl(ctx context.Context) {
	select {
	case <-time.After(m.settle):
	case <-ctx.Done():
		return
	}
	m.performCrawl(ctx, SourceInitial, ChangeInitialLoad)
}

// ManualCrawl runs one extraction+upload immediately, bypassing the
// throttle (MANUAL_CRAWL message).
func (m *Manager) ManualCrawl(ctx context.Context) error {
	return m.crawlOnce(ctx, SourceIncremental, ChangeDOMMutation)
}

// performCrawl is the outermost boundary of one crawl attempt: every
// failure is caught and logged here so a single bad attempt can never
// disable future observation.
func (m *Manager) performCrawl(ctx context.Context, source, changeType string) {
	defer func() {
		if r := recover(); r != nil {
			logging.ErrorLogger.Error("crawl attempt panicked", zap.Any("panic", r))
		}
	}()
	if err := m.crawlOnce(ctx, source, changeType); err != nil {
		logging.ErrorLogger.Error("crawl attempt failed",
			zap.String("source", source),
			zap.Error(err),
		)
	}
}

func (m *Manager) crawlOnce(ctx context.Context, source, changeType string) error {
	// Re-check skip and enabled here: config may have loaded asynchronously
	// since this attempt was scheduled.
	if m.session.ShouldSkip() || !m.session.CrawlEnabled() {
		return nil
	}
	doc, err := m.docs.Document()
	if err != nil {
		return err
	}
	content := m.extractor.Extract(doc)
	sum := Hash(content)

	m.mu.Lock()
	if sum == m.contentHash {
		m.mu.Unlock()
		logging.CrawlLogger.Info("content unchanged, skipping upload", zap.String("hash", sum))
		return nil
	}
	// The hash is updated before the length check on purpose: a short page
	// that keeps changing below the floor keeps refreshing its hash without
	// uploading. Growth past the floor is then caught by the length check
	// alone. Keep this ordering.
	m.contentHash = sum
	m.mu.Unlock()

	if utf8.RuneCountInString(content) < MinContentLength {
		logging.CrawlLogger.Info("content too short, skipping upload",
			zap.Int("length", utf8.RuneCountInString(content)),
		)
		return nil
	}

	p := NewPayload(doc, content, source, changeType, time.Now())
	if err := m.uploader.Upload(ctx, p); err != nil {
		return err
	}
	logging.CrawlLogger.Info("crawl uploaded",
		zap.String("url", p.URL),
		zap.String("source", source),
		zap.String("changeType", changeType),
		zap.Int("contentLength", len(p.Content.Content)),
	)
	return nil
}
