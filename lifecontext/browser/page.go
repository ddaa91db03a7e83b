package browser

import (
	"fmt"

	"github.com/playwright-community/playwright-go"

	"lifecontext/lifecontext/crawler"
)

const visibilityBinding = "lifecontextVisibility"

const visibilityScript = `
document.addEventListener('visibilitychange', () => window.` + visibilityBinding + `(document.hidden ? 'hidden' : 'visible'));
window.addEventListener('focus', () => window.` + visibilityBinding + `('focus'));
window.addEventListener('blur', () => window.` + visibilityBinding + `('blur'));
window.addEventListener('beforeunload', () => window.` + visibilityBinding + `('hidden'));
`

// PageSession drives one live page through a headless browser and exposes
// HTML snapshots plus visibility events to the capture pipeline.
type PageSession struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
	visCh   chan crawler.VisibilityEvent
}

func NewPageSession() (*PageSession, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, err
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
		Args: []string{
			"--disable-gpu",
			"--no-sandbox",
			"--disable-dev-shm-usage",
			"--disable-background-timer-throttling",
			"--disable-backgrounding-occluded-windows",
			"--disable-renderer-backgrounding",
		},
	})
	if err != nil {
		pw.Stop()
		return nil, err
	}
	context, err := browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent:         playwright.String("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
		Viewport:          &playwright.Size{Width: 1920, Height: 1080},
		IgnoreHttpsErrors: playwright.Bool(true),
	})
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, err
	}
	return &PageSession{
		pw:      pw,
		browser: browser,
		context: context,
		visCh:   make(chan crawler.VisibilityEvent, 16),
	}, nil
}

// Open navigates to targetURL. The visibility bridge is installed before
// navigation so listeners exist from document start.
func (s *PageSession) Open(targetURL string) error {
	page, err := s.context.NewPage()
	if err != nil {
		return err
	}
	s.page = page
	if err := page.ExposeFunction(visibilityBinding, s.onVisibility); err != nil {
		return err
	}
	if err := page.AddInitScript(playwright.Script{Content: playwright.String(visibilityScript)}); err != nil {
		return err
	}
	if _, err := page.Goto(targetURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		return err
	}
	return nil
}

func (s *PageSession) onVisibility(args ...interface{}) interface{} {
	if len(args) == 0 {
		return nil
	}
	name, ok := args[0].(string)
	if !ok {
		return nil
	}
	var ev crawler.VisibilityEvent
	switch name {
	case "hidden":
		ev = crawler.EventHidden
	case "visible":
		ev = crawler.EventVisible
	case "focus":
		ev = crawler.EventFocus
	case "blur":
		ev = crawler.EventBlur
	default:
		return nil
	}
	select {
	case s.visCh <- ev:
	default:
	}
	return nil
}

// VisibilityEvents streams visibilitychange/focus/blur from the live page.
func (s *PageSession) VisibilityEvents() <-chan crawler.VisibilityEvent {
	return s.visCh
}

// Document implements crawler.DocumentSource: every call captures fresh
// HTML and the live URL, so extraction never reads a stale page.
func (s *PageSession) Document() (crawler.Document, error) {
	return s.Snapshot()
}

// Snapshot captures the page's current HTML and live URL.
func (s *PageSession) Snapshot() (*SnapshotDocument, error) {
	if s.page == nil {
		return nil, fmt.Errorf("no page open")
	}
	content, err := s.page.Content()
	if err != nil {
		return nil, err
	}
	return ParseSnapshot(s.page.URL(), content)
}

func (s *PageSession) Close() {
	if s.page != nil {
		s.page.Close()
	}
	if s.context != nil {
		s.context.Close()
	}
	if s.browser != nil {
		s.browser.Close()
	}
	if s.pw != nil {
		s.pw.Stop()
	}
}
