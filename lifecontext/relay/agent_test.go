package relay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"lifecontext/lifecontext/crawler"
	"lifecontext/lifecontext/utils/logging"
)

type nullSource struct{}

func (nullSource) Observe(func(batch []crawler.MutationRecord)) error { return nil }

func (nullSource) Disconnect() {}

type staticDoc struct{ text string }

func (d staticDoc) Title() string                  { return "Agent Page" }
func (d staticDoc) URL() string                    { return "https://example.com/agent" }
func (d staticDoc) QueryAll(string) []crawler.Node { return nil }
func (d staticDoc) BodyText() string               { return d.text }
func (d staticDoc) MetaKeywords() string           { return "" }

func (d staticDoc) Document() (crawler.Document, error) { return d, nil }

func setupAgentTest(t *testing.T, uploadURL string, client *http.Client) (*Bus, *crawler.Manager, *crawler.Session) {
	t.Helper()
	logging.InitLogger()
	session := crawler.NewSession(
		crawler.Location{Hostname: "example.com", Scheme: "https"},
		"localhost", "3000", true,
	)
	bus := NewBus()
	New(Endpoints{Upload: uploadURL}, client, bus).Register(bus)
	m := crawler.NewManager(session, staticDoc{text: strings.Repeat("agent page content ", 5)},
		nullSource{}, NewChannelUploader(bus), crawler.ManagerOptions{
			ThrottleDelay: time.Millisecond,
			SettleDelay:   time.Millisecond,
		})
	t.Cleanup(m.Close)
	NewPageAgent(m, session).Register(bus)
	return bus, m, session
}

func TestToggleCrawl(t *testing.T) {
	bus, m, session := setupAgentTest(t, "http://127.0.0.1:1", nil)

	off := false
	resp, err := bus.Request(context.Background(), Message{Type: MsgToggleCrawl, Enabled: &off})
	if err != nil {
		t.Fatalf("toggle off: %v", err)
	}
	var res SuccessResponse
	json.Unmarshal(resp, &res)
	if !res.Success {
		t.Errorf("toggle response: %+v", res)
	}
	if session.CrawlEnabled() || m.IsObserving() {
		t.Error("toggle off should disable and stop")
	}

	on := true
	if _, err := bus.Request(context.Background(), Message{Type: MsgToggleCrawl, Enabled: &on}); err != nil {
		t.Fatalf("toggle on: %v", err)
	}
	if !session.CrawlEnabled() || !m.IsObserving() {
		t.Error("toggle on should enable and observe")
	}

	if _, err := bus.Request(context.Background(), Message{Type: MsgToggleCrawl}); err == nil {
		t.Error("toggle without enabled flag should error")
	}
}

func TestGetCrawlStatus(t *testing.T) {
	bus, _, session := setupAgentTest(t, "http://127.0.0.1:1", nil)

	resp, err := bus.Request(context.Background(), Message{Type: MsgGetCrawlStatus})
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	var st CrawlStatusResponse
	json.Unmarshal(resp, &st)
	if !st.Enabled {
		t.Error("expected enabled=true")
	}

	session.SetCrawlEnabled(false)
	resp, _ = bus.Request(context.Background(), Message{Type: MsgGetCrawlStatus})
	json.Unmarshal(resp, &st)
	if st.Enabled {
		t.Error("expected enabled=false after toggle")
	}
}

func TestManualCrawlMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success"}`))
	}))
	defer srv.Close()
	bus, _, _ := setupAgentTest(t, srv.URL, srv.Client())

	resp, err := bus.Request(context.Background(), Message{Type: MsgManualCrawl})
	if err != nil {
		t.Fatalf("manual crawl: %v", err)
	}
	var res SuccessResponse
	json.Unmarshal(resp, &res)
	if !res.Success {
		t.Errorf("manual crawl response: %+v", res)
	}
}

func TestGetDOMStatusAndUpdateConfig(t *testing.T) {
	bus, m, _ := setupAgentTest(t, "http://127.0.0.1:1", nil)
	m.Init()

	resp, err := bus.Request(context.Background(), Message{Type: MsgGetDOMStatus})
	if err != nil {
		t.Fatalf("dom status: %v", err)
	}
	var st crawler.Status
	json.Unmarshal(resp, &st)
	if !st.IsObserving || st.ThrottleDelay != 1 {
		t.Errorf("dom status = %+v", st)
	}

	cfg := json.RawMessage(`{"throttleDelay":5000}`)
	if _, err := bus.Request(context.Background(), Message{Type: MsgUpdateDOMConfig, Config: cfg}); err != nil {
		t.Fatalf("update config: %v", err)
	}
	resp, _ = bus.Request(context.Background(), Message{Type: MsgGetDOMStatus})
	json.Unmarshal(resp, &st)
	if st.ThrottleDelay != 5000 {
		t.Errorf("throttleDelay = %d, want 5000", st.ThrottleDelay)
	}

	bad := json.RawMessage(`{"throttleDelay":"nope"}`)
	if _, err := bus.Request(context.Background(), Message{Type: MsgUpdateDOMConfig, Config: bad}); err == nil {
		t.Error("malformed config should error")
	}
}
