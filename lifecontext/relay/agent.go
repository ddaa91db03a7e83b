package relay

import (
	"context"
	"encoding/json"
	"fmt"

	"lifecontext/lifecontext/crawler"
)

// PageAgent is the page side of the channel: it answers the control
// messages that inspect or reconfigure the crawler for one page.
type PageAgent struct {
	manager *crawler.Manager
	session *crawler.Session
}

func NewPageAgent(manager *crawler.Manager, session *crawler.Session) *PageAgent {
	return &PageAgent{manager: manager, session: session}
}

// Register installs the page-side handlers on the bus.
func (a *PageAgent) Register(bus *Bus) {
	bus.Handle(MsgToggleCrawl, a.handleToggleCrawl)
	bus.Handle(MsgGetCrawlStatus, a.handleGetCrawlStatus)
	bus.Handle(MsgManualCrawl, a.handleManualCrawl)
	bus.Handle(MsgGetDOMStatus, a.handleGetDOMStatus)
	bus.Handle(MsgUpdateDOMConfig, a.handleUpdateDOMConfig)
}

func (a *PageAgent) handleToggleCrawl(ctx context.Context, msg Message) (any, error) {
	if msg.Enabled == nil {
		return nil, fmt.Errorf("TOGGLE_CRAWL requires enabled flag")
	}
	a.session.SetCrawlEnabled(*msg.Enabled)
	if *msg.Enabled {
		a.manager.Init()
	} else {
		a.manager.Stop()
	}
	return SuccessResponse{Success: true}, nil
}

func (a *PageAgent) handleGetCrawlStatus(ctx context.Context, msg Message) (any, error) {
	return CrawlStatusResponse{Enabled: a.session.CrawlEnabled()}, nil
}

func (a *PageAgent) handleManualCrawl(ctx context.Context, msg Message) (any, error) {
	if err := a.manager.ManualCrawl(ctx); err != nil {
		return SuccessResponse{Success: false, Error: err.Error()}, nil
	}
	return SuccessResponse{Success: true}, nil
}

func (a *PageAgent) handleGetDOMStatus(ctx context.Context, msg Message) (any, error) {
	return a.manager.Status(), nil
}

func (a *PageAgent) handleUpdateDOMConfig(ctx context.Context, msg Message) (any, error) {
	var cfg crawler.ConfigUpdate
	if len(msg.Config) > 0 {
		if err := json.Unmarshal(msg.Config, &cfg); err != nil {
			return nil, fmt.Errorf("decode dom config: %w", err)
		}
	}
	a.manager.UpdateConfig(cfg)
	return SuccessResponse{Success: true}, nil
}
