package crawler

import (
	"context"

	"go.uber.org/zap"

	"lifecontext/lifecontext/utils/logging"
)

type VisibilityEvent int

const (
	EventHidden VisibilityEvent = iota
	EventVisible
	EventFocus
	EventBlur
)

func (e VisibilityEvent) String() string {
	switch e {
	case EventHidden:
		return "hidden"
	case EventVisible:
		return "visible"
	case EventFocus:
		return "focus"
	case EventBlur:
		return "blur"
	}
	return "unknown"
}

// VisibilityManager pauses and resumes the crawler with tab visibility so
// hidden tabs spend no resources observing. Blur is deliberately a no-op:
// losing focus alone does not pause crawling, only a full tab hide does.
type VisibilityManager struct {
	manager *Manager
	session *Session
}

func NewVisibilityManager(manager *Manager, session *Session) *VisibilityManager {
	return &VisibilityManager{manager: manager, session: session}
}

func (v *VisibilityManager) Handle(ev VisibilityEvent) {
	switch ev {
	case EventHidden:
		if v.manager.IsObserving() {
			logging.AppLogger.Info("page hidden, stopping crawler")
			v.manager.Stop()
		}
	case EventVisible, EventFocus:
		if v.session.ShouldSkip() {
			return
		}
		if !v.manager.IsObserving() {
			logging.AppLogger.Info("page active, resuming crawler", zap.String("event", ev.String()))
		}
		v.manager.Init()
	case EventBlur:
	}
}

// Run consumes visibility events until the channel closes or ctx is done.
func (v *VisibilityManager) Run(ctx context.Context, events <-chan VisibilityEvent) {
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			v.Handle(ev)
		case <-ctx.Done():
			return
		}
	}
}
