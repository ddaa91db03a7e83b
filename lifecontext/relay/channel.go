package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// ErrContextInvalidated is returned synchronously when the channel has been
// torn down (the extension-reloaded-mid-session condition). Callers treat it
// as terminal for the attempt, never retried.
var ErrContextInvalidated = errors.New("Extension context invalidated")

// Handler processes one request and returns a JSON-shaped response value.
type Handler func(ctx context.Context, msg Message) (any, error)

// Channel is one side of a bidirectional request/response message channel.
// Request blocks for the response; Notify is fire-and-forget. Implementers
// targeting a different transport keep the message-type contract intact.
type Channel interface {
	Request(ctx context.Context, msg Message) (json.RawMessage, error)
	Notify(msg Message) error
}

// Bus is the in-process channel implementation: both endpoints register
// handlers by message type on the same bus. It owns no state beyond the
// handler table, every message is handled independently, so concurrent
// requests are safe.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	closed   bool
}

func NewBus() *Bus {
	return &Bus{handlers: map[string]Handler{}}
}

func (b *Bus) Handle(msgType string, h Handler) {
	b.mu.Lock()
	b.handlers[msgType] = h
	b.mu.Unlock()
}

// Close tears the channel down; every later send fails with
// ErrContextInvalidated before any handler runs.
func (b *Bus) Close() {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
}

func (b *Bus) lookup(msgType string) (Handler, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil, ErrContextInvalidated
	}
	h, ok := b.handlers[msgType]
	if !ok {
		return nil, fmt.Errorf("no handler for message type %q", msgType)
	}
	return h, nil
}

func (b *Bus) Request(ctx context.Context, msg Message) (json.RawMessage, error) {
	h, err := b.lookup(msg.Type)
	if err != nil {
		return nil, err
	}
	v, err := h(ctx, msg)
	if err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

func (b *Bus) Notify(msg Message) error {
	h, err := b.lookup(msg.Type)
	if err != nil {
		return err
	}
	_, err = h(context.Background(), msg)
	return err
}
