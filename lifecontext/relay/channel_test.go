package relay

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func TestBusDispatch(t *testing.T) {
	bus := NewBus()
	bus.Handle("PING", func(ctx context.Context, msg Message) (any, error) {
		return map[string]string{"pong": string(msg.Payload)}, nil
	})

	resp, err := bus.Request(context.Background(), Message{Type: "PING", Payload: json.RawMessage(`"x"`)})
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	var m map[string]string
	if err := json.Unmarshal(resp, &m); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if m["pong"] != `"x"` {
		t.Errorf("handler payload not routed: %v", m)
	}
}

func TestBusUnknownType(t *testing.T) {
	bus := NewBus()
	if _, err := bus.Request(context.Background(), Message{Type: "NOPE"}); err == nil {
		t.Error("unknown message type should error")
	}
}

func TestClosedBusInvalidatesContext(t *testing.T) {
	bus := NewBus()
	bus.Handle("PING", func(ctx context.Context, msg Message) (any, error) {
		t.Error("handler must not run on a closed bus")
		return nil, nil
	})
	bus.Close()

	_, err := bus.Request(context.Background(), Message{Type: "PING"})
	if !errors.Is(err, ErrContextInvalidated) {
		t.Fatalf("err = %v, want ErrContextInvalidated", err)
	}
	if err.Error() != "Extension context invalidated" {
		t.Errorf("error text = %q", err.Error())
	}
	if err := bus.Notify(Message{Type: "PING"}); !errors.Is(err, ErrContextInvalidated) {
		t.Errorf("notify on closed bus = %v", err)
	}
}
