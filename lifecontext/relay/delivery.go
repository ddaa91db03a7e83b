package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"go.uber.org/zap"

	"lifecontext/lifecontext/metrics"
	"lifecontext/lifecontext/utils/logging"
)

// Result is the delivery outcome surfaced to the page side. A nil Status
// means the response was opaque (no-cors tier); OK true with CORSFallback
// true means "sent, unconfirmed".
type Result struct {
	OK           bool   `json:"ok"`
	Data         any    `json:"data"`
	Status       *int   `json:"status"`
	CORSFallback bool   `json:"corsFallback"`
	Error        string `json:"error,omitempty"`
}

// DeliveryStrategy is one tier of the fallback chain. Returning an error
// moves the deliverer to the next tier; returning a Result ends the chain,
// even when that Result carries an HTTP error status.
type DeliveryStrategy interface {
	Name() string
	Attempt(ctx context.Context, endpoint string, body []byte) (Result, error)
}

// JSONPostStrategy is tier 1: a plain cross-origin JSON POST. An HTTP error
// status is transport-level success and is forwarded, only a failed request
// falls through to the next tier.
type JSONPostStrategy struct {
	Client *http.Client
}

func (s JSONPostStrategy) Name() string { return "json" }

func (s JSONPostStrategy) Attempt(ctx context.Context, endpoint string, body []byte) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.Client.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	status := resp.StatusCode
	var data any
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &data); err != nil {
			data = string(raw)
		}
	}
	return Result{
		OK:     status >= 200 && status < 300,
		Data:   data,
		Status: &status,
	}, nil
}

// OpaquePostStrategy is tier 2, the no-cors analog: the body goes out as
// text/plain and the response is not read. Dispatch alone counts as success
// because delivery, not confirmation, is the goal under CORS and
// mixed-content constraints.
type OpaquePostStrategy struct {
	Client *http.Client
}

func (s OpaquePostStrategy) Name() string { return "no-cors" }

func (s OpaquePostStrategy) Attempt(ctx context.Context, endpoint string, body []byte) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "text/plain;charset=UTF-8")
	resp, err := s.Client.Do(req)
	if err != nil {
		return Result{}, err
	}
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
	resp.Body.Close()
	return Result{OK: true, Data: nil, Status: nil, CORSFallback: true}, nil
}

// Deliverer runs the ordered strategy list until one returns a Result.
// Adding a further tier (a local disk queue, say) is appending to the list.
type Deliverer struct {
	strategies []DeliveryStrategy
}

func NewDeliverer(client *http.Client) *Deliverer {
	if client == nil {
		client = http.DefaultClient
	}
	return &Deliverer{
		strategies: []DeliveryStrategy{
			JSONPostStrategy{Client: client},
			OpaquePostStrategy{Client: client},
		},
	}
}

// NewDelivererWithStrategies builds a deliverer with an explicit chain.
func NewDelivererWithStrategies(strategies ...DeliveryStrategy) *Deliverer {
	return &Deliverer{strategies: strategies}
}

func (d *Deliverer) Deliver(ctx context.Context, endpoint string, payload any) Result {
	if len(d.strategies) == 0 {
		return Result{OK: false, Error: "no delivery strategies configured"}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return Result{OK: false, Error: err.Error()}
	}
	var lastErr error
	for _, s := range d.strategies {
		res, err := s.Attempt(ctx, endpoint, body)
		if err == nil {
			metrics.DeliveryTierTotal.WithLabelValues(s.Name(), "ok").Inc()
			return res
		}
		metrics.DeliveryTierTotal.WithLabelValues(s.Name(), "error").Inc()
		logging.ErrorLogger.Error("delivery tier failed",
			zap.String("tier", s.Name()),
			zap.String("endpoint", endpoint),
			zap.Error(err),
		)
		lastErr = err
	}
	return Result{OK: false, Error: lastErr.Error()}
}
