package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"lifecontext/lifecontext/metrics"
)

const doneMarker = "[DONE]"

// ChunkSink receives each parsed stream chunk as it arrives.
type ChunkSink func(chunk json.RawMessage)

// streamSSE posts a JSON body and reads the text/event-stream response
// incrementally, forwarding every `data: `-prefixed line parsed as JSON.
// The last incomplete line is retained across reads: a chunk boundary may
// fall mid-line and the fragment must wait for the rest.
func streamSSE(ctx context.Context, client *http.Client, endpoint string, body any, sink ChunkSink) (int, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(raw))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, fmt.Errorf("stream endpoint returned status %d", resp.StatusCode)
	}

	if err := consumeStream(resp.Body, sink); err != nil {
		return resp.StatusCode, err
	}
	return resp.StatusCode, nil
}

// consumeStream implements the line-buffering read loop. Split out so the
// parsing discipline is testable against arbitrary read chunking.
func consumeStream(r io.Reader, sink ChunkSink) error {
	buf := make([]byte, 4096)
	var pending string
	for {
		n, err := r.Read(buf)
		if n > 0 {
			pending += string(buf[:n])
			lines := strings.Split(pending, "\n")
			// The final element is either empty (clean boundary) or an
			// incomplete line; either way it carries over to the next read.
			pending = lines[len(lines)-1]
			for _, line := range lines[:len(lines)-1] {
				if done, perr := forwardLine(line, sink); perr != nil {
					return perr
				} else if done {
					return nil
				}
			}
		}
		if err == io.EOF {
			if pending != "" {
				if _, perr := forwardLine(pending, sink); perr != nil {
					return perr
				}
			}
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func forwardLine(line string, sink ChunkSink) (done bool, err error) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "data: ") {
		return false, nil
	}
	data := strings.TrimSpace(strings.TrimPrefix(line, "data: "))
	if data == doneMarker {
		return true, nil
	}
	if !json.Valid([]byte(data)) {
		// Malformed chunks are dropped, the stream itself goes on.
		return false, nil
	}
	metrics.StreamChunksTotal.Inc()
	sink(json.RawMessage(data))
	return false, nil
}
