package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Sink receives the final report for a finished session. The engine
// guarantees it is invoked at most once per session.
type Sink interface {
	Deliver(ctx context.Context, r Report) error
}

// CallbackSink posts reports to an external HTTP endpoint.
type CallbackSink struct {
	url   string
	httpc *http.Client
}

func NewCallbackSink(url string, timeout time.Duration) *CallbackSink {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &CallbackSink{
		url:   url,
		httpc: &http.Client{Timeout: timeout},
	}
}

func (s *CallbackSink) Deliver(ctx context.Context, r Report) error {
	body, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode report %s: %w", r.SessionID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build callback request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("deliver report %s: %w", r.SessionID, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("deliver report %s: callback returned %d", r.SessionID, resp.StatusCode)
	}
	return nil
}

// NopSink discards reports. Used when no callback URL is configured.
type NopSink struct{}

func (NopSink) Deliver(context.Context, Report) error { return nil }
