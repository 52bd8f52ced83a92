package sink

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/embertail-io/embertail/internal/models"
)

const (
	forwardMaxRetries = 3
	forwardBaseDelay  = 2 * time.Second
)

// forwardRecord is one NDJSON line shipped to the structured sink.
type forwardRecord struct {
	Host  string       `json:"host"`
	Entry models.Entry `json:"entry"`
}

// Forward ships entries as NDJSON batches to a configured HTTP endpoint.
type Forward struct {
	cfg        models.ForwardConfig
	httpClient *http.Client
}

// NewForward creates a forwarding sink.
func NewForward(cfg models.ForwardConfig) *Forward {
	return &Forward{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Emit implements Sink. Each call ships one batch with retry and
// exponential backoff; the first/debug flags travel as headers so the
// receiver can reconstruct session boundaries.
func (f *Forward) Emit(ctx context.Context, hostname string, entries []models.Entry, first, debug bool) error {
	if len(entries) == 0 {
		return nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, e := range entries {
		if err := enc.Encode(forwardRecord{Host: hostname, Entry: e}); err != nil {
			return fmt.Errorf("encode entry: %w", err)
		}
	}
	body := buf.Bytes()
	if f.cfg.Gzip {
		var gz bytes.Buffer
		w := gzip.NewWriter(&gz)
		if _, err := w.Write(body); err != nil {
			return fmt.Errorf("gzip batch: %w", err)
		}
		if err := w.Close(); err != nil {
			return fmt.Errorf("gzip batch: %w", err)
		}
		body = gz.Bytes()
	}

	batchID := uuid.NewString()
	var lastErr error
	for attempt := 0; attempt < forwardMaxRetries; attempt++ {
		if attempt > 0 {
			delay := forwardBaseDelay * time.Duration(1<<(attempt-1))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if lastErr = f.send(ctx, body, batchID, first, debug); lastErr == nil {
			return nil
		}
	}
	return fmt.Errorf("forward batch %s after %d attempts: %w", batchID, forwardMaxRetries, lastErr)
}

func (f *Forward) send(ctx context.Context, body []byte, batchID string, first, debug bool) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create forward request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-ndjson")
	req.Header.Set("X-Batch-ID", batchID)
	if first {
		req.Header.Set("X-First-Batch", "1")
	}
	if debug {
		req.Header.Set("X-Debug", "1")
	}
	if f.cfg.Gzip {
		req.Header.Set("Content-Encoding", "gzip")
	}
	if f.cfg.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+f.cfg.AuthToken)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sink returned %d", resp.StatusCode)
	}
	return nil
}
