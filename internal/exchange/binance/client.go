// Package binance is a concrete adapter.Adapter for Binance's depth-delta
// and aggregated-trade streams. It is the sole place that knows about
// Binance's JSON schema and symbol-case rules; the reconciliation core
// never imports it directly.
package binance

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/BullionBear/depthsync/internal/config"
	"github.com/BullionBear/depthsync/internal/instrument"
	"github.com/BullionBear/depthsync/pkg/logger"
)

var json = jsoniterConfig()

// maxRetries and retryBaseDelay drive the exponential backoff on HTTP
// failures: up to 3 attempts before the caller sees the error.
const (
	maxRetries     = 3
	retryBaseDelay = 200 * time.Millisecond
)

// Adapter is the Binance implementation of adapter.Adapter.
type Adapter struct {
	cfg        config.ExchangeConfig
	httpClient *http.Client
	depthLimit int
}

// NewAdapter builds a Binance adapter from its endpoint configuration.
func NewAdapter(cfg config.ExchangeConfig, depthLimit int) *Adapter {
	return &Adapter{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		depthLimit: depthLimit,
	}
}

// Exchange returns the exchange tag this adapter serves.
func (a *Adapter) Exchange() instrument.Exchange { return instrument.Exchange(a.cfg.Exchange) }

// get performs a retried GET against the configured HTTP API base and
// decodes the JSON body into out.
func (a *Adapter) get(ctx context.Context, path string, out interface{}) error {
	url := a.cfg.HTTPApi + path

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			delay := retryBaseDelay * time.Duration(1<<uint(attempt-1))
			logger.Log.Warn().Str("url", url).Int("attempt", attempt+1).Dur("delay", delay).
				Msg("retrying binance request")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		body, err := a.doGet(ctx, url)
		if err != nil {
			lastErr = err
			continue
		}
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("binance: decode %s: %w", path, err)
		}
		return nil
	}
	return fmt.Errorf("binance: GET %s failed after %d attempts: %w", path, maxRetries, lastErr)
}

func (a *Adapter) doGet(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("binance: build request: %w", err)
	}
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("binance: do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("binance: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("binance: %s returned status %d: %s", url, resp.StatusCode, bytes.TrimSpace(body))
	}
	return body, nil
}
