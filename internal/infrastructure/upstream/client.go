// Package upstream fetches full article content from the per-item
// endpoint. The capped listing endpoint is deliberately not used here:
// it stops returning items beyond a fixed window of recent saves, which
// is exactly why ingestion works from the manifest instead.
package upstream

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"readvault/internal/domain"
	"readvault/internal/ports"
	"readvault/pkg/resilience"
)

// Config tunes the fetch client.
type Config struct {
	Endpoint       string
	Token          string
	RateDelay      time.Duration
	MaxRetries     int
	InitialBackoff time.Duration
	Timeout        time.Duration
}

// Client implements ports.ContentFetcher against an HTTP endpoint that
// returns an item's HTML for a POSTed identifier.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

var _ ports.ContentFetcher = (*Client)(nil)

// NewClient creates a reusable fetch client. Every HTTP attempt,
// retries included, waits on the rate limiter first, so the minimum
// inter-call delay holds across the whole run. Fetching stays strictly
// serialized; the limiter exists to pace the loop, not to permit
// parallel callers.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.RateDelay <= 0 {
		cfg.RateDelay = time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Every(cfg.RateDelay), 1),
		logger:  logger,
	}
}

// Fetch retrieves content for one identifier, retrying transient
// failures with exponential backoff. The returned error wraps
// domain.ErrFetchPermanent or domain.ErrFetchTransient so the caller
// can record the right ledger status.
func (c *Client) Fetch(ctx context.Context, id string) (domain.RawContent, error) {
	retryCfg := resilience.RetryConfig{
		MaxAttempts:  c.cfg.MaxRetries,
		InitialDelay: c.cfg.InitialBackoff,
		Multiplier:   2,
	}

	var raw domain.RawContent
	err := resilience.Retry(ctx, c.logger, "fetch item "+id, retryCfg, func() error {
		html, err := c.fetchOnce(ctx, id)
		if err != nil {
			return err
		}
		raw = domain.RawContent{ID: id, HTML: html}
		return nil
	})
	if err != nil {
		return domain.RawContent{}, err
	}
	return raw, nil
}

func (c *Client) fetchOnce(ctx context.Context, id string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	form := url.Values{"identifier": {id}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", resilience.Permanent(fmt.Errorf("new request: %w", err))
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrFetchTransient, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return "", fmt.Errorf("%w: upstream status %s", domain.ErrFetchTransient, resp.Status)
	default:
		return "", resilience.Permanent(fmt.Errorf("%w: upstream status %s", domain.ErrFetchPermanent, resp.Status))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read body: %w", domain.ErrFetchTransient, err)
	}
	if strings.TrimSpace(string(body)) == "" {
		return "", resilience.Permanent(fmt.Errorf("%w: empty content", domain.ErrFetchPermanent))
	}
	return string(body), nil
}
