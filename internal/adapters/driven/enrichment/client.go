// Package enrichment implements the enrichment API client used to
// auto-populate records from their SF_Number.
package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/docsync/internal/core/domain"
	"github.com/custodia-labs/docsync/internal/core/ports/driven"
	"github.com/custodia-labs/docsync/internal/logger"
)

// Verify interface compliance.
var _ driven.EnrichmentClient = (*Client)(nil)

const (
	// MaxAttempts is the number of tries for a document fetch.
	MaxAttempts = 3

	// RetryDelay is multiplied by the attempt number between tries.
	RetryDelay = time.Second

	// HealthTimeout bounds the health probe.
	HealthTimeout = 5 * time.Second

	// maxErrorBody caps how much of an error response is quoted.
	maxErrorBody = 512
)

// Client calls the enrichment API.
type Client struct {
	baseURL  string
	provider driven.TokenProvider
	authed   *http.Client
	plain    *http.Client
	limiter  *rate.Limiter
	delay    time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the transport used for requests. The bearer
// credential is layered on top of its transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.plain = hc
	}
}

// WithRetryDelay overrides the base retry delay.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) {
		c.delay = d
	}
}

// New creates a client for the API rooted at settings.BaseURL.
// A nil provider sends requests without credentials.
func New(settings domain.EnrichmentSettings, provider driven.TokenProvider, opts ...Option) *Client {
	timeout := settings.Timeout
	if timeout <= 0 {
		timeout = domain.DefaultEnrichmentWait
	}
	rps := settings.RequestsPerSecond
	if rps <= 0 {
		rps = domain.DefaultEnrichmentRPS
	}

	c := &Client{
		baseURL:  strings.TrimRight(settings.BaseURL, "/"),
		provider: provider,
		plain:    &http.Client{Timeout: timeout},
		limiter:  rate.NewLimiter(rate.Limit(rps), 1),
		delay:    RetryDelay,
	}
	for _, opt := range opts {
		opt(c)
	}

	base := c.plain.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	if provider != nil {
		c.authed = &http.Client{
			Timeout: c.plain.Timeout,
			Transport: &oauth2.Transport{
				Source: newTokenSource(context.Background(), provider),
				Base:   base,
			},
		}
	}
	return c
}

// FetchDocument returns the enrichment data for sfNumber. Any failure is
// retried up to MaxAttempts with a linear backoff.
func (c *Client) FetchDocument(ctx context.Context, sfNumber string) (*domain.EnrichmentResult, error) {
	endpoint := c.baseURL + "/api/salesforce/document/" + url.PathEscape(sfNumber)

	var lastErr error
	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		result, retryAfter, err := c.fetchOnce(ctx, endpoint)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if attempt == MaxAttempts {
			break
		}

		wait := c.delay * time.Duration(attempt)
		if retryAfter > wait {
			wait = retryAfter
		}
		logger.Warn("enrichment fetch %s attempt %d failed: %v; retrying in %s", sfNumber, attempt, err, wait)
		if err := sleep(ctx, wait); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("fetch %s after %d attempts: %w", sfNumber, MaxAttempts, lastErr)
}

func (c *Client) fetchOnce(ctx context.Context, endpoint string) (*domain.EnrichmentResult, time.Duration, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, 0, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, retryAfter(resp), fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result domain.EnrichmentResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, 0, fmt.Errorf("decode response: %w", err)
	}
	return &result, 0, nil
}

// Health probes {base}/health without credentials.
func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, HealthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.plain.Do(req)
	if err != nil {
		return fmt.Errorf("enrichment health: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("enrichment health: status %d", resp.StatusCode)
	}
	return nil
}

// httpClient picks the authenticated client when a token is available.
func (c *Client) httpClient() *http.Client {
	if c.authed != nil && c.provider.IsAuthenticated() {
		return c.authed
	}
	return c.plain
}

// retryAfter reads a Retry-After header given in seconds.
func retryAfter(resp *http.Response) time.Duration {
	if resp.StatusCode != http.StatusTooManyRequests {
		return 0
	}
	seconds, err := strconv.Atoi(resp.Header.Get("Retry-After"))
	if err != nil || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
