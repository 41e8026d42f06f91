// Package scraper harvests hero counter pages and official rank statistics
// into the local store. It is the only part of the system that touches the
// network; everything downstream reads from SQLite and meta.json.
package scraper

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/mlcounter/draft-companion/internal/metrics"
)

const (
	defaultRequestTimeout = 15 * time.Second
	initialBackoff        = 1 * time.Second
	maxBackoff            = 16 * time.Second
)

// Fetcher is a polite rate-limited HTML fetcher with retry and exponential
// backoff on throttling responses.
type Fetcher struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	userAgent   string
	maxRetries  int
	logger      *zap.Logger
	metrics     *metrics.EngineMetrics
}

// FetcherOptions configures a Fetcher. Zero values fall back to safe
// defaults.
type FetcherOptions struct {
	RequestsPerSec float64
	MaxRetries     int
	Timeout        time.Duration
	UserAgent      string
	Logger         *zap.Logger
	Metrics        *metrics.EngineMetrics
}

// NewFetcher creates a fetcher. The default rate is one request per two
// seconds; counter sites are small community pages and get hammered easily.
func NewFetcher(opts FetcherOptions) *Fetcher {
	if opts.RequestsPerSec <= 0 {
		opts.RequestsPerSec = 0.5
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultRequestTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "draft-companion/1.0"
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Fetcher{
		httpClient:  &http.Client{Timeout: opts.Timeout},
		rateLimiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSec), 1),
		userAgent:   opts.UserAgent,
		maxRetries:  opts.MaxRetries,
		logger:      opts.Logger,
		metrics:     opts.Metrics,
	}
}

// FetchDocument retrieves a URL and parses it as HTML.
func (f *Fetcher) FetchDocument(ctx context.Context, url string) (*goquery.Document, error) {
	start := time.Now()
	doc, err := f.fetchDocument(ctx, url)
	if f.metrics != nil {
		f.metrics.RecordFetch(time.Since(start), err)
	}
	return doc, err
}

func (f *Fetcher) fetchDocument(ctx context.Context, url string) (*goquery.Document, error) {
	var lastErr error
	backoff := initialBackoff

	for attempt := 0; attempt <= f.maxRetries; attempt++ {
		if err := f.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", f.userAgent)
		req.Header.Set("Accept", "text/html,application/xhtml+xml")

		resp, err := f.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("HTTP request failed: %w", err)
			if attempt < f.maxRetries {
				f.logger.Warn("fetch failed, retrying",
					zap.String("url", url),
					zap.Int("attempt", attempt+1),
					zap.Error(err))
				sleep(ctx, backoff)
				backoff = minDuration(backoff*2, maxBackoff)
				continue
			}
			return nil, lastErr
		}

		switch resp.StatusCode {
		case http.StatusOK:
			doc, err := goquery.NewDocumentFromReader(resp.Body)
			resp.Body.Close()
			if err != nil {
				return nil, fmt.Errorf("failed to parse HTML from %s: %w", url, err)
			}
			return doc, nil

		case http.StatusForbidden, http.StatusTooManyRequests, http.StatusServiceUnavailable:
			resp.Body.Close()
			lastErr = fmt.Errorf("throttled (HTTP %d)", resp.StatusCode)
			if attempt < f.maxRetries {
				f.logger.Warn("throttled, backing off",
					zap.String("url", url),
					zap.Int("status", resp.StatusCode),
					zap.Duration("backoff", backoff))
				sleep(ctx, backoff)
				backoff = minDuration(backoff*2, maxBackoff)
				continue
			}
			return nil, lastErr

		default:
			resp.Body.Close()
			return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url)
		}
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
