// Package springfeed implements the pull-mode environment source: a
// periodic fetch of the full reading set from the upstream aggregation
// endpoint.
package springfeed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/envroute/envroute/internal/env"
	"github.com/envroute/envroute/internal/resilience"
)

// SourceName identifies this feed variant.
const SourceName = "springfeed"

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config holds configuration for the poller.
type Config struct {
	// URL is the aggregation endpoint returning the full reading set.
	URL string

	// Interval between fetches. Default: 1 hour, matching the upstream
	// refresh cadence.
	Interval time.Duration

	// HTTPClient to use. If nil, a resilient client with a 10s timeout
	// is created.
	HTTPClient HTTPDoer

	// FetchTimeout bounds a single fetch. Default: 10 seconds.
	FetchTimeout time.Duration

	// Logger for source operations.
	Logger zerolog.Logger
}

// Source polls the upstream endpoint on a fixed interval. On fetch
// failure the last-known-good table keeps serving; the next tick
// retries. An empty (but successful) response counts as a fetch
// failure and yields a zero-filled payload instead.
type Source struct {
	url          string
	interval     time.Duration
	fetchTimeout time.Duration
	httpClient   HTTPDoer
	logger       zerolog.Logger
}

// New creates a pull-mode source.
func New(cfg Config) *Source {
	interval := cfg.Interval
	if interval == 0 {
		interval = time.Hour
	}
	fetchTimeout := cfg.FetchTimeout
	if fetchTimeout == 0 {
		fetchTimeout = 10 * time.Second
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.ClientConfig{
			Name:    SourceName,
			Timeout: fetchTimeout,
		})
	}
	return &Source{
		url:          cfg.URL,
		interval:     interval,
		fetchTimeout: fetchTimeout,
		httpClient:   httpClient,
		logger:       cfg.Logger,
	}
}

// Fetch retrieves the full reading set once.
func (s *Source) Fetch(ctx context.Context) (env.Payload, error) {
	ctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch readings: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from readings endpoint", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read readings body: %w", err)
	}
	return env.ParsePayload(body)
}

// Run fetches on every interval tick until ctx is canceled. The first
// fetch happens one interval after start; the initial synchronous pass
// is driven by the caller at bootstrap.
func (s *Source) Run(ctx context.Context, handle env.Handler) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		payload, err := s.Fetch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Error().Err(err).Msg("readings fetch failed, keeping previous table")
			continue
		}
		if len(payload) == 0 {
			s.logger.Warn().Msg("readings endpoint returned an empty set, falling back to zero-filled defaults")
		}
		handle(ctx, payload)
	}
}
