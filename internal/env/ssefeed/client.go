// Package ssefeed implements the push-mode environment source: a
// persistent server-sent-events subscription to the upstream backend.
// Initial-snapshot and incremental-update events are handled
// identically, as a full table replace.
package ssefeed

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/envroute/envroute/internal/env"
)

// SourceName identifies this feed variant.
const SourceName = "ssefeed"

// Event types published by the upstream stream. Anything else is
// ignored (heartbeats, other entity streams on the same channel).
const (
	EventInitial = "airquality.initial"
	EventUpdate  = "airquality.update"
)

// Config holds configuration for the stream subscriber.
type Config struct {
	// URL of the SSE endpoint.
	URL string

	// ReconnectDelay is the fixed wait before re-dialing after any
	// connection fault. Default: 5 seconds.
	ReconnectDelay time.Duration

	// HTTPClient to use. If nil a client with no overall timeout is
	// created; the stream read is long-lived and must not time out.
	HTTPClient *http.Client

	// Logger for source operations.
	Logger zerolog.Logger
}

// Source consumes the upstream event stream, reconnecting forever with
// a fixed delay on any fault.
type Source struct {
	url            string
	reconnectDelay time.Duration
	httpClient     *http.Client
	logger         zerolog.Logger
}

// New creates a push-mode source.
func New(cfg Config) *Source {
	delay := cfg.ReconnectDelay
	if delay == 0 {
		delay = 5 * time.Second
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{} // no Timeout: the stream is long-lived
	}
	return &Source{
		url:            cfg.URL,
		reconnectDelay: delay,
		httpClient:     client,
		logger:         cfg.Logger,
	}
}

// Run subscribes and dispatches events until ctx is canceled. Any
// connection fault triggers a reconnect after the fixed delay; the
// subscription is never abandoned.
func (s *Source) Run(ctx context.Context, handle env.Handler) error {
	policy := backoff.WithContext(backoff.NewConstantBackOff(s.reconnectDelay), ctx)

	operation := func() error {
		err := s.consume(ctx, handle)
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		s.logger.Warn().Err(err).
			Dur("reconnect_in", s.reconnectDelay).
			Msg("event stream disconnected, will reconnect")
		return err
	}

	err := backoff.Retry(operation, policy)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// consume dials the stream and dispatches events until the connection
// drops. It always returns a non-nil error: a healthy stream never ends.
func (s *Source) consume(ctx context.Context, handle env.Handler) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, http.NoBody)
	if err != nil {
		return fmt.Errorf("create stream request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("dial stream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from stream endpoint", resp.StatusCode)
	}

	s.logger.Info().Str("url", s.url).Msg("event stream connected")

	var eventType string
	var data strings.Builder

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			s.dispatch(ctx, eventType, data.String(), handle)
			eventType = ""
			data.Reset()
		case strings.HasPrefix(line, "event:"):
			eventType = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimSpace(strings.TrimPrefix(line, "data:")))
		case strings.HasPrefix(line, ":"):
			// comment / keep-alive
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read stream: %w", err)
	}
	return fmt.Errorf("stream closed by server")
}

// envelope is the upstream event wrapper. Some emitters put the event
// type in the SSE event field, others inside the JSON body; both are
// accepted.
type envelope struct {
	EventType string          `json:"eventType"`
	Data      json.RawMessage `json:"data"`
}

func (s *Source) dispatch(ctx context.Context, eventType, data string, handle env.Handler) {
	if data == "" {
		return
	}

	body := []byte(data)
	var ev envelope
	if err := json.Unmarshal(body, &ev); err == nil && ev.EventType != "" {
		eventType = ev.EventType
		body = ev.Data
	}

	switch eventType {
	case EventInitial, EventUpdate:
	default:
		return
	}

	payload, err := env.ParsePayload(body)
	if err != nil {
		s.logger.Warn().Err(err).Str("event", eventType).Msg("unparsable stream event, skipping")
		return
	}
	if len(payload) == 0 {
		// a push event with no readings is a no-op, not a reset
		return
	}
	handle(ctx, payload)
}
