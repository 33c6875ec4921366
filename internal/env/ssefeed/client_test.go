package ssefeed_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/envroute/envroute/internal/env"
	"github.com/envroute/envroute/internal/env/ssefeed"
)

// streamServer serves one SSE response body and then closes the
// connection.
func streamServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, body)
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
	}))
}

func collectFirst(t *testing.T, src *ssefeed.Source) env.Payload {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	delivered := make(chan env.Payload, 1)
	go func() {
		_ = src.Run(ctx, func(_ context.Context, p env.Payload) {
			select {
			case delivered <- p:
			default:
			}
		})
	}()

	select {
	case p := <-delivered:
		return p
	case <-time.After(2 * time.Second):
		t.Fatal("no payload delivered")
		return nil
	}
}

func TestRun_InitialEvent(t *testing.T) {
	srv := streamServer(t, "event: airquality.initial\ndata: {\"HoanKiem\": {\"pm2_5\": 42}}\n\n")
	defer srv.Close()

	src := ssefeed.New(ssefeed.Config{
		URL:            srv.URL,
		ReconnectDelay: 10 * time.Millisecond,
		HTTPClient:     srv.Client(),
		Logger:         zerolog.Nop(),
	})

	p := collectFirst(t, src)
	assert.InDelta(t, 42, p["HoanKiem"][env.MetricPM25], 1e-9)
}

func TestRun_UpdateEventEquivalentToInitial(t *testing.T) {
	srv := streamServer(t, "event: airquality.update\ndata: {\"BaDinh\": {\"pm2_5\": 17}}\n\n")
	defer srv.Close()

	src := ssefeed.New(ssefeed.Config{
		URL:            srv.URL,
		ReconnectDelay: 10 * time.Millisecond,
		HTTPClient:     srv.Client(),
		Logger:         zerolog.Nop(),
	})

	p := collectFirst(t, src)
	assert.InDelta(t, 17, p["BaDinh"][env.MetricPM25], 1e-9)
}

func TestRun_EnvelopeEventType(t *testing.T) {
	// event type carried inside the JSON body instead of the SSE field
	srv := streamServer(t, "data: {\"eventType\": \"airquality.update\", \"data\": {\"BaDinh\": {\"pm2_5\": 5}}}\n\n")
	defer srv.Close()

	src := ssefeed.New(ssefeed.Config{
		URL:            srv.URL,
		ReconnectDelay: 10 * time.Millisecond,
		HTTPClient:     srv.Client(),
		Logger:         zerolog.Nop(),
	})

	p := collectFirst(t, src)
	assert.InDelta(t, 5, p["BaDinh"][env.MetricPM25], 1e-9)
}

func TestRun_SkipsEmptyAndForeignEvents(t *testing.T) {
	body := ": keep-alive\n\n" +
		"event: airquality.update\ndata: {}\n\n" + // empty set: no-op
		"event: traffic.update\ndata: {\"X\": {\"pm2_5\": 1}}\n\n" + // foreign stream
		"event: airquality.update\ndata: {\"HoanKiem\": {\"pm2_5\": 3}}\n\n"
	srv := streamServer(t, body)
	defer srv.Close()

	src := ssefeed.New(ssefeed.Config{
		URL:            srv.URL,
		ReconnectDelay: 10 * time.Millisecond,
		HTTPClient:     srv.Client(),
		Logger:         zerolog.Nop(),
	})

	p := collectFirst(t, src)
	// the only delivered payload is the real one
	assert.Len(t, p, 1)
	assert.InDelta(t, 3, p["HoanKiem"][env.MetricPM25], 1e-9)
}

func TestRun_ReconnectsAfterDrop(t *testing.T) {
	var requests atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := requests.Add(1)
		w.Header().Set("Content-Type", "text/event-stream")
		if n == 1 {
			// close immediately, forcing a reconnect
			return
		}
		fmt.Fprint(w, "event: airquality.initial\ndata: {\"HoanKiem\": {\"pm2_5\": 8}}\n\n")
	}))
	defer srv.Close()

	src := ssefeed.New(ssefeed.Config{
		URL:            srv.URL,
		ReconnectDelay: 10 * time.Millisecond,
		HTTPClient:     srv.Client(),
		Logger:         zerolog.Nop(),
	})

	p := collectFirst(t, src)
	assert.InDelta(t, 8, p["HoanKiem"][env.MetricPM25], 1e-9)
	assert.GreaterOrEqual(t, requests.Load(), int64(2))
}

func TestRun_ReturnsOnCancel(t *testing.T) {
	srv := streamServer(t, ": keep-alive\n\n")
	defer srv.Close()

	src := ssefeed.New(ssefeed.Config{
		URL:            srv.URL,
		ReconnectDelay: 10 * time.Millisecond,
		HTTPClient:     srv.Client(),
		Logger:         zerolog.Nop(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- src.Run(ctx, func(context.Context, env.Payload) {})
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
