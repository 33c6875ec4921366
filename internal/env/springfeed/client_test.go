package springfeed_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/envroute/envroute/internal/env"
	"github.com/envroute/envroute/internal/env/springfeed"
)

func TestFetch_ParsesReadingSet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"HoanKiem": {"pm2_5": 31.5, "windSpeed": 1.2}}`))
	}))
	defer srv.Close()

	src := springfeed.New(springfeed.Config{
		URL:        srv.URL,
		HTTPClient: srv.Client(),
		Logger:     zerolog.Nop(),
	})

	payload, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, payload, 1)
	assert.InDelta(t, 31.5, payload["HoanKiem"][env.MetricPM25], 1e-9)
	assert.InDelta(t, 1.2, payload["HoanKiem"][env.MetricWindSpeed], 1e-9)
}

func TestFetch_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	src := springfeed.New(springfeed.Config{
		URL:        srv.URL,
		HTTPClient: srv.Client(),
		Logger:     zerolog.Nop(),
	})

	_, err := src.Fetch(context.Background())
	assert.Error(t, err)
}

func TestRun_DeliversOnInterval(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"BaDinh": {"pm2_5": 18}}`))
	}))
	defer srv.Close()

	src := springfeed.New(springfeed.Config{
		URL:        srv.URL,
		Interval:   10 * time.Millisecond,
		HTTPClient: srv.Client(),
		Logger:     zerolog.Nop(),
	})

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
		assert.InDelta(t, 18, p["BaDinh"][env.MetricPM25], 1e-9)
	case <-time.After(2 * time.Second):
		t.Fatal("no payload delivered")
	}
}

func TestRun_KeepsGoingAfterFetchFailure(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"BaDinh": {"pm2_5": 9}}`))
	}))
	defer srv.Close()

	src := springfeed.New(springfeed.Config{
		URL:        srv.URL,
		Interval:   10 * time.Millisecond,
		HTTPClient: srv.Client(),
		Logger:     zerolog.Nop(),
	})

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
		// the failed first tick was skipped, not fatal
		assert.InDelta(t, 9, p["BaDinh"][env.MetricPM25], 1e-9)
	case <-time.After(2 * time.Second):
		t.Fatal("no payload delivered after transient failure")
	}
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	src := springfeed.New(springfeed.Config{
		URL:        srv.URL,
		Interval:   time.Hour,
		HTTPClient: srv.Client(),
		Logger:     zerolog.Nop(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- src.Run(ctx, func(context.Context, env.Payload) {})
	}()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
