// Package main provides the entrypoint for the route engine API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/envroute/envroute/internal/alert"
	"github.com/envroute/envroute/internal/api"
	"github.com/envroute/envroute/internal/config"
	"github.com/envroute/envroute/internal/database"
	"github.com/envroute/envroute/internal/env"
	"github.com/envroute/envroute/internal/env/springfeed"
	"github.com/envroute/envroute/internal/env/ssefeed"
	"github.com/envroute/envroute/internal/geo"
	"github.com/envroute/envroute/internal/graph"
	"github.com/envroute/envroute/internal/history"
	"github.com/envroute/envroute/internal/refresh"
	"github.com/envroute/envroute/internal/route"
	"github.com/envroute/envroute/internal/telemetry"
)

// Version is set at compile time via ldflags.
var Version = "dev"

func main() {
	const serviceName = "envroute-api"

	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.FromEnv()
	if err != nil {
		errLog := zerolog.New(os.Stderr)
		errLog.Fatal().Err(err).Msg("invalid configuration")
	}

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()
	if cfg.Debug {
		log = log.Level(zerolog.DebugLevel).
			Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}

	log.Info().
		Str("mode", cfg.EnvSourceMode).
		Str("env_source", cfg.EnvSourceURL).
		Msg("starting route engine API")

	ctx := context.Background()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	// Load the road network and zone polygons. Both are startup
	// preconditions; there is nothing to serve without them.
	index, err := geo.Load(cfg.GraphFile, cfg.ZonesFile, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load geographic data")
	}
	log.Info().
		Int("nodes", index.Network.NodeCount()).
		Int("edges", index.Network.EdgeCount()).
		Int("zones", len(index.ZoneNames())).
		Msg("geographic data loaded")

	store := env.NewStore(env.StoreConfig{
		ZoneNames: index.ZoneNames(),
		Resolver:  index.DisplayName,
		Logger:    log,
	})

	var source env.Source
	switch cfg.EnvSourceMode {
	case config.ModeStream:
		source = ssefeed.New(ssefeed.Config{
			URL:            cfg.EnvSourceURL,
			ReconnectDelay: cfg.ReconnectDelay,
			Logger:         log,
		})
	default:
		source = springfeed.New(springfeed.Config{
			URL:      cfg.EnvSourceURL,
			Interval: cfg.RefreshInterval,
			Logger:   log,
		})
	}

	registry := graph.NewRegistry()
	engine := route.NewEngine(registry, log)

	updater := refresh.New(refresh.Config{
		Source:   source,
		Store:    store,
		Index:    index,
		Registry: registry,
		Logger:   log,
	})

	// Optional reading-history persistence.
	var historyRepo history.Repository
	if cfg.DatabaseURL != "" {
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()

		historyRepo = history.NewPostgresRepository(pool)
		recorder := history.NewRecorder(historyRepo, log)
		updater.AddHook(recorder.Record)
		log.Info().Msg("reading history persistence enabled")
	}

	// Optional threshold alerting.
	if cfg.AlertRulesFile != "" {
		rules, err := alert.LoadRules(cfg.AlertRulesFile)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load alert rules")
		}

		notifiers := []alert.Notifier{alert.NewLogNotifier(log)}
		if cfg.PubSubProjectID != "" && cfg.AlertTopic != "" {
			pubsubNotifier, err := alert.NewPubSubNotifier(ctx, alert.PubSubConfig{
				ProjectID: cfg.PubSubProjectID,
				TopicName: cfg.AlertTopic,
				Logger:    log,
			})
			if err != nil {
				log.Fatal().Err(err).Msg("failed to create pubsub notifier")
			}
			defer func() {
				if closeErr := pubsubNotifier.Close(); closeErr != nil {
					log.Error().Err(closeErr).Msg("failed to close pubsub notifier")
				}
			}()
			notifiers = append(notifiers, pubsubNotifier)
		}

		evaluator := alert.NewEvaluator(rules, log, notifiers...)
		updater.AddHook(evaluator.Evaluate)
		log.Info().Int("rules", len(rules)).Msg("alert evaluation enabled")
	}

	router := api.NewRouter(api.RouterConfig{
		Logger:      log,
		ServiceName: serviceName,
		Index:       index,
		Store:       store,
		Registry:    registry,
		Engine:      engine,
		History:     historyRepo,
	})

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Listen before the first refresh so /health answers during the
	// initial cost computation over large graphs.
	go func() {
		log.Info().Str("addr", server.Addr).Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	refreshCtx, stopRefresh := context.WithCancel(ctx)
	defer stopRefresh()

	updater.Bootstrap(refreshCtx)
	log.Info().Msg("initial graph generation published")

	go func() {
		if err := updater.Run(refreshCtx); err != nil && refreshCtx.Err() == nil {
			log.Error().Err(err).Msg("refresh pipeline stopped")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	stopRefresh()

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
