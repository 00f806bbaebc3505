package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"inova/internal/generation"
	"inova/internal/http/handlers"
	httpapi "inova/internal/http/httpapi"
	"inova/internal/imagegen"
	"inova/internal/infra"
	"inova/internal/infra/geoip"
	"inova/internal/infra/redis"
	"inova/internal/metrics"
	"inova/internal/middleware"
	"inova/internal/providers/completion"
	"inova/internal/providers/replicate"
)

func main() {
	// Muat .env (opsional)
	_ = godotenv.Load()

	// Konfigurasi & logger
	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)
	metrics.MustRegister()

	if !cfg.HasOpenAI() {
		logger.Warn().Msg("OPENAI_API_KEY not set; text generation requests will fail")
	}
	if !cfg.HasReplicate() {
		logger.Warn().Msg("REPLICATE_API_TOKEN not set; logo generation requests will fail")
	}

	// GeoIP (opsional)
	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}
	defer resolver.Close()
	var lookup middleware.CountryLookup
	if fn := resolver.Lookup(); fn != nil {
		lookup = fn
	}

	// Provider clients
	images := replicate.NewClient(replicate.Options{
		APIToken:     cfg.ReplicateAPIToken,
		BaseURL:      cfg.ReplicateBaseURL,
		ModelVersion: cfg.ReplicateModelVersion,
		Logger:       &logger,
	})
	text := completion.NewClient(completion.Options{
		APIKey:       cfg.OpenAIAPIKey,
		Model:        cfg.OpenAIModel,
		BaseURL:      cfg.OpenAIBaseURL,
		Organization: cfg.OpenAIOrg,
		Logger:       &logger,
		OnWarning: func(reason, detail string) {
			logger.Warn().Str("reason", reason).Str("detail", detail).Msg("openai model adjusted")
		},
	})
	submitter := imagegen.NewSubmitter(images, &logger)
	poller := imagegen.NewPoller(images, imagegen.PollerOptions{
		Interval:    cfg.PollInterval,
		MaxAttempts: cfg.PollMaxAttempts,
		Logger:      &logger,
	})

	// Session gate: Redis bila tersedia, selain itu in-memory
	var gate generation.Gate = generation.NewMemoryGate()
	if cfg.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		rdb, err := redis.NewClient(ctx, cfg.RedisURL)
		cancel()
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, using in-memory session gate")
		} else {
			defer rdb.Close()
			gate = redis.NewGate(rdb, redis.GateOptions{
				TTL:    cfg.GenerationTimeout + time.Minute,
				Logger: &logger,
			})
		}
	}

	service := generation.NewService(generation.Options{
		Submitter:            submitter,
		Poller:               poller,
		Text:                 text,
		Gate:                 gate,
		Logger:               &logger,
		DefaultLocale:        cfg.DefaultLocale,
		DescriptionMaxLength: cfg.DescriptionMaxLength,
		Timeout:              cfg.GenerationTimeout,
	})

	app := &handlers.App{
		Config:      cfg,
		Logger:      &logger,
		Generator:   service,
		Logos:       submitter,
		Predictions: images,
		Ideas:       text,
	}
	router := httpapi.NewRouter(app, lookup)

	server := infra.NewHTTPServer(cfg, router, logger)

	// Start async
	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
