package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/cypherlabdev/arb-scanner-service/internal/alert"
	"github.com/cypherlabdev/arb-scanner-service/internal/analysis"
	"github.com/cypherlabdev/arb-scanner-service/internal/cache"
	"github.com/cypherlabdev/arb-scanner-service/internal/config"
	"github.com/cypherlabdev/arb-scanner-service/internal/dedup"
	"github.com/cypherlabdev/arb-scanner-service/internal/feed"
	httpHandler "github.com/cypherlabdev/arb-scanner-service/internal/handler/http"
	"github.com/cypherlabdev/arb-scanner-service/internal/messaging"
	"github.com/cypherlabdev/arb-scanner-service/internal/metrics"
	"github.com/cypherlabdev/arb-scanner-service/internal/service"
	"github.com/cypherlabdev/arb-scanner-service/internal/store"
	"github.com/cypherlabdev/arb-scanner-service/internal/telegram"
	"github.com/cypherlabdev/arb-scanner-service/pkg/arbitrage"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the YAML config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Setup logger
	logger := setupLogger(cfg.Logging)

	if flag.Arg(0) == "analyze" {
		if err := runAnalyze(cfg, logger); err != nil {
			logger.Fatal().Err(err).Msg("analysis failed")
		}
		return
	}

	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	logger.Info().Msg("starting arb-scanner-service")
	run(cfg, logger)
}

func run(cfg *config.Config, logger zerolog.Logger) {
	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create evaluator
	params, err := cfg.Scanner.ToEvaluationParams()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid evaluation parameters")
	}
	evaluator := arbitrage.NewEvaluator(params, logger)
	logger.Info().Str("mode", string(params.Mode)).Msg("evaluator initialized")

	// Create odds feed and Telegram clients
	oddsFeed := feed.NewOddsAPIClient(
		feed.OddsAPIConfig{
			BaseURL:    cfg.Feed.BaseURL,
			APIKey:     cfg.Feed.APIKey,
			Regions:    cfg.Feed.Regions,
			Markets:    cfg.Feed.Markets,
			Bookmakers: params.Bookmakers,
			Timeout:    cfg.Feed.Timeout,
		},
		logger,
	)

	bot := telegram.NewClient(
		telegram.ClientConfig{
			BaseURL:  cfg.Telegram.BaseURL,
			BotToken: cfg.Telegram.BotToken,
			ChatID:   cfg.Telegram.ChatID,
			Timeout:  cfg.Telegram.Timeout,
		},
		logger,
	)

	// Opportunity log: JSON lines file, plus Kafka when enabled
	oppLog := store.MultiLog{store.NewFileLog(cfg.LogFile.Path, logger)}
	if cfg.Kafka.Enabled {
		publisher := messaging.NewKafkaPublisher(
			messaging.KafkaPublisherConfig{
				Brokers: cfg.Kafka.Brokers,
				Topic:   cfg.Kafka.Topic,
				Source:  cfg.Kafka.Source,
			},
			logger,
		)
		defer publisher.Close()
		oppLog = append(oppLog, publisher)
		logger.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("Kafka publisher initialized")
	}

	// Create Redis cache when enabled
	var oppCache service.Cache
	if cfg.Redis.Enabled {
		redisCache := cache.NewRedisCache(
			cache.RedisCacheConfig{
				Addr:      cfg.Redis.Addr,
				Password:  cfg.Redis.Password,
				DB:        cfg.Redis.DB,
				TTL:       cfg.Redis.TTL,
				MaxRecent: cfg.Redis.MaxRecent,
			},
			logger,
		)
		defer redisCache.Close()

		// Test Redis connection
		if err := redisCache.Ping(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		logger.Info().Str("addr", cfg.Redis.Addr).Msg("connected to Redis")
		oppCache = redisCache
	}

	// Create scanner service layer
	scanner := service.NewScannerService(
		cfg.ToScannerConfig(),
		service.Dependencies{
			Evaluator: evaluator,
			Feed:      oddsFeed,
			Notifier:  bot,
			Commands:  bot,
			Log:       oppLog,
			Cache:     oppCache,
			Window:    dedup.NewWindow(cfg.DedupCooldown()),
			Formatter: alert.NewFormatter(alert.FormatterConfig{
				PaperTrading:       cfg.Scanner.PaperTrading,
				PriorityBookmakers: params.PriorityBookmakers,
			}),
			Metrics: metrics.New(prometheus.DefaultRegisterer),
		},
		logger,
	)
	logger.Info().Msg("scanner service initialized")

	// Setup HTTP server routes
	mux := http.NewServeMux()

	// Health and monitoring endpoints
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		readyHandler(w, r, oppCache)
	})
	mux.Handle("/metrics", promhttp.Handler())

	// Register API routes
	httpHandler.NewOpportunityHandler(scanner, logger).RegisterRoutes(mux)
	logger.Info().Msg("API routes registered")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start HTTP server in goroutine
	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("HTTP server failed")
		}
	}()

	// Start scan loop in goroutine
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := scanner.Run(ctx); err != nil {
			logger.Error().Err(err).Msg("scanner failed")
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info().Msg("shutting down gracefully...")

	// Cancel context to stop the scan loop; it sends its final report
	cancel()
	select {
	case <-done:
	case <-time.After(15 * time.Second):
		logger.Warn().Msg("scanner did not stop in time")
	}

	// Shutdown HTTP server
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	logger.Info().Msg("shutdown complete")
}

// runAnalyze prints the aggregate report of the opportunity log
func runAnalyze(cfg *config.Config, logger zerolog.Logger) error {
	opps, err := store.ReadAll(cfg.LogFile.Path, logger)
	if errors.Is(err, os.ErrNotExist) {
		fmt.Printf("No opportunity log found at %s.\n", cfg.LogFile.Path)
		return nil
	}
	if err != nil {
		return err
	}

	return analysis.Summarize(opps).Render(os.Stdout)
}

// setupLogger configures the logger based on config
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	// Set log level
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Set format
	if cfg.Format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	return log.Logger.With().Str("service", "arb-scanner").Logger()
}

// healthHandler returns 200 if service is running
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// readyHandler returns 200 if service is ready to accept traffic
func readyHandler(w http.ResponseWriter, r *http.Request, cache service.Cache) {
	// Check Redis connection when the cache is enabled
	if cache != nil {
		if err := cache.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("Redis unavailable"))
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("READY"))
}
