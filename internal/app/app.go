// Package app provides application initialization and lifecycle management.
package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pi-elearning/chatbot-go/internal/buildinfo"
	"github.com/pi-elearning/chatbot-go/internal/catalog"
	"github.com/pi-elearning/chatbot-go/internal/config"
	"github.com/pi-elearning/chatbot-go/internal/dedup"
	"github.com/pi-elearning/chatbot-go/internal/intent"
	"github.com/pi-elearning/chatbot-go/internal/logger"
	"github.com/pi-elearning/chatbot-go/internal/match"
	"github.com/pi-elearning/chatbot-go/internal/metrics"
	"github.com/pi-elearning/chatbot-go/internal/ratelimit"
	"github.com/pi-elearning/chatbot-go/internal/router"
	"github.com/pi-elearning/chatbot-go/internal/sentry"
	"github.com/pi-elearning/chatbot-go/internal/storage"
	"github.com/pi-elearning/chatbot-go/internal/suggest"
	"github.com/pi-elearning/chatbot-go/internal/usercache"
)

// Application manages the application lifecycle and dependencies.
type Application struct {
	cfg           *config.Config
	logger        *logger.Logger
	db            *storage.DB
	metrics       *metrics.Metrics
	registry      *prometheus.Registry
	catalogClient *catalog.Client
	classifier    *intent.Classifier
	router        *router.Router
	userLimiter   *ratelimit.KeyedLimiter
	server        *http.Server
}

// Initialize creates and wires a new application with all dependencies.
func Initialize(_ context.Context, cfg *config.Config) (*Application, error) {
	log := logger.NewWithOptions(cfg.LogLevel, logger.Options{
		BetterstackToken:    cfg.BetterstackToken,
		BetterstackEndpoint: cfg.BetterstackEndpoint,
	})

	log = log.WithField("service", "chatbot-go")
	if host, err := os.Hostname(); err == nil && host != "" {
		log = log.WithField("instance_id", host)
	}

	log.Info("Initializing application...")
	if cfg.BetterstackToken != "" {
		log.WithField("endpoint", cfg.BetterstackEndpoint).Info("Better Stack logging enabled")
	}

	if err := sentry.Initialize(sentry.Config{
		Token:       cfg.SentryToken,
		Host:        cfg.SentryHost,
		Environment: cfg.Environment,
		Release:     buildinfo.Release(),
	}); err != nil {
		log.WithError(err).Warn("Sentry initialization failed, error tracking disabled")
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("data directory: %w", err)
	}
	db, err := storage.New(cfg.SQLitePath())
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	log.WithField("path", cfg.SQLitePath()).Info("Database connected")

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewBuildInfoCollector(),
	)
	m := metrics.New(registry)

	catalogClient := catalog.NewClient(
		cfg.CatalogBaseURL,
		cfg.CatalogTimeout,
		cfg.CatalogMaxRetries,
		config.CatalogRetryInitial,
		log,
	)
	catalogClient.SetSnapshot(db)
	catalogClient.SetMetrics(m)

	cache := usercache.New(cfg.CacheTTL, catalogClient)
	cache.SetMetrics(m)

	var predictor intent.Predictor
	if cfg.ModelServiceURL != "" {
		predictor = intent.NewHTTPPredictor(cfg.ModelServiceURL, cfg.ModelTimeout)
		log.WithField("url", cfg.ModelServiceURL).Info("Using external model service for classification")
	} else {
		predictor = intent.NewKeywordPredictor()
		log.Info("No model service configured, using keyword classification")
	}
	classifier := intent.NewClassifier(predictor, cfg.IntentThreshold, log)
	classifier.SetMetrics(m)

	picker := dedup.New(cfg.ResponseHistorySize)
	picker.SetMetrics(m)

	msgRouter := router.New(router.Config{
		Cache:      cache,
		Classifier: classifier,
		Picker:     picker,
		Resolver:   catalogClient,
		Suggester:  suggest.NewIndex(log),
		Weights: match.Weights{
			Title:          cfg.TitleWeight,
			Description:    cfg.DescriptionWeight,
			TechTitleBonus: cfg.TechTitleBonus,
		},
		SuggestN: cfg.SuggestTopN,
		Metrics:  m,
		Logger:   log,
	})

	userLimiter := ratelimit.NewKeyedLimiter(ratelimit.KeyedConfig{
		Name:       "user",
		Burst:      cfg.UserRateLimitBurst,
		RefillRate: cfg.UserRateLimitRefillPerSec,
		Metrics:    m,
	})

	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	app := &Application{
		cfg:           cfg,
		logger:        log,
		db:            db,
		metrics:       m,
		registry:      registry,
		catalogClient: catalogClient,
		classifier:    classifier,
		router:        msgRouter,
		userLimiter:   userLimiter,
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	if sentry.IsEnabled() {
		engine.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	engine.Use(securityHeadersMiddleware())
	engine.Use(loggingMiddleware(log))
	app.setupRoutes(engine)

	app.server = &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      engine,
		ReadTimeout:  config.ServerHTTPRead,
		WriteTimeout: config.ServerHTTPWrite,
		IdleTimeout:  config.ServerHTTPIdle,
	}

	log.Info("Initialization complete")
	return app, nil
}

func (a *Application) setupRoutes(engine *gin.Engine) {
	engine.POST("/predict", a.rateLimitMiddleware(), a.handlePredict)
	engine.GET("/health", a.handleHealth)
	engine.GET("/healthz", a.livenessCheck)
	engine.HEAD("/healthz", a.livenessCheck)
	engine.GET("/ready", a.readinessCheck)
	engine.HEAD("/ready", a.readinessCheck)
	engine.GET("/metrics",
		metricsAuthMiddleware(a.cfg.MetricsPassword != "", a.cfg.MetricsUsername, a.cfg.MetricsPassword),
		gin.WrapH(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})))
}

// Run starts the HTTP server and blocks until a shutdown signal arrives,
// then shuts everything down gracefully.
func (a *Application) Run() error {
	go func() {
		a.logger.WithField("port", a.cfg.Port).Info("Starting HTTP server")
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.WithError(err).Error("HTTP server error")
		}
	}()

	sig := a.waitForShutdownSignal()
	a.logger.WithField("signal", sig.String()).Info("Received shutdown signal")

	return a.shutdown()
}

// waitForShutdownSignal blocks until SIGINT/SIGTERM is received.
func (a *Application) waitForShutdownSignal() os.Signal {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	return <-quit
}

// shutdown stops accepting requests, waits for in-flight ones, then closes
// resources.
func (a *Application) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	a.logger.Info("Stopping HTTP server...")
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.WithError(err).Error("HTTP server shutdown error")
	}

	a.userLimiter.Stop()

	if err := a.db.Close(); err != nil {
		a.logger.WithError(err).Error("Failed to close database")
	}

	if sentry.IsEnabled() {
		sentry.Flush(a.cfg.ShutdownTimeout / 2)
	}

	a.logger.Info("Shutdown complete")
	return nil
}
