package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"aesthetic_doctor_bot/internal/chart"
	"aesthetic_doctor_bot/internal/config"
	"aesthetic_doctor_bot/internal/feature/arcwizard"
	"aesthetic_doctor_bot/internal/feature/metrics"
	"aesthetic_doctor_bot/internal/health"
	"aesthetic_doctor_bot/internal/instrument"
	"aesthetic_doctor_bot/internal/logging"
	"aesthetic_doctor_bot/internal/metricsapi"
	"aesthetic_doctor_bot/internal/registry"
	"aesthetic_doctor_bot/internal/session"
	"aesthetic_doctor_bot/internal/store"
	"aesthetic_doctor_bot/internal/telegram"
)

const (
	storeConnectTimeout     = 10 * time.Second
	mongoIndexTimeout       = 5 * time.Second
	storeCloseTimeout       = 5 * time.Second
	healthShutdownTimeout   = 5 * time.Second
	telegramShutdownTimeout = 10 * time.Second
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

// codeStore is the connection behind the activation code registry.
type codeStore interface {
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

func main() {
	configOnly := flag.Bool("config-only", false, "load and print configuration then exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.Error("configuration error", logging.Fields{"error": err})
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.Setup(cfg)
	if err != nil {
		logging.Error("logger setup error", logging.Fields{"error": err})
		fmt.Fprintf(os.Stderr, "logger setup error: %v\n", err)
		os.Exit(1)
	}

	if *configOnly {
		logging.Info("configuration check", logging.Fields{"event": "config_only"})
		fmt.Println("configuration check: ok")
		fmt.Println(config.FormatRedacted(cfg))
		return
	}

	instrument.BuildInfo.WithLabelValues(version, cfg.AppEnv).Set(1)

	logger.WithFields(logging.Fields{
		"event":              "startup",
		"version":            version,
		"codes_backend":      cfg.CodesBackend,
		"metrics_configured": cfg.MetricsConfigured(),
	}).Info("configuration loaded")

	codes, backend, err := openCodeStore(cfg, logger)
	if err != nil {
		logger.WithError(err).Error("code store setup error")
		fmt.Fprintf(os.Stderr, "code store setup error: %v\n", err)
		os.Exit(1)
	}

	sessions := session.NewTTLStore(cfg.SessionTTL)
	sessions.Start()

	wizard, err := arcwizard.New(arcwizard.Config{
		Sessions: sessions,
		Registry: registry.New(backend, logger.WithField("component", "code_registry")),
		Logger:   logger.WithField("component", "arc_wizard"),
		Label:    cfg.CodeLabel,
	})
	if err != nil {
		exitWithError(logger, "wizard setup error", err)
	}

	metricsService, err := newMetricsService(cfg, logger)
	if err != nil {
		exitWithError(logger, "metrics setup error", err)
	}

	router := telegram.NewRouter(metricsService, wizard, logger)
	tgClient, err := telegram.NewClient(cfg, router, logger)
	if err != nil {
		exitWithError(logger, "telegram client setup error", err)
	}

	logger.WithField("event", "telegram_ready").Info("telegram client initialized")

	healthServer := health.NewServer(cfg.HTTPPort, codes, logger)
	go func() {
		if err := healthServer.ListenAndServe(); err != nil {
			logger.WithError(err).Error("health server error")
		}
	}()

	signalCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	telegramCtx, cancelTelegram := context.WithCancel(context.Background())
	tgDone := make(chan struct{})

	go func() {
		tgClient.Start(telegramCtx)
		close(tgDone)
	}()

	select {
	case <-signalCtx.Done():
		logger.WithField("event", "shutdown_signal").Info("received termination signal, stopping telegram polling")
	case <-tgDone:
		logger.WithField("event", "telegram_stopped_early").Warn("telegram client stopped before shutdown signal")
	}

	cancelTelegram()

	waitCtx, cancelWait := context.WithTimeout(context.Background(), telegramShutdownTimeout)
	select {
	case <-tgDone:
	case <-waitCtx.Done():
		logger.WithField("event", "telegram_shutdown_timeout").Warn("timed out waiting for telegram client to stop")
	}
	cancelWait()

	healthCtx, cancelHealth := context.WithTimeout(context.Background(), healthShutdownTimeout)
	if err := healthServer.Shutdown(healthCtx); err != nil {
		logger.WithError(err).Error("health server shutdown error")
	}
	cancelHealth()

	sessions.Stop()

	closeCtx, cancelClose := context.WithTimeout(context.Background(), storeCloseTimeout)
	if err := codes.Close(closeCtx); err != nil {
		logger.WithError(err).Error("code store close error")
	} else {
		logger.WithField("event", "store_closed").Info("code store connection closed")
	}
	cancelClose()

	logger.WithField("event", "shutdown_complete").Info("shutdown complete")
}

// openCodeStore connects the configured backend and returns its registry
// adapter.
func openCodeStore(cfg config.Config, logger *logrus.Entry) (codeStore, registry.Backend, error) {
	connectCtx, cancel := context.WithTimeout(context.Background(), storeConnectTimeout)
	defer cancel()

	if cfg.CodesBackend == config.BackendPostgres {
		pg, err := store.NewPostgresManager(connectCtx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres connection: %w", err)
		}

		logger.WithField("event", "postgres_connect").Info("connected to postgres")
		return pg, registry.NewPostgresBackend(pg.Pool()), nil
	}

	mongoManager, err := store.NewManager(connectCtx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connection: %w", err)
	}

	logger.WithField("event", "mongo_connect").Info("connected to mongo")

	indexCtx, cancelIndexes := context.WithTimeout(context.Background(), mongoIndexTimeout)
	defer cancelIndexes()

	if err := mongoManager.EnsureBaseIndexes(indexCtx); err != nil {
		closeCtx, cancelClose := context.WithTimeout(context.Background(), storeCloseTimeout)
		defer cancelClose()
		_ = mongoManager.Close(closeCtx)
		return nil, nil, fmt.Errorf("mongo index setup: %w", err)
	}

	logger.WithField("event", "mongo_indexes").Info("ensured base mongo indexes")
	return mongoManager, registry.NewMongoBackend(mongoManager.Codes()), nil
}

// newMetricsService wires the metrics endpoint and chart renderer. Without a
// configured endpoint the service answers every command as unconfigured.
func newMetricsService(cfg config.Config, logger *logrus.Entry) (*metrics.Service, error) {
	svcCfg := metrics.Config{Logger: logger.WithField("component", "metrics")}

	if cfg.MetricsConfigured() {
		fetcher, err := metricsapi.NewClient(cfg.MetricsEndpoint, cfg.MetricsBotToken, cfg.SupabaseAnonKey)
		if err != nil {
			return nil, err
		}
		charts, err := chart.NewClient(cfg.ChartEndpoint, nil)
		if err != nil {
			return nil, err
		}
		svcCfg.Fetcher = fetcher
		svcCfg.Charts = charts
	} else {
		logger.WithField("event", "metrics_disabled").Warn("metrics endpoint not configured, metrics commands will reply as unconfigured")
	}

	return metrics.NewService(svcCfg)
}

func exitWithError(logger *logrus.Entry, msg string, err error) {
	logger.WithError(err).Error(msg)
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(1)
}
