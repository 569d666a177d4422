package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"webstudio/internal/api"
	"webstudio/internal/config"
	"webstudio/internal/domain"
	"webstudio/internal/events"
	"webstudio/internal/export"
	"webstudio/internal/google"
	"webstudio/internal/logging"
	"webstudio/internal/metrics"
	"webstudio/internal/notify"
	"webstudio/internal/repository"
	"webstudio/internal/service"
	"webstudio/internal/store"
	"webstudio/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	recordStore, err := store.Open(cfg.Storage.DataDir)
	if err != nil {
		logger.Error().Err(err).Msg("Ошибка открытия хранилища данных")
		return err
	}

	redisClient, sessions := initSessionRepository(ctx, cfg, logger)
	defer func() { _ = repository.Close(redisClient) }()

	pricing, err := service.NewPricing(cfg.Pricing.Addons, cfg.Pricing.BasePrices)
	if err != nil {
		return fmt.Errorf("pricing config: %w", err)
	}

	notifier := initNotifier(cfg, logger)
	sheetsService := initGoogleSheets(ctx, cfg, logger)

	var syncWorker *worker.SyncWorker
	if sheetsService != nil {
		retryPolicy := worker.RetryPolicy{MaxRetries: 5, InitialDelay: 2 * time.Second, MaxDelay: time.Minute, BackoffFactor: 2}
		syncWorker = worker.NewSyncWorker(recordStore, sheetsService, redisClient, retryPolicy, logger)
		go syncWorker.Start(ctx)
	}

	eventBus := events.NewEventBus()
	subscribeOrderEvents(eventBus, logger)

	catalog := service.NewCatalogService(recordStore, logger)
	partners := service.NewPartnerCatalogService(recordStore, logger)
	orders := newOrderService(recordStore, catalog, eventBus, notifier, syncWorker, logger)
	contacts := service.NewContactService(recordStore, orders, eventBus, logger)
	checkout := service.NewCheckoutService(sessions, pricing, catalog, logger)
	exporter := export.NewExcelExporter(recordStore, cfg.Exports, logger)

	if cfg.Backup.Enabled {
		backupService := store.NewBackupService(recordStore, cfg.Backup, logger)
		go backupService.Start(ctx)
	}

	if cfg.Monitoring.PrometheusEnabled {
		startMetricsServer(cfg, logger)
	}

	apiServer := api.NewHTTPServer(cfg.API, api.Deps{
		Catalog:  catalog,
		Partners: partners,
		Orders:   orders,
		Contacts: contacts,
		Checkout: checkout,
		Exporter: exporter,
		Limits:   sessions,

		SubmissionLimit:  cfg.Checkout.RateLimitSubmissions,
		SubmissionWindow: time.Duration(cfg.Checkout.RateLimitWindow) * time.Second,
	}, logger)

	go func() {
		if err := apiServer.Start(); err != nil {
			logger.Error().Err(err).Msg("API server error")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP shutdown error")
	}

	logger.Info().Msg("Shutdown complete.")
	return nil
}

func loadConfigAndLogger() (*config.Config, *zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, nil, nil, err
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, &logger, closer, nil
}

func newOrderService(recordStore domain.RecordStore, catalog *service.CatalogService, eventBus *events.EventBus, notifier domain.Notifier, syncWorker *worker.SyncWorker, logger *zerolog.Logger) *service.OrderService {
	var syncer domain.SyncWorker
	if syncWorker != nil {
		syncer = syncWorker
	}
	return service.NewOrderService(recordStore, catalog, eventBus, notifier, syncer, logger)
}

func initSessionRepository(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*redis.Client, domain.SessionRepository) {
	ttl := time.Duration(cfg.Checkout.SessionTTL) * time.Second

	var redisClient *redis.Client
	if cfg.Redis.Address != "" {
		redisClient = repository.NewRedisClient(cfg.Redis)
		if errPing := repository.Ping(ctx, redisClient); errPing != nil {
			logger.Warn().Err(errPing).Msg("Redis unavailable")
		}
	}

	primary := repository.NewRedisSessionRepository(redisClient, ttl)
	fallback := repository.NewMemorySessionRepository(ttl)
	return redisClient, repository.NewFailoverSessionRepository(primary, fallback, logger)
}

func initNotifier(cfg *config.Config, logger *zerolog.Logger) domain.Notifier {
	if !cfg.Telegram.Enabled {
		return nil
	}

	notifier, err := notify.NewTelegramNotifier(cfg.Telegram, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("Telegram notifier unavailable, manager notifications disabled")
		return nil
	}
	return notifier
}

func initGoogleSheets(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *google.SheetsService {
	if !cfg.Google.Enabled {
		return nil
	}

	sheetsSvc, err := google.NewSheetsService(cfg.Google.GoogleCredentialsFile, cfg.Google.OrdersSpreadSheetID)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize Google Sheets service")
		return nil
	}

	if err := sheetsSvc.TestConnection(ctx); err != nil {
		logger.Error().Err(err).Msg("Google Sheets connection test failed")
		return nil
	}

	logger.Info().Msg("Google Sheets service initialized successfully")
	return sheetsSvc
}

func subscribeOrderEvents(bus *events.EventBus, logger *zerolog.Logger) {
	audit := func(ev *events.Event) error {
		var payload events.OrderEventPayload
		if err := json.Unmarshal(ev.Payload, &payload); err != nil {
			logger.Error().Err(err).Str("event", ev.Type).Msg("event bus: decode payload")
			return nil
		}
		logger.Info().
			Str("event", ev.Type).
			Str("order_id", payload.OrderID).
			Str("status", string(payload.Status)).
			Str("changed_by", payload.ChangedBy).
			Msg("order event")
		return nil
	}

	bus.Subscribe(events.EventOrderCreated, audit)
	bus.Subscribe(events.EventOrderStatusChanged, audit)
	bus.Subscribe(events.EventOrderDeleted, audit)
}

func startMetricsServer(cfg *config.Config, logger *zerolog.Logger) {
	metrics.Register()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	addr := fmt.Sprintf(":%d", cfg.Monitoring.PrometheusPort)
	go func() {
		logger.Info().Str("addr", addr).Msg("Prometheus metrics listening")
		if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("metrics server error")
		}
	}()
}
