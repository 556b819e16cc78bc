package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"vantry/internal/api"
	"vantry/internal/config"
	"vantry/internal/database"
	"vantry/internal/domain"
	"vantry/internal/events"
	"vantry/internal/logging"
	"vantry/internal/metrics"
	"vantry/internal/models"
	"vantry/internal/repository"
	"vantry/internal/service"
	"vantry/internal/sheets"
	"vantry/internal/telegram"
	"vantry/internal/web"
	"vantry/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, logCloser, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return fmt.Errorf("failed to init logging: %w", err)
	}
	if logCloser != nil {
		defer logCloser.Close()
	}

	if cfg.Monitoring.PrometheusEnabled {
		metrics.Register()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewDB(cfg.Database.Path, logger)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	catalog, err := loadCatalog(cfg.Catalog.Path)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	if err := config.ValidateCatalog(catalog); err != nil {
		return fmt.Errorf("invalid catalog: %w", err)
	}
	if _, err := db.SeedCatalog(ctx, catalog); err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(ctx, redisClient); err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, drafts held in memory and worker runs on polling only")
		repository.Close(redisClient)
		redisClient = nil
	}
	defer repository.Close(redisClient)

	draftTTL := time.Duration(models.DefaultDraftTTL) * time.Second
	drafts := buildDraftRepository(redisClient, draftTTL, logger)
	draftService := service.NewDraftService(drafts, logger)

	bus := events.NewBus(logger)
	bus.Subscribe(events.EventOrderComposed, func(e events.Event) {
		logger.Info().RawJSON("payload", e.Payload).Msg("order composed")
	})

	var notifier domain.Notifier
	if cfg.Telegram.Enabled {
		n, err := telegram.NewNotifier(cfg.Telegram, logger)
		if err != nil {
			return fmt.Errorf("failed to init telegram notifier: %w", err)
		}
		notifier = n
	}

	var sheetsWriter domain.SheetsWriter
	if cfg.Sheets.Enabled {
		c, err := sheets.NewClient(ctx, cfg.Sheets, logger)
		if err != nil {
			return fmt.Errorf("failed to init sheets client: %w", err)
		}
		sheetsWriter = c
	}

	dispatcher := worker.NewDispatchWorker(db, redisClient, notifier, sheetsWriter, worker.DefaultRetryPolicy(), logger)

	stockService := service.NewStockService(db, bus, catalog, logger)
	orderService := service.NewOrderService(db, draftService, dispatcher, bus, logger)

	// Keep the sheet in step with every stock change, not just orders.
	if sheetsWriter != nil {
		for _, eventType := range []string{events.EventItemAdded, events.EventStockUpdated} {
			bus.Subscribe(eventType, func(events.Event) {
				if err := dispatcher.EnqueueSheetSync(context.Background()); err != nil {
					logger.Warn().Err(err).Msg("failed to queue sheet sync")
				}
			})
		}
	}

	webServer, err := web.New(stockService, orderService, draftService, catalog, logger)
	if err != nil {
		return fmt.Errorf("failed to init web server: %w", err)
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		dispatcher.Start(ctx)
	}()

	backup := database.NewBackupService(cfg.Database.Path, cfg.Backup, logger)
	wg.Add(1)
	go func() {
		defer wg.Done()
		backup.Start(ctx)
	}()

	if cfg.API.Enabled {
		apiServer := api.NewServer(cfg.API, stockService, db, logger)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := apiServer.Start(ctx); err != nil {
				logger.Error().Err(err).Msg("api server stopped with error")
			}
		}()
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      webServer.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("web server started")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutting down")
	case err := <-serverErr:
		stop()
		wg.Wait()
		return fmt.Errorf("web server failed: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("web server shutdown failed")
	}

	wg.Wait()
	logger.Info().Msg("goodbye")
	return nil
}

// buildDraftRepository prefers Redis with an in-memory fallback behind
// the failover wrapper. With no reachable Redis it is memory only.
func buildDraftRepository(client *redis.Client, ttl time.Duration, logger *zerolog.Logger) domain.DraftRepository {
	memory := repository.NewMemoryDraftRepository(ttl)
	if client == nil {
		return memory
	}
	primary := repository.NewRedisDraftRepository(client, ttl)
	return repository.NewFailoverDraftRepository(primary, memory, logger)
}

// loadCatalog reads the seed catalog file, falling back to the built-in
// checklist when no path is configured.
func loadCatalog(path string) (models.Catalog, error) {
	if path == "" {
		return models.DefaultCatalog(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return models.Catalog{}, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var catalog models.Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return models.Catalog{}, fmt.Errorf("failed to parse catalog file: %w", err)
	}
	return catalog, nil
}
