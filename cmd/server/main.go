package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"regatta/internal/api"
	"regatta/internal/audit"
	"regatta/internal/availability"
	"regatta/internal/booking"
	"regatta/internal/cache"
	"regatta/internal/config"
	"regatta/internal/database"
	"regatta/internal/events"
	"regatta/internal/metrics"
	"regatta/internal/reminders"
	"regatta/internal/service"
)

func main() {
	_ = godotenv.Load()

	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	cfg, err := config.Load(os.Getenv("REGATTA_CONFIG_PATH"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := database.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("open db error")
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var rdb *redis.Client
	if cfg.Redis.Address != "" && cfg.CacheTTL() > 0 {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	gridCache := cache.New(rdb, cfg.CacheTTL())

	bus := events.NewBus()
	bus.Subscribe(events.TypeBookingCreated, func(e events.Event) error {
		logger.Debug().RawJSON("payload", e.Payload).Msg("booking created event")
		return nil
	})

	validator := booking.NewValidator(cfg.MinStay())
	calendar := availability.NewCalendar(cfg.Season(), time.Now)

	bookingSvc := service.NewBookingService(db, bus, gridCache, validator, calendar, &logger)
	yachtSvc := service.NewYachtService(db, bus, gridCache, &logger)

	server := api.NewHTTPServer(
		bookingSvc,
		yachtSvc,
		cfg.Server.APIKey,
		cfg.RateLimit.RequestsPerSecond,
		cfg.RateLimit.Burst,
		&logger,
	)

	if cfg.Monitoring.HealthCheckPort == 0 {
		cfg.Monitoring.HealthCheckPort = 8081
	}
	go startHealthServer(ctx, cfg.Monitoring.HealthCheckPort, db, rdb, &logger)

	if cfg.Monitoring.PrometheusEnabled {
		if cfg.Monitoring.PrometheusPort == 0 {
			cfg.Monitoring.PrometheusPort = 9090
		}
		metrics.Register()
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	if cfg.Backup.Enabled {
		go runBackups(ctx, db, cfg, &logger)
	}

	if cfg.Reminders.Enabled {
		reminderSvc := reminders.NewService(&reminders.Config{
			CheckInterval: cfg.ReminderCheckInterval(),
			DaysBefore:    cfg.Reminders.DaysBefore,
		}, db, &reminders.LogNotifier{Logger: &logger}, &logger)
		reminderSvc.Start()
		defer reminderSvc.Stop()
	}

	if cfg.Audit.Enabled {
		auditSvc := audit.NewService(&audit.Config{
			DataRetentionDays: cfg.Audit.RetentionDays,
			ReportDir:         cfg.Audit.ReportDir,
			ExportOnStart:     cfg.Audit.ExportOnStart,
		}, db, &logger)
		auditSvc.Start()
		defer auditSvc.Stop()
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("api server shutdown error")
		}
	}()

	logger.Info().Msg("charter booking server started")
	if err = server.Start(cfg.Server.Port); err != nil {
		logger.Fatal().Err(err).Msg("api server error")
	}
}

func runBackups(ctx context.Context, db *database.DB, cfg *config.Config, logger *zerolog.Logger) {
	if err := os.MkdirAll(cfg.Backup.Path, 0o755); err != nil {
		logger.Error().Err(err).Msg("failed to create backup dir")
		return
	}

	ticker := time.NewTicker(cfg.BackupInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			dest := filepath.Join(cfg.Backup.Path, fmt.Sprintf("regatta_%s.db", time.Now().Format("20060102_150405")))
			if err := db.Backup(dest); err != nil {
				logger.Error().Err(err).Msg("backup failed")
				continue
			}
			removed, err := db.CleanupBackups(cfg.Backup.Path, cfg.BackupRetention())
			if err != nil {
				logger.Error().Err(err).Msg("backup cleanup failed")
			}
			logger.Info().Str("dest", dest).Int("removed", removed).Msg("backup completed")
		}
	}
}

func startHealthServer(ctx context.Context, port int, db *database.DB, rdb *redis.Client, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		ctxPing, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		if err := db.PingContext(ctxPing); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		if rdb != nil {
			if err := rdb.Ping(ctxPing).Err(); err != nil {
				http.Error(w, "redis not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("health server error")
	}
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
