package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/we-ne/sentinel/internal/anomaly"
	"github.com/we-ne/sentinel/internal/config"
	"github.com/we-ne/sentinel/internal/handlers"
	"github.com/we-ne/sentinel/internal/ledger"
	"github.com/we-ne/sentinel/internal/logging"
	"github.com/we-ne/sentinel/internal/messaging"
	"github.com/we-ne/sentinel/internal/middleware"
	"github.com/we-ne/sentinel/internal/ratelimit"
	"github.com/we-ne/sentinel/internal/repository"
	"github.com/we-ne/sentinel/internal/server"
	"github.com/we-ne/sentinel/internal/service"
	"github.com/we-ne/sentinel/pkg/tokens"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logging.New(
		logging.ParseLevel(cfg.Logging.Level),
		cfg.Logging.Format,
	).With(logging.Service("sentinel"))
	logging.SetDefault(logger)

	slog.Info("Starting sentinel engine",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Logging.Level),
		slog.String("log_format", cfg.Logging.Format),
	)
	if *configPath != "" {
		slog.Info("Loaded configuration", slog.String("config_path", *configPath))
	}

	// Ledger archive (optional, postgres)
	ledgerOpts := []ledger.Option{}
	if cfg.Database.Type == "postgres" {
		connString := cfg.Database.Postgres.ConnString()

		slog.Info("Connecting to PostgreSQL ledger archive",
			slog.String("host", cfg.Database.Postgres.Host),
			slog.Int("port", cfg.Database.Postgres.Port),
			slog.String("database", cfg.Database.Postgres.Database),
		)

		archive, err := repository.NewPostgresLedgerArchive(context.Background(), connString)
		if err != nil {
			slog.Error("Failed to connect to PostgreSQL", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer archive.Close()

		slog.Info("Running database migrations")
		m, err := migrate.New("file://migrations", connString)
		if err != nil {
			slog.Error("Failed to initialize migrations", slog.String("error", err.Error()))
			os.Exit(1)
		}
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			slog.Error("Failed to run migrations", slog.String("error", err.Error()))
			os.Exit(1)
		}

		ledgerOpts = append(ledgerOpts, ledger.WithArchive(archive))
	} else {
		slog.Warn("Ledger archive disabled, chain is in-memory only")
	}

	// Ledger fan-out (optional, NATS)
	if cfg.NATS.Enabled {
		natsCfg := messaging.DefaultNATSConfig()
		natsCfg.URL = cfg.NATS.URL
		publisher, err := messaging.NewNATSPublisher(natsCfg)
		if err != nil {
			slog.Error("Failed to connect to NATS", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer publisher.Close()
		ledgerOpts = append(ledgerOpts, ledger.WithPublisher(publisher))
		slog.Info("Ledger fan-out enabled", slog.String("url", cfg.NATS.URL))
	}

	led := ledger.New(ledgerOpts...)

	// Claim windows (optional, Redis for multi-replica deployments)
	var claims ratelimit.ClaimWindow
	if cfg.Redis.Enabled {
		rw, err := ratelimit.NewRedisWindow(cfg.Redis.URL)
		if err != nil {
			slog.Error("Failed to connect to Redis", slog.String("error", err.Error()))
			os.Exit(1)
		}
		claims = rw
		slog.Info("Shared claim windows enabled", slog.String("url", cfg.Redis.URL))
	} else {
		claims = ratelimit.NewMemoryWindow()
	}
	defer claims.Close() //nolint:errcheck

	repo := repository.NewInMemoryRepository()
	issuer := tokens.NewIssuer(cfg.Security.JWTSecret, cfg.Security.TokenTTL)

	engine := service.NewEngine(repo, led, claims, logger,
		service.WithWarningTTL(cfg.Security.WarningTTL),
		service.WithDetector(anomaly.NewDetectorWithBurst(cfg.Security.BurstWindow, cfg.Security.BurstThreshold)),
	)

	resolver := middleware.NewActorResolver(issuer)
	secHandler := handlers.NewSecurityHandler(engine, issuer, logger)
	evHandler := handlers.NewEventsHandler(engine, logger)
	router := server.NewRouter(secHandler, evHandler, resolver)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		slog.Info("Sentinel engine listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.WriteTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("Server stopped gracefully")
}
