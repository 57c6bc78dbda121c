package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"artbid-api/internal/adapter/nats"
	"artbid-api/internal/adapter/redis"
	"artbid-api/internal/auth"
	"artbid-api/internal/clock"
	"artbid-api/internal/config"
	"artbid-api/internal/controller"
	"artbid-api/internal/platform/logger"
	"artbid-api/internal/platform/metrics"
	"artbid-api/internal/repo"
	"artbid-api/internal/service"
	"artbid-api/pkg/http_server"
	"artbid-api/pkg/postgres"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/labstack/echo"
	"golang.org/x/sync/errgroup"
)

func runMigrations(pg *postgres.Postgres, sourceUrl string, databaseName string) error {
	driver, err := pgmigrate.WithInstance(pg.Database, &pgmigrate.Config{DatabaseName: databaseName})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}

	migrations, err := migrate.NewWithDatabaseInstance(sourceUrl, databaseName, driver)
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}

	if err := migrations.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

func Run(cfg *config.Config) error {
	log := logger.NewZapLogger(logger.ZapLoggerConfig{
		Level:      cfg.Logger.Level,
		Encoding:   cfg.Logger.Encoding,
		TimeFormat: cfg.Logger.TimeFormat,
	})
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	location, err := cfg.Location()
	if err != nil {
		return err
	}

	log.Info("Connecting database...")
	postgresDB, err := postgres.NewDB(ctx, cfg.Postgres.Conn,
		postgres.MaxOpenConns(cfg.Postgres.MaxOpenConns),
		postgres.MaxIdleConns(cfg.Postgres.MaxIdleConns),
		postgres.ConnMaxLifetime(cfg.Postgres.ConnMaxLifetime),
	)
	if err != nil {
		return fmt.Errorf("error occurred while connecting to db: %w", err)
	}
	defer postgresDB.Close()

	log.Info("Running migrations...")
	if err := runMigrations(postgresDB, cfg.Postgres.MigrationsPath, cfg.Postgres.Database); err != nil {
		return err
	}
	log.Info("Migrations are up to date")

	var (
		publishers []service.EventPublisher
		subscriber service.EventSubscriber
	)
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return err
		}
		defer redisClient.Close()

		bus := redis.NewEventBus(redisClient)
		publishers = append(publishers, bus)
		subscriber = bus
	}
	if cfg.NATS.Enabled {
		natsConn, err := nats.Connect(cfg.NATS.URL, log)
		if err != nil {
			return err
		}
		defer natsConn.Drain()

		publishers = append(publishers, nats.NewPublisher(natsConn))
	}

	var (
		recorder       metrics.Recorder = metrics.Nop{}
		metricsHandler http.Handler
	)
	if cfg.Metrics.Enabled {
		manager := metrics.NewMetricsManager("artbid")
		recorder = manager
		metricsHandler = manager.Handler()
	}

	clk := clock.New()
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, clk)

	repositories := repo.NewRepositories(postgresDB)
	services := service.NewServices(service.Dependencies{
		Repos:       repositories,
		Clock:       clk,
		Logger:      log,
		Metrics:     recorder,
		Events:      service.NewFanOutPublisher(publishers...),
		Subscriber:  subscriber,
		Tokens:      tokens,
		Hasher:      auth.NewPasswordHasher(cfg.Auth.BcryptCost),
		Location:    location,
		TickTimeout: cfg.Lifecycle.TickTimeout,
	})

	handler := echo.New()
	log.Info("Setup routes...")
	controller.SetupRoutesHandlers(handler, services, controller.RouterOptions{
		Sessions:       auth.NewSessions(tokens),
		Logger:         log,
		MetricsHandler: metricsHandler,
		MetricsPath:    cfg.Metrics.Path,
	})

	log.Infof("Starting server on %s...", cfg.HTTP.Address)
	httpServer := http_server.New(handler, cfg.HTTP.Address,
		http_server.ReadTimeout(cfg.HTTP.ReadTimeout),
		http_server.WriteTimeout(cfg.HTTP.WriteTimeout),
		http_server.ShutdownTimeout(cfg.HTTP.ShutdownTimeout),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return services.Lifecycle.Run(gctx, cfg.Lifecycle.TickInterval)
	})
	g.Go(func() error {
		select {
		case <-gctx.Done():
			log.Info("Shutting down...")

			return httpServer.Shutdown()
		case err := <-httpServer.Notify():
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}

			return fmt.Errorf("http server: %w", err)
		}
	})

	log.Info("Ready to process requests...")
	if err := g.Wait(); err != nil {
		return err
	}

	log.Info("Successful shutdown")

	return nil
}
