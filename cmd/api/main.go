package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/caec/caec-backend/api/routes"
	"github.com/caec/caec-backend/internal/auth"
	"github.com/caec/caec-backend/internal/contacts"
	"github.com/caec/caec-backend/internal/systems"
	"github.com/caec/caec-backend/internal/telemetry"
	"github.com/caec/caec-backend/internal/users"
	"github.com/caec/caec-backend/pkg/auth/session"
	"github.com/caec/caec-backend/pkg/config"
	"github.com/caec/caec-backend/pkg/db"
	"github.com/caec/caec-backend/pkg/instance"
	"github.com/caec/caec-backend/pkg/logger"
	"github.com/caec/caec-backend/pkg/metrics"
	"github.com/caec/caec-backend/pkg/migrate"
	"github.com/caec/caec-backend/pkg/redis"
	"github.com/caec/caec-backend/web"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	var (
		configStore telemetry.ConfigStore = telemetry.NewMemoryConfigStore()
		redisPinger db.Pinger
	)
	if redis.Configured(cfg.Redis) {
		redisClient, redisErr := redis.New(ctx, cfg.Redis, logg)
		if redisErr != nil {
			return redisErr
		}
		defer func() { err = multierr.Append(err, redisClient.Close()) }()
		configStore = telemetry.NewRedisConfigStore(redisClient)
		redisPinger = redisClient
	} else {
		logg.Warn(ctx, "redis not configured, irrigation settings kept in memory")
	}

	sessions, err := session.NewManager(cfg.Session)
	if err != nil {
		return err
	}
	renderer, err := web.NewRenderer()
	if err != nil {
		return err
	}

	systemsSvc, err := systems.NewService(systems.ServiceParams{DB: dbClient})
	if err != nil {
		return err
	}
	authSvc, err := auth.NewService(auth.ServiceParams{
		UserRepo: users.NewRepository(dbClient.DB()),
		Systems:  systemsSvc,
	})
	if err != nil {
		return err
	}
	registerSvc, err := auth.NewRegisterService(auth.RegisterServiceParams{DB: dbClient})
	if err != nil {
		return err
	}
	profiles, err := contacts.NewService(contacts.ServiceParams{DB: dbClient})
	if err != nil {
		return err
	}
	telemetrySvc, err := telemetry.NewService(telemetry.ServiceParams{
		Systems: systemsSvc,
		Sensors: telemetry.NewSensorRepository(dbClient.DB()),
		Configs: configStore,
	})
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	addr := ":" + cfg.App.Port
	server := &http.Server{
		Addr:              addr,
		ReadHeaderTimeout: 10 * time.Second,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:      cfg,
			Logger:      logg,
			DB:          dbClient,
			RedisPinger: redisPinger,
			Sessions:    sessions,
			Renderer:    renderer,
			Metrics:     metrics.NewHTTPMetrics(reg),
			Gatherer:    reg,
			Auth:        authSvc,
			Register:    registerSvc,
			Profiles:    profiles,
			Systems:     systemsSvc,
			Telemetry:   telemetrySvc,
		}),
	}

	logCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})
	logg.Info(logCtx, "starting api server")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logg.Info(logCtx, "shutting down api server")
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
