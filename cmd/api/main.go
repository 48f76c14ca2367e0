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

	"github.com/secosha/marketplace/api/controllers"
	"github.com/secosha/marketplace/api/routes"
	"github.com/secosha/marketplace/internal/auth"
	"github.com/secosha/marketplace/internal/items"
	"github.com/secosha/marketplace/internal/listings"
	"github.com/secosha/marketplace/internal/media"
	"github.com/secosha/marketplace/internal/profiles"
	"github.com/secosha/marketplace/internal/users"
	"github.com/secosha/marketplace/pkg/auth/session"
	"github.com/secosha/marketplace/pkg/config"
	"github.com/secosha/marketplace/pkg/db"
	"github.com/secosha/marketplace/pkg/logger"
	"github.com/secosha/marketplace/pkg/metrics"
	"github.com/secosha/marketplace/pkg/migrate"
	"github.com/secosha/marketplace/pkg/redis"
	"github.com/secosha/marketplace/pkg/storage/gcs"
)

const shutdownTimeout = 15 * time.Second

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = db.DriverSQLite
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if cfg.FeatureFlags.UseSQLite {
		requireResource(ctx, logg, "sqlite schema", db.EnsureSQLiteSchema(ctx, dbClient.DB()))
	}
	requireResource(ctx, logg, "dev migrations", migrate.MaybeRunDev(ctx, cfg, logg, dbClient))

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	requireResource(ctx, logg, "session manager", err)

	gcsClient, err := gcs.NewClient(ctx, cfg.GCS, cfg.GCP, logg)
	requireResource(ctx, logg, "gcs", err)
	defer func() {
		if err := gcsClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing gcs client", err)
		}
	}()

	userRepo := users.NewRepository(dbClient.DB())
	profileRepo := profiles.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		ProfileRepo:    profileRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		Logger:         logg,
	})
	requireResource(ctx, logg, "auth service", err)

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:             dbClient,
		SessionManager: sessionManager,
		PasswordConfig: cfg.Password,
		JWTConfig:      cfg.JWT,
		Logger:         logg,
	})
	requireResource(ctx, logg, "register service", err)

	profileService, err := profiles.NewService(profileRepo, logg)
	requireResource(ctx, logg, "profile service", err)

	itemService, err := items.NewService(items.NewRepository(dbClient.DB()), logg)
	requireResource(ctx, logg, "items service", err)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	listingService, err := listings.NewService(listings.ServiceParams{
		Repo:    listings.NewRepository(dbClient.DB()),
		Metrics: metrics.NewListingSearchMetrics(registry),
		Timeout: cfg.Listings.QueryTimeout,
		Logger:  logg,
	})
	requireResource(ctx, logg, "listings service", err)

	mediaService, err := media.NewService(media.ServiceParams{
		Store:          gcsClient,
		Bucket:         gcsClient.DefaultBucket(),
		CacheControl:   cfg.GCS.CacheControl,
		MaxUploadBytes: cfg.Media.MaxUploadBytes(),
		Logger:         logg,
	})
	requireResource(ctx, logg, "media service", err)

	handler := routes.NewRouter(routes.Dependencies{
		Config:   cfg,
		Logger:   logg,
		Gatherer: registry,
		Readiness: map[string]controllers.Pinger{
			"db":    dbClient,
			"redis": redisClient,
			"gcs":   gcsClient,
		},
		RateLimiter: redisClient,
		Sessions:    sessionManager,
		Auth:        authService,
		Register:    registerService,
		Profiles:    profileService,
		Items:       itemService,
		Listings:    listingService,
		Media:       mediaService,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "graceful shutdown failed", err)
		}
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(logg.WithField(ctx, "resource", name), "failed to bootstrap "+name, err)
	os.Exit(1)
}
