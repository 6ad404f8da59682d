package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"buddhist-lent/pledgeboard/internal/api"
	"buddhist-lent/pledgeboard/internal/common"
	"buddhist-lent/pledgeboard/internal/config"
	"buddhist-lent/pledgeboard/internal/db"
	"buddhist-lent/pledgeboard/internal/logging"
	"buddhist-lent/pledgeboard/internal/metrics"
	"buddhist-lent/pledgeboard/internal/routes"
	"buddhist-lent/pledgeboard/internal/services"
	"buddhist-lent/pledgeboard/internal/storage"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

// @title Lent Pledge API
// @version 1.0
// @description Pledge registration, organization form returns and reporting for the Buddhist Lent abstinence campaign.
// @BasePath /
func main() {
	cfg := config.Load()

	if err := logging.Init(cfg.AppEnv); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logging.Close()

	if err := cfg.Validate(); err != nil {
		logging.Fatal("Invalid configuration", "error", err)
	}

	logging.Info("Pledgeboard starting up",
		"environment", cfg.AppEnv,
		"db_driver", cfg.DBDriver,
		"cache_backend", cfg.CacheBackend,
		"storage_backend", cfg.StorageBackend,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gdb, sqlDB, err := openDatabase(cfg)
	if err != nil {
		logging.Fatal("Failed to open database", "error", err)
	}
	if err := db.Migrate(gdb); err != nil {
		logging.Fatal("Failed to migrate database", "error", err)
	}
	logging.Info("Database ready")

	cache, err := openCache(cfg)
	if err != nil {
		logging.Fatal("Failed to open cache", "error", err)
	}
	defer cache.Close()

	store, err := openStore(ctx, cfg)
	if err != nil {
		logging.Fatal("Failed to open image store", "error", err)
	}

	var mailer services.Mailer = services.LogMailer{}
	if cfg.SMTPHost != "" {
		mailer = services.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPFrom)
	} else {
		logging.Warn("SMTP_HOST not set, password reset mails are only logged")
	}

	deps, err := api.InitDependencies(cfg, api.Infrastructure{
		DB:      gdb,
		SQL:     sqlDB,
		Cache:   cache,
		Store:   store,
		Mailer:  mailer,
		Metrics: metrics.NewMetricsRegistry(prometheus.DefaultRegisterer),
	})
	if err != nil {
		logging.Fatal("Failed to initialize dependencies", "error", err)
	}

	deps.Jobs.Start(ctx)

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           routes.NewRouter(deps, time.Now()),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}

	go func() {
		logging.Info("Server starting", "port", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal("Server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logging.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error("Graceful shutdown failed", "error", err)
	}
}

func openDatabase(cfg *config.Config) (*gorm.DB, *sqlx.DB, error) {
	switch cfg.DBDriver {
	case "postgres":
		gdb, err := db.InitPostgresORM(cfg.PostgresDSN())
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := db.InitPostgres(cfg.PostgresDSN())
		if err != nil {
			return nil, nil, err
		}
		return gdb, sqlDB, nil
	case "sqlite":
		gdb, err := db.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := db.WrapORM(gdb)
		if err != nil {
			return nil, nil, err
		}
		return gdb, sqlDB, nil
	}
	return nil, nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.DBDriver)
}

func openCache(cfg *config.Config) (common.CacheInterface, error) {
	switch cfg.CacheBackend {
	case "memory":
		return common.NewCacheService(cfg.ListCacheTTL, 10*time.Minute), nil
	case "redis":
		client, err := common.NewRedisClient(cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword)
		if err != nil {
			return nil, err
		}
		return common.NewRedisCacheService(client), nil
	}
	return nil, fmt.Errorf("unknown CACHE_BACKEND %q", cfg.CacheBackend)
}

func openStore(ctx context.Context, cfg *config.Config) (storage.ImageStore, error) {
	switch cfg.StorageBackend {
	case "local":
		return storage.NewLocalStore(cfg.UploadDir, cfg.UploadURLPath)
	case "minio":
		return storage.NewMinioStore(ctx, storage.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccess,
			SecretKey: cfg.MinioSecret,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
			PublicURL: cfg.MinioPublicURL,
		})
	}
	return nil, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.StorageBackend)
}
