package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	gormlogger "gorm.io/gorm/logger"

	"hubal/internal/config"
	"hubal/internal/database"
	"hubal/internal/domain/designer"
	"hubal/internal/observability"
	applog "hubal/internal/pkg/logger"
	"hubal/internal/realtime"
	"hubal/internal/server"
	"hubal/internal/storage"
)

var version = "dev"

const (
	notificationRetention = 30 * 24 * time.Hour
	cleanupInterval       = 6 * time.Hour
)

// @title			Hubal API
// @version		1.0
// @description	Interior design marketplace: designers, room designs, offers, chat.
// @BasePath		/api/v1
// @securityDefinitions.apikey	BearerAuth
// @in			header
// @name		Authorization
func main() {
	cfg := config.MustLoad()
	applog.Setup(cfg.LogLevel, cfg.LogPretty)

	ctx, cancel := context.WithCancel(log.Logger.WithContext(context.Background()))
	defer cancel()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}

	dbLevel := gormlogger.Warn
	if cfg.IsProdLike() {
		dbLevel = gormlogger.Error
	}
	db, err := database.Connect(cfg.DatabaseURL, database.Options{Tracing: cfg.OTEL.Enabled, LogLevel: dbLevel})
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	if err := server.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}

	hub := realtime.NewHub()
	if cfg.Redis.URL != "" {
		client, err := realtime.NewRedisClient(cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("redis connection failed")
		}
		defer client.Close()

		bridge := realtime.NewRedisBridge(client, hub)
		hub.UseBridge(bridge)
		if err := bridge.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("realtime bridge failed to subscribe")
		}
		log.Info().Msg("realtime events fan out through redis")
	}

	var store storage.Store
	if cfg.Storage.UseObjectStore() {
		minioStore, err := storage.NewMinioStore(ctx, cfg.Storage)
		if err != nil {
			log.Fatal().Err(err).Msg("object storage setup failed")
		}
		store = minioStore
	} else {
		if err := os.MkdirAll(cfg.Storage.UploadsDir, 0o755); err != nil {
			log.Fatal().Err(err).Msg("failed to create uploads dir")
		}
		store = storage.NewLocalStore(cfg.Storage.UploadsDir, cfg.Storage.UploadsURL)
	}

	deps := server.Deps{Config: cfg, DB: db, Hub: hub, Store: store}
	if cfg.Search.MeiliURL != "" {
		index := designer.NewMeiliIndex(cfg.Search.MeiliURL, cfg.Search.MeiliAPIKey)
		defer index.Close()
		deps.Search = index
	}

	srv := server.New(deps)

	if deps.Search != nil {
		go func() {
			if err := srv.Designers.Reindex(ctx); err != nil {
				log.Warn().Err(err).Msg("initial designer reindex failed")
			}
		}()
	}
	go srv.Notifications.RunCleanup(ctx, cleanupInterval, notificationRetention)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Generation requests wait on the AI gateway.
		WriteTimeout: cfg.AI.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Str("version", version).Msg("hubal api listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown error")
	}
	cancel()
	if err := shutdownOTel(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("otel shutdown error")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
