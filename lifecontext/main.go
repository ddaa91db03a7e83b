package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"lifecontext/lifecontext/config"
	"lifecontext/lifecontext/controllers"
	"lifecontext/lifecontext/middlewares"
	"lifecontext/lifecontext/routes"
	"lifecontext/lifecontext/sources/cache"
	"lifecontext/lifecontext/sources/psql"
	"lifecontext/lifecontext/sources/psql/dao"
	"lifecontext/lifecontext/sources/storage"
	"lifecontext/lifecontext/utils/logging"
)

func main() {
	logging.InitLogger()
	cfg := config.LoadConfig()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := psql.NewDatabase(ctx, cfg)
	if err != nil {
		logging.ErrorLogger.Error("database connection error", zap.Error(err))
		os.Exit(1)
	}
	defer db.Close()

	webDataDAO := dao.NewWebDataDAO(db.Pool)
	chatDAO := dao.NewChatMessageDAO(db.Pool)

	// Dedup cache and archive are optional: run without them locally.
	var dedup controllers.SeenChecker
	if cfg.RedisAddr != "" {
		c, err := cache.NewDedupCache(cfg.RedisAddr, 0)
		if err != nil {
			logging.ErrorLogger.Error("redis connection error", zap.Error(err))
			os.Exit(1)
		}
		defer c.Close()
		dedup = c
	}
	var archive controllers.Archiver
	if cfg.MinIOEndpoint != "" {
		m, err := storage.NewMinIOClient(cfg)
		if err != nil {
			logging.ErrorLogger.Error("minio connection error", zap.Error(err))
			os.Exit(1)
		}
		archive = m
	}

	settings, err := config.LoadSettings(cfg.SettingsPath)
	if err != nil {
		logging.ErrorLogger.Error("settings load error", zap.Error(err))
		os.Exit(1)
	}

	ingestCtrl := controllers.NewIngestController(webDataDAO, dedup, archive)
	chatCtrl := controllers.NewChatController(chatDAO, cfg)
	settingsCtrl := controllers.NewSettingsController(settings)
	authCtrl := controllers.NewAuthController(cfg)
	healthCtrl := controllers.NewHealthController()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewares.MetricsMiddleware)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Mount("/health", routes.HealthRoutes(healthCtrl))
	r.Mount("/auth", routes.AuthRoutes(authCtrl))
	r.Mount("/api", routes.IngestRoutes(ingestCtrl))
	r.Mount("/api/chat", routes.ChatRoutes(chatCtrl, cfg))
	r.Mount("/api/settings", routes.SettingsRoutes(settingsCtrl))
	r.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:    ":" + cfg.APIPort,
		Handler: r,
	}
	go func() {
		logging.AppLogger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.ErrorLogger.Error("server listen error", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.ErrorLogger.Error("server shutdown error", zap.Error(err))
	}
	logging.AppLogger.Info("server shutdown complete")
}
